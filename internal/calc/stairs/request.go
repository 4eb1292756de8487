package stairs

import (
	"fmt"

	"Stairs/internal/calc/layout"
	"Stairs/internal/catalog"
)

type StairType string

const (
	Wood    StairType = "wood"
	Modular StairType = "modular"
)

const (
	MinHeightMM = 1000
	MaxHeightMM = 5000
)

var StepWidthsMM = []int{900, 1000, 1200}

type Request struct {
	StairType   StairType     `json:"stair_type"`
	Config      layout.Config `json:"config"`
	HeightMM    float64       `json:"height_mm"`
	StepWidthMM int           `json:"step_width_mm"`
}

// Category is the catalog section the stair type is priced from.
func (r Request) Category() catalog.Category {
	switch r.StairType {
	case Wood:
		return catalog.CategoryWood
	case Modular:
		return catalog.CategoryModular
	}
	panic("stairs: unknown stair type " + string(r.StairType))
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the request against the ranges the calculators accept.
func (r Request) Validate() error {
	switch r.StairType {
	case Wood, Modular:
	default:
		return &ValidationError{Field: "stair_type", Message: "must be wood or modular"}
	}
	if !r.Config.Valid() {
		return &ValidationError{Field: "config", Message: "must be straight, l_shape or u_shape"}
	}
	if r.HeightMM < MinHeightMM || r.HeightMM > MaxHeightMM {
		return &ValidationError{Field: "height_mm", Message: fmt.Sprintf("must be between %d and %d mm", MinHeightMM, MaxHeightMM)}
	}
	if !ValidStepWidth(r.StepWidthMM) {
		return &ValidationError{Field: "step_width_mm", Message: "must be 900, 1000 or 1200"}
	}
	return nil
}

func ValidStepWidth(w int) bool {
	for _, v := range StepWidthsMM {
		if v == w {
			return true
		}
	}
	return false
}
