package stairs

import (
	"errors"
	"fmt"
)

var ErrNoItems = errors.New("no items")

type BatchInput struct {
	Items []Request `json:"items"`
}

type BatchResult struct {
	Results []Result `json:"results"`
}

// CalculateBatch validates every request before computing any of them.
func (c *Calculator) CalculateBatch(in BatchInput) (BatchResult, error) {
	if len(in.Items) == 0 {
		return BatchResult{}, ErrNoItems
	}
	for i, item := range in.Items {
		if err := item.Validate(); err != nil {
			return BatchResult{}, fmt.Errorf("item %d: %w", i, err)
		}
	}
	out := BatchResult{Results: make([]Result, 0, len(in.Items))}
	for _, item := range in.Items {
		out.Results = append(out.Results, c.Calculate(item))
	}
	return out, nil
}
