package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	TLSCert        string
	TLSKey         string
	DatabaseURL    string
	CatalogPath    string
	CatalogRefresh time.Duration
	StepHeightMM   float64
	TokenKey       string
	BotToken       string
	ScrapeBaseURL  string
	ScrapeRPS      float64
	ReportFontPath string
	AdminLogin     string
	AdminPassword  string
}

const DefaultScrapeBaseURL = "https://surgut.lemanapro.ru/search/?q="

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:           getenv("PORT", "8080"),
		TLSCert:        os.Getenv("TLS_CERT"),
		TLSKey:         os.Getenv("TLS_KEY"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CatalogPath:    getenv("CATALOG_PATH", "data.xlsx"),
		TokenKey:       os.Getenv("TOKEN_KEY"),
		BotToken:       os.Getenv("TOKEN_BOT"),
		ScrapeBaseURL:  getenv("SCRAPE_BASE_URL", DefaultScrapeBaseURL),
		ReportFontPath: os.Getenv("REPORT_FONT_PATH"),
		AdminLogin:     os.Getenv("ADMIN_LOGIN"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	if cfg.CatalogRefresh, err = time.ParseDuration(getenv("CATALOG_REFRESH", "1h")); err != nil {
		return Config{}, fmt.Errorf("CATALOG_REFRESH: %w", err)
	}
	if cfg.StepHeightMM, err = strconv.ParseFloat(getenv("STEP_HEIGHT_MM", "225"), 64); err != nil {
		return Config{}, fmt.Errorf("STEP_HEIGHT_MM: %w", err)
	}
	if cfg.StepHeightMM <= 0 {
		return Config{}, fmt.Errorf("STEP_HEIGHT_MM must be positive, got %v", cfg.StepHeightMM)
	}
	if cfg.ScrapeRPS, err = strconv.ParseFloat(getenv("SCRAPE_RPS", "1"), 64); err != nil {
		return Config{}, fmt.Errorf("SCRAPE_RPS: %w", err)
	}
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return Config{}, errors.New("TLS_CERT and TLS_KEY must be set together")
	}
	if (cfg.AdminLogin == "") != (cfg.AdminPassword == "") {
		return Config{}, errors.New("ADMIN_LOGIN and ADMIN_PASSWORD must be set together")
	}
	return cfg, nil
}

func (c Config) TLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
