// Package config loads detection parameters from the environment.
// Every key is optional; unset keys keep their defaults, so partial
// configuration is always accepted.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"brick-finder/internal/detect"
)

// Load reads a .env file (if present) plus the process environment and
// returns validated detection parameters.
func Load() (detect.Params, error) {
	// Missing .env files are fine; the environment still applies.
	_ = godotenv.Load()

	p := detect.DefaultParams()
	if err := apply(&p); err != nil {
		return detect.Params{}, err
	}
	if err := p.Validate(); err != nil {
		return detect.Params{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return p, nil
}

func apply(p *detect.Params) error {
	intKeys := map[string]*int{
		"BRICK_EDGE_THRESHOLD":     &p.EdgeThreshold,
		"BRICK_MIN_SIZE":           &p.MinBrickSize,
		"BRICK_MAX_SIZE":           &p.MaxBrickSize,
		"BRICK_COLOR_THRESHOLD":    &p.ColorThreshold,
		"BRICK_CATALOG_SCAN_LIMIT": &p.CatalogScanLimit,
		"BRICK_MAX_CANDIDATES":     &p.MaxCandidates,
		"BRICK_MAX_ACCEPTED":       &p.MaxAccepted,
		"BRICK_MAX_RESULTS":        &p.MaxResults,
		"BRICK_WINDOW_SIZE":        &p.WindowSize,
	}
	for key, dst := range intKeys {
		if err := envInt(key, dst); err != nil {
			return err
		}
	}

	floatKeys := map[string]*float64{
		"BRICK_MIN_CONFIDENCE":       &p.MinConfidence,
		"BRICK_CONFIDENCE_THRESHOLD": &p.ConfidenceThreshold,
		"BRICK_MIN_MATCH_CONFIDENCE": &p.MinMatchConfidence,
		"BRICK_IOU_THRESHOLD":        &p.IoUThreshold,
	}
	for key, dst := range floatKeys {
		if err := envFloat(key, dst); err != nil {
			return err
		}
	}

	return nil
}

func envInt(key string, dst *int) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	*dst = v
	return nil
}

func envFloat(key string, dst *float64) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", key, raw)
	}
	*dst = v
	return nil
}
