package main

import (
	"fmt"
	"os"
	"time"
)

// config holds the scheduler settings read from the environment.
type config struct {
	APIURL         string
	PipelineAPIKey string
	Env            string
	RequestTimeout time.Duration
}

func loadConfig() (*config, error) {
	cfg := &config{
		APIURL:         os.Getenv("FINMAN_API_URL"),
		PipelineAPIKey: os.Getenv("PIPELINE_API_KEY"),
		Env:            os.Getenv("ENV"),
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("FINMAN_API_URL is required")
	}
	if cfg.PipelineAPIKey == "" {
		return nil, fmt.Errorf("PIPELINE_API_KEY is required")
	}

	timeout, err := parseTimeout(os.Getenv("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout
	return cfg, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", d)
	}
	return d, nil
}
