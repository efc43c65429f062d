package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries the process-level settings for talking to the hosted
// store. The store URL and API key have no usable default and are checked
// at startup; everything else falls back to a sane value.
type Config struct {
	StoreURL       string
	StoreAPIKey    string
	RequestTimeout time.Duration
	MaxRetries     int

	ModelsBucket       string
	TrainingDataBucket string

	Port    string
	LogMode string
}

func Load() (*Config, error) {
	storeURL := strings.TrimSpace(os.Getenv("STORE_URL"))
	if storeURL == "" {
		return nil, fmt.Errorf("STORE_URL environment variable is required")
	}
	storeKey := strings.TrimSpace(os.Getenv("STORE_API_KEY"))
	if storeKey == "" {
		return nil, fmt.Errorf("STORE_API_KEY environment variable is required")
	}

	return &Config{
		StoreURL:           strings.TrimRight(storeURL, "/"),
		StoreAPIKey:        storeKey,
		RequestTimeout:     time.Duration(Int("STORE_TIMEOUT", 10)) * time.Second,
		MaxRetries:         Int("STORE_MAX_RETRIES", 3),
		ModelsBucket:       String("MODELS_BUCKET", "models"),
		TrainingDataBucket: String("TRAINING_DATA_BUCKET", "training-data"),
		Port:               String("PORT", "8000"),
		LogMode:            String("LOG_MODE", "development"),
	}, nil
}

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
