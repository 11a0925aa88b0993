package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Config holds all training settings, populated from environment variables.
type Config struct {
	DataPath  string
	LogLevel  string
	LogFormat string

	// Split settings.
	TestSize   float64
	RandomSeed uint64 // 0 draws a fresh seed per run

	// Random forest hyperparameters.
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 selects sqrt(n_features)
	Workers         int

	// Optional outputs; empty disables each one.
	ModelPath       string
	MetricsTextfile string
	RunsDBPath      string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	testSize, err := parseFloat("TEST_SIZE", 0.25)
	if err != nil {
		return nil, err
	}
	if !(testSize > 0 && testSize < 1) {
		return nil, fmt.Errorf("invalid TEST_SIZE: %v must be between 0 and 1 exclusive", testSize)
	}

	seed, err := parseUint("RANDOM_SEED", 0)
	if err != nil {
		return nil, err
	}

	numTrees, err := parseInt("FOREST_N_ESTIMATORS", 100, 1, 10000)
	if err != nil {
		return nil, err
	}
	maxDepth, err := parseInt("FOREST_MAX_DEPTH", 6, 1, 64)
	if err != nil {
		return nil, err
	}
	minSplit, err := parseInt("FOREST_MIN_SAMPLES_SPLIT", 2, 2, 1<<20)
	if err != nil {
		return nil, err
	}
	minLeaf, err := parseInt("FOREST_MIN_SAMPLES_LEAF", 1, 1, 1<<20)
	if err != nil {
		return nil, err
	}
	maxFeatures, err := parseInt("FOREST_MAX_FEATURES", 0, 0, 1<<20)
	if err != nil {
		return nil, err
	}
	workers, err := parseInt("TRAIN_WORKERS", runtime.GOMAXPROCS(0), 1, 1024)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataPath:  envOrDefault("DATA_PATH", "data/earthquakes.csv"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		TestSize:   testSize,
		RandomSeed: seed,

		NumTrees:        numTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSplit,
		MinSamplesLeaf:  minLeaf,
		MaxFeatures:     maxFeatures,
		Workers:         workers,

		ModelPath:       os.Getenv("MODEL_PATH"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		RunsDBPath:      os.Getenv("RUNS_DB_PATH"),
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q", cfg.LogFormat)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: %d out of range [%d, %d]", key, n, lo, hi)
	}
	return n, nil
}

func parseUint(key string, fallback uint64) (uint64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
