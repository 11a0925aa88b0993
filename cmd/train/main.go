// Command train fits the MMI intensity classifier on an earthquake CSV and
// prints its balanced accuracy on the train and test rows.
//
// Settings come from the environment (optionally a .env file):
//
//	DATA_PATH=data/earthquakes.csv RANDOM_SEED=42 MODEL_PATH=model.json go run ./cmd/train
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/quake-intensity-model/internal/adapter/csvtable"
	"github.com/couchcryptid/quake-intensity-model/internal/adapter/sqlite"
	"github.com/couchcryptid/quake-intensity-model/internal/config"
	"github.com/couchcryptid/quake-intensity-model/internal/model"
	"github.com/couchcryptid/quake-intensity-model/internal/observability"
	"github.com/couchcryptid/quake-intensity-model/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("training run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	if cfg.MetricsTextfile != "" {
		// Written even when training fails so the failure counter is exported.
		defer func() {
			if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, reg); err != nil {
				logger.Error("metrics textfile write failed", "path", cfg.MetricsTextfile, "error", err)
			}
		}()
	}

	raw, err := csvtable.ReadFile(cfg.DataPath)
	if err != nil {
		return err
	}
	logger.Info("loaded table", "path", cfg.DataPath, "rows", raw.Nrow(), "columns", raw.Ncol())

	forest := model.ForestConfig{
		NumTrees:        cfg.NumTrees,
		MaxDepth:        cfg.MaxDepth,
		MinSamplesSplit: cfg.MinSamplesSplit,
		MinSamplesLeaf:  cfg.MinSamplesLeaf,
		MaxFeatures:     cfg.MaxFeatures,
		Bootstrap:       true,
		Seed:            cfg.RandomSeed,
		Workers:         cfg.Workers,
	}
	pre := pipeline.NewPreprocessor(cfg.TestSize, cfg.RandomSeed, logger, metrics)
	trainer := pipeline.NewTrainer(pre, forest, os.Stdout, logger, metrics)

	res, err := trainer.Run(ctx, raw)
	if err != nil {
		return err
	}

	if cfg.ModelPath != "" {
		if err := saveModel(cfg.ModelPath, res.Pipeline); err != nil {
			return err
		}
		logger.Info("saved model", "path", cfg.ModelPath)
	}

	if cfg.RunsDBPath != "" {
		store, err := sqlite.NewRunStore(cfg.RunsDBPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		if err := store.Add(ctx, res.Run); err != nil {
			return err
		}
		logger.Info("recorded run", "run_id", res.Run.ID, "db", cfg.RunsDBPath)
	}
	return nil
}

func saveModel(path string, p *model.Pipeline) error {
	f, err := os.Create(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return err
	}
	if err := model.Save(f, p); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
