package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/quake-intensity-model/internal/domain"
	"github.com/couchcryptid/quake-intensity-model/internal/evaluation"
	"github.com/couchcryptid/quake-intensity-model/internal/frame"
	"github.com/couchcryptid/quake-intensity-model/internal/model"
	"github.com/couchcryptid/quake-intensity-model/internal/observability"
)

// Result is a fitted pipeline together with the split it was trained on and
// the run record describing it.
type Result struct {
	Pipeline *model.Pipeline
	Split    Split
	Run      domain.TrainingRun
}

// Trainer preprocesses a raw table, fits the scale-then-forest pipeline and
// reports its balanced accuracy on both sides of the split.
type Trainer struct {
	pre     *Preprocessor
	forest  model.ForestConfig
	out     io.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTrainer creates a Trainer. Score lines are written to out. A zero forest
// seed reuses the split seed so one seed reproduces the whole run.
func NewTrainer(pre *Preprocessor, forest model.ForestConfig, out io.Writer, logger *slog.Logger, metrics *observability.Metrics) *Trainer {
	return &Trainer{
		pre:     pre,
		forest:  forest,
		out:     out,
		logger:  logger,
		metrics: metrics,
	}
}

// Train fits a pipeline on raw with default settings and prints both scores to stdout.
func Train(ctx context.Context, raw dataframe.DataFrame) (*model.Pipeline, error) {
	logger := slog.Default()
	metrics := observability.NewMetrics(nil)
	pre := NewPreprocessor(DefaultTestSize, 0, logger, metrics)
	return NewTrainer(pre, model.DefaultForestConfig(), os.Stdout, logger, metrics).Train(ctx, raw)
}

// Train fits a pipeline on raw and returns it once both scores are printed.
func (t *Trainer) Train(ctx context.Context, raw dataframe.DataFrame) (*model.Pipeline, error) {
	res, err := t.Run(ctx, raw)
	if err != nil {
		return nil, err
	}
	return res.Pipeline, nil
}

// Run is Train with the full bookkeeping of the run.
func (t *Trainer) Run(ctx context.Context, raw dataframe.DataFrame) (Result, error) {
	t.metrics.TrainingRuns.Inc()
	res, err := t.run(ctx, raw)
	if err != nil {
		t.metrics.TrainingFailures.Inc()
		t.logger.Error("training failed", "error", err)
		return Result{}, err
	}

	t.metrics.BalancedAccuracy.WithLabelValues("train").Set(res.Run.TrainAccuracy)
	t.metrics.BalancedAccuracy.WithLabelValues("test").Set(res.Run.TestAccuracy)
	t.metrics.LastSuccess.Set(float64(res.Run.FinishedAt.Unix()))
	t.logger.Info("training complete",
		"run_id", res.Run.ID,
		"train_balanced_accuracy", res.Run.TrainAccuracy,
		"test_balanced_accuracy", res.Run.TestAccuracy,
		"duration", res.Run.Duration(),
	)
	return res, nil
}

func (t *Trainer) run(ctx context.Context, raw dataframe.DataFrame) (Result, error) {
	run := domain.NewTrainingRun(clock.Now())

	split, err := t.pre.Preprocess(raw)
	if err != nil {
		return Result{}, err
	}
	xTrain, err := frame.ToMatrix(split.XTrain, split.Features)
	if err != nil {
		return Result{}, fmt.Errorf("train: %w", err)
	}
	xTest, err := frame.ToMatrix(split.XTest, split.Features)
	if err != nil {
		return Result{}, fmt.Errorf("train: %w", err)
	}

	cfg := t.forest
	if cfg.Seed == 0 {
		cfg.Seed = split.Seed
	}
	start := clock.Now()
	p, err := model.Fit(ctx, xTrain, split.YTrain, split.Features, cfg)
	t.metrics.FitDuration.Observe(clock.Since(start).Seconds())
	if err != nil {
		return Result{}, fmt.Errorf("train: %w", err)
	}

	trainScore, err := t.score(ctx, p, xTrain, split.YTrain, "train")
	if err != nil {
		return Result{}, err
	}
	testScore, err := t.score(ctx, p, xTest, split.YTest, "test")
	if err != nil {
		return Result{}, err
	}

	if _, err := fmt.Fprintf(t.out, "Balanced Train Accuracy Score: %.3f.\n", trainScore); err != nil {
		return Result{}, fmt.Errorf("train: write score: %w", err)
	}
	if _, err := fmt.Fprintf(t.out, "Balanced Test Accuracy Score: %.3f.\n", testScore); err != nil {
		return Result{}, fmt.Errorf("train: write score: %w", err)
	}

	run.Seed = split.Seed
	run.TestSize = t.pre.testSize
	run.NumTrees = cfg.NumTrees
	run.MaxDepth = cfg.MaxDepth
	run.MaxFeatures = p.Forest.MaxFeatures
	run.RowsRead = split.RowsRead
	run.RowsClean = split.RowsClean
	run.TrainRows = len(split.YTrain)
	run.TestRows = len(split.YTest)
	run.Features = split.Features
	run.TrainAccuracy = trainScore
	run.TestAccuracy = testScore
	run.Finish(clock.Now())

	return Result{
		Pipeline: p,
		Split:    split,
		Run:      run,
	}, nil
}

// score computes the balanced accuracy of p on one side of the split. The
// per-class breakdown is only computed when debug logging is on.
func (t *Trainer) score(ctx context.Context, p *model.Pipeline, x *mat.Dense, y []int, subset string) (float64, error) {
	score, err := evaluation.CalcAccuracy(x, y, p)
	if err != nil {
		return 0, fmt.Errorf("train: %s: %w", subset, err)
	}
	if !t.logger.Enabled(ctx, slog.LevelDebug) {
		return score, nil
	}

	pred, err := p.Predict(x)
	if err != nil {
		return 0, fmt.Errorf("train: %s: %w", subset, err)
	}
	recalls, err := evaluation.Recalls(y, pred)
	if err != nil {
		return 0, fmt.Errorf("train: %s: %w", subset, err)
	}
	labels := evaluation.Labels(y, pred)
	t.logger.Debug("class breakdown",
		"subset", subset,
		"labels", labels,
		"recalls", recalls,
		"confusion", fmt.Sprintf("%v", mat.Formatted(evaluation.ConfusionMatrix(y, pred, labels), mat.Squeeze())),
	)
	return score, nil
}
