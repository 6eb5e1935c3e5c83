package model

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config holds the training tunables
type Config struct {
	SyntheticRows   int
	MinTrainingRows int
	Seed            int64
	TestFraction    float64
}

func DefaultConfig() Config {
	return Config{
		SyntheticRows:   200,
		MinTrainingRows: 50,
		Seed:            42,
		TestFraction:    0.2,
	}
}

// RowSource supplies real training rows extracted from promotion history
type RowSource interface {
	TrainingRows(ctx context.Context) ([]TrainingRow, error)
}

// Trainer fits the three candidate regressors and selects the best by R².
type Trainer struct {
	cfg Config
}

func NewTrainer(cfg Config) *Trainer {
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}
	return &Trainer{cfg: cfg}
}

// LoadRows obtains training rows, substituting a synthetic dataset when the
// source is unavailable, yields too few rows, or synthetic data is
// explicitly requested. Insufficient real data is a notice, not an error.
func (t *Trainer) LoadRows(ctx context.Context, source RowSource, forceSynthetic bool) ([]TrainingRow, DataSource) {
	if forceSynthetic || source == nil {
		return GenerateSyntheticRows(t.cfg.SyntheticRows, t.cfg.Seed), SourceSynthetic
	}

	rows, err := source.TrainingRows(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("training data extraction failed, generating synthetic dataset")
		return GenerateSyntheticRows(t.cfg.SyntheticRows, t.cfg.Seed), SourceSynthetic
	}
	if len(rows) < t.cfg.MinTrainingRows {
		log.Info().Int("rows", len(rows)).Int("min", t.cfg.MinTrainingRows).
			Msg("insufficient real training rows, generating synthetic dataset")
		return GenerateSyntheticRows(t.cfg.SyntheticRows, t.cfg.Seed), SourceSynthetic
	}
	return rows, SourceReal
}

// Train fits all three candidates concurrently on an 80/20 split and returns
// the state holding the best-R² winner plus every candidate's metrics.
// Training succeeds iff at least one candidate fits without error.
func (t *Trainer) Train(ctx context.Context, rows []TrainingRow, source DataSource) (*TrainedModelState, error) {
	if len(rows) == 0 {
		return nil, errors.New("no training rows")
	}

	ds := BuildDataset(rows, source)
	train, test := ds.split(t.cfg.TestFraction, t.cfg.Seed)
	if len(train.X) == 0 || len(test.X) == 0 {
		return nil, errors.New("dataset too small to split")
	}

	scaler := fitScaler(train.X)
	scaledTrainX := scaler.transformAll(train.X)
	scaledTestX := scaler.transformAll(test.X)

	linear := &LinearModel{}
	forest := newForestModel(t.cfg.Seed)
	boosting := newBoostingModel()

	type result struct {
		name    string
		metrics Metrics
		err     error
	}
	results := make(map[string]result, 3)
	var mu sync.Mutex

	record := func(name string, m Metrics, err error) {
		mu.Lock()
		results[name] = result{name: name, metrics: m, err: err}
		mu.Unlock()
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := linear.fit(scaledTrainX, train.Y)
		if err == nil {
			m, evalErr := evaluate(func(v []float64) (float64, error) { return linear.predict(v) }, scaledTestX, test.Y)
			record(NameLinearRegression, m, evalErr)
		} else {
			record(NameLinearRegression, Metrics{}, err)
		}
		return nil
	})
	g.Go(func() error {
		err := forest.fit(train.X, train.Y)
		if err == nil {
			m, evalErr := evaluate(forest.predict, test.X, test.Y)
			record(NameRandomForest, m, evalErr)
		} else {
			record(NameRandomForest, Metrics{}, err)
		}
		return nil
	})
	g.Go(func() error {
		err := boosting.fit(train.X, train.Y)
		if err == nil {
			m, evalErr := evaluate(boosting.predict, test.X, test.Y)
			record(NameGradientBoosting, m, evalErr)
		} else {
			record(NameGradientBoosting, Metrics{}, err)
		}
		return nil
	})
	// Candidate failures are recorded, not propagated
	_ = g.Wait()

	state := &TrainedModelState{
		Scaler:     scaler,
		Metrics:    map[string]Metrics{},
		DataSource: source,
		TrainedAt:  time.Now().UTC(),
	}

	bestR2 := math.Inf(-1)
	for name, res := range results {
		if res.err != nil {
			log.Warn().Err(res.err).Str("model", name).Msg("candidate training failed")
			continue
		}
		state.Metrics[name] = res.metrics
		log.Info().Str("model", name).
			Float64("r2", res.metrics.R2).
			Float64("rmse", res.metrics.RMSE).
			Msg("candidate trained")
		if res.metrics.R2 > bestR2 {
			bestR2 = res.metrics.R2
			state.Winner = name
		}
	}

	if state.Winner == "" {
		return nil, errors.New("all candidate regressors failed to train")
	}

	// Only the winner's parameters are persisted
	switch state.Winner {
	case NameLinearRegression:
		state.Linear = linear
	case NameRandomForest:
		state.Forest = forest
	case NameGradientBoosting:
		state.Boosting = boosting
	}

	log.Info().Str("winner", state.Winner).Float64("r2", bestR2).
		Str("data_source", string(source)).Msg("training complete")
	return state, nil
}

func evaluate(predict func([]float64) (float64, error), x [][]float64, y []float64) (Metrics, error) {
	if len(x) == 0 {
		return Metrics{}, errors.New("empty evaluation set")
	}

	var sse, sae float64
	preds := make([]float64, len(x))
	for i := range x {
		p, err := predict(x[i])
		if err != nil {
			return Metrics{}, err
		}
		preds[i] = p
		diff := p - y[i]
		sse += diff * diff
		sae += math.Abs(diff)
	}

	n := float64(len(y))
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= n

	var tss float64
	for _, v := range y {
		d := v - mean
		tss += d * d
	}

	mse := sse / n
	r2 := 0.0
	if tss > 0 {
		r2 = 1 - sse/tss
	}

	return Metrics{
		R2:   r2,
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAE:  sae / n,
	}, nil
}
