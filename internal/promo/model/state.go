package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Candidate regressor names, also used as metric keys
const (
	NameLinearRegression = "linear_regression"
	NameRandomForest     = "random_forest"
	NameGradientBoosting = "gradient_boosting"
)

// Metrics holds the held-out evaluation figures for one candidate
type Metrics struct {
	R2   float64 `json:"r2"`
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// TrainedModelState is the immutable artifact of a training run: the winning
// regressor with its companion scaler, plus evaluation metrics for every
// candidate. Prediction functions take it as a parameter; it is never
// mutated after training.
type TrainedModelState struct {
	Winner     string             `json:"winner"`
	Linear     *LinearModel       `json:"linear,omitempty"`
	Forest     *ForestModel       `json:"forest,omitempty"`
	Boosting   *BoostingModel     `json:"boosting,omitempty"`
	Scaler     *StandardScaler    `json:"scaler"`
	Metrics    map[string]Metrics `json:"metrics"`
	DataSource DataSource         `json:"data_source"`
	TrainedAt  time.Time          `json:"trained_at"`
}

// Fingerprint identifies a model state for cache keying
func (s *TrainedModelState) Fingerprint() string {
	if s == nil {
		return "classic"
	}
	return fmt.Sprintf("%s-%d", s.Winner, s.TrainedAt.Unix())
}

// needsScaling reports whether the winning regressor expects standardized
// features.
func (s *TrainedModelState) needsScaling() bool {
	return s.Winner == NameLinearRegression
}

// PredictEffectiveness runs the winning regressor over the feature vector,
// scaling first when the winner requires it.
func (s *TrainedModelState) PredictEffectiveness(f Features) (float64, error) {
	if s == nil {
		return 0, errors.New("no trained model state")
	}

	v := f.Vector()
	if s.needsScaling() {
		if s.Scaler == nil {
			return 0, errors.New("winner requires scaling but no scaler is stored")
		}
		v = s.Scaler.Transform(v)
	}

	switch s.Winner {
	case NameLinearRegression:
		if s.Linear == nil {
			return 0, errors.New("winner is linear_regression but no linear model is stored")
		}
		return s.Linear.predict(v)
	case NameRandomForest:
		if s.Forest == nil {
			return 0, errors.New("winner is random_forest but no forest model is stored")
		}
		return s.Forest.predict(v)
	case NameGradientBoosting:
		if s.Boosting == nil {
			return 0, errors.New("winner is gradient_boosting but no boosting model is stored")
		}
		return s.Boosting.predict(v)
	default:
		return 0, fmt.Errorf("unknown winning model %q", s.Winner)
	}
}

// PromotionPercentage maps a predicted effectiveness to a promotion
// percentage within [minPct, maxPct]. Negative effectiveness (predicted
// underperformance) pushes the percentage up; positive effectiveness pulls
// it down.
func (s *TrainedModelState) PromotionPercentage(f Features, minPct, maxPct float64) (float64, error) {
	effectiveness, err := s.PredictEffectiveness(f)
	if err != nil {
		return 0, err
	}

	var pct float64
	if effectiveness < 0 {
		pct = math.Min(maxPct, math.Abs(effectiveness)*0.5+minPct)
	} else {
		pct = math.Max(minPct, maxPct-effectiveness*0.3)
	}
	return pct, nil
}
