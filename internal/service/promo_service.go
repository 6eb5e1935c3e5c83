package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smartpromo/backend-go/internal/cache"
	"github.com/smartpromo/backend-go/internal/domain"
	"github.com/smartpromo/backend-go/internal/promo"
	"github.com/smartpromo/backend-go/internal/promo/model"
	"github.com/smartpromo/backend-go/internal/storage"
)

// CategorySource lists the categories available for analysis
type CategorySource interface {
	Categories(ctx context.Context) ([]domain.Category, error)
}

// RecommendationStore persists accepted recommendations and serves history
type RecommendationStore interface {
	Save(ctx context.Context, recs []domain.PromotionRecommendation) error
	History(ctx context.Context, categoryID int64, limit int) ([]domain.PromotionRecommendation, error)
}

// ModelStatus reports the currently loaded model for the status endpoint
type ModelStatus struct {
	Trained    bool                     `json:"trained"`
	Winner     string                   `json:"winner,omitempty"`
	Metrics    map[string]model.Metrics `json:"metrics,omitempty"`
	DataSource model.DataSource         `json:"data_source,omitempty"`
	TrainedAt  *time.Time               `json:"trained_at,omitempty"`
}

// PromoService coordinates analysis, training and persistence. The trained
// model state is swapped atomically under a lock; analyses in flight keep the
// state they started with.
type PromoService struct {
	analyzer        *promo.Analyzer
	trainer         *model.Trainer
	rows            model.RowSource
	modelStore      model.Store
	categories      CategorySource
	recommendations RecommendationStore
	analysisCache   cache.AnalysisCache
	artifacts       storage.ObjectStorage // nil disables mirroring
	artifactPrefix  string

	mu    sync.RWMutex
	state *model.TrainedModelState
}

func NewPromoService(
	analyzer *promo.Analyzer,
	trainer *model.Trainer,
	rows model.RowSource,
	modelStore model.Store,
	categories CategorySource,
	recommendations RecommendationStore,
	analysisCache cache.AnalysisCache,
	artifacts storage.ObjectStorage,
	artifactPrefix string,
) *PromoService {
	return &PromoService{
		analyzer:        analyzer,
		trainer:         trainer,
		rows:            rows,
		modelStore:      modelStore,
		categories:      categories,
		recommendations: recommendations,
		analysisCache:   analysisCache,
		artifacts:       artifacts,
		artifactPrefix:  artifactPrefix,
	}
}

// LoadModel restores the persisted model state, if any. Missing state is not
// an error; the service falls back to classic scoring.
func (s *PromoService) LoadModel(ctx context.Context) error {
	state, err := s.modelStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("load model state: %w", err)
	}
	if state == nil {
		log.Info().Msg("no trained model found, classic scoring active")
		return nil
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	log.Info().Str("winner", state.Winner).Time("trained_at", state.TrainedAt).
		Msg("trained model loaded")
	return nil
}

// CurrentState returns the active model state, or nil when only classic
// scoring is available.
func (s *PromoService) CurrentState() *model.TrainedModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Retrain runs the full training pipeline and swaps in the new state. Cached
// analyses are invalidated so the next request reflects the new model.
func (s *PromoService) Retrain(ctx context.Context, forceSynthetic bool) (*model.TrainedModelState, error) {
	rows, source := s.trainer.LoadRows(ctx, s.rows, forceSynthetic)

	state, err := s.trainer.Train(ctx, rows, source)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	if err := s.modelStore.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("persist model state: %w", err)
	}

	if s.artifacts != nil {
		if err := s.mirrorArtifact(ctx, state); err != nil {
			// Mirroring is best effort; the local store is authoritative
			log.Warn().Err(err).Msg("model artifact mirror upload failed")
		}
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	if err := s.analysisCache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("analysis cache invalidation failed after retrain")
	}

	return state, nil
}

func (s *PromoService) mirrorArtifact(ctx context.Context, state *model.TrainedModelState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode model artifact: %w", err)
	}
	key := path.Join(s.artifactPrefix, fmt.Sprintf("%s.json", state.Fingerprint()))
	return s.artifacts.UploadObject(ctx, key, payload)
}

// GenerateForCategory returns the full analysis for one category, served
// from cache when a fresh entry exists for the active model.
func (s *PromoService) GenerateForCategory(ctx context.Context, categoryID int64) (*domain.CategoryAnalysis, error) {
	state := s.CurrentState()
	fingerprint := state.Fingerprint()

	if analysis, hit, err := s.analysisCache.Get(ctx, categoryID, fingerprint); err != nil {
		log.Warn().Err(err).Int64("category_id", categoryID).Msg("analysis cache read failed")
	} else if hit {
		return analysis, nil
	}

	recs, err := s.analyzer.AnalyzeCategory(ctx, categoryID, state)
	if err != nil {
		return nil, fmt.Errorf("analyze category %d: %w", categoryID, err)
	}

	analysis := &domain.CategoryAnalysis{
		CategoryID:  categoryID,
		Promotions:  recs,
		Statistics:  domain.ComputeStatistics(recs),
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.analysisCache.Set(ctx, categoryID, fingerprint, analysis); err != nil {
		log.Warn().Err(err).Int64("category_id", categoryID).Msg("analysis cache write failed")
	}

	return analysis, nil
}

// ModelStatus reports whether a trained model is active and its metrics
func (s *PromoService) ModelStatus() ModelStatus {
	state := s.CurrentState()
	if state == nil {
		return ModelStatus{Trained: false}
	}
	trainedAt := state.TrainedAt
	return ModelStatus{
		Trained:    true,
		Winner:     state.Winner,
		Metrics:    state.Metrics,
		DataSource: state.DataSource,
		TrainedAt:  &trainedAt,
	}
}

func (s *PromoService) SaveRecommendations(ctx context.Context, recs []domain.PromotionRecommendation) error {
	return s.recommendations.Save(ctx, recs)
}

func (s *PromoService) RecommendationHistory(ctx context.Context, categoryID int64, limit int) ([]domain.PromotionRecommendation, error) {
	return s.recommendations.History(ctx, categoryID, limit)
}

func (s *PromoService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.Categories(ctx)
}
