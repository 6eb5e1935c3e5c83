// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartpromo/backend-go/internal/api"
	"github.com/smartpromo/backend-go/internal/cache"
	"github.com/smartpromo/backend-go/internal/config"
	"github.com/smartpromo/backend-go/internal/promo"
	"github.com/smartpromo/backend-go/internal/promo/impact"
	"github.com/smartpromo/backend-go/internal/promo/model"
	"github.com/smartpromo/backend-go/internal/promo/scoring"
	"github.com/smartpromo/backend-go/internal/repository/postgres"
	"github.com/smartpromo/backend-go/internal/service"
	"github.com/smartpromo/backend-go/internal/storage"
	"github.com/smartpromo/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	promoService, err := buildPromoService(cfg, db)
	if err != nil {
		log.Fatalf("Failed to build promotion service: %v", err)
	}

	if err := promoService.LoadModel(context.Background()); err != nil {
		logger.Log.Warn().Err(err).Msg("Could not load trained model, classic scoring active")
	}

	// Initialize HTTP server
	router := api.NewRouter(promoService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func buildPromoService(cfg *config.Config, db *postgres.DB) (*service.PromoService, error) {
	articleRepo := postgres.NewArticleRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	trainingRepo := postgres.NewTrainingRepository(db)
	recommendationRepo := postgres.NewRecommendationRepository(db)

	scorer := scoring.NewCalculator(scoring.Config{
		Weights: scoring.Weights{
			Stock:            cfg.Promo.StockWeight,
			Elasticity:       cfg.Promo.ElasticityWeight,
			SalesTrend:       cfg.Promo.SalesWeight,
			PromotionHistory: cfg.Promo.PromotionWeight,
		},
		MinPromotion:        cfg.Promo.MinPromotion,
		MaxPromotion:        cfg.Promo.MaxPromotion,
		StockExcess:         cfg.Promo.StockExcess,
		RecentPromotionDays: cfg.Promo.RecentPromotionDays,
	})

	projector := impact.NewProjector(impact.Config{
		HorizonDays:      cfg.Promo.ImpactHorizonDays,
		ElasticityFactor: cfg.Promo.ImpactElasticity,
		StockCritical:    cfg.Promo.StockCritical,
		StockExcess:      cfg.Promo.StockExcess,
	})

	analyzer := promo.NewAnalyzer(articleRepo, historyRepo, scorer, projector, promo.Config{
		SalesLookbackDays:     cfg.Promo.SalesLookbackDays,
		PromotionLookbackDays: cfg.Promo.PromotionLookbackDays,
	})

	trainer := model.NewTrainer(model.Config{
		SyntheticRows:   cfg.Model.SyntheticRows,
		MinTrainingRows: cfg.Model.MinTrainingRows,
		Seed:            cfg.Model.Seed,
		TestFraction:    0.2,
	})

	analysisCache, err := cache.NewAnalysisCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without caching")
		analysisCache = cache.NewNoopAnalysisCache()
	}

	var artifacts storage.ObjectStorage
	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage unavailable, model artifacts stay local only")
		} else {
			artifacts = client
		}
	}

	return service.NewPromoService(
		analyzer,
		trainer,
		trainingRepo,
		model.NewFileStore(cfg.Model.Dir),
		articleRepo,
		recommendationRepo,
		analysisCache,
		artifacts,
		cfg.Storage.Prefix,
	), nil
}
