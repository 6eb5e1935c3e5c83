package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/smartpromo/backend-go/internal/config"
	"github.com/smartpromo/backend-go/internal/promo"
	"github.com/smartpromo/backend-go/internal/promo/impact"
	"github.com/smartpromo/backend-go/internal/promo/model"
	"github.com/smartpromo/backend-go/internal/promo/scoring"
	"github.com/smartpromo/backend-go/internal/repository/postgres"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "promoctl",
		Usage: "Train the promotion model and run category analyses from the command line",
		Commands: []*cli.Command{
			{
				Name:  "train",
				Usage: "Train the promotion effectiveness model and persist the winner",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.BoolFlag{
						Name:  "synthetic",
						Usage: "Train on a generated dataset instead of promotion history",
					},
				},
				Action: runTrain,
			},
			{
				Name:  "analyze",
				Usage: "Analyze one category and print the recommendations as JSON",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.Int64Flag{
						Name:     "category",
						Usage:    "Category ID to analyze",
						Required: true,
					},
				},
				Action: runAnalyze,
			},
			{
				Name:   "status",
				Usage:  "Print the persisted model state summary",
				Action: runStatus,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runTrain(c *cli.Context) error {
	cfg := config.Load()

	var rows model.RowSource
	if !c.Bool("synthetic") {
		db, err := postgres.NewDBFromURL("pgx", c.String("db-url"))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		rows = postgres.NewTrainingRepository(db)
	}

	trainer := model.NewTrainer(model.Config{
		SyntheticRows:   cfg.Model.SyntheticRows,
		MinTrainingRows: cfg.Model.MinTrainingRows,
		Seed:            cfg.Model.Seed,
		TestFraction:    0.2,
	})

	trainingRows, source := trainer.LoadRows(c.Context, rows, c.Bool("synthetic"))
	state, err := trainer.Train(c.Context, trainingRows, source)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	store := model.NewFileStore(cfg.Model.Dir)
	if err := store.Save(c.Context, state); err != nil {
		return fmt.Errorf("failed to persist model: %w", err)
	}

	log.Printf("Trained %s (R²=%.4f) on %s data, saved to %s",
		state.Winner, state.Metrics[state.Winner].R2, state.DataSource, cfg.Model.Dir)
	return nil
}

func runAnalyze(c *cli.Context) error {
	cfg := config.Load()

	db, err := postgres.NewDBFromURL("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

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

	analyzer := promo.NewAnalyzer(
		postgres.NewArticleRepository(db),
		postgres.NewHistoryRepository(db),
		scorer,
		projector,
		promo.Config{
			SalesLookbackDays:     cfg.Promo.SalesLookbackDays,
			PromotionLookbackDays: cfg.Promo.PromotionLookbackDays,
		},
	)

	// A missing trained model just means classic scoring
	state, err := model.NewFileStore(cfg.Model.Dir).Load(c.Context)
	if err != nil {
		log.Printf("warning: could not load trained model: %v", err)
		state = nil
	}

	recs, err := analyzer.AnalyzeCategory(c.Context, c.Int64("category"), state)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(recs)
}

func runStatus(c *cli.Context) error {
	cfg := config.Load()

	state, err := model.NewFileStore(cfg.Model.Dir).Load(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load model state: %w", err)
	}
	if state == nil {
		fmt.Println("No trained model found; classic scoring is active.")
		return nil
	}

	fmt.Printf("Winner:      %s\n", state.Winner)
	fmt.Printf("Data source: %s\n", state.DataSource)
	fmt.Printf("Trained at:  %s\n", state.TrainedAt.Format("2006-01-02 15:04:05 MST"))
	for name, m := range state.Metrics {
		fmt.Printf("  %-20s R²=%.4f RMSE=%.4f MAE=%.4f\n", name, m.R2, m.RMSE, m.MAE)
	}
	return nil
}
