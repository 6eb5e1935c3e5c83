// internal/config/config.go
package config

import (
	"log"
	"math"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Promo    PromoConfig
	Model    ModelConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	AnalysisTTLSeconds int
}

// PromoConfig holds every weight, threshold and lookback window used by the
// scoring and impact pipeline. Weights must sum to 1.0.
type PromoConfig struct {
	StockWeight      float64
	ElasticityWeight float64
	SalesWeight      float64
	PromotionWeight  float64

	MinPromotion float64 // percent
	MaxPromotion float64 // percent

	StockCritical int // units
	StockExcess   int // units

	SalesLookbackDays     int
	PromotionLookbackDays int
	RecentPromotionDays   int

	ImpactElasticity  float64 // demand uplift per unit of discount depth
	ImpactHorizonDays int
}

type ModelConfig struct {
	Dir             string
	SyntheticRows   int
	MinTrainingRows int
	Seed            int64
}

// StorageConfig configures the optional S3-compatible mirror for trained
// model artifacts.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "smartpromo")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_ANALYSIS_TTL_SECONDS", 300)

		viper.SetDefault("PROMO_STOCK_WEIGHT", 0.35)
		viper.SetDefault("PROMO_ELASTICITY_WEIGHT", 0.25)
		viper.SetDefault("PROMO_SALES_WEIGHT", 0.25)
		viper.SetDefault("PROMO_PROMOTION_WEIGHT", 0.15)
		viper.SetDefault("PROMO_MIN_PERCENTAGE", 5.0)
		viper.SetDefault("PROMO_MAX_PERCENTAGE", 50.0)
		viper.SetDefault("PROMO_STOCK_CRITICAL", 10)
		viper.SetDefault("PROMO_STOCK_EXCESS", 100)
		viper.SetDefault("PROMO_SALES_LOOKBACK_DAYS", 90)
		viper.SetDefault("PROMO_PROMOTION_LOOKBACK_DAYS", 180)
		viper.SetDefault("PROMO_RECENT_PROMOTION_DAYS", 60)
		viper.SetDefault("PROMO_IMPACT_ELASTICITY", 2.0)
		viper.SetDefault("PROMO_IMPACT_HORIZON_DAYS", 30)

		viper.SetDefault("MODEL_DIR", "./trained_models")
		viper.SetDefault("MODEL_SYNTHETIC_ROWS", 200)
		viper.SetDefault("MODEL_MIN_TRAINING_ROWS", 50)
		viper.SetDefault("MODEL_SEED", 42)

		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_PREFIX", "models")

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("MODEL_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				AnalysisTTLSeconds: viper.GetInt("CACHE_ANALYSIS_TTL_SECONDS"),
			},
			Promo: PromoConfig{
				StockWeight:           viper.GetFloat64("PROMO_STOCK_WEIGHT"),
				ElasticityWeight:      viper.GetFloat64("PROMO_ELASTICITY_WEIGHT"),
				SalesWeight:           viper.GetFloat64("PROMO_SALES_WEIGHT"),
				PromotionWeight:       viper.GetFloat64("PROMO_PROMOTION_WEIGHT"),
				MinPromotion:          viper.GetFloat64("PROMO_MIN_PERCENTAGE"),
				MaxPromotion:          viper.GetFloat64("PROMO_MAX_PERCENTAGE"),
				StockCritical:         viper.GetInt("PROMO_STOCK_CRITICAL"),
				StockExcess:           viper.GetInt("PROMO_STOCK_EXCESS"),
				SalesLookbackDays:     viper.GetInt("PROMO_SALES_LOOKBACK_DAYS"),
				PromotionLookbackDays: viper.GetInt("PROMO_PROMOTION_LOOKBACK_DAYS"),
				RecentPromotionDays:   viper.GetInt("PROMO_RECENT_PROMOTION_DAYS"),
				ImpactElasticity:      viper.GetFloat64("PROMO_IMPACT_ELASTICITY"),
				ImpactHorizonDays:     viper.GetInt("PROMO_IMPACT_HORIZON_DAYS"),
			},
			Model: ModelConfig{
				Dir:             viper.GetString("MODEL_DIR"),
				SyntheticRows:   viper.GetInt("MODEL_SYNTHETIC_ROWS"),
				MinTrainingRows: viper.GetInt("MODEL_MIN_TRAINING_ROWS"),
				Seed:            viper.GetInt64("MODEL_SEED"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
				Prefix:    viper.GetString("STORAGE_PREFIX"),
			},
		}

		validatePromoConfig(&instance.Promo)
	})

	return instance
}

func validatePromoConfig(cfg *PromoConfig) {
	sum := cfg.StockWeight + cfg.ElasticityWeight + cfg.SalesWeight + cfg.PromotionWeight
	if math.Abs(sum-1.0) > 1e-9 {
		log.Fatalf("promo score weights must sum to 1.0, got %.4f", sum)
	}
	if cfg.MinPromotion < 0 || cfg.MaxPromotion <= cfg.MinPromotion {
		log.Fatalf("invalid promotion bounds: min=%.1f max=%.1f", cfg.MinPromotion, cfg.MaxPromotion)
	}
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
