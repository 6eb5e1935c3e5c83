// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/smartpromo/backend-go/internal/api/handlers"
	"github.com/smartpromo/backend-go/internal/api/middleware"
	"github.com/smartpromo/backend-go/internal/service"
)

func NewRouter(promoService *service.PromoService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	promoHandler := handlers.NewPromoHandler(promoService)
	modelHandler := handlers.NewModelHandler(promoService)

	apiGroup.GET("/categories", promoHandler.GetCategories)

	promoGroup := apiGroup.Group("/promotions")
	{
		promoGroup.POST("/generate", promoHandler.GeneratePromotions)
		promoGroup.POST("/save", promoHandler.SavePromotions)
		promoGroup.GET("/history", promoHandler.GetHistory)
	}

	modelGroup := apiGroup.Group("/model")
	{
		modelGroup.GET("/status", modelHandler.GetStatus)
		modelGroup.POST("/retrain", modelHandler.Retrain)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
