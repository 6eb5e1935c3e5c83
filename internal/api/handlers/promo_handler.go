package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smartpromo/backend-go/internal/domain"
	"github.com/smartpromo/backend-go/internal/service"
)

type PromoHandler struct {
	service *service.PromoService
}

func NewPromoHandler(service *service.PromoService) *PromoHandler {
	return &PromoHandler{service: service}
}

type generateRequest struct {
	CategoryID int64 `json:"category_id" binding:"required"`
}

type saveRequest struct {
	Promotions []domain.PromotionRecommendation `json:"promotions" binding:"required"`
}

// GetCategories lists the categories available for analysis
func (h *PromoHandler) GetCategories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list categories: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GeneratePromotions runs the analysis pipeline over one category
func (h *PromoHandler) GeneratePromotions(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	analysis, err := h.service.GenerateForCategory(c.Request.Context(), req.CategoryID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to generate promotions: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// SavePromotions persists a batch of accepted recommendations
func (h *PromoHandler) SavePromotions(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if len(req.Promotions) == 0 {
		errorResponse(c, http.StatusBadRequest, "no promotions to save")
		return
	}

	if err := h.service.SaveRecommendations(c.Request.Context(), req.Promotions); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to save promotions: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": len(req.Promotions)})
}

// GetHistory lists previously saved recommendations, newest first
func (h *PromoHandler) GetHistory(c *gin.Context) {
	var categoryID int64
	if raw := c.Query("category_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			errorResponse(c, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = parsed
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			errorResponse(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	recs, err := h.service.RecommendationHistory(c.Request.Context(), categoryID, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load history: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"promotions": recs, "count": len(recs)})
}
