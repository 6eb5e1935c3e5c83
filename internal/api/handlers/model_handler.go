package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/smartpromo/backend-go/internal/service"
)

type ModelHandler struct {
	service *service.PromoService
}

func NewModelHandler(service *service.PromoService) *ModelHandler {
	return &ModelHandler{service: service}
}

type retrainRequest struct {
	UseSyntheticData bool `json:"use_synthetic_data"`
}

// GetStatus reports whether a trained model is active and its metrics
func (h *ModelHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ModelStatus())
}

// Retrain runs the training pipeline and activates the new model
func (h *ModelHandler) Retrain(c *gin.Context) {
	var req retrainRequest
	// Empty body means default options
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	state, err := h.service.Retrain(c.Request.Context(), req.UseSyntheticData)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "retraining failed: "+err.Error())
		return
	}

	log.Info().Str("winner", state.Winner).Msg("model retrained via API")
	c.JSON(http.StatusOK, gin.H{
		"winner":      state.Winner,
		"metrics":     state.Metrics,
		"data_source": state.DataSource,
		"trained_at":  state.TrainedAt,
	})
}
