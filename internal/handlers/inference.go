package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/response"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/services"
)

type InferenceHandler struct {
	log              *logger.Logger
	inferenceService services.InferenceService
}

func NewInferenceHandler(log *logger.Logger, svc services.InferenceService) *InferenceHandler {
	return &InferenceHandler{
		log:              log.With("handler", "InferenceHandler"),
		inferenceService: svc,
	}
}

type predictionRequest struct {
	Applicant map[string]any `json:"applicant" binding:"required"`
}

type predictionResponse struct {
	PredictionID string    `json:"prediction_id"`
	Result       bool      `json:"result"`
	Confidence   float64   `json:"confidence"`
	Timestamp    time.Time `json:"timestamp"`
}

// POST /v1/scenarios/:scenario_id/predict
func (h *InferenceHandler) Predict(c *gin.Context) {
	scenarioID, ok := parseIDParam(c, "scenario_id")
	if !ok {
		return
	}

	var req predictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, "validation_error", err)
		return
	}

	prediction, err := h.inferenceService.Predict(c.Request.Context(), scenarioID, req.Applicant)
	if err != nil {
		status, code := apperr.HTTPStatus(err)
		response.RespondError(c, status, code, err)
		return
	}

	response.RespondOK(c, predictionResponse{
		PredictionID: prediction.PredictionID.String(),
		Result:       prediction.Result,
		Confidence:   prediction.Confidence,
		Timestamp:    time.Now().UTC(),
	})
}
