package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/response"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/services"
)

type TrainingHandler struct {
	log             *logger.Logger
	trainingService services.TrainingService
}

func NewTrainingHandler(log *logger.Logger, svc services.TrainingService) *TrainingHandler {
	return &TrainingHandler{
		log:             log.With("handler", "TrainingHandler"),
		trainingService: svc,
	}
}

// TrainRoute dispatches POST /v1/scenarios/:scenario_id/train/:data_id.
// The static "training_data" sub-path shares the segment with the data id
// because gin's tree cannot mix static and param siblings.
func (h *TrainingHandler) TrainRoute(c *gin.Context) {
	if c.Param("data_id") == "training_data" {
		h.UploadTrainingData(c)
		return
	}
	h.StartTraining(c)
}

// POST /v1/scenarios/:scenario_id/train/training_data
// Multipart CSV upload.
func (h *TrainingHandler) UploadTrainingData(c *gin.Context) {
	scenarioID, ok := parseIDParam(c, "scenario_id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", apperr.MissingField("file"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	defer file.Close()

	record, err := h.trainingService.UploadTrainingData(c.Request.Context(), scenarioID, fileHeader.Filename, file)
	if err != nil {
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			response.RespondError(c, http.StatusBadRequest, "validation_error", err)
			return
		}
		status, code := apperr.HTTPStatus(err)
		response.RespondError(c, status, code, err)
		return
	}

	response.RespondOK(c, gin.H{
		"message":  "File uploaded successfully",
		"file_id":  record.TrainingDataID,
		"file_url": record.URL,
	})
}

// POST /v1/scenarios/:scenario_id/train/:data_id
func (h *TrainingHandler) StartTraining(c *gin.Context) {
	scenarioID, ok := parseIDParam(c, "scenario_id")
	if !ok {
		return
	}
	dataID, ok := parseIDParam(c, "data_id")
	if !ok {
		return
	}

	run, err := h.trainingService.StartTraining(c.Request.Context(), scenarioID, dataID)
	if err != nil {
		status, code := apperr.HTTPStatus(err)
		response.RespondError(c, status, code, err)
		return
	}
	response.RespondOK(c, run)
}
