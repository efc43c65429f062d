package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/response"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/services"
)

type ModelHandler struct {
	log               *logger.Logger
	modelService      services.ModelService
	activationService services.ActivationService
}

func NewModelHandler(log *logger.Logger, msvc services.ModelService, asvc services.ActivationService) *ModelHandler {
	return &ModelHandler{
		log:               log.With("handler", "ModelHandler"),
		modelService:      msvc,
		activationService: asvc,
	}
}

// ModelsRoute dispatches POST /v1/scenarios/:scenario_id/models/:model_id.
// The static sub-paths "model" (upload) and "reconcile" share the segment
// with the model id because gin's tree cannot mix static and param siblings.
func (h *ModelHandler) ModelsRoute(c *gin.Context) {
	switch c.Param("model_id") {
	case "model":
		h.UploadModel(c)
	case "reconcile":
		h.ReconcileScenario(c)
	default:
		response.RespondError(c, http.StatusNotFound, "not_found", apperr.ErrNotFound)
	}
}

// POST /v1/scenarios/:scenario_id/models/model
// Multipart model upload: file + model_name + performance_metrics JSON +
// optional version. Bad uploads are 400s, not 422s.
func (h *ModelHandler) UploadModel(c *gin.Context) {
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

	upload := services.ModelUpload{
		Filename:    fileHeader.Filename,
		File:        file,
		Name:        c.PostForm("model_name"),
		MetricsJSON: []byte(c.PostForm("performance_metrics")),
	}
	if raw := c.PostForm("version"); raw != "" {
		version, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "validation_error", apperr.Validation("version", "must be a number"))
			return
		}
		upload.Version = &version
	}

	model, err := h.modelService.UploadModel(c.Request.Context(), scenarioID, upload)
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
	response.RespondCreated(c, model)
}

// POST /v1/scenarios/:scenario_id/models/:model_id/activate
func (h *ModelHandler) ActivateModel(c *gin.Context) {
	scenarioID, ok := parseIDParam(c, "scenario_id")
	if !ok {
		return
	}
	modelID, ok := parseIDParam(c, "model_id")
	if !ok {
		return
	}

	if err := h.activationService.Activate(c.Request.Context(), scenarioID, modelID); err != nil {
		status, code := apperr.HTTPStatus(err)
		var ae *services.ActivationError
		if errors.As(err, &ae) {
			response.RespondErrorDetail(c, status, code, err, ae.StoreState())
			return
		}
		response.RespondError(c, status, code, err)
		return
	}

	response.RespondOK(c, gin.H{
		"status":             "activated",
		"activated_model_id": modelID,
		"timestamp":          time.Now().UTC(),
	})
}

// POST /v1/scenarios/:scenario_id/models/reconcile
// Repairs a scenario that lost its active link.
func (h *ModelHandler) ReconcileScenario(c *gin.Context) {
	scenarioID, ok := parseIDParam(c, "scenario_id")
	if !ok {
		return
	}

	modelID, err := h.activationService.Reconcile(c.Request.Context(), scenarioID)
	if err != nil {
		status, code := apperr.HTTPStatus(err)
		response.RespondError(c, status, code, err)
		return
	}
	response.RespondOK(c, gin.H{
		"status":          "reconciled",
		"active_model_id": modelID,
	})
}
