package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/response"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/services"
)

type ScenarioHandler struct {
	log             *logger.Logger
	scenarioService services.ScenarioService
}

func NewScenarioHandler(log *logger.Logger, svc services.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{
		log:             log.With("handler", "ScenarioHandler"),
		scenarioService: svc,
	}
}

// GET /v1/scenarios
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	scenarios, err := h.scenarioService.ListScenarios(c.Request.Context())
	if err != nil {
		status, code := apperr.HTTPStatus(err)
		response.RespondError(c, status, code, err)
		return
	}
	response.RespondOK(c, scenarios)
}

// GET /v1/scenarios/:scenario_id/models
func (h *ScenarioHandler) ListScenarioModels(c *gin.Context) {
	scenarioID, ok := parseIDParam(c, "scenario_id")
	if !ok {
		return
	}
	links, err := h.scenarioService.ListScenarioModels(c.Request.Context(), scenarioID)
	if err != nil {
		status, code := apperr.HTTPStatus(err)
		response.RespondError(c, status, code, err)
		return
	}
	response.RespondOK(c, links)
}

// parseIDParam reads a uuid path parameter; a malformed id is treated as a
// resource that cannot exist.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "not_found", apperr.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
