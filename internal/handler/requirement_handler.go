package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradplan/planner-backend/internal/middleware"
	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/response"
	"github.com/gradplan/planner-backend/internal/service"
	"github.com/gradplan/planner-backend/internal/validator"
)

// RequirementHandler handles graduation requirement endpoints.
type RequirementHandler struct {
	requirementService *service.RequirementService
}

// NewRequirementHandler creates a new RequirementHandler.
func NewRequirementHandler(requirementService *service.RequirementService) *RequirementHandler {
	return &RequirementHandler{requirementService: requirementService}
}

// CheckRequirements godoc
// GET /api/v1/plans/:plan_id/requirements
func (h *RequirementHandler) CheckRequirements(c *gin.Context) {
	planID, ok := paramID(c, "plan_id")
	if !ok {
		return
	}

	check, err := h.requirementService.CheckRequirements(c.Request.Context(), middleware.GetUserID(c), planID)
	if err != nil {
		failFromError(c, err, response.ErrPermissionDenied)
		return
	}
	response.Success(c, http.StatusOK, check)
}

// CalculateProgress godoc
// GET /api/v1/plans/:plan_id/requirements/progress
// Stores the earned credits of the plan as a side effect.
func (h *RequirementHandler) CalculateProgress(c *gin.Context) {
	planID, ok := paramID(c, "plan_id")
	if !ok {
		return
	}

	progress, err := h.requirementService.CalculateRequirementProgress(c.Request.Context(), middleware.GetUserID(c), planID)
	if err != nil {
		failFromError(c, err, response.ErrPermissionDenied)
		return
	}
	response.Success(c, http.StatusOK, progress)
}

// UpdateRequirements godoc
// PUT /api/v1/plans/:plan_id/requirements
func (h *RequirementHandler) UpdateRequirements(c *gin.Context) {
	planID, ok := paramID(c, "plan_id")
	if !ok {
		return
	}

	var req model.UpdateRequirementRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.requirementService.UpdateRequirementCredits(c.Request.Context(), middleware.GetUserID(c), planID, req)
	if err != nil {
		failFromError(c, err, response.ErrForbidden)
		return
	}
	response.Success(c, http.StatusOK, result)
}
