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

type PlanMajorHandler struct {
	planMajorService *service.PlanMajorService
}

func NewPlanMajorHandler(planMajorService *service.PlanMajorService) *PlanMajorHandler {
	return &PlanMajorHandler{planMajorService: planMajorService}
}

func (h *PlanMajorHandler) AddMajors(c *gin.Context) {
	planID, ok := paramID(c, "plan_id")
	if !ok {
		return
	}

	var req model.PlanMajorsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	detail, err := h.planMajorService.AddPlanMajors(c.Request.Context(), middleware.GetUserID(c), planID, req.Majors)
	if err != nil {
		failFromError(c, err, response.ErrForbidden)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"plan": detail})
}

func (h *PlanMajorHandler) ReplaceMajors(c *gin.Context) {
	planID, ok := paramID(c, "plan_id")
	if !ok {
		return
	}

	var req model.PlanMajorsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	detail, err := h.planMajorService.ReplacePlanMajors(c.Request.Context(), middleware.GetUserID(c), planID, req.Majors)
	if err != nil {
		failFromError(c, err, response.ErrForbidden)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plan": detail})
}

func (h *PlanMajorHandler) CopyPlan(c *gin.Context) {
	planID, ok := paramID(c, "plan_id")
	if !ok {
		return
	}

	var req model.CopyPlanRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	plan, err := h.planMajorService.CopyPlan(c.Request.Context(), middleware.GetUserID(c), planID, req.PlanName)
	if err != nil {
		failFromError(c, err, response.ErrForbidden)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"plan": plan})
}
