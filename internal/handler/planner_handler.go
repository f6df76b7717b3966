package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gradplan/planner-backend/internal/middleware"
	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/response"
	"github.com/gradplan/planner-backend/internal/service"
	"github.com/gradplan/planner-backend/internal/validator"
)

// PlannerHandler handles lecture classification endpoints.
type PlannerHandler struct {
	plannerService *service.PlannerService
}

// NewPlannerHandler creates a new PlannerHandler.
func NewPlannerHandler(plannerService *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{plannerService: plannerService}
}

// RecalculateLectureInfo godoc
// PUT /api/v1/plans/:plan_id/lectures/recalculate?semester_id=
// Reclassifies every automatic enrollment of the plan, or of one semester.
func (h *PlannerHandler) RecalculateLectureInfo(c *gin.Context) {
	planID, ok := paramID(c, "plan_id")
	if !ok {
		return
	}

	var semesterID *int
	if raw := c.Query("semester_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"semester_id": "semester_id must be a positive integer"})
			return
		}
		semesterID = &id
	}

	detail, err := h.plannerService.RecalculateLectureInfo(c.Request.Context(), middleware.GetUserID(c), planID, semesterID)
	if err != nil {
		failFromError(c, err, response.ErrForbidden)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plan": detail})
}

// AddSemesterLecture godoc
// POST /api/v1/semesters/:semester_id/lectures
func (h *PlannerHandler) AddSemesterLecture(c *gin.Context) {
	semesterID, ok := paramID(c, "semester_id")
	if !ok {
		return
	}

	var req model.AddSemesterLectureRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sl, err := h.plannerService.AddSemesterLecture(c.Request.Context(), middleware.GetUserID(c), semesterID, req.LectureID)
	if err != nil {
		failFromError(c, err, response.ErrForbidden)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"semester_lecture": sl})
}

// OverrideSemesterLecture godoc
// PUT /api/v1/semester-lectures/:id
// Applies a manual classification that automatic recalculation keeps.
func (h *PlannerHandler) OverrideSemesterLecture(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.OverrideSemesterLectureRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sl, err := h.plannerService.OverrideSemesterLecture(c.Request.Context(), middleware.GetUserID(c), id, req)
	if err != nil {
		failFromError(c, err, response.ErrForbidden)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"semester_lecture": sl})
}

// ResetSemesterLecture godoc
// POST /api/v1/semester-lectures/:id/reset
func (h *PlannerHandler) ResetSemesterLecture(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	sl, err := h.plannerService.ResetSemesterLecture(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		failFromError(c, err, response.ErrForbidden)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"semester_lecture": sl})
}

// RemoveSemesterLecture godoc
// DELETE /api/v1/semester-lectures/:id
func (h *PlannerHandler) RemoveSemesterLecture(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.plannerService.RemoveSemesterLecture(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		failFromError(c, err, response.ErrForbidden)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "semester lecture removed"})
}
