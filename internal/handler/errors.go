package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gradplan/planner-backend/internal/response"
	"github.com/gradplan/planner-backend/internal/service"
)

// failFromError writes the envelope matching a service error. denied is
// the code sent to a caller who does not own the plan: PERMISSION_DENIED
// on reads, FORBIDDEN on writes.
func failFromError(c *gin.Context, err error, denied response.ErrCode) {
	var fieldErr *service.FieldError
	var dupErr *service.DuplicationError

	switch {
	case errors.As(err, &fieldErr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fieldErr.Fields)
	case errors.As(err, &dupErr):
		response.FailWithMajors(c, http.StatusConflict, response.ErrDuplicateMajor, dupErr.Majors)
	case errors.Is(err, service.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, denied)
	case errors.Is(err, service.ErrPlanNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrPlanNotFound)
	case errors.Is(err, service.ErrMajorNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrMajorNotFound)
	case errors.Is(err, service.ErrMajorNotOnPlan):
		response.Fail(c, http.StatusNotFound, response.ErrMajorNotOnPlan)
	case errors.Is(err, service.ErrSemesterNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSemesterNotFound)
	case errors.Is(err, service.ErrLectureNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrLectureNotFound)
	case errors.Is(err, service.ErrSemesterLectureNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
