package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gradplan/planner-backend/internal/repository"
)

// Domain errors returned by the planner services.
var (
	ErrPlanNotFound            = errors.New("plan not found")
	ErrNotOwner                = errors.New("plan belongs to another user")
	ErrMajorNotFound           = errors.New("major not found")
	ErrMajorNotOnPlan          = errors.New("major is not attached to the plan")
	ErrDuplicateMajor          = errors.New("major already attached to the plan")
	ErrSemesterNotFound        = errors.New("semester not found")
	ErrSemesterLectureNotFound = errors.New("semester lecture not found")
	ErrLectureNotFound         = errors.New("lecture not found")
)

// FieldError reports request fields that failed a domain check.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

// DuplicationError lists majors that are already attached to a plan.
type DuplicationError struct {
	Majors []string
}

func (e *DuplicationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateMajor, strings.Join(e.Majors, ", "))
}

func (e *DuplicationError) Unwrap() error {
	return ErrDuplicateMajor
}

// mapNotFound turns a storage not-found into the given domain error.
func mapNotFound(err, domain error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain
	}
	return err
}
