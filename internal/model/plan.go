package model

import "time"

// Plan is a student's multi-semester course plan.
// EntranceYear is the owner's entrance year, joined when the plan is loaded.
type Plan struct {
	ID                int       `json:"id"`
	UserID            int       `json:"user_id"`
	PlanName          string    `json:"plan_name"`
	IsFirstSimulation bool      `json:"is_first_simulation"`
	EntranceYear      int       `json:"entrance_year"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PlanMajor attaches a major to a plan.
type PlanMajor struct {
	PlanID  int `json:"plan_id"`
	MajorID int `json:"major_id"`
}

// PlanDetail is the plan together with its recalculated semesters.
type PlanDetail struct {
	Plan      *Plan            `json:"plan"`
	Majors    []Major          `json:"majors"`
	Semesters []SemesterDetail `json:"semesters"`
}

// SemesterDetail is a semester with its enrollments.
type SemesterDetail struct {
	Semester *Semester          `json:"semester"`
	Lectures []*SemesterLecture `json:"semester_lectures"`
}

// CopyPlanRequest is the payload for duplicating a plan.
type CopyPlanRequest struct {
	PlanName string `json:"plan_name" binding:"required,min=1,max=100"`
}
