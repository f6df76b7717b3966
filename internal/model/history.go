package model

import "time"

// LectureTypeChangeHistory counts how often a lecture's type changed for a
// major within an entrance-year cohort.
type LectureTypeChangeHistory struct {
	ID              int         `json:"id"`
	MajorID         int         `json:"major_id"`
	LectureID       int         `json:"lecture_id"`
	EntranceYear    int         `json:"entrance_year"`
	PastLectureType LectureType `json:"past_lecture_type"`
	CurrLectureType LectureType `json:"curr_lecture_type"`
	ChangeCount     int         `json:"change_count"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// CreditChangeHistory counts credit changes of a lecture taken in YearTaken.
type CreditChangeHistory struct {
	ID           int       `json:"id"`
	MajorID      int       `json:"major_id"`
	LectureID    int       `json:"lecture_id"`
	EntranceYear int       `json:"entrance_year"`
	YearTaken    int       `json:"year_taken"`
	PastCredit   int       `json:"past_credit"`
	CurrCredit   int       `json:"curr_credit"`
	ChangeCount  int       `json:"change_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RequirementChangeHistory counts required-credit edits of a requirement.
type RequirementChangeHistory struct {
	ID                 int       `json:"id"`
	RequirementID      int       `json:"requirement_id"`
	EntranceYear       int       `json:"entrance_year"`
	PastRequiredCredit int       `json:"past_required_credit"`
	CurrRequiredCredit int       `json:"curr_required_credit"`
	ChangeCount        int       `json:"change_count"`
	UpdatedAt          time.Time `json:"updated_at"`
}
