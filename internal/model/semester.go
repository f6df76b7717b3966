package model

import "time"

// SemesterType enumerates the terms of an academic year.
type SemesterType string

const (
	SemesterTypeFirst  SemesterType = "first"
	SemesterTypeSecond SemesterType = "second"
	SemesterTypeSummer SemesterType = "summer"
	SemesterTypeWinter SemesterType = "winter"
)

// Valid reports whether t is one of the known terms.
func (t SemesterType) Valid() bool {
	switch t {
	case SemesterTypeFirst, SemesterTypeSecond, SemesterTypeSummer, SemesterTypeWinter:
		return true
	}
	return false
}

// Semester is one term of a plan with running credit totals per bucket.
type Semester struct {
	ID                     int          `json:"id"`
	PlanID                 int          `json:"plan_id"`
	Year                   int          `json:"year"`
	SemesterType           SemesterType `json:"semester_type"`
	MajorRequirementCredit int          `json:"major_requirement_credit"`
	MajorElectiveCredit    int          `json:"major_elective_credit"`
	GeneralCredit          int          `json:"general_credit"`
	GeneralElectiveCredit  int          `json:"general_elective_credit"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at"`
}

// TotalCredit sums the four buckets.
func (s Semester) TotalCredit() int {
	return s.MajorRequirementCredit + s.MajorElectiveCredit + s.GeneralCredit + s.GeneralElectiveCredit
}

// SemesterLecture is a lecture enrolled in a semester together with its
// recognized majors. IsModified marks a manual override that automatic
// reclassification must leave alone.
type SemesterLecture struct {
	ID               int         `json:"id"`
	SemesterID       int         `json:"semester_id"`
	LectureID        int         `json:"lecture_id"`
	LectureType      LectureType `json:"lecture_type"`
	RecognizedMajor1 int         `json:"recognized_major1"`
	LectureType1     LectureType `json:"lecture_type1"`
	RecognizedMajor2 int         `json:"recognized_major2"`
	LectureType2     LectureType `json:"lecture_type2"`
	Credit           int         `json:"credit"`
	RecentSequence   int         `json:"recent_sequence"`
	IsModified       bool        `json:"is_modified"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// AddSemesterLectureRequest is the payload for enrolling a lecture in a semester.
type AddSemesterLectureRequest struct {
	LectureID int `json:"lecture_id" binding:"required,min=1"`
}

// OverrideSemesterLectureRequest is the payload for a manual classification edit.
type OverrideSemesterLectureRequest struct {
	LectureType      LectureType `json:"lecture_type" binding:"required,lecturetype"`
	RecognizedMajor1 *MajorRef   `json:"recognized_major1" binding:"omitempty"`
	RecognizedMajor2 *MajorRef   `json:"recognized_major2" binding:"omitempty"`
	LectureType2     LectureType `json:"lecture_type2" binding:"omitempty,lecturetype"`
	Credit           *int        `json:"credit" binding:"omitempty,min=0,max=30"`
}
