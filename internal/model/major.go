package model

import (
	"sort"
	"time"
)

// MajorType enumerates how a student is enrolled in a major.
type MajorType string

const (
	MajorTypeMajor                            MajorType = "major"
	MajorTypeDoubleMajor                      MajorType = "double_major"
	MajorTypeMinor                            MajorType = "minor"
	MajorTypeInterdisciplinaryMajor           MajorType = "interdisciplinary_major"
	MajorTypeInterdisciplinary                MajorType = "interdisciplinary"
	MajorTypeSingleMajor                      MajorType = "single_major"
	MajorTypeInterdisciplinaryMajorForTeacher MajorType = "interdisciplinary_major_for_teacher"
	MajorTypeStudentDirectedMajor             MajorType = "student_directed_major"
	MajorTypeInterdisciplinaryProgram         MajorType = "interdisciplinary_program"
	MajorTypeGraduateMajor                    MajorType = "graduate_major"
)

// MajorTypes lists every accepted major type.
var MajorTypes = []MajorType{
	MajorTypeMajor,
	MajorTypeDoubleMajor,
	MajorTypeMinor,
	MajorTypeInterdisciplinaryMajor,
	MajorTypeInterdisciplinary,
	MajorTypeSingleMajor,
	MajorTypeInterdisciplinaryMajorForTeacher,
	MajorTypeStudentDirectedMajor,
	MajorTypeInterdisciplinaryProgram,
	MajorTypeGraduateMajor,
}

// MajorTypePriority orders major types for recognition. Lower wins.
// Types absent from the table rank at MajorTypeFallbackPriority.
var MajorTypePriority = map[MajorType]int{
	MajorTypeSingleMajor:                      0,
	MajorTypeMajor:                            1,
	MajorTypeGraduateMajor:                    2,
	MajorTypeInterdisciplinaryMajor:           3,
	MajorTypeInterdisciplinaryMajorForTeacher: 4,
	MajorTypeDoubleMajor:                      5,
	MajorTypeInterdisciplinary:                6,
	MajorTypeMinor:                            7,
	MajorTypeInterdisciplinaryProgram:         8,
}

// MajorTypeFallbackPriority is the catch-all rank for unlisted types.
const MajorTypeFallbackPriority = 9

// Priority returns the recognition rank of the major type.
func (t MajorType) Priority() int {
	if p, ok := MajorTypePriority[t]; ok {
		return p
	}
	return MajorTypeFallbackPriority
}

// Valid reports whether t is one of the known major types.
func (t MajorType) Valid() bool {
	for _, mt := range MajorTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// Major represents a field of study a student can declare.
type Major struct {
	ID        int       `json:"id"`
	Name      string    `json:"major_name"`
	Type      MajorType `json:"major_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SortMajorsByPriority orders majors by type priority, then by ID.
func SortMajorsByPriority(majors []Major) {
	sort.SliceStable(majors, func(i, j int) bool {
		pi, pj := majors[i].Type.Priority(), majors[j].Type.Priority()
		if pi != pj {
			return pi < pj
		}
		return majors[i].ID < majors[j].ID
	})
}

// MajorRef identifies a major by its natural key.
type MajorRef struct {
	Name string    `json:"major_name" binding:"required,min=1,max=100"`
	Type MajorType `json:"major_type" binding:"required,majortype"`
}

// PlanMajorsRequest is the payload for attaching or replacing plan majors.
type PlanMajorsRequest struct {
	Majors []MajorRef `json:"majors" binding:"required,min=1,dive"`
}
