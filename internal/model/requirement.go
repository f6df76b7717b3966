package model

// RequirementType enumerates the graduation requirement categories.
type RequirementType string

const (
	RequirementTypeMajorRequirement RequirementType = "major_requirement"
	RequirementTypeMajorAll         RequirementType = "major_all"
	RequirementTypeGeneral          RequirementType = "general"
	RequirementTypeGeneralElective  RequirementType = "general_elective"
	RequirementTypeTeaching         RequirementType = "teaching"
	RequirementTypeAll              RequirementType = "all"
	RequirementTypeNone             RequirementType = "none"
)

// Requirement is a graduation requirement of a major for a range of entrance years.
type Requirement struct {
	ID              int             `json:"id"`
	MajorID         int             `json:"major_id"`
	RequirementType RequirementType `json:"requirement_type"`
	StartYear       int             `json:"start_year"`
	EndYear         int             `json:"end_year"`
	RequiredCredit  int             `json:"required_credit"`
	Description     string          `json:"description"`
}

// ValidAt reports whether year falls inside [StartYear, EndYear].
func (r Requirement) ValidAt(year int) bool {
	return r.StartYear <= year && year <= r.EndYear
}

// PlanRequirement materializes a Requirement for one plan. MajorID,
// RequirementType and DefaultCredit are read from the joined Requirement.
type PlanRequirement struct {
	ID              int             `json:"id"`
	PlanID          int             `json:"plan_id"`
	RequirementID   int             `json:"requirement_id"`
	RequiredCredit  int             `json:"required_credit"`
	EarnedCredit    int             `json:"earned_credit"`
	AutoCalculate   bool            `json:"auto_calculate"`
	MajorID         int             `json:"major_id"`
	RequirementType RequirementType `json:"requirement_type"`
	DefaultCredit   int             `json:"default_credit"`
}

// RequirementCheck is the configured credit targets of a plan.
type RequirementCheck struct {
	Majors            []MajorRequirementCheck `json:"majors"`
	All               int                     `json:"all"`
	General           int                     `json:"general"`
	IsFirstSimulation bool                    `json:"is_first_simulation"`
}

// MajorRequirementCheck holds one major's credit targets.
type MajorRequirementCheck struct {
	MajorName                     string    `json:"major_name"`
	MajorType                     MajorType `json:"major_type"`
	MajorAll                      int       `json:"major_all"`
	MajorAllAutoCalculate         bool      `json:"major_all_auto_calculate"`
	MajorRequirement              int       `json:"major_requirement"`
	MajorRequirementAutoCalculate bool      `json:"major_requirement_auto_calculate"`
}

// ProgressItem compares earned against required credit.
type ProgressItem struct {
	RequiredCredit int     `json:"required_credit"`
	EarnedCredit   int     `json:"earned_credit"`
	Progress       float64 `json:"progress"`
}

// AllProgress holds the plan-wide progress entries.
type AllProgress struct {
	All     ProgressItem `json:"all"`
	General ProgressItem `json:"general"`
}

// MajorProgress holds one major's progress entries.
type MajorProgress struct {
	MajorName        string       `json:"major_name"`
	MajorType        MajorType    `json:"major_type"`
	MajorAll         ProgressItem `json:"major_all"`
	MajorRequirement ProgressItem `json:"major_requirement"`
}

// RequirementProgress is the result of a progress calculation.
type RequirementProgress struct {
	AllProgress   AllProgress     `json:"all_progress"`
	MajorProgress []MajorProgress `json:"major_progress"`
}

// MajorCreditEdit changes the credit targets of one plan major.
// MajorName and MajorType are checked by the service so a missing pair is
// reported as a field error.
type MajorCreditEdit struct {
	MajorName              string    `json:"major_name"`
	MajorType              MajorType `json:"major_type"`
	MajorAllCredit         *int      `json:"major_all_credit,omitempty" binding:"omitempty,min=0,max=300"`
	MajorRequirementCredit *int      `json:"major_requirement_credit,omitempty" binding:"omitempty,min=0,max=300"`
	AutoCalculate          *bool     `json:"auto_calculate,omitempty"`
}

// UpdateRequirementRequest is the payload for editing a plan's credit targets.
type UpdateRequirementRequest struct {
	Majors        []MajorCreditEdit `json:"majors" binding:"omitempty,dive"`
	AllCredit     *int              `json:"all,omitempty" binding:"omitempty,min=0,max=300"`
	GeneralCredit *int              `json:"general,omitempty" binding:"omitempty,min=0,max=300"`
}

// RequirementUpdateResult echoes the values that were applied.
type RequirementUpdateResult struct {
	Majors        []MajorCreditEdit `json:"majors"`
	AllCredit     *int              `json:"all,omitempty"`
	GeneralCredit *int              `json:"general,omitempty"`
}
