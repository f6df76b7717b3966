package model

// LectureType is the classification of an enrolled lecture.
type LectureType string

const (
	LectureTypeMajorRequirement LectureType = "major_requirement"
	LectureTypeMajorElective    LectureType = "major_elective"
	LectureTypeGeneral          LectureType = "general"
	LectureTypeGeneralElective  LectureType = "general_elective"
	LectureTypeTeaching         LectureType = "teaching"
	LectureTypeNone             LectureType = "none"
)

// LectureTypes lists every accepted lecture type.
var LectureTypes = []LectureType{
	LectureTypeMajorRequirement,
	LectureTypeMajorElective,
	LectureTypeGeneral,
	LectureTypeGeneralElective,
	LectureTypeTeaching,
	LectureTypeNone,
}

// Valid reports whether t is one of the known lecture types.
func (t LectureType) Valid() bool {
	for _, lt := range LectureTypes {
		if lt == t {
			return true
		}
	}
	return false
}

// IsMajorType reports whether the type is attributed to a major.
func (t LectureType) IsMajorType() bool {
	return t == LectureTypeMajorRequirement || t == LectureTypeMajorElective || t == LectureTypeTeaching
}

// Lecture is a course in the reference catalog.
type Lecture struct {
	ID             int         `json:"id"`
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	Department     string      `json:"department"`
	LectureType    LectureType `json:"lecture_type"`
	Credit         int         `json:"credit"`
	RecentOpenYear int         `json:"recent_open_year"`
}

// MajorLecture links a lecture to a major for a closed range of entrance years.
type MajorLecture struct {
	ID          int         `json:"id"`
	MajorID     int         `json:"major_id"`
	LectureID   int         `json:"lecture_id"`
	StartYear   int         `json:"start_year"`
	EndYear     int         `json:"end_year"`
	LectureType LectureType `json:"lecture_type"`
	IsRequired  bool        `json:"is_required"`
}

// ValidAt reports whether year falls inside [StartYear, EndYear].
func (ml MajorLecture) ValidAt(year int) bool {
	return ml.StartYear <= year && year <= ml.EndYear
}

// LectureCredit overrides a lecture's credit for a range of years.
type LectureCredit struct {
	ID        int `json:"id"`
	LectureID int `json:"lecture_id"`
	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`
	Credit    int `json:"credit"`
}

// ValidAt reports whether year falls inside [StartYear, EndYear].
func (lc LectureCredit) ValidAt(year int) bool {
	return lc.StartYear <= year && year <= lc.EndYear
}
