package engine

import (
	"math"

	"github.com/gradplan/planner-backend/internal/model"
)

// Tally is earned credit per requirement bucket, collected in one walk over
// a plan's enrollments.
type Tally struct {
	All              int
	General          int
	GeneralElective  int
	MajorAll         map[int]int
	MajorRequirement map[int]int
	Teaching         map[int]int
}

// TallyLectures buckets the earned credit of lectures. An enrollment
// recognized by two majors counts toward both.
func TallyLectures(lectures []*model.SemesterLecture, noneMajorID int) Tally {
	t := Tally{
		MajorAll:         make(map[int]int),
		MajorRequirement: make(map[int]int),
		Teaching:         make(map[int]int),
	}

	for _, sl := range lectures {
		if sl.LectureType == model.LectureTypeNone {
			continue
		}
		t.All += sl.Credit

		switch sl.LectureType {
		case model.LectureTypeGeneral:
			t.General += sl.Credit
		case model.LectureTypeGeneralElective:
			t.GeneralElective += sl.Credit
		}

		t.addMajorSlot(sl.RecognizedMajor1, sl.LectureType1, sl.Credit, noneMajorID)
		if sl.RecognizedMajor2 != sl.RecognizedMajor1 {
			t.addMajorSlot(sl.RecognizedMajor2, sl.LectureType2, sl.Credit, noneMajorID)
		}
	}
	return t
}

func (t *Tally) addMajorSlot(majorID int, lt model.LectureType, credit, noneMajorID int) {
	if majorID == noneMajorID || !lt.IsMajorType() {
		return
	}
	t.MajorAll[majorID] += credit
	switch lt {
	case model.LectureTypeMajorRequirement:
		t.MajorRequirement[majorID] += credit
	case model.LectureTypeTeaching:
		t.Teaching[majorID] += credit
	}
}

// EarnedFor returns the earned credit that counts toward pr.
func (t Tally) EarnedFor(pr model.PlanRequirement) int {
	switch pr.RequirementType {
	case model.RequirementTypeAll:
		return t.All
	case model.RequirementTypeGeneral:
		return t.General
	case model.RequirementTypeGeneralElective:
		return t.GeneralElective
	case model.RequirementTypeMajorAll:
		return t.MajorAll[pr.MajorID]
	case model.RequirementTypeMajorRequirement:
		return t.MajorRequirement[pr.MajorID]
	case model.RequirementTypeTeaching:
		return t.Teaching[pr.MajorID]
	default:
		return 0
	}
}

// Ratio is earned/required rounded to two decimals and clamped to [0, 1].
// A zero requirement is trivially satisfied.
func Ratio(earned, required int) float64 {
	if required <= 0 {
		return 1
	}
	r := math.Round(float64(earned)/float64(required)*100) / 100
	switch {
	case r > 1:
		return 1
	case r < 0:
		return 0
	}
	return r
}

// Item builds a progress entry.
func Item(earned, required int) model.ProgressItem {
	return model.ProgressItem{
		RequiredCredit: required,
		EarnedCredit:   earned,
		Progress:       Ratio(earned, required),
	}
}

// MaxRequired is the largest required credit among rows of type rt.
// Several historical requirements can apply; the strictest wins.
func MaxRequired(rows []model.PlanRequirement, rt model.RequirementType) int {
	best := 0
	for _, r := range rows {
		if r.RequirementType == rt && r.RequiredCredit > best {
			best = r.RequiredCredit
		}
	}
	return best
}
