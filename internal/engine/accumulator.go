package engine

import "github.com/gradplan/planner-backend/internal/model"

// Bucket is one of the four semester credit totals.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketMajorRequirement
	BucketMajorElective
	BucketGeneral
	BucketGeneralElective
)

func (b Bucket) String() string {
	switch b {
	case BucketMajorRequirement:
		return "major_requirement"
	case BucketMajorElective:
		return "major_elective"
	case BucketGeneral:
		return "general"
	case BucketGeneralElective:
		return "general_elective"
	default:
		return "none"
	}
}

// BucketOf routes an enrollment to a semester bucket. LectureType already
// mirrors LectureType1, so only the second slot is checked separately.
func BucketOf(sl *model.SemesterLecture) Bucket {
	switch {
	case sl.LectureType == model.LectureTypeMajorRequirement || sl.LectureType2 == model.LectureTypeMajorRequirement:
		return BucketMajorRequirement
	case sl.LectureType == model.LectureTypeMajorElective || sl.LectureType == model.LectureTypeTeaching:
		return BucketMajorElective
	case sl.LectureType == model.LectureTypeGeneral:
		return BucketGeneral
	case sl.LectureType == model.LectureTypeGeneralElective:
		return BucketGeneralElective
	default:
		return BucketNone
	}
}

// AddCredits folds the enrollment's credit into the semester.
func AddCredits(sl *model.SemesterLecture, sem *model.Semester) {
	applyCredit(sem, BucketOf(sl), sl.Credit)
}

// SubCredits removes the enrollment's credit from the semester.
func SubCredits(sl *model.SemesterLecture, sem *model.Semester) {
	applyCredit(sem, BucketOf(sl), -sl.Credit)
}

func applyCredit(sem *model.Semester, b Bucket, credit int) {
	switch b {
	case BucketMajorRequirement:
		sem.MajorRequirementCredit += credit
	case BucketMajorElective:
		sem.MajorElectiveCredit += credit
	case BucketGeneral:
		sem.GeneralCredit += credit
	case BucketGeneralElective:
		sem.GeneralElectiveCredit += credit
	}
}

// RecomputeTotals rebuilds the semester totals from its enrollments.
func RecomputeTotals(sem *model.Semester, lectures []*model.SemesterLecture) {
	sem.MajorRequirementCredit = 0
	sem.MajorElectiveCredit = 0
	sem.GeneralCredit = 0
	sem.GeneralElectiveCredit = 0
	for _, sl := range lectures {
		AddCredits(sl, sem)
	}
}
