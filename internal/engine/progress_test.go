package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gradplan/planner-backend/internal/model"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name     string
		earned   int
		required int
		want     float64
	}{
		{name: "zero required", earned: 0, required: 0, want: 1},
		{name: "negative required", earned: 3, required: -1, want: 1},
		{name: "half", earned: 65, required: 130, want: 0.5},
		{name: "rounded", earned: 1, required: 3, want: 0.33},
		{name: "rounded up", earned: 2, required: 3, want: 0.67},
		{name: "clamped high", earned: 140, required: 130, want: 1},
		{name: "clamped low", earned: -5, required: 10, want: 0},
		{name: "nothing earned", earned: 0, required: 42, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.earned, tt.required), 1e-9)
		})
	}
}

func TestTallyLectures(t *testing.T) {
	lectures := []*model.SemesterLecture{
		{LectureType: model.LectureTypeMajorRequirement, Credit: 3,
			RecognizedMajor1: computer.ID, LectureType1: model.LectureTypeMajorRequirement,
			RecognizedMajor2: business.ID, LectureType2: model.LectureTypeMajorElective},
		{LectureType: model.LectureTypeTeaching, Credit: 2,
			RecognizedMajor1: business.ID, LectureType1: model.LectureTypeTeaching,
			RecognizedMajor2: noneMajor, LectureType2: model.LectureTypeNone},
		{LectureType: model.LectureTypeGeneral, Credit: 2,
			RecognizedMajor1: noneMajor, LectureType1: model.LectureTypeGeneral,
			RecognizedMajor2: noneMajor, LectureType2: model.LectureTypeNone},
		{LectureType: model.LectureTypeGeneralElective, Credit: 1,
			RecognizedMajor1: noneMajor, LectureType1: model.LectureTypeGeneralElective,
			RecognizedMajor2: noneMajor, LectureType2: model.LectureTypeNone},
		{LectureType: model.LectureTypeNone, Credit: 5,
			RecognizedMajor1: noneMajor, LectureType1: model.LectureTypeNone,
			RecognizedMajor2: noneMajor, LectureType2: model.LectureTypeNone},
	}

	tally := TallyLectures(lectures, noneMajor)

	assert.Equal(t, 8, tally.All)
	assert.Equal(t, 2, tally.General)
	assert.Equal(t, 1, tally.GeneralElective)
	assert.Equal(t, 3, tally.MajorAll[computer.ID])
	assert.Equal(t, 5, tally.MajorAll[business.ID])
	assert.Equal(t, 3, tally.MajorRequirement[computer.ID])
	assert.Zero(t, tally.MajorRequirement[business.ID])
	assert.Equal(t, 2, tally.Teaching[business.ID])
	assert.NotContains(t, tally.MajorAll, noneMajor)

	assert.Equal(t, 8, tally.EarnedFor(model.PlanRequirement{RequirementType: model.RequirementTypeAll}))
	assert.Equal(t, 5, tally.EarnedFor(model.PlanRequirement{RequirementType: model.RequirementTypeMajorAll, MajorID: business.ID}))
	assert.Equal(t, 2, tally.EarnedFor(model.PlanRequirement{RequirementType: model.RequirementTypeTeaching, MajorID: business.ID}))
	assert.Zero(t, tally.EarnedFor(model.PlanRequirement{RequirementType: model.RequirementTypeNone}))
}

func TestMaxRequired(t *testing.T) {
	rows := []model.PlanRequirement{
		{RequirementType: model.RequirementTypeAll, RequiredCredit: 130},
		{RequirementType: model.RequirementTypeAll, RequiredCredit: 140},
		{RequirementType: model.RequirementTypeGeneral, RequiredCredit: 40},
	}

	assert.Equal(t, 140, MaxRequired(rows, model.RequirementTypeAll))
	assert.Equal(t, 40, MaxRequired(rows, model.RequirementTypeGeneral))
	assert.Zero(t, MaxRequired(rows, model.RequirementTypeTeaching))
}

func TestItem(t *testing.T) {
	item := Item(30, 60)
	assert.Equal(t, model.ProgressItem{RequiredCredit: 60, EarnedCredit: 30, Progress: 0.5}, item)
}
