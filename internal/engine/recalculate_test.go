package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradplan/planner-backend/internal/model"
)

func planFixture() (*Classifier, PlanInput) {
	catalog := NewCatalog([]model.MajorLecture{
		{ID: 1, MajorID: computer.ID, LectureID: 1, StartYear: 2015, EndYear: 2025, LectureType: model.LectureTypeMajorRequirement},
		{ID: 2, MajorID: business.ID, LectureID: 1, StartYear: 2015, EndYear: 2025, LectureType: model.LectureTypeMajorElective},
		{ID: 3, MajorID: business.ID, LectureID: 2, StartYear: 2015, EndYear: 2025, LectureType: model.LectureTypeMajorRequirement},
	}, []model.LectureCredit{
		{ID: 1, LectureID: 3, StartYear: 2019, EndYear: 2025, Credit: 1},
	})
	c := NewClassifier(catalog, noneMajor)

	s1 := &model.Semester{ID: 1, Year: 2018}
	s2 := &model.Semester{ID: 2, Year: 2019}
	lectures := map[int][]*model.SemesterLecture{
		1: {
			newLecture(1, model.LectureTypeGeneralElective, 3),
			newLecture(2, model.LectureTypeGeneralElective, 3),
		},
		2: {
			newLecture(3, model.LectureTypeGeneral, 2),
			newLecture(4, model.LectureTypeMajorElective, 3),
		},
	}
	for _, sem := range []*model.Semester{s1, s2} {
		RecomputeTotals(sem, lectures[sem.ID])
	}

	return c, PlanInput{
		EntranceYear: 2018,
		Majors:       orderedMajors(business, computer),
		Semesters:    []*model.Semester{s1, s2},
		Lectures:     lectures,
	}
}

func TestRecalculateKeepsTotalsConsistent(t *testing.T) {
	c, in := planFixture()

	res := Recalculate(c, in, NewHistoryLog())

	assert.Equal(t, 4, len(res.Lectures))
	assert.Equal(t, 0, res.Skipped)
	for _, sem := range in.Semesters {
		want := *sem
		RecomputeTotals(&want, in.Lectures[sem.ID])
		assert.Equal(t, want, *sem, "semester %d", sem.ID)
	}

	dual := in.Lectures[1][0]
	assert.Equal(t, computer.ID, dual.RecognizedMajor1)
	assert.Equal(t, model.LectureTypeMajorRequirement, dual.LectureType1)
	assert.Equal(t, business.ID, dual.RecognizedMajor2)
	assert.Equal(t, model.LectureTypeMajorElective, dual.LectureType2)

	assert.Equal(t, 6, in.Semesters[0].MajorRequirementCredit)
	assert.Equal(t, 0, in.Semesters[0].GeneralElectiveCredit)
	assert.Equal(t, 1, in.Semesters[1].GeneralCredit)
	assert.Equal(t, 3, in.Semesters[1].GeneralElectiveCredit)
	assert.Equal(t, 0, in.Semesters[1].MajorElectiveCredit)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	c, in := planFixture()
	Recalculate(c, in, nil)

	snapshot := make(map[int]model.SemesterLecture)
	for _, ls := range in.Lectures {
		for _, sl := range ls {
			snapshot[sl.ID] = *sl
		}
	}
	totals := []model.Semester{*in.Semesters[0], *in.Semesters[1]}

	history := NewHistoryLog()
	res := Recalculate(c, in, history)

	assert.Zero(t, res.Changed)
	assert.True(t, history.Empty())
	for _, ls := range in.Lectures {
		for _, sl := range ls {
			assert.Equal(t, snapshot[sl.ID], *sl)
		}
	}
	assert.Equal(t, totals[0], *in.Semesters[0])
	assert.Equal(t, totals[1], *in.Semesters[1])
}

func TestRecalculateSkipsModifiedLectures(t *testing.T) {
	c, in := planFixture()
	pinned := in.Lectures[2][1]
	pinned.IsModified = true
	before := *pinned

	res := Recalculate(c, in, nil)

	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, before, *pinned)
	assert.NotContains(t, res.Lectures, pinned)
}

func TestRecalculateRecordsHistory(t *testing.T) {
	c, in := planFixture()
	history := NewHistoryLog()

	Recalculate(c, in, history)

	lt := history.LectureTypeChanges()
	require.NotEmpty(t, lt)
	assert.Contains(t, lt, model.LectureTypeChangeHistory{
		MajorID: computer.ID, LectureID: 1, EntranceYear: 2018,
		PastLectureType: model.LectureTypeNone, CurrLectureType: model.LectureTypeMajorRequirement,
		ChangeCount: 1,
	})
	assert.Contains(t, lt, model.LectureTypeChangeHistory{
		MajorID: business.ID, LectureID: 2, EntranceYear: 2018,
		PastLectureType: model.LectureTypeNone, CurrLectureType: model.LectureTypeMajorRequirement,
		ChangeCount: 1,
	})
	assert.Contains(t, lt, model.LectureTypeChangeHistory{
		MajorID: noneMajor, LectureID: 4, EntranceYear: 2018,
		PastLectureType: model.LectureTypeMajorElective, CurrLectureType: model.LectureTypeGeneralElective,
		ChangeCount: 1,
	})
	for _, row := range lt {
		assert.NotEqual(t, 3, row.LectureID)
	}

	credits := history.CreditChanges()
	require.Len(t, credits, 1)
	assert.Equal(t, model.CreditChangeHistory{
		MajorID: noneMajor, LectureID: 3, EntranceYear: 2018, YearTaken: 2019,
		PastCredit: 2, CurrCredit: 1, ChangeCount: 1,
	}, credits[0])
}

func TestRecordOutcomeIgnoresSkipped(t *testing.T) {
	history := NewHistoryLog()
	RecordOutcome(history, noneMajor, 1, 2018, 2018, Outcome{
		Skipped: true,
		Before:  Classification{Credit: 3},
		After:   Classification{Credit: 4},
	})
	assert.True(t, history.Empty())

	RecordOutcome(nil, noneMajor, 1, 2018, 2018, Outcome{})
}
