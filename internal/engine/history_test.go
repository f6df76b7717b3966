package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradplan/planner-backend/internal/model"
)

func TestHistoryLogCoalescesRepeats(t *testing.T) {
	h := NewHistoryLog()

	h.RecordLectureTypeChange(20, 1, 2018, model.LectureTypeNone, model.LectureTypeMajorRequirement)
	h.RecordLectureTypeChange(20, 1, 2018, model.LectureTypeNone, model.LectureTypeMajorRequirement)
	h.RecordLectureTypeChange(20, 1, 2019, model.LectureTypeNone, model.LectureTypeMajorRequirement)
	h.RecordLectureTypeChange(20, 1, 2018, model.LectureTypeMajorElective, model.LectureTypeMajorElective)

	rows := h.LectureTypeChanges()
	require.Len(t, rows, 2)
	assert.Equal(t, 2018, rows[0].EntranceYear)
	assert.Equal(t, 2, rows[0].ChangeCount)
	assert.Equal(t, 2019, rows[1].EntranceYear)
	assert.Equal(t, 1, rows[1].ChangeCount)

	h.RecordCreditChange(1, 5, 2018, 2020, 3, 2)
	h.RecordCreditChange(1, 5, 2018, 2020, 3, 2)
	h.RecordCreditChange(1, 5, 2018, 2020, 2, 2)
	credits := h.CreditChanges()
	require.Len(t, credits, 1)
	assert.Equal(t, 2, credits[0].ChangeCount)

	h.RecordRequirementCreditChange(7, 2018, 130, 140)
	h.RecordRequirementCreditChange(7, 2018, 140, 140)
	reqs := h.RequirementChanges()
	require.Len(t, reqs, 1)
	assert.Equal(t, model.RequirementChangeHistory{
		RequirementID: 7, EntranceYear: 2018, PastRequiredCredit: 130, CurrRequiredCredit: 140, ChangeCount: 1,
	}, reqs[0])

	assert.False(t, h.Empty())
	assert.True(t, NewHistoryLog().Empty())
}

func TestLectureTypeTransitions(t *testing.T) {
	tests := []struct {
		name   string
		before Classification
		after  Classification
		want   []Transition
	}{
		{
			name:   "gained recognition",
			before: Classification{Major1: noneMajor, LectureType1: model.LectureTypeGeneralElective, Major2: noneMajor, LectureType2: model.LectureTypeNone},
			after:  Classification{Major1: 20, LectureType1: model.LectureTypeMajorRequirement, Major2: noneMajor, LectureType2: model.LectureTypeNone},
			want:   []Transition{{MajorID: 20, Past: model.LectureTypeNone, Curr: model.LectureTypeMajorRequirement}},
		},
		{
			name:   "lost recognition",
			before: Classification{Major1: 20, LectureType1: model.LectureTypeMajorElective, Major2: 10, LectureType2: model.LectureTypeMajorElective},
			after:  Classification{Major1: 10, LectureType1: model.LectureTypeMajorElective, Major2: noneMajor, LectureType2: model.LectureTypeNone},
			want:   []Transition{{MajorID: 20, Past: model.LectureTypeMajorElective, Curr: model.LectureTypeNone}},
		},
		{
			name:   "type changed in place",
			before: Classification{Major1: 20, LectureType1: model.LectureTypeMajorElective, Major2: noneMajor, LectureType2: model.LectureTypeNone},
			after:  Classification{Major1: 20, LectureType1: model.LectureTypeMajorRequirement, Major2: noneMajor, LectureType2: model.LectureTypeNone},
			want:   []Transition{{MajorID: 20, Past: model.LectureTypeMajorElective, Curr: model.LectureTypeMajorRequirement}},
		},
		{
			name:   "slot swap is not a change",
			before: Classification{Major1: 20, LectureType1: model.LectureTypeMajorElective, Major2: 10, LectureType2: model.LectureTypeMajorRequirement},
			after:  Classification{Major1: 10, LectureType1: model.LectureTypeMajorRequirement, Major2: 20, LectureType2: model.LectureTypeMajorElective},
		},
		{
			name:   "general change keyed to sentinel",
			before: Classification{LectureType: model.LectureTypeGeneral, Major1: noneMajor, LectureType1: model.LectureTypeGeneral, Major2: noneMajor, LectureType2: model.LectureTypeNone},
			after:  Classification{LectureType: model.LectureTypeGeneralElective, Major1: noneMajor, LectureType1: model.LectureTypeGeneralElective, Major2: noneMajor, LectureType2: model.LectureTypeNone},
			want:   []Transition{{MajorID: noneMajor, Past: model.LectureTypeGeneral, Curr: model.LectureTypeGeneralElective}},
		},
		{
			name:   "unchanged general",
			before: Classification{LectureType: model.LectureTypeGeneral, Major1: noneMajor, LectureType1: model.LectureTypeGeneral, Major2: noneMajor, LectureType2: model.LectureTypeNone, Credit: 3},
			after:  Classification{LectureType: model.LectureTypeGeneral, Major1: noneMajor, LectureType1: model.LectureTypeGeneral, Major2: noneMajor, LectureType2: model.LectureTypeNone, Credit: 2},
		},
		{
			name:   "general to major keys the major only",
			before: Classification{LectureType: model.LectureTypeGeneral, Major1: noneMajor, LectureType1: model.LectureTypeGeneral, Major2: noneMajor, LectureType2: model.LectureTypeNone},
			after:  Classification{LectureType: model.LectureTypeMajorElective, Major1: 20, LectureType1: model.LectureTypeMajorElective, Major2: noneMajor, LectureType2: model.LectureTypeNone},
			want:   []Transition{{MajorID: 20, Past: model.LectureTypeNone, Curr: model.LectureTypeMajorElective}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LectureTypeTransitions(tt.before, tt.after, noneMajor))
		})
	}
}
