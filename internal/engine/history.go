package engine

import "github.com/gradplan/planner-backend/internal/model"

type lectureTypeKey struct {
	majorID      int
	lectureID    int
	entranceYear int
	past         model.LectureType
	curr         model.LectureType
}

type creditKey struct {
	majorID      int
	lectureID    int
	entranceYear int
	yearTaken    int
	past         int
	curr         int
}

type requirementKey struct {
	requirementID int
	entranceYear  int
	past          int
	curr          int
}

// HistoryLog collects change observations for one operation and coalesces
// repeats of the same natural key into a count. The repository adds those
// counts onto persisted rows, so a new row starts at its first count.
type HistoryLog struct {
	lectureTypes     map[lectureTypeKey]int
	lectureTypeOrder []lectureTypeKey
	credits          map[creditKey]int
	creditOrder      []creditKey
	requirements     map[requirementKey]int
	requirementOrder []requirementKey
}

// NewHistoryLog creates an empty log.
func NewHistoryLog() *HistoryLog {
	return &HistoryLog{
		lectureTypes: make(map[lectureTypeKey]int),
		credits:      make(map[creditKey]int),
		requirements: make(map[requirementKey]int),
	}
}

// RecordLectureTypeChange notes a lecture-type transition for a major.
func (h *HistoryLog) RecordLectureTypeChange(majorID, lectureID, entranceYear int, from, to model.LectureType) {
	if from == to {
		return
	}
	k := lectureTypeKey{majorID: majorID, lectureID: lectureID, entranceYear: entranceYear, past: from, curr: to}
	if _, ok := h.lectureTypes[k]; !ok {
		h.lectureTypeOrder = append(h.lectureTypeOrder, k)
	}
	h.lectureTypes[k]++
}

// RecordCreditChange notes a counted-credit transition of a lecture taken in yearTaken.
func (h *HistoryLog) RecordCreditChange(majorID, lectureID, entranceYear, yearTaken, from, to int) {
	if from == to {
		return
	}
	k := creditKey{majorID: majorID, lectureID: lectureID, entranceYear: entranceYear, yearTaken: yearTaken, past: from, curr: to}
	if _, ok := h.credits[k]; !ok {
		h.creditOrder = append(h.creditOrder, k)
	}
	h.credits[k]++
}

// RecordRequirementCreditChange notes a required-credit edit.
func (h *HistoryLog) RecordRequirementCreditChange(requirementID, entranceYear, from, to int) {
	if from == to {
		return
	}
	k := requirementKey{requirementID: requirementID, entranceYear: entranceYear, past: from, curr: to}
	if _, ok := h.requirements[k]; !ok {
		h.requirementOrder = append(h.requirementOrder, k)
	}
	h.requirements[k]++
}

// Empty reports whether nothing was recorded.
func (h *HistoryLog) Empty() bool {
	return len(h.lectureTypeOrder) == 0 && len(h.creditOrder) == 0 && len(h.requirementOrder) == 0
}

// LectureTypeChanges returns the coalesced lecture-type rows in record order.
func (h *HistoryLog) LectureTypeChanges() []model.LectureTypeChangeHistory {
	rows := make([]model.LectureTypeChangeHistory, 0, len(h.lectureTypeOrder))
	for _, k := range h.lectureTypeOrder {
		rows = append(rows, model.LectureTypeChangeHistory{
			MajorID:         k.majorID,
			LectureID:       k.lectureID,
			EntranceYear:    k.entranceYear,
			PastLectureType: k.past,
			CurrLectureType: k.curr,
			ChangeCount:     h.lectureTypes[k],
		})
	}
	return rows
}

// CreditChanges returns the coalesced credit rows in record order.
func (h *HistoryLog) CreditChanges() []model.CreditChangeHistory {
	rows := make([]model.CreditChangeHistory, 0, len(h.creditOrder))
	for _, k := range h.creditOrder {
		rows = append(rows, model.CreditChangeHistory{
			MajorID:      k.majorID,
			LectureID:    k.lectureID,
			EntranceYear: k.entranceYear,
			YearTaken:    k.yearTaken,
			PastCredit:   k.past,
			CurrCredit:   k.curr,
			ChangeCount:  h.credits[k],
		})
	}
	return rows
}

// RequirementChanges returns the coalesced requirement rows in record order.
func (h *HistoryLog) RequirementChanges() []model.RequirementChangeHistory {
	rows := make([]model.RequirementChangeHistory, 0, len(h.requirementOrder))
	for _, k := range h.requirementOrder {
		rows = append(rows, model.RequirementChangeHistory{
			RequirementID:      k.requirementID,
			EntranceYear:       k.entranceYear,
			PastRequiredCredit: k.past,
			CurrRequiredCredit: k.curr,
			ChangeCount:        h.requirements[k],
		})
	}
	return rows
}

// Transition is a lecture-type change seen from one major.
type Transition struct {
	MajorID int
	Past    model.LectureType
	Curr    model.LectureType
}

// LectureTypeTransitions compares two classifications major by major. Only
// real majors holding an attributed type on either side are considered; a
// major that appears on one side only transitions from or to NONE. When no
// real major is attributed on either side, a change of the overall lecture
// type is keyed against the sentinel major.
func LectureTypeTransitions(before, after Classification, noneMajorID int) []Transition {
	pastTypes, pastOrder := attributedTypes(before, noneMajorID)
	currTypes, currOrder := attributedTypes(after, noneMajorID)

	if len(pastOrder) == 0 && len(currOrder) == 0 {
		if before.LectureType == after.LectureType {
			return nil
		}
		return []Transition{{MajorID: noneMajorID, Past: before.LectureType, Curr: after.LectureType}}
	}

	var out []Transition
	seen := make(map[int]bool, 4)
	for _, id := range append(pastOrder, currOrder...) {
		if seen[id] {
			continue
		}
		seen[id] = true

		past, ok := pastTypes[id]
		if !ok {
			past = model.LectureTypeNone
		}
		curr, ok := currTypes[id]
		if !ok {
			curr = model.LectureTypeNone
		}
		if past != curr {
			out = append(out, Transition{MajorID: id, Past: past, Curr: curr})
		}
	}
	return out
}

func attributedTypes(c Classification, noneMajorID int) (map[int]model.LectureType, []int) {
	types := make(map[int]model.LectureType, 2)
	var order []int
	add := func(majorID int, t model.LectureType) {
		if majorID == noneMajorID || t == model.LectureTypeNone || t == model.LectureTypeGeneralElective {
			return
		}
		if _, ok := types[majorID]; ok {
			return
		}
		types[majorID] = t
		order = append(order, majorID)
	}
	add(c.Major1, c.LectureType1)
	add(c.Major2, c.LectureType2)
	return types, order
}
