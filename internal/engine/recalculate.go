package engine

import "github.com/gradplan/planner-backend/internal/model"

// PlanInput is one consistent snapshot of the plan data to reclassify.
// Majors must be in priority order; Lectures is keyed by semester id.
type PlanInput struct {
	EntranceYear int
	Majors       []model.Major
	Semesters    []*model.Semester
	Lectures     map[int][]*model.SemesterLecture
}

// Result lists what a recalculation touched.
type Result struct {
	Lectures  []*model.SemesterLecture
	Semesters []*model.Semester
	Changed   int
	Skipped   int
}

// Recalculate reclassifies every non-modified enrollment of the in-scope
// semesters in place and records observed transitions into history.
// Running it again on its own output changes nothing.
func Recalculate(c *Classifier, in PlanInput, history *HistoryLog) Result {
	var res Result
	for _, sem := range in.Semesters {
		for _, sl := range in.Lectures[sem.ID] {
			if sl.IsModified {
				res.Skipped++
				continue
			}

			out := c.Classify(sl, sem, in.Majors, in.EntranceYear, sem.Year)
			res.Lectures = append(res.Lectures, sl)
			if out.Changed() {
				res.Changed++
				RecordOutcome(history, c.NoneMajorID(), sl.LectureID, in.EntranceYear, sem.Year, out)
			}
		}
		res.Semesters = append(res.Semesters, sem)
	}
	return res
}

// RecordOutcome writes the lecture-type transitions and the credit change of
// one classification into history. Credit changes are keyed by the first
// recognized major, the sentinel for general and general-elective lectures.
func RecordOutcome(history *HistoryLog, noneMajorID, lectureID, entranceYear, yearTaken int, out Outcome) {
	if history == nil || out.Skipped {
		return
	}
	for _, t := range LectureTypeTransitions(out.Before, out.After, noneMajorID) {
		history.RecordLectureTypeChange(t.MajorID, lectureID, entranceYear, t.Past, t.Curr)
	}
	if out.Before.Credit != out.After.Credit {
		history.RecordCreditChange(out.After.Major1, lectureID, entranceYear, yearTaken, out.Before.Credit, out.After.Credit)
	}
}
