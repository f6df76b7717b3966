package engine

import "github.com/gradplan/planner-backend/internal/model"

// maxRecognitions is the number of majors an enrollment can count toward.
const maxRecognitions = 2

// Recognition attributes an enrollment to a major with a lecture type.
type Recognition struct {
	MajorID     int
	LectureType model.LectureType
}

// Classification is the classifier-owned state of an enrollment.
type Classification struct {
	LectureType  model.LectureType
	Major1       int
	LectureType1 model.LectureType
	Major2       int
	LectureType2 model.LectureType
	Credit       int
}

// Snapshot captures the classification fields of sl.
func Snapshot(sl *model.SemesterLecture) Classification {
	return Classification{
		LectureType:  sl.LectureType,
		Major1:       sl.RecognizedMajor1,
		LectureType1: sl.LectureType1,
		Major2:       sl.RecognizedMajor2,
		LectureType2: sl.LectureType2,
		Credit:       sl.Credit,
	}
}

// Outcome reports what a classification did to one enrollment.
type Outcome struct {
	Skipped bool
	Before  Classification
	After   Classification
}

// Changed reports whether classification or credit moved.
func (o Outcome) Changed() bool {
	return o.Before != o.After
}

// Classifier assigns recognized majors and lecture types to enrollments.
type Classifier struct {
	catalog     *Catalog
	noneMajorID int
}

// NewClassifier creates a classifier over catalog. noneMajorID is the
// sentinel major recorded when no major recognizes a lecture.
func NewClassifier(catalog *Catalog, noneMajorID int) *Classifier {
	return &Classifier{catalog: catalog, noneMajorID: noneMajorID}
}

// NoneMajorID returns the sentinel major id.
func (c *Classifier) NoneMajorID() int {
	return c.noneMajorID
}

// Classify reclassifies sl and keeps sem's bucket totals exact: the prior
// credit is subtracted, the enrollment reclassified, and the new credit added
// back. majors must already be in priority order. entranceYear and
// semesterYear are the two evaluation years of the recognition passes.
// Manually modified enrollments are returned untouched.
func (c *Classifier) Classify(sl *model.SemesterLecture, sem *model.Semester, majors []model.Major, entranceYear, semesterYear int) Outcome {
	before := Snapshot(sl)
	if sl.IsModified {
		return Outcome{Skipped: true, Before: before, After: before}
	}

	SubCredits(sl, sem)
	c.Assign(sl, majors, entranceYear, semesterYear)
	AddCredits(sl, sem)

	return Outcome{Before: before, After: Snapshot(sl)}
}

// Assign classifies sl without touching any semester totals. Callers adding
// a fresh enrollment use it before AddCredits.
func (c *Classifier) Assign(sl *model.SemesterLecture, majors []model.Major, entranceYear, semesterYear int) {
	if sl.LectureType == model.LectureTypeGeneral {
		c.setRecognitions(sl, nil, model.LectureTypeGeneral)
	} else {
		c.setRecognitions(sl, c.Recognize(sl.LectureID, majors, entranceYear, semesterYear), model.LectureTypeGeneralElective)
	}

	if credit, ok := c.catalog.CreditAt(sl.LectureID, semesterYear); ok {
		sl.Credit = credit
	}
}

// Recognize finds up to two majors claiming the lecture. The entrance-year
// pass runs first; the semester-year pass fills remaining slots. When the
// first pass found exactly one major, that major sits out the second pass.
func (c *Classifier) Recognize(lectureID int, majors []model.Major, entranceYear, semesterYear int) []Recognition {
	found := make([]Recognition, 0, maxRecognitions)
	found = c.matchPass(found, lectureID, majors, entranceYear)
	if len(found) >= maxRecognitions {
		return found
	}

	pool := majors
	if len(found) == 1 {
		pool = withoutMajor(majors, found[0].MajorID)
	}
	return c.matchPass(found, lectureID, pool, semesterYear)
}

func (c *Classifier) matchPass(found []Recognition, lectureID int, majors []model.Major, year int) []Recognition {
	for _, m := range majors {
		if len(found) >= maxRecognitions {
			break
		}
		if len(found) == 1 && found[0].MajorID == m.ID {
			continue
		}
		link, ok := c.catalog.BestLink(m.ID, lectureID, year)
		if !ok {
			continue
		}
		found = append(found, Recognition{MajorID: m.ID, LectureType: link.LectureType})
	}
	return found
}

// setRecognitions writes both recognition slots. An empty recognition list
// falls back to the sentinel major with the given type.
func (c *Classifier) setRecognitions(sl *model.SemesterLecture, found []Recognition, fallback model.LectureType) {
	switch len(found) {
	case 0:
		sl.RecognizedMajor1, sl.LectureType1 = c.noneMajorID, fallback
		sl.RecognizedMajor2, sl.LectureType2 = c.noneMajorID, model.LectureTypeNone
	case 1:
		sl.RecognizedMajor1, sl.LectureType1 = found[0].MajorID, found[0].LectureType
		sl.RecognizedMajor2, sl.LectureType2 = c.noneMajorID, model.LectureTypeNone
	default:
		sl.RecognizedMajor1, sl.LectureType1 = found[0].MajorID, found[0].LectureType
		sl.RecognizedMajor2, sl.LectureType2 = found[1].MajorID, found[1].LectureType
	}
	sl.LectureType = sl.LectureType1
}

func withoutMajor(majors []model.Major, majorID int) []model.Major {
	out := make([]model.Major, 0, len(majors))
	for _, m := range majors {
		if m.ID != majorID {
			out = append(out, m)
		}
	}
	return out
}
