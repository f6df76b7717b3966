package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/repository/memstore"
)

const (
	owner     = 7
	stranger  = 8
	noneMajor = 1
)

// fixture is a 2018 student's plan with one major and three enrollments
// whose stored classification predates the catalog links.
type fixture struct {
	store *memstore.Store

	computer, business, stats int
	dataStructures            int // MR for computer, ME for business
	accounting                int // ME for business, credit 2 from 2019
	writing                   int // general
	regression                int // MR for stats

	planID       int
	sem2018      int
	sem2019      int
	slStructures int
	slWriting    int
	slAccounting int

	reqMajorAll, reqMajorRequirement, reqAll, reqGeneral int
	prMajorRequirement                                   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	f := &fixture{store: s}

	s.AddUser(owner, 2018)
	s.AddUser(stranger, 2019)

	s.AddMajor(model.Major{ID: noneMajor, Name: "none", Type: model.MajorTypeMajor})
	f.computer = s.AddMajor(model.Major{ID: 10, Name: "컴퓨터공학부", Type: model.MajorTypeMajor})
	f.business = s.AddMajor(model.Major{ID: 20, Name: "경영학과", Type: model.MajorTypeDoubleMajor})
	f.stats = s.AddMajor(model.Major{ID: 30, Name: "통계학과", Type: model.MajorTypeMinor})

	f.dataStructures = s.AddLecture(model.Lecture{ID: 100, Code: "CSE2010", Name: "자료구조", LectureType: model.LectureTypeGeneralElective, Credit: 3})
	f.accounting = s.AddLecture(model.Lecture{ID: 101, Code: "BUS2001", Name: "회계원리", LectureType: model.LectureTypeGeneralElective, Credit: 3})
	f.writing = s.AddLecture(model.Lecture{ID: 102, Code: "GEN1001", Name: "글쓰기", LectureType: model.LectureTypeGeneral, Credit: 2})
	f.regression = s.AddLecture(model.Lecture{ID: 103, Code: "STA3001", Name: "회귀분석", LectureType: model.LectureTypeGeneralElective, Credit: 3})

	s.AddMajorLecture(model.MajorLecture{MajorID: f.computer, LectureID: f.dataStructures, StartYear: 2015, EndYear: 2025, LectureType: model.LectureTypeMajorRequirement})
	s.AddMajorLecture(model.MajorLecture{MajorID: f.business, LectureID: f.dataStructures, StartYear: 2015, EndYear: 2025, LectureType: model.LectureTypeMajorElective})
	s.AddMajorLecture(model.MajorLecture{MajorID: f.business, LectureID: f.accounting, StartYear: 2015, EndYear: 2025, LectureType: model.LectureTypeMajorElective})
	s.AddMajorLecture(model.MajorLecture{MajorID: f.stats, LectureID: f.regression, StartYear: 2015, EndYear: 2025, LectureType: model.LectureTypeMajorRequirement})
	s.AddLectureCredit(model.LectureCredit{LectureID: f.accounting, StartYear: 2019, EndYear: 2025, Credit: 2})

	f.reqMajorAll = s.AddRequirement(model.Requirement{ID: 200, MajorID: f.computer, RequirementType: model.RequirementTypeMajorAll, StartYear: 2015, EndYear: 2025, RequiredCredit: 72})
	f.reqMajorRequirement = s.AddRequirement(model.Requirement{ID: 201, MajorID: f.computer, RequirementType: model.RequirementTypeMajorRequirement, StartYear: 2015, EndYear: 2025, RequiredCredit: 39})
	f.reqAll = s.AddRequirement(model.Requirement{ID: 202, MajorID: f.computer, RequirementType: model.RequirementTypeAll, StartYear: 2015, EndYear: 2025, RequiredCredit: 130})
	f.reqGeneral = s.AddRequirement(model.Requirement{ID: 203, MajorID: f.computer, RequirementType: model.RequirementTypeGeneral, StartYear: 2015, EndYear: 2025, RequiredCredit: 30})
	s.AddRequirement(model.Requirement{ID: 204, MajorID: f.computer, RequirementType: model.RequirementTypeMajorRequirement, StartYear: 2010, EndYear: 2014, RequiredCredit: 36})
	s.AddRequirement(model.Requirement{ID: 210, MajorID: f.business, RequirementType: model.RequirementTypeMajorAll, StartYear: 2015, EndYear: 2025, RequiredCredit: 39})
	s.AddRequirement(model.Requirement{ID: 211, MajorID: f.business, RequirementType: model.RequirementTypeMajorRequirement, StartYear: 2015, EndYear: 2025, RequiredCredit: 15})
	s.AddRequirement(model.Requirement{ID: 220, MajorID: f.stats, RequirementType: model.RequirementTypeMajorAll, StartYear: 2015, EndYear: 2025, RequiredCredit: 21})

	f.planID = s.AddPlan(model.Plan{ID: 300, UserID: owner, PlanName: "졸업 계획", IsFirstSimulation: true})
	s.AddPlanMajor(f.planID, f.computer)
	for _, id := range []int{f.reqMajorAll, f.reqMajorRequirement, f.reqAll, f.reqGeneral} {
		prID := s.AddPlanRequirement(model.PlanRequirement{PlanID: f.planID, RequirementID: id, RequiredCredit: defaultCredit(id), AutoCalculate: true})
		if id == f.reqMajorRequirement {
			f.prMajorRequirement = prID
		}
	}

	f.sem2018 = s.AddSemester(model.Semester{ID: 400, PlanID: f.planID, Year: 2018, SemesterType: model.SemesterTypeFirst, GeneralElectiveCredit: 3})
	f.sem2019 = s.AddSemester(model.Semester{ID: 401, PlanID: f.planID, Year: 2019, SemesterType: model.SemesterTypeFirst, GeneralCredit: 2, GeneralElectiveCredit: 3})

	f.slStructures = s.AddSemesterLecture(stale(500, f.sem2018, f.dataStructures, model.LectureTypeGeneralElective, 3, 1))
	f.slWriting = s.AddSemesterLecture(stale(501, f.sem2019, f.writing, model.LectureTypeGeneral, 2, 1))
	f.slAccounting = s.AddSemesterLecture(stale(502, f.sem2019, f.accounting, model.LectureTypeGeneralElective, 3, 2))

	return f
}

func defaultCredit(requirementID int) int {
	switch requirementID {
	case 200:
		return 72
	case 201:
		return 39
	case 202:
		return 130
	default:
		return 30
	}
}

func stale(id, semesterID, lectureID int, lt model.LectureType, credit, seq int) model.SemesterLecture {
	return model.SemesterLecture{
		ID:               id,
		SemesterID:       semesterID,
		LectureID:        lectureID,
		LectureType:      lt,
		RecognizedMajor1: noneMajor,
		LectureType1:     lt,
		RecognizedMajor2: noneMajor,
		LectureType2:     model.LectureTypeNone,
		Credit:           credit,
		RecentSequence:   seq,
	}
}

func (f *fixture) planner() *PlannerService {
	return NewPlannerService(f.store, nil, noneMajor, zerolog.Nop())
}

func (f *fixture) requirements(cache RequirementCache) *RequirementService {
	return NewRequirementService(f.store, cache, noneMajor, zerolog.Nop())
}

func (f *fixture) planMajors() *PlanMajorService {
	return NewPlanMajorService(f.store, nil, noneMajor, zerolog.Nop())
}

func (f *fixture) lecture(t *testing.T, id int) model.SemesterLecture {
	t.Helper()
	sl, ok := f.store.SemesterLecture(id)
	if !ok {
		t.Fatalf("semester lecture %d not found", id)
	}
	return sl
}

func (f *fixture) semester(t *testing.T, id int) model.Semester {
	t.Helper()
	sem, ok := f.store.Semester(id)
	if !ok {
		t.Fatalf("semester %d not found", id)
	}
	return sem
}

func (f *fixture) planRequirement(t *testing.T, requirementID int) model.PlanRequirement {
	t.Helper()
	for _, pr := range f.store.PlanRequirements(f.planID) {
		if pr.RequirementID == requirementID {
			return pr
		}
	}
	t.Fatalf("plan requirement for %d not found", requirementID)
	return model.PlanRequirement{}
}

// fakeCache records cache traffic in memory.
type fakeCache struct {
	entries     map[int]fakeEntry
	hits        int
	invalidated []int
}

type fakeEntry struct {
	ownerID int
	check   *model.RequirementCheck
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[int]fakeEntry)}
}

func (c *fakeCache) GetRequirementCheck(_ context.Context, planID int) (int, *model.RequirementCheck, bool) {
	e, ok := c.entries[planID]
	if ok {
		c.hits++
	}
	return e.ownerID, e.check, ok
}

func (c *fakeCache) SetRequirementCheck(_ context.Context, planID, ownerID int, check *model.RequirementCheck) {
	c.entries[planID] = fakeEntry{ownerID: ownerID, check: check}
}

func (c *fakeCache) Invalidate(_ context.Context, planIDs ...int) {
	for _, id := range planIDs {
		delete(c.entries, id)
	}
	c.invalidated = append(c.invalidated, planIDs...)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
