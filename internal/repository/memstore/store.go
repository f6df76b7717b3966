// Package memstore is an in-memory implementation of the repository
// interfaces. A transaction holds the store lock for its whole duration and
// restores a snapshot when it fails, so it behaves like a serializable
// database for tests and dry runs.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/repository"
)

type ltKey struct {
	majorID, lectureID, entranceYear int
	past, curr                       model.LectureType
}

type creditKey struct {
	majorID, lectureID, entranceYear, yearTaken, past, curr int
}

type reqKey struct {
	requirementID, entranceYear, past, curr int
}

type tables struct {
	seq int

	users          map[int]int
	majors         map[int]model.Major
	lectures       map[int]model.Lecture
	majorLectures  []model.MajorLecture
	lectureCredits []model.LectureCredit
	requirements   map[int]model.Requirement

	plans            map[int]model.Plan
	planMajors       map[int]map[int]bool
	semesters        map[int]model.Semester
	semesterLectures map[int]model.SemesterLecture
	planRequirements map[int]model.PlanRequirement

	ltHistory     map[ltKey]model.LectureTypeChangeHistory
	creditHistory map[creditKey]model.CreditChangeHistory
	reqHistory    map[reqKey]model.RequirementChangeHistory
}

func newTables() *tables {
	return &tables{
		users:            map[int]int{},
		majors:           map[int]model.Major{},
		lectures:         map[int]model.Lecture{},
		requirements:     map[int]model.Requirement{},
		plans:            map[int]model.Plan{},
		planMajors:       map[int]map[int]bool{},
		semesters:        map[int]model.Semester{},
		semesterLectures: map[int]model.SemesterLecture{},
		planRequirements: map[int]model.PlanRequirement{},
		ltHistory:        map[ltKey]model.LectureTypeChangeHistory{},
		creditHistory:    map[creditKey]model.CreditChangeHistory{},
		reqHistory:       map[reqKey]model.RequirementChangeHistory{},
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		seq:              t.seq,
		users:            cloneMap(t.users),
		majors:           cloneMap(t.majors),
		lectures:         cloneMap(t.lectures),
		majorLectures:    append([]model.MajorLecture(nil), t.majorLectures...),
		lectureCredits:   append([]model.LectureCredit(nil), t.lectureCredits...),
		requirements:     cloneMap(t.requirements),
		plans:            cloneMap(t.plans),
		planMajors:       make(map[int]map[int]bool, len(t.planMajors)),
		semesters:        cloneMap(t.semesters),
		semesterLectures: cloneMap(t.semesterLectures),
		planRequirements: cloneMap(t.planRequirements),
		ltHistory:        cloneMap(t.ltHistory),
		creditHistory:    cloneMap(t.creditHistory),
		reqHistory:       cloneMap(t.reqHistory),
	}
	for planID, ms := range t.planMajors {
		c.planMajors[planID] = cloneMap(ms)
	}
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t *tables) nextID() int {
	t.seq++
	return t.seq
}

// Store is the in-memory database.
type Store struct {
	mu       sync.Mutex
	data     *tables
	failures map[string]error
}

// New creates an empty store.
func New() *Store {
	return &Store{data: newTables(), failures: map[string]error{}}
}

// FailOn makes the named write operation fail with err until cleared with a
// nil err. Operation names are "<table>.<method>", e.g. "semesters.BulkUpdateCredits".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	return s.failures[op]
}

// RunInTx implements repository.TxManager.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	err := fn(ctx, s.repos())
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) repos() repository.Repos {
	return repository.Repos{
		Plans:            &planRepo{s: s},
		Semesters:        &semesterRepo{s: s},
		SemesterLectures: &semesterLectureRepo{s: s},
		Catalog:          &catalogRepo{s: s},
		Requirements:     &planRequirementRepo{s: s},
		History:          &historyRepo{s: s},
	}
}

// Seeding helpers. Each takes the store lock and assigns an id when the
// given one is zero.

// AddUser registers a user with the given entrance year.
func (s *Store) AddUser(id, entranceYear int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[id] = entranceYear
}

// AddMajor stores a major and returns its id.
func (s *Store) AddMajor(m model.Major) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == 0 {
		m.ID = s.data.nextID()
	}
	s.bumpSeq(m.ID)
	s.data.majors[m.ID] = m
	return m.ID
}

// AddLecture stores a lecture and returns its id.
func (s *Store) AddLecture(l model.Lecture) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.data.nextID()
	}
	s.bumpSeq(l.ID)
	s.data.lectures[l.ID] = l
	return l.ID
}

// AddMajorLecture stores a major/lecture link.
func (s *Store) AddMajorLecture(ml model.MajorLecture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ml.ID == 0 {
		ml.ID = s.data.nextID()
	}
	s.data.majorLectures = append(s.data.majorLectures, ml)
}

// AddLectureCredit stores a credit override.
func (s *Store) AddLectureCredit(lc model.LectureCredit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lc.ID == 0 {
		lc.ID = s.data.nextID()
	}
	s.data.lectureCredits = append(s.data.lectureCredits, lc)
}

// AddRequirement stores a graduation requirement and returns its id.
func (s *Store) AddRequirement(r model.Requirement) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.data.nextID()
	}
	s.bumpSeq(r.ID)
	s.data.requirements[r.ID] = r
	return r.ID
}

// AddPlan stores a plan and returns its id.
func (s *Store) AddPlan(p model.Plan) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.data.nextID()
	}
	s.bumpSeq(p.ID)
	s.data.plans[p.ID] = p
	return p.ID
}

// AddPlanMajor attaches a major to a plan.
func (s *Store) AddPlanMajor(planID, majorID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.planMajors[planID] == nil {
		s.data.planMajors[planID] = map[int]bool{}
	}
	s.data.planMajors[planID][majorID] = true
}

// AddPlanRequirement stores a plan requirement and returns its id.
func (s *Store) AddPlanRequirement(pr model.PlanRequirement) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pr.ID == 0 {
		pr.ID = s.data.nextID()
	}
	s.bumpSeq(pr.ID)
	s.data.planRequirements[pr.ID] = pr
	return pr.ID
}

// AddSemester stores a semester and returns its id.
func (s *Store) AddSemester(sem model.Semester) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sem.ID == 0 {
		sem.ID = s.data.nextID()
	}
	s.bumpSeq(sem.ID)
	s.data.semesters[sem.ID] = sem
	return sem.ID
}

// AddSemesterLecture stores an enrollment as-is and returns its id.
func (s *Store) AddSemesterLecture(sl model.SemesterLecture) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl.ID == 0 {
		sl.ID = s.data.nextID()
	}
	s.bumpSeq(sl.ID)
	s.data.semesterLectures[sl.ID] = sl
	return sl.ID
}

func (s *Store) bumpSeq(id int) {
	if id > s.data.seq {
		s.data.seq = id
	}
}

// Read helpers for assertions.

// Plan returns a stored plan.
func (s *Store) Plan(id int) (model.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.plans[id]
	if ok {
		p.EntranceYear = s.data.users[p.UserID]
	}
	return p, ok
}

// PlanIDs returns every plan id in ascending order.
func (s *Store) PlanIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.data.plans)
}

// PlanMajorIDs returns the ids of the majors attached to a plan.
func (s *Store) PlanMajorIDs(planID int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.data.planMajors[planID])
}

// Semester returns a stored semester.
func (s *Store) Semester(id int) (model.Semester, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sem, ok := s.data.semesters[id]
	return sem, ok
}

// Semesters returns a plan's semesters ordered by id.
func (s *Store) Semesters(planID int) []model.Semester {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Semester
	for _, id := range sortedKeys(s.data.semesters) {
		if sem := s.data.semesters[id]; sem.PlanID == planID {
			out = append(out, sem)
		}
	}
	return out
}

// SemesterLecture returns a stored enrollment.
func (s *Store) SemesterLecture(id int) (model.SemesterLecture, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.data.semesterLectures[id]
	return sl, ok
}

// SemesterLectures returns a semester's enrollments ordered by id.
func (s *Store) SemesterLectures(semesterID int) []model.SemesterLecture {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SemesterLecture
	for _, id := range sortedKeys(s.data.semesterLectures) {
		if sl := s.data.semesterLectures[id]; sl.SemesterID == semesterID {
			out = append(out, sl)
		}
	}
	return out
}

// PlanRequirements returns a plan's requirement rows ordered by id.
func (s *Store) PlanRequirements(planID int) []model.PlanRequirement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planRequirements(planID)
}

// LectureTypeHistory returns every lecture-type history row.
func (s *Store) LectureTypeHistory() []model.LectureTypeChangeHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LectureTypeChangeHistory, 0, len(s.data.ltHistory))
	for _, h := range s.data.ltHistory {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreditHistory returns every credit history row.
func (s *Store) CreditHistory() []model.CreditChangeHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CreditChangeHistory, 0, len(s.data.creditHistory))
	for _, h := range s.data.creditHistory {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RequirementHistory returns every requirement history row.
func (s *Store) RequirementHistory() []model.RequirementChangeHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.RequirementChangeHistory, 0, len(s.data.reqHistory))
	for _, h := range s.data.reqHistory {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) planRequirements(planID int) []model.PlanRequirement {
	var out []model.PlanRequirement
	for _, id := range sortedKeys(s.data.planRequirements) {
		pr := s.data.planRequirements[id]
		if pr.PlanID != planID {
			continue
		}
		if req, ok := s.data.requirements[pr.RequirementID]; ok {
			pr.MajorID = req.MajorID
			pr.RequirementType = req.RequirementType
			pr.DefaultCredit = req.RequiredCredit
		}
		out = append(out, pr)
	}
	return out
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
