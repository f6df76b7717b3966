package memstore

import (
	"context"
	"time"

	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/repository"
)

var (
	_ repository.TxManager                = (*Store)(nil)
	_ repository.PlanRepository            = (*planRepo)(nil)
	_ repository.SemesterRepository        = (*semesterRepo)(nil)
	_ repository.SemesterLectureRepository = (*semesterLectureRepo)(nil)
	_ repository.CatalogRepository         = (*catalogRepo)(nil)
	_ repository.PlanRequirementRepository = (*planRequirementRepo)(nil)
	_ repository.HistoryRepository         = (*historyRepo)(nil)
)

// Repositories below run with the store lock held by RunInTx.

type planRepo struct{ s *Store }

func (r *planRepo) GetByID(_ context.Context, id int) (*model.Plan, error) {
	p, ok := r.s.data.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.EntranceYear = r.s.data.users[p.UserID]
	return &p, nil
}

func (r *planRepo) LockByID(ctx context.Context, id int) (*model.Plan, error) {
	return r.GetByID(ctx, id)
}

func (r *planRepo) Create(_ context.Context, plan *model.Plan) error {
	if err := r.s.failure("plans.Create"); err != nil {
		return err
	}
	now := time.Now()
	plan.ID = r.s.data.nextID()
	plan.CreatedAt, plan.UpdatedAt = now, now
	plan.EntranceYear = r.s.data.users[plan.UserID]
	r.s.data.plans[plan.ID] = *plan
	return nil
}

func (r *planRepo) SetFirstSimulation(_ context.Context, planID int, first bool) error {
	p, ok := r.s.data.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsFirstSimulation = first
	p.UpdatedAt = time.Now()
	r.s.data.plans[planID] = p
	return nil
}

func (r *planRepo) ListIDsByEntranceYear(_ context.Context, entranceYear int) ([]int, error) {
	var ids []int
	for _, id := range sortedKeys(r.s.data.plans) {
		if r.s.data.users[r.s.data.plans[id].UserID] == entranceYear {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *planRepo) ListMajors(_ context.Context, planID int) ([]model.Major, error) {
	var majors []model.Major
	for _, id := range sortedKeys(r.s.data.planMajors[planID]) {
		if m, ok := r.s.data.majors[id]; ok {
			majors = append(majors, m)
		}
	}
	model.SortMajorsByPriority(majors)
	return majors, nil
}

func (r *planRepo) AddMajors(_ context.Context, planID int, majorIDs []int) error {
	if err := r.s.failure("plans.AddMajors"); err != nil {
		return err
	}
	if r.s.data.planMajors[planID] == nil {
		r.s.data.planMajors[planID] = map[int]bool{}
	}
	for _, id := range majorIDs {
		r.s.data.planMajors[planID][id] = true
	}
	return nil
}

func (r *planRepo) DeleteMajors(_ context.Context, planID int) error {
	delete(r.s.data.planMajors, planID)
	return nil
}

type semesterRepo struct{ s *Store }

func (r *semesterRepo) GetByID(_ context.Context, id int) (*model.Semester, error) {
	sem, ok := r.s.data.semesters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sem, nil
}

func (r *semesterRepo) ListByPlan(_ context.Context, planID int) ([]*model.Semester, error) {
	var out []*model.Semester
	for _, id := range sortedKeys(r.s.data.semesters) {
		sem := r.s.data.semesters[id]
		if sem.PlanID == planID {
			out = append(out, &sem)
		}
	}
	return out, nil
}

func (r *semesterRepo) Create(_ context.Context, sem *model.Semester) error {
	now := time.Now()
	sem.ID = r.s.data.nextID()
	sem.CreatedAt, sem.UpdatedAt = now, now
	r.s.data.semesters[sem.ID] = *sem
	return nil
}

func (r *semesterRepo) BulkUpdateCredits(_ context.Context, sems []*model.Semester) error {
	if err := r.s.failure("semesters.BulkUpdateCredits"); err != nil {
		return err
	}
	now := time.Now()
	for _, sem := range sems {
		stored, ok := r.s.data.semesters[sem.ID]
		if !ok {
			continue
		}
		stored.MajorRequirementCredit = sem.MajorRequirementCredit
		stored.MajorElectiveCredit = sem.MajorElectiveCredit
		stored.GeneralCredit = sem.GeneralCredit
		stored.GeneralElectiveCredit = sem.GeneralElectiveCredit
		stored.UpdatedAt = now
		r.s.data.semesters[sem.ID] = stored
	}
	return nil
}

type semesterLectureRepo struct{ s *Store }

func (r *semesterLectureRepo) GetByID(_ context.Context, id int) (*model.SemesterLecture, error) {
	sl, ok := r.s.data.semesterLectures[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sl, nil
}

func (r *semesterLectureRepo) ListBySemesters(_ context.Context, semesterIDs []int) ([]*model.SemesterLecture, error) {
	in := make(map[int]bool, len(semesterIDs))
	for _, id := range semesterIDs {
		in[id] = true
	}
	var out []*model.SemesterLecture
	for _, id := range sortedKeys(r.s.data.semesterLectures) {
		sl := r.s.data.semesterLectures[id]
		if in[sl.SemesterID] {
			out = append(out, &sl)
		}
	}
	return out, nil
}

func (r *semesterLectureRepo) Create(_ context.Context, sl *model.SemesterLecture) error {
	if err := r.s.failure("semester_lectures.Create"); err != nil {
		return err
	}
	seq := 0
	for _, other := range r.s.data.semesterLectures {
		if other.SemesterID == sl.SemesterID && other.RecentSequence > seq {
			seq = other.RecentSequence
		}
	}
	now := time.Now()
	sl.ID = r.s.data.nextID()
	sl.RecentSequence = seq + 1
	sl.CreatedAt, sl.UpdatedAt = now, now
	r.s.data.semesterLectures[sl.ID] = *sl
	return nil
}

func (r *semesterLectureRepo) Update(_ context.Context, sl *model.SemesterLecture) error {
	if err := r.s.failure("semester_lectures.Update"); err != nil {
		return err
	}
	if _, ok := r.s.data.semesterLectures[sl.ID]; !ok {
		return repository.ErrNotFound
	}
	sl.UpdatedAt = time.Now()
	r.s.data.semesterLectures[sl.ID] = *sl
	return nil
}

func (r *semesterLectureRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.s.data.semesterLectures[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.semesterLectures, id)
	return nil
}

func (r *semesterLectureRepo) BulkUpdate(_ context.Context, lectures []*model.SemesterLecture) error {
	if err := r.s.failure("semester_lectures.BulkUpdate"); err != nil {
		return err
	}
	now := time.Now()
	for _, sl := range lectures {
		stored, ok := r.s.data.semesterLectures[sl.ID]
		if !ok {
			continue
		}
		stored.LectureType = sl.LectureType
		stored.RecognizedMajor1 = sl.RecognizedMajor1
		stored.LectureType1 = sl.LectureType1
		stored.RecognizedMajor2 = sl.RecognizedMajor2
		stored.LectureType2 = sl.LectureType2
		stored.Credit = sl.Credit
		stored.UpdatedAt = now
		r.s.data.semesterLectures[sl.ID] = stored
	}
	return nil
}

func (r *semesterLectureRepo) BulkCreate(_ context.Context, lectures []*model.SemesterLecture) error {
	now := time.Now()
	for _, sl := range lectures {
		row := *sl
		row.ID = r.s.data.nextID()
		row.CreatedAt, row.UpdatedAt = now, now
		r.s.data.semesterLectures[row.ID] = row
	}
	return nil
}

type catalogRepo struct{ s *Store }

func (r *catalogRepo) GetMajor(_ context.Context, id int) (*model.Major, error) {
	m, ok := r.s.data.majors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *catalogRepo) GetMajorByNameType(_ context.Context, name string, majorType model.MajorType) (*model.Major, error) {
	for _, id := range sortedKeys(r.s.data.majors) {
		m := r.s.data.majors[id]
		if m.Name == name && m.Type == majorType {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *catalogRepo) GetLecture(_ context.Context, id int) (*model.Lecture, error) {
	l, ok := r.s.data.lectures[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r *catalogRepo) ListMajorLectures(_ context.Context, majorIDs, lectureIDs []int) ([]model.MajorLecture, error) {
	majors := intSet(majorIDs)
	lectures := intSet(lectureIDs)
	var out []model.MajorLecture
	for _, ml := range r.s.data.majorLectures {
		if majors[ml.MajorID] && lectures[ml.LectureID] {
			out = append(out, ml)
		}
	}
	return out, nil
}

func (r *catalogRepo) ListLectureCredits(_ context.Context, lectureIDs []int) ([]model.LectureCredit, error) {
	lectures := intSet(lectureIDs)
	var out []model.LectureCredit
	for _, lc := range r.s.data.lectureCredits {
		if lectures[lc.LectureID] {
			out = append(out, lc)
		}
	}
	return out, nil
}

func (r *catalogRepo) ListRequirements(_ context.Context, majorIDs []int, entranceYear int) ([]model.Requirement, error) {
	majors := intSet(majorIDs)
	var out []model.Requirement
	for _, id := range sortedKeys(r.s.data.requirements) {
		req := r.s.data.requirements[id]
		if majors[req.MajorID] && req.ValidAt(entranceYear) {
			out = append(out, req)
		}
	}
	return out, nil
}

type planRequirementRepo struct{ s *Store }

func (r *planRequirementRepo) ListByPlan(_ context.Context, planID int) ([]model.PlanRequirement, error) {
	return r.s.planRequirements(planID), nil
}

func (r *planRequirementRepo) BulkCreate(_ context.Context, rows []model.PlanRequirement) error {
	if err := r.s.failure("plan_requirements.BulkCreate"); err != nil {
		return err
	}
	for _, pr := range rows {
		pr.ID = r.s.data.nextID()
		r.s.data.planRequirements[pr.ID] = pr
	}
	return nil
}

func (r *planRequirementRepo) DeleteByPlan(_ context.Context, planID int) error {
	for id, pr := range r.s.data.planRequirements {
		if pr.PlanID == planID {
			delete(r.s.data.planRequirements, id)
		}
	}
	return nil
}

func (r *planRequirementRepo) BulkUpdateEarned(_ context.Context, rows []model.PlanRequirement) error {
	if err := r.s.failure("plan_requirements.BulkUpdateEarned"); err != nil {
		return err
	}
	for _, pr := range rows {
		stored, ok := r.s.data.planRequirements[pr.ID]
		if !ok {
			continue
		}
		stored.EarnedCredit = pr.EarnedCredit
		r.s.data.planRequirements[pr.ID] = stored
	}
	return nil
}

func (r *planRequirementRepo) BulkUpdateTargets(_ context.Context, rows []model.PlanRequirement) error {
	if err := r.s.failure("plan_requirements.BulkUpdateTargets"); err != nil {
		return err
	}
	for _, pr := range rows {
		stored, ok := r.s.data.planRequirements[pr.ID]
		if !ok {
			continue
		}
		stored.RequiredCredit = pr.RequiredCredit
		stored.AutoCalculate = pr.AutoCalculate
		r.s.data.planRequirements[pr.ID] = stored
	}
	return nil
}

type historyRepo struct{ s *Store }

func (r *historyRepo) UpsertLectureTypeChanges(_ context.Context, rows []model.LectureTypeChangeHistory) error {
	if err := r.s.failure("history.UpsertLectureTypeChanges"); err != nil {
		return err
	}
	now := time.Now()
	for _, h := range rows {
		k := ltKey{h.MajorID, h.LectureID, h.EntranceYear, h.PastLectureType, h.CurrLectureType}
		stored, ok := r.s.data.ltHistory[k]
		if !ok {
			stored = h
			stored.ID = r.s.data.nextID()
			stored.ChangeCount = 0
		}
		stored.ChangeCount += h.ChangeCount
		stored.UpdatedAt = now
		r.s.data.ltHistory[k] = stored
	}
	return nil
}

func (r *historyRepo) UpsertCreditChanges(_ context.Context, rows []model.CreditChangeHistory) error {
	if err := r.s.failure("history.UpsertCreditChanges"); err != nil {
		return err
	}
	now := time.Now()
	for _, h := range rows {
		k := creditKey{h.MajorID, h.LectureID, h.EntranceYear, h.YearTaken, h.PastCredit, h.CurrCredit}
		stored, ok := r.s.data.creditHistory[k]
		if !ok {
			stored = h
			stored.ID = r.s.data.nextID()
			stored.ChangeCount = 0
		}
		stored.ChangeCount += h.ChangeCount
		stored.UpdatedAt = now
		r.s.data.creditHistory[k] = stored
	}
	return nil
}

func (r *historyRepo) UpsertRequirementChanges(_ context.Context, rows []model.RequirementChangeHistory) error {
	if err := r.s.failure("history.UpsertRequirementChanges"); err != nil {
		return err
	}
	now := time.Now()
	for _, h := range rows {
		k := reqKey{h.RequirementID, h.EntranceYear, h.PastRequiredCredit, h.CurrRequiredCredit}
		stored, ok := r.s.data.reqHistory[k]
		if !ok {
			stored = h
			stored.ID = r.s.data.nextID()
			stored.ChangeCount = 0
		}
		stored.ChangeCount += h.ChangeCount
		stored.UpdatedAt = now
		r.s.data.reqHistory[k] = stored
	}
	return nil
}

func intSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
