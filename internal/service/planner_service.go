package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradplan/planner-backend/internal/engine"
	"github.com/gradplan/planner-backend/internal/metrics"
	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/repository"
)

// RequirementCache caches the requirement check view per plan.
type RequirementCache interface {
	GetRequirementCheck(ctx context.Context, planID int) (int, *model.RequirementCheck, bool)
	SetRequirementCheck(ctx context.Context, planID, ownerID int, check *model.RequirementCheck)
	Invalidate(ctx context.Context, planIDs ...int)
}

// PlannerService classifies the lectures of a plan and keeps the semester
// credit totals in step with the classifications.
type PlannerService struct {
	tx          repository.TxManager
	cache       RequirementCache
	noneMajorID int
	log         zerolog.Logger
}

// NewPlannerService creates a new PlannerService. cache may be nil.
func NewPlannerService(tx repository.TxManager, cache RequirementCache, noneMajorID int, log zerolog.Logger) *PlannerService {
	return &PlannerService{
		tx:          tx,
		cache:       cache,
		noneMajorID: noneMajorID,
		log:         log.With().Str("component", "planner_service").Logger(),
	}
}

// RecalculateLectureInfo reclassifies the non-modified lectures of the
// caller's plan, either all semesters or only semesterID.
func (s *PlannerService) RecalculateLectureInfo(ctx context.Context, userID, planID int, semesterID *int) (*model.PlanDetail, error) {
	return s.recalculate(ctx, planID, semesterID, func(plan *model.Plan) error {
		if plan.UserID != userID {
			return ErrNotOwner
		}
		return nil
	})
}

// RecalculatePlan is RecalculateLectureInfo without the ownership check, for
// background workers and operators.
func (s *PlannerService) RecalculatePlan(ctx context.Context, planID int, semesterID *int) (*model.PlanDetail, error) {
	return s.recalculate(ctx, planID, semesterID, nil)
}

func (s *PlannerService) recalculate(ctx context.Context, planID int, semesterID *int, authorize func(*model.Plan) error) (*model.PlanDetail, error) {
	start := time.Now()
	scope := metrics.ScopePlan
	if semesterID != nil {
		scope = metrics.ScopeSemester
	}

	var (
		detail *model.PlanDetail
		res    engine.Result
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		plan, err := r.Plans.LockByID(ctx, planID)
		if err != nil {
			return mapNotFound(err, ErrPlanNotFound)
		}
		if authorize != nil {
			if err := authorize(plan); err != nil {
				return err
			}
		}

		detail, res, err = recalculateInTx(ctx, r, plan, semesterID, s.noneMajorID)
		return err
	})
	metrics.ObserveRecalculation(scope, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	for _, sl := range res.Lectures {
		metrics.CountClassification(string(sl.LectureType))
	}
	s.invalidate(ctx, planID)

	s.log.Debug().
		Int("plan_id", planID).
		Int("semesters", len(res.Semesters)).
		Int("lectures", len(res.Lectures)).
		Int("changed", res.Changed).
		Int("skipped", res.Skipped).
		Dur("elapsed", time.Since(start)).
		Msg("plan recalculated")

	return detail, nil
}

// recalculateInTx runs a recalculation of plan against the repositories of an
// open transaction and persists the outcome with one bulk write per entity.
func recalculateInTx(ctx context.Context, r repository.Repos, plan *model.Plan, semesterID *int, noneMajorID int) (*model.PlanDetail, engine.Result, error) {
	majors, err := r.Plans.ListMajors(ctx, plan.ID)
	if err != nil {
		return nil, engine.Result{}, fmt.Errorf("list plan majors: %w", err)
	}

	semesters, err := r.Semesters.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, engine.Result{}, fmt.Errorf("list semesters: %w", err)
	}
	if semesterID != nil {
		semesters = filterSemester(semesters, *semesterID)
		if len(semesters) == 0 {
			return nil, engine.Result{}, ErrSemesterNotFound
		}
	}

	lectures, err := r.SemesterLectures.ListBySemesters(ctx, semesterIDs(semesters))
	if err != nil {
		return nil, engine.Result{}, fmt.Errorf("list semester lectures: %w", err)
	}

	classifier, err := loadClassifier(ctx, r, majors, lectures, noneMajorID)
	if err != nil {
		return nil, engine.Result{}, err
	}

	in := engine.PlanInput{
		EntranceYear: plan.EntranceYear,
		Majors:       majors,
		Semesters:    semesters,
		Lectures:     groupBySemester(lectures),
	}
	history := engine.NewHistoryLog()
	res := engine.Recalculate(classifier, in, history)

	if err := r.SemesterLectures.BulkUpdate(ctx, res.Lectures); err != nil {
		return nil, res, fmt.Errorf("bulk update semester lectures: %w", err)
	}
	if err := r.Semesters.BulkUpdateCredits(ctx, res.Semesters); err != nil {
		return nil, res, fmt.Errorf("bulk update semesters: %w", err)
	}
	if err := persistHistory(ctx, r.History, history); err != nil {
		return nil, res, err
	}

	detail := &model.PlanDetail{Plan: plan, Majors: majors}
	for _, sem := range semesters {
		detail.Semesters = append(detail.Semesters, model.SemesterDetail{
			Semester: sem,
			Lectures: in.Lectures[sem.ID],
		})
	}
	return detail, res, nil
}

// AddSemesterLecture enrolls a lecture into a semester of the caller's plan
// and classifies it immediately.
func (s *PlannerService) AddSemesterLecture(ctx context.Context, userID, semesterID, lectureID int) (*model.SemesterLecture, error) {
	var (
		sl     *model.SemesterLecture
		planID int
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		sem, plan, err := ownedSemester(ctx, r, userID, semesterID)
		if err != nil {
			return err
		}
		planID = plan.ID

		lecture, err := r.Catalog.GetLecture(ctx, lectureID)
		if err != nil {
			return mapNotFound(err, ErrLectureNotFound)
		}
		majors, err := r.Plans.ListMajors(ctx, plan.ID)
		if err != nil {
			return fmt.Errorf("list plan majors: %w", err)
		}

		sl = &model.SemesterLecture{
			SemesterID:       sem.ID,
			LectureID:        lecture.ID,
			LectureType:      lecture.LectureType,
			RecognizedMajor1: s.noneMajorID,
			LectureType1:     lecture.LectureType,
			RecognizedMajor2: s.noneMajorID,
			LectureType2:     model.LectureTypeNone,
			Credit:           lecture.Credit,
		}
		classifier, err := loadClassifier(ctx, r, majors, []*model.SemesterLecture{sl}, s.noneMajorID)
		if err != nil {
			return err
		}
		classifier.Assign(sl, majors, plan.EntranceYear, sem.Year)
		engine.AddCredits(sl, sem)

		if err := r.SemesterLectures.Create(ctx, sl); err != nil {
			return fmt.Errorf("create semester lecture: %w", err)
		}
		return r.Semesters.BulkUpdateCredits(ctx, []*model.Semester{sem})
	})
	if err != nil {
		return nil, err
	}

	metrics.CountClassification(string(sl.LectureType))
	s.invalidate(ctx, planID)
	return sl, nil
}

// RemoveSemesterLecture drops an enrollment and takes its credit out of the
// semester totals.
func (s *PlannerService) RemoveSemesterLecture(ctx context.Context, userID, semesterLectureID int) error {
	var planID int
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		sl, sem, plan, err := ownedSemesterLecture(ctx, r, userID, semesterLectureID)
		if err != nil {
			return err
		}
		planID = plan.ID

		engine.SubCredits(sl, sem)
		if err := r.SemesterLectures.Delete(ctx, sl.ID); err != nil {
			return mapNotFound(err, ErrSemesterLectureNotFound)
		}
		return r.Semesters.BulkUpdateCredits(ctx, []*model.Semester{sem})
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, planID)
	return nil
}

// OverrideSemesterLecture applies a manual classification. The enrollment is
// marked modified and automatic recalculation leaves it alone afterwards.
func (s *PlannerService) OverrideSemesterLecture(ctx context.Context, userID, semesterLectureID int, req model.OverrideSemesterLectureRequest) (*model.SemesterLecture, error) {
	var (
		sl     *model.SemesterLecture
		planID int
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var (
			sem  *model.Semester
			plan *model.Plan
			err  error
		)
		sl, sem, plan, err = ownedSemesterLecture(ctx, r, userID, semesterLectureID)
		if err != nil {
			return err
		}
		planID = plan.ID

		if req.RecognizedMajor1 != nil && req.LectureType == model.LectureTypeNone {
			return &FieldError{Fields: map[string]string{"recognized_major1": "must be empty when lecture_type is none"}}
		}
		if req.RecognizedMajor2 != nil && req.RecognizedMajor1 == nil {
			return &FieldError{Fields: map[string]string{"recognized_major2": "requires recognized_major1"}}
		}

		major1, err := s.resolvePlanMajor(ctx, r, plan.ID, req.RecognizedMajor1)
		if err != nil {
			return err
		}
		major2, err := s.resolvePlanMajor(ctx, r, plan.ID, req.RecognizedMajor2)
		if err != nil {
			return err
		}
		type2 := model.LectureTypeNone
		if major2 != s.noneMajorID {
			if major2 == major1 {
				return &FieldError{Fields: map[string]string{"recognized_major2": "must differ from recognized_major1"}}
			}
			if req.LectureType2 == "" || req.LectureType2 == model.LectureTypeNone {
				return &FieldError{Fields: map[string]string{"lecture_type2": "required when recognized_major2 is set"}}
			}
			type2 = req.LectureType2
		}

		before := engine.Snapshot(sl)
		engine.SubCredits(sl, sem)
		sl.LectureType = req.LectureType
		sl.RecognizedMajor1, sl.LectureType1 = major1, req.LectureType
		sl.RecognizedMajor2, sl.LectureType2 = major2, type2
		if req.Credit != nil {
			sl.Credit = *req.Credit
		}
		sl.IsModified = true
		engine.AddCredits(sl, sem)

		history := engine.NewHistoryLog()
		engine.RecordOutcome(history, s.noneMajorID, sl.LectureID, plan.EntranceYear, sem.Year,
			engine.Outcome{Before: before, After: engine.Snapshot(sl)})

		if err := r.SemesterLectures.Update(ctx, sl); err != nil {
			return mapNotFound(err, ErrSemesterLectureNotFound)
		}
		if err := r.Semesters.BulkUpdateCredits(ctx, []*model.Semester{sem}); err != nil {
			return err
		}
		return persistHistory(ctx, r.History, history)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, planID)
	return sl, nil
}

// ResetSemesterLecture returns a manually edited enrollment to automatic
// classification, starting again from the lecture's catalog type and credit.
func (s *PlannerService) ResetSemesterLecture(ctx context.Context, userID, semesterLectureID int) (*model.SemesterLecture, error) {
	var (
		sl     *model.SemesterLecture
		planID int
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var (
			sem  *model.Semester
			plan *model.Plan
			err  error
		)
		sl, sem, plan, err = ownedSemesterLecture(ctx, r, userID, semesterLectureID)
		if err != nil {
			return err
		}
		planID = plan.ID

		lecture, err := r.Catalog.GetLecture(ctx, sl.LectureID)
		if err != nil {
			return mapNotFound(err, ErrLectureNotFound)
		}
		majors, err := r.Plans.ListMajors(ctx, plan.ID)
		if err != nil {
			return fmt.Errorf("list plan majors: %w", err)
		}
		classifier, err := loadClassifier(ctx, r, majors, []*model.SemesterLecture{sl}, s.noneMajorID)
		if err != nil {
			return err
		}

		before := engine.Snapshot(sl)
		engine.SubCredits(sl, sem)
		sl.IsModified = false
		sl.LectureType = lecture.LectureType
		sl.Credit = lecture.Credit
		classifier.Assign(sl, majors, plan.EntranceYear, sem.Year)
		engine.AddCredits(sl, sem)

		history := engine.NewHistoryLog()
		engine.RecordOutcome(history, s.noneMajorID, sl.LectureID, plan.EntranceYear, sem.Year,
			engine.Outcome{Before: before, After: engine.Snapshot(sl)})

		if err := r.SemesterLectures.Update(ctx, sl); err != nil {
			return mapNotFound(err, ErrSemesterLectureNotFound)
		}
		if err := r.Semesters.BulkUpdateCredits(ctx, []*model.Semester{sem}); err != nil {
			return err
		}
		return persistHistory(ctx, r.History, history)
	})
	if err != nil {
		return nil, err
	}

	metrics.CountClassification(string(sl.LectureType))
	s.invalidate(ctx, planID)
	return sl, nil
}

// RepairSemesterTotals rebuilds every semester total of a plan from its
// enrollments. It is an operator tool and skips the ownership check.
func (s *PlannerService) RepairSemesterTotals(ctx context.Context, planID int) ([]*model.Semester, error) {
	var semesters []*model.Semester
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		if _, err := r.Plans.LockByID(ctx, planID); err != nil {
			return mapNotFound(err, ErrPlanNotFound)
		}

		var err error
		semesters, err = r.Semesters.ListByPlan(ctx, planID)
		if err != nil {
			return fmt.Errorf("list semesters: %w", err)
		}
		lectures, err := r.SemesterLectures.ListBySemesters(ctx, semesterIDs(semesters))
		if err != nil {
			return fmt.Errorf("list semester lectures: %w", err)
		}

		bySemester := groupBySemester(lectures)
		for _, sem := range semesters {
			engine.RecomputeTotals(sem, bySemester[sem.ID])
		}
		return r.Semesters.BulkUpdateCredits(ctx, semesters)
	})
	if err != nil {
		return nil, err
	}
	return semesters, nil
}

// resolvePlanMajor maps a major reference to a major id on the plan. A nil
// reference is the sentinel major.
func (s *PlannerService) resolvePlanMajor(ctx context.Context, r repository.Repos, planID int, ref *model.MajorRef) (int, error) {
	if ref == nil {
		return s.noneMajorID, nil
	}
	major, err := r.Catalog.GetMajorByNameType(ctx, ref.Name, ref.Type)
	if err != nil {
		return 0, mapNotFound(err, ErrMajorNotFound)
	}
	majors, err := r.Plans.ListMajors(ctx, planID)
	if err != nil {
		return 0, fmt.Errorf("list plan majors: %w", err)
	}
	for _, m := range majors {
		if m.ID == major.ID {
			return major.ID, nil
		}
	}
	return 0, ErrMajorNotOnPlan
}

func (s *PlannerService) invalidate(ctx context.Context, planIDs ...int) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, planIDs...)
	}
}
