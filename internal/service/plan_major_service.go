package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/repository"
)

// PlanMajorService manages the majors of a plan and the requirement rows that
// follow from them.
type PlanMajorService struct {
	tx          repository.TxManager
	cache       RequirementCache
	noneMajorID int
	log         zerolog.Logger
}

// NewPlanMajorService creates a new PlanMajorService. cache may be nil.
func NewPlanMajorService(tx repository.TxManager, cache RequirementCache, noneMajorID int, log zerolog.Logger) *PlanMajorService {
	return &PlanMajorService{
		tx:          tx,
		cache:       cache,
		noneMajorID: noneMajorID,
		log:         log.With().Str("component", "plan_major_service").Logger(),
	}
}

// AddPlanMajors attaches majors to the caller's plan, materializes their
// requirements for the owner's entrance year and recalculates the plan.
func (s *PlanMajorService) AddPlanMajors(ctx context.Context, userID, planID int, refs []model.MajorRef) (*model.PlanDetail, error) {
	if err := validateMajorRefs(refs); err != nil {
		return nil, err
	}

	var detail *model.PlanDetail
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		plan, err := ownedPlan(ctx, r, userID, planID)
		if err != nil {
			return err
		}

		added, err := resolveMajors(ctx, r, refs)
		if err != nil {
			return err
		}
		current, err := r.Plans.ListMajors(ctx, planID)
		if err != nil {
			return fmt.Errorf("list plan majors: %w", err)
		}
		if dup := duplicates(current, added); len(dup) > 0 {
			return &DuplicationError{Majors: dup}
		}

		if err := attachMajors(ctx, r, plan, added); err != nil {
			return err
		}
		detail, _, err = recalculateInTx(ctx, r, plan, nil, s.noneMajorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, planID)
	s.log.Info().Int("plan_id", planID).Int("majors", len(refs)).Msg("plan majors added")
	return detail, nil
}

// ReplacePlanMajors swaps every major of the caller's plan for refs. Existing
// requirement rows, including manual targets, are discarded and regenerated.
func (s *PlanMajorService) ReplacePlanMajors(ctx context.Context, userID, planID int, refs []model.MajorRef) (*model.PlanDetail, error) {
	if err := validateMajorRefs(refs); err != nil {
		return nil, err
	}

	var detail *model.PlanDetail
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		plan, err := ownedPlan(ctx, r, userID, planID)
		if err != nil {
			return err
		}

		majors, err := resolveMajors(ctx, r, refs)
		if err != nil {
			return err
		}
		if dup := duplicates(nil, majors); len(dup) > 0 {
			return &DuplicationError{Majors: dup}
		}

		if err := r.Requirements.DeleteByPlan(ctx, planID); err != nil {
			return fmt.Errorf("delete plan requirements: %w", err)
		}
		if err := r.Plans.DeleteMajors(ctx, planID); err != nil {
			return fmt.Errorf("delete plan majors: %w", err)
		}
		if err := attachMajors(ctx, r, plan, majors); err != nil {
			return err
		}
		detail, _, err = recalculateInTx(ctx, r, plan, nil, s.noneMajorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, planID)
	s.log.Info().Int("plan_id", planID).Int("majors", len(refs)).Msg("plan majors replaced")
	return detail, nil
}

// CopyPlan duplicates the caller's plan under a new name, with its majors,
// semesters, enrollments and requirement rows.
func (s *PlanMajorService) CopyPlan(ctx context.Context, userID, planID int, name string) (*model.Plan, error) {
	if name == "" {
		return nil, &FieldError{Fields: map[string]string{"plan_name": "required"}}
	}

	var copied *model.Plan
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		src, err := ownedPlan(ctx, r, userID, planID)
		if err != nil {
			return err
		}

		copied = &model.Plan{
			UserID:            src.UserID,
			PlanName:          name,
			IsFirstSimulation: src.IsFirstSimulation,
		}
		if err := r.Plans.Create(ctx, copied); err != nil {
			return fmt.Errorf("create plan: %w", err)
		}

		majors, err := r.Plans.ListMajors(ctx, src.ID)
		if err != nil {
			return fmt.Errorf("list plan majors: %w", err)
		}
		majorIDs := make([]int, 0, len(majors))
		for _, m := range majors {
			majorIDs = append(majorIDs, m.ID)
		}
		if err := r.Plans.AddMajors(ctx, copied.ID, majorIDs); err != nil {
			return fmt.Errorf("add plan majors: %w", err)
		}

		semesters, err := r.Semesters.ListByPlan(ctx, src.ID)
		if err != nil {
			return fmt.Errorf("list semesters: %w", err)
		}
		lectures, err := r.SemesterLectures.ListBySemesters(ctx, semesterIDs(semesters))
		if err != nil {
			return fmt.Errorf("list semester lectures: %w", err)
		}

		newIDs := make(map[int]int, len(semesters))
		for _, sem := range semesters {
			dup := *sem
			dup.ID = 0
			dup.PlanID = copied.ID
			if err := r.Semesters.Create(ctx, &dup); err != nil {
				return fmt.Errorf("create semester: %w", err)
			}
			newIDs[sem.ID] = dup.ID
		}

		dupLectures := make([]*model.SemesterLecture, 0, len(lectures))
		for _, sl := range lectures {
			dup := *sl
			dup.ID = 0
			dup.SemesterID = newIDs[sl.SemesterID]
			dupLectures = append(dupLectures, &dup)
		}
		if err := r.SemesterLectures.BulkCreate(ctx, dupLectures); err != nil {
			return fmt.Errorf("copy semester lectures: %w", err)
		}

		rows, err := r.Requirements.ListByPlan(ctx, src.ID)
		if err != nil {
			return fmt.Errorf("list plan requirements: %w", err)
		}
		for i := range rows {
			rows[i].ID = 0
			rows[i].PlanID = copied.ID
		}
		if err := r.Requirements.BulkCreate(ctx, rows); err != nil {
			return fmt.Errorf("copy plan requirements: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("plan_id", planID).Int("copy_id", copied.ID).Msg("plan copied")
	return copied, nil
}

func validateMajorRefs(refs []model.MajorRef) error {
	if len(refs) == 0 {
		return &FieldError{Fields: map[string]string{"majors": "at least one major is required"}}
	}
	fields := make(map[string]string)
	for i, ref := range refs {
		if ref.Name == "" {
			fields[fmt.Sprintf("majors[%d].major_name", i)] = "required"
		}
		if ref.Type == "" {
			fields[fmt.Sprintf("majors[%d].major_type", i)] = "required"
		} else if !ref.Type.Valid() {
			fields[fmt.Sprintf("majors[%d].major_type", i)] = "unknown major type"
		}
	}
	if len(fields) > 0 {
		return &FieldError{Fields: fields}
	}
	return nil
}

func resolveMajors(ctx context.Context, r repository.Repos, refs []model.MajorRef) ([]model.Major, error) {
	majors := make([]model.Major, 0, len(refs))
	for _, ref := range refs {
		m, err := r.Catalog.GetMajorByNameType(ctx, ref.Name, ref.Type)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrMajorNotFound, ref.Name, ref.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("get major: %w", err)
		}
		majors = append(majors, *m)
	}
	return majors, nil
}

// duplicates names the majors of added that are already in current or appear
// twice in added.
func duplicates(current, added []model.Major) []string {
	seen := make(map[int]bool, len(current)+len(added))
	for _, m := range current {
		seen[m.ID] = true
	}
	var dup []string
	for _, m := range added {
		if seen[m.ID] {
			dup = append(dup, fmt.Sprintf("%s (%s)", m.Name, m.Type))
			continue
		}
		seen[m.ID] = true
	}
	return dup
}

// attachMajors links majors to the plan and creates a requirement row for
// each of their requirements valid at the owner's entrance year.
func attachMajors(ctx context.Context, r repository.Repos, plan *model.Plan, majors []model.Major) error {
	majorIDs := make([]int, 0, len(majors))
	for _, m := range majors {
		majorIDs = append(majorIDs, m.ID)
	}
	if err := r.Plans.AddMajors(ctx, plan.ID, majorIDs); err != nil {
		return fmt.Errorf("add plan majors: %w", err)
	}

	reqs, err := r.Catalog.ListRequirements(ctx, majorIDs, plan.EntranceYear)
	if err != nil {
		return fmt.Errorf("list requirements: %w", err)
	}
	rows := make([]model.PlanRequirement, 0, len(reqs))
	for _, req := range reqs {
		rows = append(rows, model.PlanRequirement{
			PlanID:          plan.ID,
			RequirementID:   req.ID,
			RequiredCredit:  req.RequiredCredit,
			AutoCalculate:   true,
			MajorID:         req.MajorID,
			RequirementType: req.RequirementType,
			DefaultCredit:   req.RequiredCredit,
		})
	}
	if err := r.Requirements.BulkCreate(ctx, rows); err != nil {
		return fmt.Errorf("create plan requirements: %w", err)
	}
	return nil
}

func (s *PlanMajorService) invalidate(ctx context.Context, planIDs ...int) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, planIDs...)
	}
}
