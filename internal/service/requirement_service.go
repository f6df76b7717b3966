package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gradplan/planner-backend/internal/engine"
	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/repository"
)

// RequirementService reports and edits the graduation requirements of a plan.
type RequirementService struct {
	tx          repository.TxManager
	cache       RequirementCache
	noneMajorID int
	log         zerolog.Logger
}

// NewRequirementService creates a new RequirementService. cache may be nil.
func NewRequirementService(tx repository.TxManager, cache RequirementCache, noneMajorID int, log zerolog.Logger) *RequirementService {
	return &RequirementService{
		tx:          tx,
		cache:       cache,
		noneMajorID: noneMajorID,
		log:         log.With().Str("component", "requirement_service").Logger(),
	}
}

// CheckRequirements returns the configured credit targets of a plan.
func (s *RequirementService) CheckRequirements(ctx context.Context, userID, planID int) (*model.RequirementCheck, error) {
	if s.cache != nil {
		if ownerID, check, ok := s.cache.GetRequirementCheck(ctx, planID); ok {
			if ownerID != userID {
				return nil, ErrNotOwner
			}
			return check, nil
		}
	}

	var check *model.RequirementCheck
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		plan, err := r.Plans.GetByID(ctx, planID)
		if err != nil {
			return mapNotFound(err, ErrPlanNotFound)
		}
		if plan.UserID != userID {
			return ErrNotOwner
		}

		majors, err := r.Plans.ListMajors(ctx, planID)
		if err != nil {
			return fmt.Errorf("list plan majors: %w", err)
		}
		rows, err := r.Requirements.ListByPlan(ctx, planID)
		if err != nil {
			return fmt.Errorf("list plan requirements: %w", err)
		}

		syncAutoTargets(rows)
		check = buildCheck(plan, majors, rows)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetRequirementCheck(ctx, planID, userID, check)
	}
	return check, nil
}

func buildCheck(plan *model.Plan, majors []model.Major, rows []model.PlanRequirement) *model.RequirementCheck {
	check := &model.RequirementCheck{
		Majors:            make([]model.MajorRequirementCheck, 0, len(majors)),
		All:               engine.MaxRequired(rows, model.RequirementTypeAll),
		General:           engine.MaxRequired(rows, model.RequirementTypeGeneral),
		IsFirstSimulation: plan.IsFirstSimulation,
	}
	for _, m := range majors {
		mc := model.MajorRequirementCheck{MajorName: m.Name, MajorType: m.Type}
		if row, ok := strictestRow(rows, m.ID, model.RequirementTypeMajorAll); ok {
			mc.MajorAll, mc.MajorAllAutoCalculate = row.RequiredCredit, row.AutoCalculate
		}
		if row, ok := strictestRow(rows, m.ID, model.RequirementTypeMajorRequirement); ok {
			mc.MajorRequirement, mc.MajorRequirementAutoCalculate = row.RequiredCredit, row.AutoCalculate
		}
		check.Majors = append(check.Majors, mc)
	}
	return check
}

// syncAutoTargets moves every auto-calculated row onto its catalog default
// and returns the rows that moved.
func syncAutoTargets(rows []model.PlanRequirement) []model.PlanRequirement {
	var moved []model.PlanRequirement
	for i := range rows {
		if rows[i].AutoCalculate && rows[i].RequiredCredit != rows[i].DefaultCredit {
			rows[i].RequiredCredit = rows[i].DefaultCredit
			moved = append(moved, rows[i])
		}
	}
	return moved
}

// strictestRow returns the row of a major and type with the largest target.
func strictestRow(rows []model.PlanRequirement, majorID int, rt model.RequirementType) (model.PlanRequirement, bool) {
	var (
		best  model.PlanRequirement
		found bool
	)
	for _, row := range rows {
		if row.MajorID != majorID || row.RequirementType != rt {
			continue
		}
		if !found || row.RequiredCredit > best.RequiredCredit {
			best, found = row, true
		}
	}
	return best, found
}

// CalculateRequirementProgress recomputes the earned credit of every
// requirement row from the plan's enrollments, persists it, and returns the
// progress ratios. The first run clears the plan's first-simulation flag.
func (s *RequirementService) CalculateRequirementProgress(ctx context.Context, userID, planID int) (*model.RequirementProgress, error) {
	var progress *model.RequirementProgress
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		plan, err := ownedPlan(ctx, r, userID, planID)
		if err != nil {
			return err
		}

		majors, err := r.Plans.ListMajors(ctx, planID)
		if err != nil {
			return fmt.Errorf("list plan majors: %w", err)
		}
		semesters, err := r.Semesters.ListByPlan(ctx, planID)
		if err != nil {
			return fmt.Errorf("list semesters: %w", err)
		}
		lectures, err := r.SemesterLectures.ListBySemesters(ctx, semesterIDs(semesters))
		if err != nil {
			return fmt.Errorf("list semester lectures: %w", err)
		}
		rows, err := r.Requirements.ListByPlan(ctx, planID)
		if err != nil {
			return fmt.Errorf("list plan requirements: %w", err)
		}

		if err := r.Requirements.BulkUpdateTargets(ctx, syncAutoTargets(rows)); err != nil {
			return fmt.Errorf("bulk update auto targets: %w", err)
		}
		tally := engine.TallyLectures(lectures, s.noneMajorID)
		for i := range rows {
			rows[i].EarnedCredit = tally.EarnedFor(rows[i])
		}
		if err := r.Requirements.BulkUpdateEarned(ctx, rows); err != nil {
			return fmt.Errorf("bulk update earned credit: %w", err)
		}
		if plan.IsFirstSimulation {
			if err := r.Plans.SetFirstSimulation(ctx, planID, false); err != nil {
				return fmt.Errorf("clear first simulation: %w", err)
			}
		}

		progress = buildProgress(majors, rows, tally)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, planID)
	return progress, nil
}

func buildProgress(majors []model.Major, rows []model.PlanRequirement, tally engine.Tally) *model.RequirementProgress {
	progress := &model.RequirementProgress{
		AllProgress: model.AllProgress{
			All:     engine.Item(tally.All, engine.MaxRequired(rows, model.RequirementTypeAll)),
			General: engine.Item(tally.General, engine.MaxRequired(rows, model.RequirementTypeGeneral)),
		},
		MajorProgress: make([]model.MajorProgress, 0, len(majors)),
	}
	for _, m := range majors {
		mp := model.MajorProgress{MajorName: m.Name, MajorType: m.Type}
		allRow, _ := strictestRow(rows, m.ID, model.RequirementTypeMajorAll)
		reqRow, _ := strictestRow(rows, m.ID, model.RequirementTypeMajorRequirement)
		mp.MajorAll = engine.Item(tally.MajorAll[m.ID], allRow.RequiredCredit)
		mp.MajorRequirement = engine.Item(tally.MajorRequirement[m.ID], reqRow.RequiredCredit)
		progress.MajorProgress = append(progress.MajorProgress, mp)
	}
	return progress
}

// UpdateRequirementCredits edits the credit targets of a plan. Every changed
// target is recorded in the requirement history before it is written.
// AutoCalculate resets a major's targets to the cohort defaults.
func (s *RequirementService) UpdateRequirementCredits(ctx context.Context, userID, planID int, req model.UpdateRequirementRequest) (*model.RequirementUpdateResult, error) {
	if err := validateMajorEdits(req.Majors); err != nil {
		return nil, err
	}

	history := engine.NewHistoryLog()
	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		plan, err := ownedPlan(ctx, r, userID, planID)
		if err != nil {
			return err
		}

		majors, err := r.Plans.ListMajors(ctx, planID)
		if err != nil {
			return fmt.Errorf("list plan majors: %w", err)
		}
		rows, err := r.Requirements.ListByPlan(ctx, planID)
		if err != nil {
			return fmt.Errorf("list plan requirements: %w", err)
		}

		edited := make(map[int]bool)
		apply := func(i int, credit int, auto bool) {
			row := &rows[i]
			history.RecordRequirementCreditChange(row.RequirementID, plan.EntranceYear, row.RequiredCredit, credit)
			if row.RequiredCredit != credit || row.AutoCalculate != auto {
				row.RequiredCredit, row.AutoCalculate = credit, auto
				edited[i] = true
			}
		}

		for _, edit := range req.Majors {
			majorID, ok := findMajor(majors, edit.MajorName, edit.MajorType)
			if !ok {
				return fmt.Errorf("%w: %s (%s)", ErrMajorNotOnPlan, edit.MajorName, edit.MajorType)
			}
			for i, row := range rows {
				if row.MajorID != majorID {
					continue
				}
				switch row.RequirementType {
				case model.RequirementTypeMajorAll:
					if edit.AutoCalculate != nil && *edit.AutoCalculate {
						apply(i, row.DefaultCredit, true)
					} else if edit.MajorAllCredit != nil {
						apply(i, *edit.MajorAllCredit, false)
					}
				case model.RequirementTypeMajorRequirement:
					if edit.AutoCalculate != nil && *edit.AutoCalculate {
						apply(i, row.DefaultCredit, true)
					} else if edit.MajorRequirementCredit != nil {
						apply(i, *edit.MajorRequirementCredit, false)
					}
				}
			}
		}
		for i, row := range rows {
			switch {
			case row.RequirementType == model.RequirementTypeAll && req.AllCredit != nil:
				apply(i, *req.AllCredit, false)
			case row.RequirementType == model.RequirementTypeGeneral && req.GeneralCredit != nil:
				apply(i, *req.GeneralCredit, false)
			}
		}

		changed := make([]model.PlanRequirement, 0, len(edited))
		for i := range rows {
			if edited[i] {
				changed = append(changed, rows[i])
			}
		}
		if err := persistHistory(ctx, r.History, history); err != nil {
			return err
		}
		if err := r.Requirements.BulkUpdateTargets(ctx, changed); err != nil {
			return fmt.Errorf("bulk update requirement targets: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, planID)
	s.log.Debug().
		Int("plan_id", planID).
		Int("history_rows", len(history.RequirementChanges())).
		Msg("requirement credits updated")

	return &model.RequirementUpdateResult{
		Majors:        req.Majors,
		AllCredit:     req.AllCredit,
		GeneralCredit: req.GeneralCredit,
	}, nil
}

func validateMajorEdits(edits []model.MajorCreditEdit) error {
	fields := make(map[string]string)
	for i, edit := range edits {
		if edit.MajorName == "" {
			fields[fmt.Sprintf("majors[%d].major_name", i)] = "required"
		}
		if edit.MajorType == "" {
			fields[fmt.Sprintf("majors[%d].major_type", i)] = "required"
		} else if !edit.MajorType.Valid() {
			fields[fmt.Sprintf("majors[%d].major_type", i)] = "unknown major type"
		}
	}
	if len(fields) > 0 {
		return &FieldError{Fields: fields}
	}
	return nil
}

func findMajor(majors []model.Major, name string, majorType model.MajorType) (int, bool) {
	for _, m := range majors {
		if m.Name == name && m.Type == majorType {
			return m.ID, true
		}
	}
	return 0, false
}

func (s *RequirementService) invalidate(ctx context.Context, planIDs ...int) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, planIDs...)
	}
}
