package service

import (
	"context"
	"fmt"

	"github.com/gradplan/planner-backend/internal/engine"
	"github.com/gradplan/planner-backend/internal/metrics"
	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/repository"
)

// ownedPlan locks the plan and checks that userID owns it.
func ownedPlan(ctx context.Context, r repository.Repos, userID, planID int) (*model.Plan, error) {
	plan, err := r.Plans.LockByID(ctx, planID)
	if err != nil {
		return nil, mapNotFound(err, ErrPlanNotFound)
	}
	if plan.UserID != userID {
		return nil, ErrNotOwner
	}
	return plan, nil
}

func ownedSemester(ctx context.Context, r repository.Repos, userID, semesterID int) (*model.Semester, *model.Plan, error) {
	sem, err := r.Semesters.GetByID(ctx, semesterID)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrSemesterNotFound)
	}
	plan, err := ownedPlan(ctx, r, userID, sem.PlanID)
	if err != nil {
		return nil, nil, err
	}
	return sem, plan, nil
}

func ownedSemesterLecture(ctx context.Context, r repository.Repos, userID, semesterLectureID int) (*model.SemesterLecture, *model.Semester, *model.Plan, error) {
	sl, err := r.SemesterLectures.GetByID(ctx, semesterLectureID)
	if err != nil {
		return nil, nil, nil, mapNotFound(err, ErrSemesterLectureNotFound)
	}
	sem, plan, err := ownedSemester(ctx, r, userID, sl.SemesterID)
	if err != nil {
		return nil, nil, nil, err
	}
	return sl, sem, plan, nil
}

// loadClassifier indexes the links and credit overrides needed to classify
// lectures for majors, in two queries.
func loadClassifier(ctx context.Context, r repository.Repos, majors []model.Major, lectures []*model.SemesterLecture, noneMajorID int) (*engine.Classifier, error) {
	lectureIDs := make([]int, 0, len(lectures))
	seen := make(map[int]bool, len(lectures))
	for _, sl := range lectures {
		if !seen[sl.LectureID] {
			seen[sl.LectureID] = true
			lectureIDs = append(lectureIDs, sl.LectureID)
		}
	}
	majorIDs := make([]int, 0, len(majors))
	for _, m := range majors {
		majorIDs = append(majorIDs, m.ID)
	}

	links, err := r.Catalog.ListMajorLectures(ctx, majorIDs, lectureIDs)
	if err != nil {
		return nil, fmt.Errorf("list major lectures: %w", err)
	}
	credits, err := r.Catalog.ListLectureCredits(ctx, lectureIDs)
	if err != nil {
		return nil, fmt.Errorf("list lecture credits: %w", err)
	}
	return engine.NewClassifier(engine.NewCatalog(links, credits), noneMajorID), nil
}

// persistHistory writes the coalesced rows of h, one bulk upsert per table.
func persistHistory(ctx context.Context, repo repository.HistoryRepository, h *engine.HistoryLog) error {
	if h == nil || h.Empty() {
		return nil
	}

	lectureTypes := h.LectureTypeChanges()
	if err := repo.UpsertLectureTypeChanges(ctx, lectureTypes); err != nil {
		return fmt.Errorf("persist lecture type history: %w", err)
	}
	credits := h.CreditChanges()
	if err := repo.UpsertCreditChanges(ctx, credits); err != nil {
		return fmt.Errorf("persist credit history: %w", err)
	}
	requirements := h.RequirementChanges()
	if err := repo.UpsertRequirementChanges(ctx, requirements); err != nil {
		return fmt.Errorf("persist requirement history: %w", err)
	}

	metrics.CountHistoryRows("lecture_type", len(lectureTypes))
	metrics.CountHistoryRows("credit", len(credits))
	metrics.CountHistoryRows("requirement", len(requirements))
	return nil
}

func filterSemester(semesters []*model.Semester, id int) []*model.Semester {
	for _, sem := range semesters {
		if sem.ID == id {
			return []*model.Semester{sem}
		}
	}
	return nil
}

func semesterIDs(semesters []*model.Semester) []int {
	ids := make([]int, 0, len(semesters))
	for _, sem := range semesters {
		ids = append(ids, sem.ID)
	}
	return ids
}

func groupBySemester(lectures []*model.SemesterLecture) map[int][]*model.SemesterLecture {
	out := make(map[int][]*model.SemesterLecture)
	for _, sl := range lectures {
		out[sl.SemesterID] = append(out[sl.SemesterID], sl)
	}
	return out
}
