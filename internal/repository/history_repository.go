package repository

import (
	"context"

	"github.com/gradplan/planner-backend/internal/model"
)

// HistoryRepository persists change history. Every write is an upsert on the
// row's natural key that adds the incoming ChangeCount to the stored one.
type HistoryRepository interface {
	UpsertLectureTypeChanges(ctx context.Context, rows []model.LectureTypeChangeHistory) error
	UpsertCreditChanges(ctx context.Context, rows []model.CreditChangeHistory) error
	UpsertRequirementChanges(ctx context.Context, rows []model.RequirementChangeHistory) error
}

type historyRepository struct {
	db DBTX
}

func (r *historyRepository) UpsertLectureTypeChanges(ctx context.Context, rows []model.LectureTypeChangeHistory) error {
	n := len(rows)
	if n == 0 {
		return nil
	}
	majors := make([]int, 0, n)
	lectures := make([]int, 0, n)
	years := make([]int, 0, n)
	past := make([]string, 0, n)
	curr := make([]string, 0, n)
	counts := make([]int, 0, n)
	for _, h := range rows {
		majors = append(majors, h.MajorID)
		lectures = append(lectures, h.LectureID)
		years = append(years, h.EntranceYear)
		past = append(past, string(h.PastLectureType))
		curr = append(curr, string(h.CurrLectureType))
		counts = append(counts, h.ChangeCount)
	}

	query := `
		INSERT INTO lecture_type_change_histories
			(major_id, lecture_id, entrance_year, past_lecture_type, curr_lecture_type, change_count)
		SELECT * FROM UNNEST($1::int[], $2::int[], $3::int[], $4::text[], $5::text[], $6::int[])
		ON CONFLICT (major_id, lecture_id, entrance_year, past_lecture_type, curr_lecture_type)
		DO UPDATE SET change_count = lecture_type_change_histories.change_count + EXCLUDED.change_count,
		              updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, majors, lectures, years, past, curr, counts)
	return err
}

func (r *historyRepository) UpsertCreditChanges(ctx context.Context, rows []model.CreditChangeHistory) error {
	n := len(rows)
	if n == 0 {
		return nil
	}
	majors := make([]int, 0, n)
	lectures := make([]int, 0, n)
	years := make([]int, 0, n)
	taken := make([]int, 0, n)
	past := make([]int, 0, n)
	curr := make([]int, 0, n)
	counts := make([]int, 0, n)
	for _, h := range rows {
		majors = append(majors, h.MajorID)
		lectures = append(lectures, h.LectureID)
		years = append(years, h.EntranceYear)
		taken = append(taken, h.YearTaken)
		past = append(past, h.PastCredit)
		curr = append(curr, h.CurrCredit)
		counts = append(counts, h.ChangeCount)
	}

	query := `
		INSERT INTO credit_change_histories
			(major_id, lecture_id, entrance_year, year_taken, past_credit, curr_credit, change_count)
		SELECT * FROM UNNEST($1::int[], $2::int[], $3::int[], $4::int[], $5::int[], $6::int[], $7::int[])
		ON CONFLICT (major_id, lecture_id, entrance_year, year_taken, past_credit, curr_credit)
		DO UPDATE SET change_count = credit_change_histories.change_count + EXCLUDED.change_count,
		              updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, majors, lectures, years, taken, past, curr, counts)
	return err
}

func (r *historyRepository) UpsertRequirementChanges(ctx context.Context, rows []model.RequirementChangeHistory) error {
	n := len(rows)
	if n == 0 {
		return nil
	}
	reqs := make([]int, 0, n)
	years := make([]int, 0, n)
	past := make([]int, 0, n)
	curr := make([]int, 0, n)
	counts := make([]int, 0, n)
	for _, h := range rows {
		reqs = append(reqs, h.RequirementID)
		years = append(years, h.EntranceYear)
		past = append(past, h.PastRequiredCredit)
		curr = append(curr, h.CurrRequiredCredit)
		counts = append(counts, h.ChangeCount)
	}

	query := `
		INSERT INTO requirement_change_histories
			(requirement_id, entrance_year, past_required_credit, curr_required_credit, change_count)
		SELECT * FROM UNNEST($1::int[], $2::int[], $3::int[], $4::int[], $5::int[])
		ON CONFLICT (requirement_id, entrance_year, past_required_credit, curr_required_credit)
		DO UPDATE SET change_count = requirement_change_histories.change_count + EXCLUDED.change_count,
		              updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, reqs, years, past, curr, counts)
	return err
}
