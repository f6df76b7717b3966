package repository

import (
	"context"

	"github.com/gradplan/planner-backend/internal/model"
)

// SemesterRepository handles semesters and their credit totals.
type SemesterRepository interface {
	GetByID(ctx context.Context, id int) (*model.Semester, error)
	ListByPlan(ctx context.Context, planID int) ([]*model.Semester, error)
	Create(ctx context.Context, sem *model.Semester) error
	// BulkUpdateCredits writes the four bucket totals of every semester in one statement.
	BulkUpdateCredits(ctx context.Context, sems []*model.Semester) error
}

type semesterRepository struct {
	db DBTX
}

const semesterColumns = `id, plan_id, year, semester_type, major_requirement_credit, major_elective_credit,
	general_credit, general_elective_credit, created_at, updated_at`

func scanSemester(row rowScanner) (*model.Semester, error) {
	s := &model.Semester{}
	err := row.Scan(&s.ID, &s.PlanID, &s.Year, &s.SemesterType,
		&s.MajorRequirementCredit, &s.MajorElectiveCredit, &s.GeneralCredit, &s.GeneralElectiveCredit,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *semesterRepository) GetByID(ctx context.Context, id int) (*model.Semester, error) {
	return scanSemester(r.db.QueryRow(ctx, `SELECT `+semesterColumns+` FROM semesters WHERE id = $1`, id))
}

func (r *semesterRepository) ListByPlan(ctx context.Context, planID int) ([]*model.Semester, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+semesterColumns+` FROM semesters WHERE plan_id = $1 ORDER BY year, id`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sems []*model.Semester
	for rows.Next() {
		s, err := scanSemester(rows)
		if err != nil {
			return nil, err
		}
		sems = append(sems, s)
	}
	return sems, rows.Err()
}

func (r *semesterRepository) Create(ctx context.Context, sem *model.Semester) error {
	query := `
		INSERT INTO semesters (plan_id, year, semester_type, major_requirement_credit,
			major_elective_credit, general_credit, general_elective_credit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, sem.PlanID, sem.Year, sem.SemesterType,
		sem.MajorRequirementCredit, sem.MajorElectiveCredit, sem.GeneralCredit, sem.GeneralElectiveCredit).
		Scan(&sem.ID, &sem.CreatedAt, &sem.UpdatedAt)
}

func (r *semesterRepository) BulkUpdateCredits(ctx context.Context, sems []*model.Semester) error {
	n := len(sems)
	if n == 0 {
		return nil
	}

	ids := make([]int, 0, n)
	mr := make([]int, 0, n)
	me := make([]int, 0, n)
	gen := make([]int, 0, n)
	ge := make([]int, 0, n)
	for _, s := range sems {
		ids = append(ids, s.ID)
		mr = append(mr, s.MajorRequirementCredit)
		me = append(me, s.MajorElectiveCredit)
		gen = append(gen, s.GeneralCredit)
		ge = append(ge, s.GeneralElectiveCredit)
	}

	query := `
		UPDATE semesters AS s
		SET major_requirement_credit = t.mr,
		    major_elective_credit = t.me,
		    general_credit = t.gen,
		    general_elective_credit = t.ge,
		    updated_at = NOW()
		FROM UNNEST(
			$1::int[],
			$2::int[],
			$3::int[],
			$4::int[],
			$5::int[]
		) AS t (id, mr, me, gen, ge)
		WHERE s.id = t.id
	`
	_, err := r.db.Exec(ctx, query, ids, mr, me, gen, ge)
	return err
}
