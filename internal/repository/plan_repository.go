package repository

import (
	"context"

	"github.com/gradplan/planner-backend/internal/model"
)

// PlanRepository handles plans and the majors attached to them.
type PlanRepository interface {
	GetByID(ctx context.Context, id int) (*model.Plan, error)
	// LockByID loads the plan and holds a row lock until the transaction ends.
	LockByID(ctx context.Context, id int) (*model.Plan, error)
	Create(ctx context.Context, plan *model.Plan) error
	SetFirstSimulation(ctx context.Context, planID int, first bool) error
	ListIDsByEntranceYear(ctx context.Context, entranceYear int) ([]int, error)

	ListMajors(ctx context.Context, planID int) ([]model.Major, error)
	AddMajors(ctx context.Context, planID int, majorIDs []int) error
	DeleteMajors(ctx context.Context, planID int) error
}

type planRepository struct {
	db DBTX
}

const planColumns = `p.id, p.user_id, p.plan_name, p.is_first_simulation, u.entrance_year, p.created_at, p.updated_at`

func scanPlan(row rowScanner) (*model.Plan, error) {
	p := &model.Plan{}
	err := row.Scan(&p.ID, &p.UserID, &p.PlanName, &p.IsFirstSimulation, &p.EntranceYear, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *planRepository) GetByID(ctx context.Context, id int) (*model.Plan, error) {
	query := `SELECT ` + planColumns + `
		FROM plans p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1`
	return scanPlan(r.db.QueryRow(ctx, query, id))
}

func (r *planRepository) LockByID(ctx context.Context, id int) (*model.Plan, error) {
	query := `SELECT ` + planColumns + `
		FROM plans p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
		FOR UPDATE OF p`
	return scanPlan(r.db.QueryRow(ctx, query, id))
}

func (r *planRepository) Create(ctx context.Context, plan *model.Plan) error {
	query := `
		WITH inserted AS (
			INSERT INTO plans (user_id, plan_name, is_first_simulation)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at, user_id
		)
		SELECT i.id, i.created_at, i.updated_at, u.entrance_year
		FROM inserted i
		JOIN users u ON u.id = i.user_id
	`
	return r.db.QueryRow(ctx, query, plan.UserID, plan.PlanName, plan.IsFirstSimulation).
		Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt, &plan.EntranceYear)
}

func (r *planRepository) SetFirstSimulation(ctx context.Context, planID int, first bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE plans SET is_first_simulation = $1, updated_at = NOW() WHERE id = $2`,
		first, planID)
	return err
}

func (r *planRepository) ListIDsByEntranceYear(ctx context.Context, entranceYear int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id FROM plans p JOIN users u ON u.id = p.user_id
		 WHERE u.entrance_year = $1 ORDER BY p.id`, entranceYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListMajors returns the plan's majors in recognition priority order.
func (r *planRepository) ListMajors(ctx context.Context, planID int) ([]model.Major, error) {
	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.name, m.major_type, m.created_at, m.updated_at
		 FROM plan_majors pm
		 JOIN majors m ON m.id = pm.major_id
		 WHERE pm.plan_id = $1
		 ORDER BY m.id`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var majors []model.Major
	for rows.Next() {
		var m model.Major
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		majors = append(majors, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	model.SortMajorsByPriority(majors)
	return majors, nil
}

func (r *planRepository) AddMajors(ctx context.Context, planID int, majorIDs []int) error {
	if len(majorIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO plan_majors (plan_id, major_id)
		 SELECT $1, u.major_id FROM UNNEST($2::int[]) AS u (major_id)
		 ON CONFLICT DO NOTHING`,
		planID, majorIDs)
	return err
}

func (r *planRepository) DeleteMajors(ctx context.Context, planID int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM plan_majors WHERE plan_id = $1`, planID)
	return err
}
