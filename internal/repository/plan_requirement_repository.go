package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gradplan/planner-backend/internal/model"
)

// PlanRequirementRepository handles the per-plan copies of graduation requirements.
type PlanRequirementRepository interface {
	ListByPlan(ctx context.Context, planID int) ([]model.PlanRequirement, error)
	// BulkCreate inserts rows with COPY. IDs are not read back.
	BulkCreate(ctx context.Context, rows []model.PlanRequirement) error
	DeleteByPlan(ctx context.Context, planID int) error
	BulkUpdateEarned(ctx context.Context, rows []model.PlanRequirement) error
	BulkUpdateTargets(ctx context.Context, rows []model.PlanRequirement) error
}

type planRequirementRepository struct {
	db DBTX
}

func (r *planRequirementRepository) ListByPlan(ctx context.Context, planID int) ([]model.PlanRequirement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT pr.id, pr.plan_id, pr.requirement_id, pr.required_credit, pr.earned_credit, pr.auto_calculate,
		        r.major_id, r.requirement_type, r.required_credit
		 FROM plan_requirements pr
		 JOIN requirements r ON r.id = pr.requirement_id
		 WHERE pr.plan_id = $1
		 ORDER BY pr.id`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlanRequirement
	for rows.Next() {
		var pr model.PlanRequirement
		if err := rows.Scan(&pr.ID, &pr.PlanID, &pr.RequirementID, &pr.RequiredCredit, &pr.EarnedCredit,
			&pr.AutoCalculate, &pr.MajorID, &pr.RequirementType, &pr.DefaultCredit); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (r *planRequirementRepository) BulkCreate(ctx context.Context, rows []model.PlanRequirement) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := r.db.CopyFrom(
		ctx,
		pgx.Identifier{"plan_requirements"},
		[]string{"plan_id", "requirement_id", "required_credit", "earned_credit", "auto_calculate"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			pr := rows[i]
			return []any{pr.PlanID, pr.RequirementID, pr.RequiredCredit, pr.EarnedCredit, pr.AutoCalculate}, nil
		}),
	)
	return err
}

func (r *planRequirementRepository) DeleteByPlan(ctx context.Context, planID int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM plan_requirements WHERE plan_id = $1`, planID)
	return err
}

func (r *planRequirementRepository) BulkUpdateEarned(ctx context.Context, rows []model.PlanRequirement) error {
	n := len(rows)
	if n == 0 {
		return nil
	}
	ids := make([]int, 0, n)
	earned := make([]int, 0, n)
	for _, pr := range rows {
		ids = append(ids, pr.ID)
		earned = append(earned, pr.EarnedCredit)
	}

	query := `
		UPDATE plan_requirements AS p
		SET earned_credit = t.earned
		FROM UNNEST($1::int[], $2::int[]) AS t (id, earned)
		WHERE p.id = t.id
	`
	_, err := r.db.Exec(ctx, query, ids, earned)
	return err
}

func (r *planRequirementRepository) BulkUpdateTargets(ctx context.Context, rows []model.PlanRequirement) error {
	n := len(rows)
	if n == 0 {
		return nil
	}
	ids := make([]int, 0, n)
	required := make([]int, 0, n)
	auto := make([]bool, 0, n)
	for _, pr := range rows {
		ids = append(ids, pr.ID)
		required = append(required, pr.RequiredCredit)
		auto = append(auto, pr.AutoCalculate)
	}

	query := `
		UPDATE plan_requirements AS p
		SET required_credit = t.required,
		    auto_calculate = t.auto
		FROM UNNEST($1::int[], $2::int[], $3::bool[]) AS t (id, required, auto)
		WHERE p.id = t.id
	`
	_, err := r.db.Exec(ctx, query, ids, required, auto)
	return err
}
