package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gradplan/planner-backend/internal/repository"
	"github.com/gradplan/planner-backend/internal/service"
	"github.com/gradplan/planner-backend/internal/worker"
)

func newRecalcCmd(e *env) *cobra.Command {
	var planID, semesterID int

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Reclassify the lectures of one plan synchronously",
		RunE: func(cmd *cobra.Command, args []string) error {
			if planID <= 0 {
				return errors.New("--plan is required")
			}
			ctx := cmd.Context()
			pool, err := e.postgres(ctx)
			if err != nil {
				return err
			}

			planner := service.NewPlannerService(repository.NewTxManager(pool), nil, e.cfg.NoneMajorID, e.log)
			var scope *int
			if semesterID > 0 {
				scope = &semesterID
			}

			start := time.Now()
			detail, err := planner.RecalculatePlan(ctx, planID, scope)
			if err != nil {
				return fmt.Errorf("recalculate plan %d: %w", planID, err)
			}

			lectures := 0
			for _, sem := range detail.Semesters {
				lectures += len(sem.Lectures)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "plan %d: %d semester(s), %d lecture(s) in %s\n",
				planID, len(detail.Semesters), lectures, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().IntVar(&planID, "plan", 0, "plan id")
	cmd.Flags().IntVar(&semesterID, "semester", 0, "limit to one semester of the plan")
	return cmd
}

func newEnqueueCmd(e *env) *cobra.Command {
	var (
		planIDs      []int
		entranceYear int
	)

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue plans for background recalculation",
		Long: `Queue plans for the server's recalculation worker. Use --entrance-year
after the catalog of a cohort changed, or --plan for individual plans.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkEnqueueFlags(planIDs, entranceYear); err != nil {
				return err
			}
			ctx := cmd.Context()

			ids := planIDs
			if entranceYear > 0 {
				pool, err := e.postgres(ctx)
				if err != nil {
					return err
				}
				ids, err = plansOfCohort(ctx, repository.NewTxManager(pool), entranceYear)
				if err != nil {
					return err
				}
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no plans to enqueue")
				return nil
			}

			rdb, err := e.redis(ctx)
			if err != nil {
				return err
			}
			if err := worker.Enqueue(ctx, rdb, ids...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %d plan(s)\n", len(ids))
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&planIDs, "plan", nil, "plan id (repeatable)")
	cmd.Flags().IntVar(&entranceYear, "entrance-year", 0, "enqueue every plan of this entrance year")
	return cmd
}

func checkEnqueueFlags(planIDs []int, entranceYear int) error {
	switch {
	case len(planIDs) == 0 && entranceYear == 0:
		return errors.New("one of --plan or --entrance-year is required")
	case len(planIDs) > 0 && entranceYear != 0:
		return errors.New("--plan and --entrance-year are mutually exclusive")
	case entranceYear < 0:
		return errors.New("--entrance-year must be positive")
	}
	for _, id := range planIDs {
		if id <= 0 {
			return fmt.Errorf("invalid plan id %d", id)
		}
	}
	return nil
}

func plansOfCohort(ctx context.Context, tx repository.TxManager, entranceYear int) ([]int, error) {
	var ids []int
	err := tx.RunInTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		ids, err = r.Plans.ListIDsByEntranceYear(ctx, entranceYear)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list plans of %d: %w", entranceYear, err)
	}
	return ids, nil
}

func newRepairTotalsCmd(e *env) *cobra.Command {
	var planID int

	cmd := &cobra.Command{
		Use:   "repair-totals",
		Short: "Rebuild the semester credit totals of a plan from its enrollments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if planID <= 0 {
				return errors.New("--plan is required")
			}
			ctx := cmd.Context()
			pool, err := e.postgres(ctx)
			if err != nil {
				return err
			}

			planner := service.NewPlannerService(repository.NewTxManager(pool), nil, e.cfg.NoneMajorID, e.log)
			sems, err := planner.RepairSemesterTotals(ctx, planID)
			if err != nil {
				return fmt.Errorf("repair plan %d: %w", planID, err)
			}
			for _, sem := range sems {
				fmt.Fprintf(cmd.OutOrStdout(), "semester %d (%d %s): MR %d ME %d G %d GE %d\n",
					sem.ID, sem.Year, sem.SemesterType,
					sem.MajorRequirementCredit, sem.MajorElectiveCredit, sem.GeneralCredit, sem.GeneralElectiveCredit)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&planID, "plan", 0, "plan id")
	return cmd
}

func newTokenCmd(e *env) *cobra.Command {
	var (
		userID int
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user is required")
			}
			expiry := e.cfg.JWTExpiry
			if ttl > 0 {
				expiry = ttl
			}
			token, err := service.NewAuthService(e.cfg.JWTSecret, expiry).GenerateToken(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().IntVar(&userID, "user", 0, "user id")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_EXPIRY_HOURS)")
	return cmd
}
