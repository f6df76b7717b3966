package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradplan/planner-backend/internal/model"
)

func TestCheckRequirements(t *testing.T) {
	f := newFixture(t)

	check, err := f.requirements(nil).CheckRequirements(context.Background(), owner, f.planID)
	require.NoError(t, err)

	assert.Equal(t, 130, check.All)
	assert.Equal(t, 30, check.General)
	assert.True(t, check.IsFirstSimulation)
	require.Len(t, check.Majors, 1)
	assert.Equal(t, model.MajorRequirementCheck{
		MajorName:                     "컴퓨터공학부",
		MajorType:                     model.MajorTypeMajor,
		MajorAll:                      72,
		MajorAllAutoCalculate:         true,
		MajorRequirement:              39,
		MajorRequirementAutoCalculate: true,
	}, check.Majors[0])
}

func TestCheckRequirementsOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.requirements(nil).CheckRequirements(ctx, stranger, f.planID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.requirements(nil).CheckRequirements(ctx, owner, 12345)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestCheckRequirementsUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := newFakeCache()
	svc := f.requirements(cache)

	first, err := svc.CheckRequirements(ctx, owner, f.planID)
	require.NoError(t, err)
	require.Contains(t, cache.entries, f.planID)
	assert.Equal(t, owner, cache.entries[f.planID].ownerID)

	second, err := svc.CheckRequirements(ctx, owner, f.planID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Same(t, first, second)

	_, err = svc.CheckRequirements(ctx, stranger, f.planID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestCalculateRequirementProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.planner().RecalculateLectureInfo(ctx, owner, f.planID, nil)
	require.NoError(t, err)

	progress, err := f.requirements(nil).CalculateRequirementProgress(ctx, owner, f.planID)
	require.NoError(t, err)

	assert.Equal(t, 130, progress.AllProgress.All.RequiredCredit)
	assert.Equal(t, 7, progress.AllProgress.All.EarnedCredit)
	assert.InDelta(t, 0.05, progress.AllProgress.All.Progress, 1e-9)
	assert.Equal(t, 2, progress.AllProgress.General.EarnedCredit)
	assert.InDelta(t, 0.07, progress.AllProgress.General.Progress, 1e-9)

	require.Len(t, progress.MajorProgress, 1)
	mp := progress.MajorProgress[0]
	assert.Equal(t, "컴퓨터공학부", mp.MajorName)
	assert.Equal(t, 3, mp.MajorAll.EarnedCredit)
	assert.InDelta(t, 0.04, mp.MajorAll.Progress, 1e-9)
	assert.Equal(t, 3, mp.MajorRequirement.EarnedCredit)
	assert.InDelta(t, 0.08, mp.MajorRequirement.Progress, 1e-9)

	assert.Equal(t, 3, f.planRequirement(t, f.reqMajorRequirement).EarnedCredit)
	assert.Equal(t, 7, f.planRequirement(t, f.reqAll).EarnedCredit)

	plan, _ := f.store.Plan(f.planID)
	assert.False(t, plan.IsFirstSimulation)
}

func TestCalculateRequirementProgressRollsBack(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("deadlock detected")
	f.store.FailOn("plan_requirements.BulkUpdateEarned", boom)

	_, err := f.requirements(nil).CalculateRequirementProgress(context.Background(), owner, f.planID)
	require.ErrorIs(t, err, boom)

	plan, _ := f.store.Plan(f.planID)
	assert.True(t, plan.IsFirstSimulation)
}

func TestAutoCalculatedTargetsFollowCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.requirements(nil)

	_, err := svc.UpdateRequirementCredits(ctx, owner, f.planID, model.UpdateRequirementRequest{GeneralCredit: intPtr(25)})
	require.NoError(t, err)

	f.store.AddRequirement(model.Requirement{ID: 201, MajorID: f.computer, RequirementType: model.RequirementTypeMajorRequirement, StartYear: 2015, EndYear: 2025, RequiredCredit: 45})
	f.store.AddRequirement(model.Requirement{ID: 203, MajorID: f.computer, RequirementType: model.RequirementTypeGeneral, StartYear: 2015, EndYear: 2025, RequiredCredit: 35})

	check, err := svc.CheckRequirements(ctx, owner, f.planID)
	require.NoError(t, err)
	require.Len(t, check.Majors, 1)
	assert.Equal(t, 45, check.Majors[0].MajorRequirement)
	assert.True(t, check.Majors[0].MajorRequirementAutoCalculate)
	assert.Equal(t, 25, check.General)
	assert.Equal(t, 39, f.planRequirement(t, f.reqMajorRequirement).RequiredCredit)

	progress, err := svc.CalculateRequirementProgress(ctx, owner, f.planID)
	require.NoError(t, err)
	require.Len(t, progress.MajorProgress, 1)
	assert.Equal(t, 45, progress.MajorProgress[0].MajorRequirement.RequiredCredit)
	assert.Equal(t, 25, progress.AllProgress.General.RequiredCredit)

	row := f.planRequirement(t, f.reqMajorRequirement)
	assert.Equal(t, 45, row.RequiredCredit)
	assert.True(t, row.AutoCalculate)
	assert.Equal(t, 25, f.planRequirement(t, f.reqGeneral).RequiredCredit)
	assert.Len(t, f.store.RequirementHistory(), 1)
}

func TestUpdateRequirementCreditsRecordsHistoryOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.requirements(nil)

	req := model.UpdateRequirementRequest{
		Majors: []model.MajorCreditEdit{{
			MajorName:              "컴퓨터공학부",
			MajorType:              model.MajorTypeMajor,
			MajorRequirementCredit: intPtr(45),
		}},
	}

	res, err := svc.UpdateRequirementCredits(ctx, owner, f.planID, req)
	require.NoError(t, err)
	require.Len(t, res.Majors, 1)
	assert.Equal(t, 45, *res.Majors[0].MajorRequirementCredit)

	row := f.planRequirement(t, f.reqMajorRequirement)
	assert.Equal(t, 45, row.RequiredCredit)
	assert.False(t, row.AutoCalculate)
	assert.Equal(t, 72, f.planRequirement(t, f.reqMajorAll).RequiredCredit)

	history := f.store.RequirementHistory()
	require.Len(t, history, 1)
	assert.Equal(t, f.reqMajorRequirement, history[0].RequirementID)
	assert.Equal(t, 2018, history[0].EntranceYear)
	assert.Equal(t, 39, history[0].PastRequiredCredit)
	assert.Equal(t, 45, history[0].CurrRequiredCredit)
	assert.Equal(t, 1, history[0].ChangeCount)

	_, err = svc.UpdateRequirementCredits(ctx, owner, f.planID, req)
	require.NoError(t, err)
	history = f.store.RequirementHistory()
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].ChangeCount)
}

func TestUpdateRequirementCreditsAutoCalculateRestoresDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.requirements(nil)

	_, err := svc.UpdateRequirementCredits(ctx, owner, f.planID, model.UpdateRequirementRequest{
		Majors: []model.MajorCreditEdit{{
			MajorName:              "컴퓨터공학부",
			MajorType:              model.MajorTypeMajor,
			MajorAllCredit:         intPtr(80),
			MajorRequirementCredit: intPtr(45),
		}},
		AllCredit:     intPtr(140),
		GeneralCredit: intPtr(30),
	})
	require.NoError(t, err)
	assert.Equal(t, 80, f.planRequirement(t, f.reqMajorAll).RequiredCredit)
	assert.Equal(t, 140, f.planRequirement(t, f.reqAll).RequiredCredit)
	assert.False(t, f.planRequirement(t, f.reqGeneral).AutoCalculate)
	assert.Len(t, f.store.RequirementHistory(), 3)

	_, err = svc.UpdateRequirementCredits(ctx, owner, f.planID, model.UpdateRequirementRequest{
		Majors: []model.MajorCreditEdit{{
			MajorName:     "컴퓨터공학부",
			MajorType:     model.MajorTypeMajor,
			AutoCalculate: boolPtr(true),
		}},
	})
	require.NoError(t, err)

	for _, id := range []int{f.reqMajorAll, f.reqMajorRequirement} {
		row := f.planRequirement(t, id)
		assert.Equal(t, row.DefaultCredit, row.RequiredCredit)
		assert.True(t, row.AutoCalculate)
	}
	assert.Equal(t, 140, f.planRequirement(t, f.reqAll).RequiredCredit)
	assert.Len(t, f.store.RequirementHistory(), 5)

	check, err := svc.CheckRequirements(ctx, owner, f.planID)
	require.NoError(t, err)
	assert.Equal(t, 72, check.Majors[0].MajorAll)
	assert.True(t, check.Majors[0].MajorAllAutoCalculate)
	assert.Equal(t, 140, check.All)
}

func TestUpdateRequirementCreditsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.requirements(nil)

	tests := []struct {
		name   string
		userID int
		req    model.UpdateRequirementRequest
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing major name",
			userID: owner,
			req: model.UpdateRequirementRequest{Majors: []model.MajorCreditEdit{
				{MajorType: model.MajorTypeMajor, MajorAllCredit: intPtr(60)},
			}},
			check: func(t *testing.T, err error) {
				var fe *FieldError
				require.ErrorAs(t, err, &fe)
				assert.Contains(t, fe.Fields, "majors[0].major_name")
			},
		},
		{
			name:   "missing major type",
			userID: owner,
			req: model.UpdateRequirementRequest{Majors: []model.MajorCreditEdit{
				{MajorName: "컴퓨터공학부"},
			}},
			check: func(t *testing.T, err error) {
				var fe *FieldError
				require.ErrorAs(t, err, &fe)
				assert.Contains(t, fe.Fields, "majors[0].major_type")
			},
		},
		{
			name:   "major not on plan",
			userID: owner,
			req: model.UpdateRequirementRequest{Majors: []model.MajorCreditEdit{
				{MajorName: "경영학과", MajorType: model.MajorTypeDoubleMajor, MajorAllCredit: intPtr(40)},
			}},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMajorNotOnPlan)
			},
		},
		{
			name:   "not the owner",
			userID: stranger,
			req:    model.UpdateRequirementRequest{AllCredit: intPtr(100)},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotOwner)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateRequirementCredits(ctx, tt.userID, f.planID, tt.req)
			tt.check(t, err)
		})
	}

	assert.Empty(t, f.store.RequirementHistory())
	assert.Equal(t, 130, f.planRequirement(t, f.reqAll).RequiredCredit)
}

func TestUpdateRequirementCreditsRollsBackHistory(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("serialization failure")
	f.store.FailOn("plan_requirements.BulkUpdateTargets", boom)

	_, err := f.requirements(nil).UpdateRequirementCredits(context.Background(), owner, f.planID, model.UpdateRequirementRequest{
		AllCredit: intPtr(140),
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, f.store.RequirementHistory())
	assert.Equal(t, 130, f.planRequirement(t, f.reqAll).RequiredCredit)
}

func TestUpdateRequirementCreditsInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := newFakeCache()
	svc := f.requirements(cache)

	_, err := svc.CheckRequirements(ctx, owner, f.planID)
	require.NoError(t, err)

	_, err = svc.UpdateRequirementCredits(ctx, owner, f.planID, model.UpdateRequirementRequest{GeneralCredit: intPtr(35)})
	require.NoError(t, err)
	assert.NotContains(t, cache.entries, f.planID)

	check, err := svc.CheckRequirements(ctx, owner, f.planID)
	require.NoError(t, err)
	assert.Equal(t, 35, check.General)
}
