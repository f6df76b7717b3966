package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/gradplan/planner-backend/internal/config"
	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/service"
)

type fakeRecalculator struct {
	mu    sync.Mutex
	calls []int
	errs  map[int]error
}

func (f *fakeRecalculator) RecalculatePlan(_ context.Context, planID int, _ *int) (*model.PlanDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, planID)
	if err := f.errs[planID]; err != nil {
		return nil, err
	}
	return &model.PlanDetail{Plan: &model.Plan{ID: planID}}, nil
}

func newTestWorker(r Recalculator) *RecalcWorker {
	cfg := &config.Config{RecalcWorkers: 2, RecalcBatchSize: 8, RecalcMaxAttempts: 3}
	return NewRecalcWorker(nil, r, cfg, zerolog.Nop())
}

func TestDedupe(t *testing.T) {
	got := dedupe([]RecalcJob{
		{PlanID: 3},
		{PlanID: 1, Attempt: 1},
		{PlanID: 3, Attempt: 2},
		{PlanID: 1},
	})
	assert.Equal(t, []RecalcJob{{PlanID: 3, Attempt: 2}, {PlanID: 1, Attempt: 1}}, got)
}

func TestProcessRecalculatesEachPlanOnce(t *testing.T) {
	r := &fakeRecalculator{}
	w := newTestWorker(r)

	retry := w.process(context.Background(), []RecalcJob{{PlanID: 1}, {PlanID: 2}, {PlanID: 1}, {PlanID: 3}})

	assert.Empty(t, retry)
	sort.Ints(r.calls)
	assert.Equal(t, []int{1, 2, 3}, r.calls)
}

func TestProcessRetriesUntilMaxAttempts(t *testing.T) {
	transient := fmt.Errorf("bulk update semesters: %w", errors.New("connection reset"))
	r := &fakeRecalculator{errs: map[int]error{
		1: transient,
		2: transient,
		3: service.ErrPlanNotFound,
	}}
	w := newTestWorker(r)

	retry := w.process(context.Background(), []RecalcJob{{PlanID: 1}, {PlanID: 2, Attempt: 2}, {PlanID: 3}})

	assert.Equal(t, []RecalcJob{{PlanID: 1, Attempt: 1}}, retry)
}

func TestNewRecalcWorkerClampsConfig(t *testing.T) {
	w := NewRecalcWorker(nil, &fakeRecalculator{}, &config.Config{}, zerolog.Nop())
	assert.Equal(t, 1, w.workers)
	assert.Equal(t, 1, w.batchSize)
	assert.Equal(t, 1, w.maxAttempts)
}
