package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gradplan/planner-backend/internal/config"
	"github.com/gradplan/planner-backend/internal/metrics"
	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/service"
)

const (
	RecalcBatchTimeout = 2 * time.Second
	RecalcPollTimeout  = 1 * time.Second
)

// Recalculator reclassifies one plan in its own transaction.
type Recalculator interface {
	RecalculatePlan(ctx context.Context, planID int, semesterID *int) (*model.PlanDetail, error)
}

// RecalcJob is one queued plan recalculation.
type RecalcJob struct {
	PlanID  int `json:"plan_id"`
	Attempt int `json:"attempt"`
}

// RecalcWorker drains the recalculation queue. Jobs are batched, plan ids
// deduplicated per batch, and plans recalculated concurrently.
type RecalcWorker struct {
	rdb         redis.Cmdable
	planner     Recalculator
	workers     int
	batchSize   int
	maxAttempts int
	log         zerolog.Logger
}

func NewRecalcWorker(rdb redis.Cmdable, planner Recalculator, cfg *config.Config, log zerolog.Logger) *RecalcWorker {
	w := &RecalcWorker{
		rdb:         rdb,
		planner:     planner,
		workers:     cfg.RecalcWorkers,
		batchSize:   cfg.RecalcBatchSize,
		maxAttempts: cfg.RecalcMaxAttempts,
		log:         log.With().Str("component", "recalc_worker").Logger(),
	}
	if w.workers < 1 {
		w.workers = 1
	}
	if w.batchSize < 1 {
		w.batchSize = 1
	}
	if w.maxAttempts < 1 {
		w.maxAttempts = 1
	}
	return w
}

// Enqueue pushes one job per plan onto the recalculation queue.
func Enqueue(ctx context.Context, rdb redis.Cmdable, planIDs ...int) error {
	if len(planIDs) == 0 {
		return nil
	}
	pipe := rdb.Pipeline()
	for _, id := range planIDs {
		raw, err := json.Marshal(RecalcJob{PlanID: id})
		if err != nil {
			return err
		}
		pipe.RPush(ctx, config.WorkerKey.RecalculatePlanQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enqueue recalculation: %w", err)
	}
	return nil
}

// Start blocks until ctx is cancelled, then flushes what it already popped.
func (w *RecalcWorker) Start(ctx context.Context) {
	w.log.Info().Int("workers", w.workers).Int("batch_size", w.batchSize).Msg("RecalcWorker started")

	batch := make([]RecalcJob, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= RecalcBatchTimeout) {
			w.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flush(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, RecalcPollTimeout, config.WorkerKey.RecalculatePlanQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			var job RecalcJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil || job.PlanID <= 0 {
				w.log.Error().Err(err).Str("payload", item[1]).Msg("Invalid recalculation job")
				metrics.CountWorkerJob(metrics.ResultDrop)
				continue
			}
			batch = append(batch, job)
		}
	}
}

func (w *RecalcWorker) flush(ctx context.Context, batch []RecalcJob) {
	if len(batch) == 0 {
		return
	}
	retry := w.process(ctx, batch)
	if len(retry) == 0 {
		return
	}

	pipe := w.rdb.Pipeline()
	for _, job := range retry {
		raw, _ := json.Marshal(job)
		pipe.RPush(ctx, config.WorkerKey.RecalculatePlanQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("jobs", len(retry)).Msg("requeue failed")
	}
}

// process recalculates every distinct plan of batch and returns the jobs
// that should be retried.
func (w *RecalcWorker) process(ctx context.Context, batch []RecalcJob) []RecalcJob {
	jobs := dedupe(batch)

	var (
		mu    sync.Mutex
		retry []RecalcJob
	)
	g := new(errgroup.Group)
	g.SetLimit(w.workers)
	for _, job := range jobs {
		g.Go(func() error {
			_, err := w.planner.RecalculatePlan(ctx, job.PlanID, nil)
			switch {
			case err == nil:
				metrics.CountWorkerJob(metrics.ResultOK)
			case errors.Is(err, service.ErrPlanNotFound):
				w.log.Warn().Int("plan_id", job.PlanID).Msg("plan vanished, dropping job")
				metrics.CountWorkerJob(metrics.ResultDrop)
			case job.Attempt+1 < w.maxAttempts:
				w.log.Warn().Err(err).Int("plan_id", job.PlanID).Int("attempt", job.Attempt).Msg("recalculation failed, requeueing")
				metrics.CountWorkerJob(metrics.ResultRetry)
				mu.Lock()
				retry = append(retry, RecalcJob{PlanID: job.PlanID, Attempt: job.Attempt + 1})
				mu.Unlock()
			default:
				w.log.Error().Err(err).Int("plan_id", job.PlanID).Int("attempt", job.Attempt).Msg("recalculation failed, giving up")
				metrics.CountWorkerJob(metrics.ResultError)
			}
			return nil
		})
	}
	_ = g.Wait()

	return retry
}

// dedupe keeps one job per plan, in first-seen order, with the highest
// attempt count seen for it.
func dedupe(batch []RecalcJob) []RecalcJob {
	index := make(map[int]int, len(batch))
	out := make([]RecalcJob, 0, len(batch))
	for _, job := range batch {
		if i, ok := index[job.PlanID]; ok {
			if job.Attempt > out[i].Attempt {
				out[i].Attempt = job.Attempt
			}
			continue
		}
		index[job.PlanID] = len(out)
		out = append(out, job)
	}
	return out
}
