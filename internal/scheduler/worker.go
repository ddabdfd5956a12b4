package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"leadqual_backend/internal/events"
	"leadqual_backend/internal/leads/repository"
	"leadqual_backend/internal/scoring"
	"leadqual_backend/platform/config"
	"leadqual_backend/platform/logger"
)

// rescoreParallelism bounds concurrent lead rescores within one batch.
const rescoreParallelism = 8

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	repo      *repository.Repository
	config    *scoring.Provider
	bus       events.Bus
	log       *logger.Logger
	batchSize int
}

// WorkerConfig combines the scheduler settings the worker needs.
type WorkerConfig interface {
	config.SchedulerConfig
	GetRescoreBatchSize() int
}

func NewWorker(cfg WorkerConfig, pool *pgxpool.Pool, scoringCfg *scoring.Provider, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	batchSize := cfg.GetRescoreBatchSize()
	if batchSize < 1 {
		batchSize = 200
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		repo:      repository.New(pool),
		config:    scoringCfg,
		bus:       bus,
		log:       log,
		batchSize: batchSize,
	}

	mux.HandleFunc(TaskLeadsRescore, w.handleRescore)

	return w, nil
}

// handleRescore walks every unconverted lead in key order and refreshes its
// persisted score. Scores drift as decay accumulates, so without the sweep
// the stored values go stale within days.
func (w *Worker) handleRescore(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRescorePayload(task)
	if err != nil {
		return err
	}
	w.log.Info("rescore sweep started", "requestedAt", payload.RequestedAt)

	cfg := w.config.Current()
	total := 0
	afterKey := ""

	for {
		keys, err := w.repo.ListKeys(ctx, afterKey, w.batchSize)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			break
		}
		afterKey = keys[len(keys)-1]

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(rescoreParallelism)
		for _, key := range keys {
			key := key
			g.Go(func() error {
				return w.rescoreLead(gctx, key, cfg)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		total += len(keys)
	}

	w.log.Info("rescore sweep finished", "leads", total)
	return nil
}

func (w *Worker) rescoreLead(ctx context.Context, key string, cfg *scoring.Config) error {
	lead, err := w.repo.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	activities, err := w.repo.ListActivities(ctx, key)
	if err != nil {
		return err
	}

	res := scoring.Compute(lead, activities, cfg)

	stored, err := w.repo.GetStoredScore(ctx, key)
	if err != nil {
		return err
	}
	if stored.ScoredAt != nil && stored.Score == res.Total && stored.Temperature == string(res.Temperature) {
		return nil
	}

	if err := w.repo.UpdateScore(ctx, key, res.Total, string(res.Temperature)); err != nil {
		return err
	}

	w.bus.Publish(ctx, events.LeadRescored{
		BaseEvent:   events.NewBaseEvent(),
		LeadKey:     key,
		Score:       res.Total,
		Temperature: string(res.Temperature),
	})
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
