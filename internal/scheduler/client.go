package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"leadqual_backend/platform/config"
	"leadqual_backend/platform/logger"
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueRescore queues a full rescore sweep. TaskID pins one sweep per day
// so a restarted dispatcher cannot double-enqueue.
func (c *Client) EnqueueRescore(ctx context.Context, requestedAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewRescoreTask(RescorePayload{RequestedAt: requestedAt})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID(TaskLeadsRescore+":"+requestedAt.Format("2006-01-02")),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}
	return nil
}

// RescoreDispatcher periodically enqueues the rescore sweep. Interval is
// expected to be daily; decay bands move in whole days so anything finer
// only burns cycles.
type RescoreDispatcher struct {
	client   *Client
	interval time.Duration
	log      *logger.Logger
}

func NewRescoreDispatcher(client *Client, interval time.Duration, log *logger.Logger) *RescoreDispatcher {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &RescoreDispatcher{client: client, interval: interval, log: log}
}

func (d *RescoreDispatcher) Run(ctx context.Context) {
	if err := d.client.EnqueueRescore(ctx, time.Now()); err != nil {
		d.log.Error("failed to enqueue rescore sweep", "error", err)
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := d.client.EnqueueRescore(ctx, now); err != nil {
				d.log.Error("failed to enqueue rescore sweep", "error", err)
			}
		}
	}
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
