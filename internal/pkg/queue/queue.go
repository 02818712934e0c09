package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gatherly/gatherly/pkg/log"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Task types processed by the queue.
const (
	TaskInviteDeliver = "invite:deliver"
)

// Queue names.
const (
	Default = "default"
	Low     = "low"
)

// DeliverInvitePayload is the payload of an invite:deliver task. Only the
// invite id is carried; recipients and preferences are resolved at
// processing time so a delayed task sees current reachability.
type DeliverInvitePayload struct {
	InviteId string            `json:"invite_id"`
	Prefs    map[string]string `json:"prefs,omitempty"`
}

// TaskHandler processes one dequeued task.
type TaskHandler interface {
	HandleTask(ctx context.Context, payload *DeliverInvitePayload) error
}

type TaskHandlerFunc func(ctx context.Context, payload *DeliverInvitePayload) error

func (f TaskHandlerFunc) HandleTask(ctx context.Context, payload *DeliverInvitePayload) error {
	return f(ctx, payload)
}

// Config queue configuration
type Config struct {
	RedisClient     redis.UniversalClient
	Concurrency     int
	Queues          map[string]int
	MaxRetry        int
	ShutdownTimeout int
}

// TaskQueue is an asynq-backed background queue reusing the process's
// redis client. Enqueue from anywhere; handlers run on the embedded server.
type TaskQueue struct {
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	config   *Config
	maxRetry int
}

func NewTaskQueue(cfg *Config) (*TaskQueue, error) {
	if cfg == nil {
		return nil, fmt.Errorf("queue config is required")
	}
	if cfg.RedisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	redisOpt := &redisConnOptWrapper{client: cfg.RedisClient}

	queues := cfg.Queues
	if len(queues) == 0 {
		queues = map[string]int{
			Default: 3,
			Low:     1,
		}
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 3
	}

	shutdownTimeout := 10 * time.Second
	if cfg.ShutdownTimeout > 0 {
		shutdownTimeout = time.Duration(cfg.ShutdownTimeout) * time.Second
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     concurrency,
		Queues:          queues,
		Logger:          &asynqLoggerAdapter{},
		RetryDelayFunc:  asynq.DefaultRetryDelayFunc,
		ShutdownTimeout: shutdownTimeout,
	})

	queue := &TaskQueue{
		client:   asynq.NewClient(redisOpt),
		server:   server,
		mux:      asynq.NewServeMux(),
		config:   cfg,
		maxRetry: maxRetry,
	}

	log.Infow("task queue created", "concurrency", concurrency, "queues", queues)
	return queue, nil
}

// RegisterDeliverHandler wires the invite:deliver handler.
func (q *TaskQueue) RegisterDeliverHandler(handler TaskHandler) {
	q.mux.HandleFunc(TaskInviteDeliver, func(ctx context.Context, t *asynq.Task) error {
		var payload DeliverInvitePayload
		if err := sonic.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal task payload: %w", err)
		}
		log.Infow("processing task", "type", TaskInviteDeliver, "inviteId", payload.InviteId)
		return handler.HandleTask(ctx, &payload)
	})
}

// EnqueueDeliverInvite schedules a tracked delivery of an invite, optionally
// delayed.
func (q *TaskQueue) EnqueueDeliverInvite(ctx context.Context, payload *DeliverInvitePayload, delay time.Duration) error {
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal task payload: %w", err)
	}

	opts := []asynq.Option{
		asynq.Queue(Default),
		asynq.MaxRetry(q.maxRetry),
	}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(TaskInviteDeliver, raw), opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskInviteDeliver, err)
	}
	log.Infow("task enqueued", "type", TaskInviteDeliver, "taskId", info.ID, "queue", info.Queue)
	return nil
}

// Start runs the server loop. Blocks until Shutdown.
func (q *TaskQueue) Start() error {
	return q.server.Run(q.mux)
}

func (q *TaskQueue) Shutdown() {
	q.server.Shutdown()
	if err := q.client.Close(); err != nil {
		log.Warnw("close queue client failed", "error", err)
	}
}

// redisConnOptWrapper adapts an existing redis client to asynq.RedisConnOpt.
type redisConnOptWrapper struct {
	client redis.UniversalClient
}

func (r *redisConnOptWrapper) MakeRedisClient() interface{} {
	return r.client
}
