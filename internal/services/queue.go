package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/khoward/worktrack/internal/config"
	"github.com/khoward/worktrack/pkg/logger"
)

const (
	TaskTypeMail = "mail:send"
)

// MailTask is one outbound email waiting for delivery.
type MailTask struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MailQueue defines the interface for mail delivery
type MailQueue interface {
	// Enqueue adds a mail to the queue
	Enqueue(task *MailTask) error
	// IsAsync returns true if queue delivers mail asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global mail queue instance
var (
	globalMailQueue MailQueue
	mailQueueOnce   sync.Once
)

// InitMailQueue initializes the global mail queue based on config
func InitMailQueue(cfg *config.Config) MailQueue {
	mailQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[MailQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalMailQueue = NewSyncQueue()
			} else {
				logger.Infof("[MailQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalMailQueue = queue
			}
		} else {
			logger.Infof("[MailQueue] Sync queue initialized (Redis disabled)")
			globalMailQueue = NewSyncQueue()
		}
	})
	return globalMailQueue
}

// GetMailQueue returns the global mail queue instance
func GetMailQueue() MailQueue {
	return globalMailQueue
}

// AsyncQueue implements MailQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Test connection by pinging Redis
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	// Try to get queue info to verify connection
	_, err := inspector.Queues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds a mail task to the async queue
func (q *AsyncQueue) Enqueue(task *MailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeMail, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Mail enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements MailQueue with synchronous delivery (no Redis)
type SyncQueue struct {
	deliver func(context.Context, *MailTask) error
}

// NewSyncQueue creates a new synchronous queue
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetDeliverer sets the function that delivers mail synchronously
func (q *SyncQueue) SetDeliverer(deliver func(context.Context, *MailTask) error) {
	q.deliver = deliver
}

// Enqueue delivers the mail immediately in a goroutine so auth
// responses are not blocked on SMTP round trips
func (q *SyncQueue) Enqueue(task *MailTask) error {
	if q.deliver == nil {
		logger.Infof("[SyncQueue] Warning: no deliverer set, mail will be dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.deliver(ctx, task); err != nil {
			logger.Infof("[SyncQueue] Mail delivery failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncQueue) Close() error {
	return nil
}
