package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/codingclub/hackportal/internal/config"
	"github.com/codingclub/hackportal/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeMail = "mail:send"
)

// MailTask is one outgoing notification.
type MailTask struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}

// MailQueue defines the interface for mail dispatch.
type MailQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *MailTask) error
	// IsAsync returns true if queue processes tasks asynchronously
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
			queue, err := NewAsyncMailQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[MailQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalMailQueue = NewSyncMailQueue()
			} else {
				logger.Infof("[MailQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalMailQueue = queue
			}
		} else {
			logger.Infof("[MailQueue] Sync queue initialized (Redis disabled)")
			globalMailQueue = NewSyncMailQueue()
		}
	})
	return globalMailQueue
}

// GetMailQueue returns the global mail queue instance
func GetMailQueue() MailQueue {
	return globalMailQueue
}

// EnqueueMail hands a notification to the global queue. Mail is best effort:
// callers never fail a request because a notification could not be queued.
func EnqueueMail(recipients []string, subject, body string) {
	q := globalMailQueue
	if q == nil {
		return
	}
	if err := q.Enqueue(&MailTask{Recipients: recipients, Subject: subject, Body: body}); err != nil {
		logger.Warnf("[MailQueue] Failed to enqueue mail: %v", err)
	}
}

// AsyncMailQueue implements MailQueue using asynq (Redis-based)
type AsyncMailQueue struct {
	client *asynq.Client
}

// NewAsyncMailQueue creates a new Redis-based async queue
func NewAsyncMailQueue(cfg *config.RedisConfig) (*AsyncMailQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Test connection by pinging Redis
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	_, err := inspector.Queues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncMailQueue{client: client}, nil
}

// Enqueue adds a mail task to the async queue
func (q *AsyncMailQueue) Enqueue(task *MailTask) error {
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

	logger.Infof("[MailQueue] Task enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncMailQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncMailQueue) Close() error {
	return q.client.Close()
}

// SyncMailQueue implements MailQueue with in-process delivery (no Redis)
type SyncMailQueue struct {
	sender func(context.Context, *MailTask) error
}

// NewSyncMailQueue creates a new synchronous queue
func NewSyncMailQueue() *SyncMailQueue {
	return &SyncMailQueue{}
}

// SetSender sets the function that delivers mail synchronously
func (q *SyncMailQueue) SetSender(sender func(context.Context, *MailTask) error) {
	q.sender = sender
}

// Enqueue delivers the task in a goroutine so callers never block on SMTP
func (q *SyncMailQueue) Enqueue(task *MailTask) error {
	if q.sender == nil {
		logger.Infof("[MailQueue] Warning: no sender set, mail will be dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.sender(ctx, task); err != nil {
			logger.Infof("[MailQueue] Delivery failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncMailQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncMailQueue) Close() error {
	return nil
}
