// Package email implements the asynchronous email dispatch pipeline. The
// authentication flow enqueues verification and password-reset messages; a
// worker pool consumes them and hands rendered messages to a Sender.
package email

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/octanews/authcore/internal/config"
	"github.com/octanews/authcore/pkg/errors"
	"github.com/octanews/authcore/pkg/logger"
)

// Task type names on the queue.
const (
	TaskTypeVerification  = "email:verification"
	TaskTypePasswordReset = "email:password_reset"
)

// Payload is the queued form of an outbound message. The token is a signed
// one-time credential the recipient presents back to the service.
type Payload struct {
	Recipient string `json:"recipient"`
	Token     string `json:"token"`
}

// Dispatcher enqueues email tasks onto the Redis-backed queue.
type Dispatcher struct {
	client *asynq.Client
	queue  string
	log    logger.Logger
}

// NewDispatcher creates a Dispatcher over the shared Redis instance.
func NewDispatcher(redisCfg *config.RedisConfig, emailCfg *config.EmailConfig, log logger.Logger) *Dispatcher {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	return &Dispatcher{
		client: client,
		queue:  emailCfg.Queue,
		log:    log.WithComponent("email"),
	}
}

// EnqueueVerification queues an email-verification message.
func (d *Dispatcher) EnqueueVerification(ctx context.Context, recipient, token string) error {
	return d.enqueue(ctx, TaskTypeVerification, recipient, token)
}

// EnqueuePasswordReset queues a password-reset message.
func (d *Dispatcher) EnqueuePasswordReset(ctx context.Context, recipient, token string) error {
	return d.enqueue(ctx, TaskTypePasswordReset, recipient, token)
}

func (d *Dispatcher) enqueue(ctx context.Context, taskType, recipient, token string) error {
	body, err := json.Marshal(Payload{Recipient: recipient, Token: token})
	if err != nil {
		return errors.ErrInternal("failed to marshal email payload").WithCause(err)
	}

	task := asynq.NewTask(taskType, body, asynq.Queue(d.queue))
	info, err := d.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
	if err != nil {
		return errors.ErrStoreUnavailable(err)
	}

	d.log.Debug(ctx, "email task enqueued",
		logger.String("task_type", taskType),
		logger.String("task_id", info.ID))
	return nil
}

// Close releases the queue client.
func (d *Dispatcher) Close() error {
	return d.client.Close()
}
