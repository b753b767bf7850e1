package email

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"

	"github.com/octanews/authcore/internal/config"
	"github.com/octanews/authcore/pkg/logger"
)

// Sender delivers a rendered message to a recipient. Production deployments
// plug in an SMTP or provider-API implementation.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// logSender writes messages to the structured log instead of delivering them.
// It is the default when no real transport is configured.
type logSender struct {
	log logger.Logger
}

// NewLogSender returns a Sender that only logs outbound messages.
func NewLogSender(log logger.Logger) Sender {
	return &logSender{log: log.WithComponent("email_sender")}
}

func (s *logSender) Send(ctx context.Context, recipient, subject, body string) error {
	s.log.Info(ctx, "email delivery (log transport)",
		logger.String("recipient", recipient),
		logger.String("subject", subject),
		logger.Int("body_bytes", len(body)))
	return nil
}

// Worker consumes email tasks from the queue and delivers them via a Sender.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender Sender
	from   string
	log    logger.Logger
}

// NewWorker creates a Worker bound to the shared Redis instance.
func NewWorker(redisCfg *config.RedisConfig, emailCfg *config.EmailConfig, sender Sender, log logger.Logger) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		asynq.Config{
			Concurrency: emailCfg.Concurrency,
			Queues:      map[string]int{emailCfg.Queue: 1},
		},
	)

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		sender: sender,
		from:   emailCfg.FromAddress,
		log:    log.WithComponent("email_worker"),
	}
	w.mux.HandleFunc(TaskTypeVerification, w.handleVerification)
	w.mux.HandleFunc(TaskTypePasswordReset, w.handlePasswordReset)
	return w
}

// Start runs the worker loop until Shutdown is called. It blocks.
func (w *Worker) Start() error {
	if err := w.server.Run(w.mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the worker, waiting for in-flight tasks.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleVerification(ctx context.Context, task *asynq.Task) error {
	payload, err := w.decode(task)
	if err != nil {
		return err
	}
	body := "Please verify your email address using this token: " + payload.Token
	if err := w.sender.Send(ctx, payload.Recipient, "Verify your email address", body); err != nil {
		w.log.Error(ctx, "verification email delivery failed", err)
		return err
	}
	return nil
}

func (w *Worker) handlePasswordReset(ctx context.Context, task *asynq.Task) error {
	payload, err := w.decode(task)
	if err != nil {
		return err
	}
	body := "Use this token to reset your password: " + payload.Token
	if err := w.sender.Send(ctx, payload.Recipient, "Password reset request", body); err != nil {
		w.log.Error(ctx, "password reset email delivery failed", err)
		return err
	}
	return nil
}

func (w *Worker) decode(task *asynq.Task) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// Malformed payloads cannot succeed on retry.
		return nil, errors.Join(err, asynq.SkipRetry)
	}
	return &payload, nil
}
