package email

import "context"

// Enqueuer is the surface the authentication flow depends on. Dispatcher
// satisfies it; NopEnqueuer stands in when the email pipeline is disabled.
type Enqueuer interface {
	EnqueueVerification(ctx context.Context, recipient, token string) error
	EnqueuePasswordReset(ctx context.Context, recipient, token string) error
	Close() error
}

type nopEnqueuer struct{}

// NewNopEnqueuer returns an Enqueuer that discards every message.
func NewNopEnqueuer() Enqueuer {
	return nopEnqueuer{}
}

func (nopEnqueuer) EnqueueVerification(context.Context, string, string) error  { return nil }
func (nopEnqueuer) EnqueuePasswordReset(context.Context, string, string) error { return nil }
func (nopEnqueuer) Close() error                                               { return nil }
