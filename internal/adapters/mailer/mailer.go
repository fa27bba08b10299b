// Package mailer delivers booking notifications off the request path. A
// Dispatcher queues messages and hands them to a Transport (SMTP, an HTTP
// relay, or the log) with rate limiting and bounded retries.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Message struct {
	ID      string
	To      string
	Subject string
	Body    string
}

type Transport interface {
	Name() string
	Send(ctx context.Context, m Message) error
}

// ErrPermanent marks failures that retrying cannot fix.
var ErrPermanent = errors.New("mailer: permanent failure")

func permanent(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermanent, fmt.Sprintf(format, args...))
}

// TransientError is retried, after RetryAfter when the remote asked for it.
type TransientError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *TransientError) Error() string { return "mailer: transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }
