package mailer

import (
	"context"
	crand "crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"hotel_booking/internal/adapters/observability"
)

type Options struct {
	Workers     int
	QueueSize   int
	RPS         int
	MaxAttempts int
	Timeout     time.Duration // per attempt
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 4
	}
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	return o
}

// Dispatcher implements domain.Notifier. Notify never blocks: when the queue
// is full, or Run has returned, the message is dropped, logged and counted.
type Dispatcher struct {
	t       Transport
	opts    Options
	queue   chan Message
	rl      *rate.Limiter
	backoff func(attempt int) time.Duration

	// mu orders Notify against Run's exit, so every message is either
	// queued before the final drain or rejected.
	mu      sync.Mutex
	stopped bool
}

func NewDispatcher(t Transport, o Options) *Dispatcher {
	o = o.withDefaults()
	return &Dispatcher{
		t:       t,
		opts:    o,
		queue:   make(chan Message, o.QueueSize),
		rl:      rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
		backoff: backoff,
	}
}

func (d *Dispatcher) Notify(_ context.Context, to, subject, body string) {
	m := Message{ID: uuid.NewString(), To: to, Subject: subject, Body: body}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		d.drop(m, "mail dispatcher stopped, notification dropped")
		return
	}
	select {
	case d.queue <- m:
		observability.MailQueueDepth.Set(float64(len(d.queue)))
	default:
		d.drop(m, "mail queue full, notification dropped")
	}
}

// Run delivers queued messages until ctx is done, then waits for deliveries
// already in flight. Messages still queued at that point, and any Notify
// after it, are dropped with a log line each.
func (d *Dispatcher) Run(ctx context.Context) error {
	sem := semaphore.NewWeighted(int64(d.opts.Workers))
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		d.stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-d.queue:
			observability.MailQueueDepth.Set(float64(len(d.queue)))
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				d.drop(m, "mail dispatcher stopping, notification dropped")
				return nil
			}
			wg.Add(1)
			go func(m Message) {
				defer wg.Done()
				defer sem.Release(1)
				d.deliver(ctx, m)
			}(m)
		}
	}
}

// stop rejects further messages and drains what is queued.
func (d *Dispatcher) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for {
		select {
		case m := <-d.queue:
			d.drop(m, "mail dispatcher stopped, notification dropped")
		default:
			observability.MailQueueDepth.Set(0)
			return
		}
	}
}

func (d *Dispatcher) drop(m Message, msg string) {
	observability.ObserveNotification(d.t.Name(), "dropped")
	log.Error().Str("id", m.ID).Str("to", m.To).Str("subject", m.Subject).Msg(msg)
}

// deliver tries m up to MaxAttempts times. Attempts in progress finish even
// after ctx is cancelled; waits between attempts do not.
func (d *Dispatcher) deliver(ctx context.Context, m Message) {
	name := d.t.Name()
	logger := log.With().Str("id", m.ID).Str("transport", name).Str("to", m.To).Str("subject", m.Subject).Logger()

	for attempt := 1; ; attempt++ {
		if err := d.rl.Wait(ctx); err != nil {
			observability.ObserveNotification(name, "failed")
			logger.Warn().Err(err).Msg("notification abandoned")
			return
		}
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.Timeout)
		err := d.t.Send(actx, m)
		cancel()
		if err == nil {
			observability.ObserveNotification(name, "sent")
			logger.Debug().Int("attempt", attempt).Msg("notification sent")
			return
		}

		var te *TransientError
		if errors.Is(err, ErrPermanent) || !errors.As(err, &te) || attempt >= d.opts.MaxAttempts {
			observability.ObserveNotification(name, "failed")
			logger.Error().Err(err).Int("attempt", attempt).Msg("notification failed")
			return
		}

		wait := te.RetryAfter
		if wait == 0 {
			wait = d.backoff(attempt - 1)
		}
		observability.ObserveNotification(name, "retry")
		logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("notification retry")
		if !sleepCtx(ctx, wait) {
			observability.ObserveNotification(name, "failed")
			logger.Warn().Msg("notification abandoned at shutdown")
			return
		}
	}
}

// sleepCtx waits for d or returns false if ctx is done first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// backoff doubles from 200ms with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
