package app_test

import (
	"context"
	"sync"
	"time"

	"hotel_booking/internal/domain"
)

// ---- fakes ----

type sentMail struct{ to, subject, body string }

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *fakeNotifier) Notify(ctx context.Context, to, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{to, subject, body})
}

func (n *fakeNotifier) all() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMail(nil), n.sent...)
}

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Hotel:
		*d = v.(domain.Hotel)
	case *[]domain.Hotel:
		*d = v.([]domain.Hotel)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(pw string) ([]byte, error) { return []byte("h:" + pw), nil }
func (fakeHasher) Compare(h []byte, pw string) bool { return string(h) == "h:"+pw }

type fakeTokens struct{}

func (fakeTokens) Issue(r domain.Requester) (string, time.Time, error) {
	return "tok-" + string(r.Role), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DayLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }
