package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotel_booking/internal/adapters/observability"
)

// RelayTransport posts messages as JSON to an HTTP mail relay. The message
// id doubles as the idempotency key so retried sends are not duplicated.
type RelayTransport struct {
	url  string
	key  string
	from string
	hc   *http.Client
}

func NewRelayTransport(url, key, from string, timeout time.Duration) *RelayTransport {
	return &RelayTransport{url: url, key: key, from: from, hc: &http.Client{Timeout: timeout}}
}

func (r *RelayTransport) Name() string { return "relay" }

type relayPayload struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (r *RelayTransport) Send(ctx context.Context, m Message) error {
	body, err := json.Marshal(relayPayload{ID: m.ID, From: r.from, To: m.To, Subject: m.Subject, Text: m.Body})
	if err != nil {
		return permanent("encode: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return permanent("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hotel-booking/1.0")
	req.Header.Set("Idempotency-Key", m.ID)
	if r.key != "" {
		req.Header.Set("X-API-Key", r.key)
	}

	start := time.Now()
	resp, err := r.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("mail_relay", "send", 0, time.Since(start))
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal("mail_relay", "send", resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &TransientError{Err: fmt.Errorf("relay %d", resp.StatusCode), RetryAfter: retryAfter(resp)}
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return permanent("relay %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
