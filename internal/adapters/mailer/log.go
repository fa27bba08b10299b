package mailer

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogTransport writes messages to the log instead of sending them.
type LogTransport struct{}

func (LogTransport) Name() string { return "log" }

func (LogTransport) Send(_ context.Context, m Message) error {
	log.Info().Str("id", m.ID).Str("to", m.To).Str("subject", m.Subject).Str("body", m.Body).Msg("mail")
	return nil
}
