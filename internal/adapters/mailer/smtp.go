package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/textproto"

	"github.com/wneessen/go-mail"
)

const implicitTLSPort = 465

// SMTPTransport sends through an SMTP submission server: implicit TLS on
// 465, STARTTLS on any other port. With credentials STARTTLS is mandatory,
// so they never cross a plaintext connection.
type SMTPTransport struct {
	host string
	from string
	opts []mail.Option
}

func NewSMTPTransport(host string, port int, user, pass, from string) *SMTPTransport {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSConfig(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}),
	}
	switch {
	case port == implicitTLSPort:
		opts = append(opts, mail.WithSSL())
	case user != "":
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(user),
			mail.WithPassword(pass),
		)
	}
	return &SMTPTransport{host: host, from: from, opts: opts}
}

func (s *SMTPTransport) Name() string { return "smtp" }

func (s *SMTPTransport) Send(ctx context.Context, m Message) error {
	msg, err := s.message(m)
	if err != nil {
		return permanent("build message: %v", err)
	}
	c, err := mail.NewClient(s.host, s.opts...)
	if err != nil {
		return permanent("smtp client: %v", err)
	}
	if err := c.DialWithContext(ctx); err != nil {
		return classifyDial(err)
	}
	defer func() { _ = c.Close() }()

	if err := c.Send(msg); err != nil {
		return classifySend(err)
	}
	return nil
}

func (s *SMTPTransport) message(m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, err
	}
	if err := msg.To(m.To); err != nil {
		return nil, err
	}
	msg.Subject(m.Subject)
	msg.SetDate()
	msg.SetGenHeader(mail.HeaderMessageID, "<"+m.ID+"@hotel-booking>")
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	return msg, nil
}

// classifyDial sorts failures from connect, TLS and auth. Network errors and
// 4xx replies are retried. A server that cannot meet the TLS or auth
// requirements will not change its mind, so that is permanent.
func classifyDial(err error) error {
	var te *textproto.Error
	if errors.As(err, &te) {
		if te.Code >= 500 {
			return permanent("smtp %d: %s", te.Code, te.Msg)
		}
		return &TransientError{Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, io.EOF) || errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Err: err}
	}
	return permanent("smtp: %v", err)
}

// classifySend trusts the server's reply class once the session is up.
func classifySend(err error) error {
	var se *mail.SendError
	if errors.As(err, &se) {
		if se.IsTemp() || se.Reason == mail.ErrConnCheck {
			return &TransientError{Err: err}
		}
		return permanent("smtp: %v", err)
	}
	return classifyDial(err)
}
