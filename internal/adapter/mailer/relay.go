// Package mailer delivers weather notifications through an authenticated
// TLS SMTP relay.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-notify/internal/domain"
)

// Failure classes for a dispatch attempt. Both stay inside the package:
// Dispatch folds them into the outcome instead of returning them.
var (
	ErrAuth     = errors.New("auth failed")
	ErrDelivery = errors.New("delivery failed")
)

// Relay sends notification mail over an implicit-TLS SMTP connection
// (mail-submission endpoints like smtp.gmail.com:465). Connection,
// authentication and send form one scoped operation with teardown
// guaranteed on every exit path. One send attempt per invocation, no retry.
type Relay struct {
	host        string
	port        int
	username    string
	password    string
	from        string
	dialTimeout time.Duration
	logger      *slog.Logger
}

// NewRelay creates an SMTP relay dispatcher. The from address defaults to
// the relay username when empty.
func NewRelay(host string, port int, username, password, from string, dialTimeout time.Duration, logger *slog.Logger) *Relay {
	if from == "" {
		from = username
	}
	return &Relay{
		host:        host,
		port:        port,
		username:    username,
		password:    password,
		from:        from,
		dialTimeout: dialTimeout,
		logger:      logger,
	}
}

// Name identifies the transport in logs and metrics.
func (r *Relay) Name() string { return "relay" }

// Dispatch delivers one notification. Every transport failure is converted
// to a DispatchOutcome; no error ever escapes to the caller.
func (r *Relay) Dispatch(ctx context.Context, n domain.Notification) domain.DispatchOutcome {
	if err := r.send(ctx, n); err != nil {
		r.logger.Warn("notification dispatch failed",
			"recipient", n.RecipientEmail,
			"city", n.Report.City,
			"error", err,
		)
		return domain.DispatchOutcome{Delivered: false, ErrorDetail: err.Error()}
	}

	r.logger.Info("notification delivered", "recipient", n.RecipientEmail, "city", n.Report.City)
	return domain.DispatchOutcome{Delivered: true}
}

func (r *Relay) send(ctx context.Context, n domain.Notification) error {
	addr := net.JoinHostPort(r.host, strconv.Itoa(r.port))

	dialer := &net.Dialer{Timeout: r.dialTimeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: r.host})
	if err != nil {
		return fmt.Errorf("%w: dial relay: %v", ErrDelivery, err)
	}

	// Bound the whole SMTP session by the caller's deadline, when present.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, r.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: smtp handshake: %v", ErrDelivery, err)
	}
	defer client.Close()

	if err := client.Auth(smtp.PlainAuth("", r.username, r.password, r.host)); err != nil {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}

	if err := client.Mail(r.from); err != nil {
		return fmt.Errorf("%w: MAIL FROM: %v", ErrDelivery, err)
	}
	if err := client.Rcpt(n.RecipientEmail); err != nil {
		return fmt.Errorf("%w: RCPT TO: %v", ErrDelivery, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%w: DATA: %v", ErrDelivery, err)
	}
	if _, err := fmt.Fprintf(wc, "From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		r.from, n.RecipientEmail, Subject(n.Report), FormatBody(n.Report)); err != nil {
		wc.Close()
		return fmt.Errorf("%w: write message: %v", ErrDelivery, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%w: finish message: %v", ErrDelivery, err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("%w: quit: %v", ErrDelivery, err)
	}
	return nil
}
