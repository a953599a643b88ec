// Package smtp delivers mail messages over SMTP with STARTTLS. The worker plugs it in
// as the mail handler behind the pubsub subscription.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/rbroggi/studyhub/internal/core/model"
)

// MailerArgs contain the mandatory arguments to build a Mailer.
type MailerArgs struct {
	// Host is the SMTP server host.
	Host string

	// Port is the SMTP server port.
	Port string

	// Username authenticates against the server and doubles as the From address.
	Username string

	// Password is the SMTP password.
	Password string
}

// Mailer delivers mail messages through a plain-auth STARTTLS SMTP session.
type Mailer struct {
	host     string
	port     string
	username string
	password string
}

// NewMailer creates a new Mailer.
func NewMailer(args MailerArgs) (*Mailer, error) {
	if args.Host == "" || args.Port == "" {
		return nil, fmt.Errorf("smtp host and port are required")
	}
	return &Mailer{
		host:     args.Host,
		port:     args.Port,
		username: args.Username,
		password: args.Password,
	}, nil
}

// Handle delivers the mail message. A fresh SMTP session is opened per message.
func (m *Mailer) Handle(ctx context.Context, msg model.MailMessage) error {
	payload := strings.Join([]string{
		fmt.Sprintf("From: %s", m.username),
		fmt.Sprintf("To: %s", msg.To),
		fmt.Sprintf("Subject: %s", msg.Subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		msg.Body,
	}, "\r\n")

	addr := net.JoinHostPort(m.host, m.port)
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fmt.Errorf("smtp server does not support STARTTLS")
	}
	if err = client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	if err = client.Mail(m.username); err != nil {
		return fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", msg.To, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = wc.Write([]byte(payload)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err = client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP client: %w", err)
	}

	log.WithField("to", msg.To).Info("mail delivered")
	return nil
}
