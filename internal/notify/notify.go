// Package notify sends attendance confirmation emails to students over
// the institutional mail account.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/akraiem/attendance-tracker/internal/config"
	"github.com/akraiem/attendance-tracker/internal/identity"
)

// Notifier delivers a confirmation after a student is marked present.
type Notifier interface {
	NotifyPresent(ctx context.Context, fullName, regNo string) error
}

// Nop discards every notification. Used when mail credentials are not
// configured.
type Nop struct{}

func (Nop) NotifyPresent(ctx context.Context, fullName, regNo string) error { return nil }

// Mailer sends confirmations over SMTP with STARTTLS.
type Mailer struct {
	cfg  config.EmailConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New returns a Mailer, or Nop when the config has no credentials.
func New(cfg config.EmailConfig) Notifier {
	if !cfg.Enabled() {
		logrus.Debug("email notifications disabled, no credentials configured")
		return Nop{}
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// NotifyPresent mails the student at <reg_no>@<domain>.
func (m *Mailer) NotifyPresent(ctx context.Context, fullName, regNo string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	to := fmt.Sprintf("%s@%s", regNo, m.cfg.Domain)
	subject := "Attendance Confirmation"
	body := fmt.Sprintf(
		"Dear %s,\n\nYou have been marked Present today. If you believe this is a mistake, please contact your instructor.\n\nBest regards,\nAttendance System",
		identity.Title(fullName),
	)

	msg := strings.Join([]string{
		"From: " + m.cfg.Sender,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.Host)
	if err := m.send(addr, auth, m.cfg.Sender, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}
