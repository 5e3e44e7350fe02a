package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/akraiem/attendance-tracker/internal/config"
)

func enabledConfig() config.EmailConfig {
	return config.EmailConfig{
		Sender:   "lecturer@ses.yu.edu.jo",
		Password: "app-password",
		Host:     "smtp.gmail.com",
		Port:     587,
		Domain:   "ses.yu.edu.jo",
	}
}

func TestNewWithoutCredentialsIsNop(t *testing.T) {
	n := New(config.EmailConfig{Host: "smtp.gmail.com", Port: 587, Domain: "ses.yu.edu.jo"})
	if _, ok := n.(Nop); !ok {
		t.Fatalf("got %T, want Nop", n)
	}
	if err := n.NotifyPresent(context.Background(), "amal omar khalid", "2021001"); err != nil {
		t.Fatalf("Nop returned error: %v", err)
	}
}

func TestNotifyPresentAddressesAndBody(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	m := &Mailer{cfg: enabledConfig(), send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}}

	if err := m.NotifyPresent(context.Background(), "amal omar khalid", "2021001"); err != nil {
		t.Fatalf("NotifyPresent: %v", err)
	}
	if gotAddr != "smtp.gmail.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotFrom != "lecturer@ses.yu.edu.jo" {
		t.Errorf("from = %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "2021001@ses.yu.edu.jo" {
		t.Errorf("to = %v", gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: Attendance Confirmation") {
		t.Errorf("missing subject in %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "Dear Amal Omar Khalid,") {
		t.Errorf("body not title-cased: %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "marked Present today") {
		t.Errorf("missing confirmation line: %q", gotMsg)
	}
}

func TestNotifyPresentWrapsSendError(t *testing.T) {
	sendErr := errors.New("connection refused")
	m := &Mailer{cfg: enabledConfig(), send: func(string, smtp.Auth, string, []string, []byte) error {
		return sendErr
	}}
	err := m.NotifyPresent(context.Background(), "amal omar khalid", "2021001")
	if !errors.Is(err, sendErr) {
		t.Fatalf("err = %v, want wrapped send error", err)
	}
}

func TestNotifyPresentHonoursCancelledContext(t *testing.T) {
	called := false
	m := &Mailer{cfg: enabledConfig(), send: func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.NotifyPresent(ctx, "amal omar khalid", "2021001"); err == nil {
		t.Fatal("expected context error")
	}
	if called {
		t.Fatal("send called after cancellation")
	}
}
