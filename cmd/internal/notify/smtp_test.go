package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestNewSMTP_Defaults(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "smtp.example.com", User: "santa@example.com"})
	if err != nil {
		t.Fatalf("NewSMTP error: %v", err)
	}
	if s.cfg.Port != 587 {
		t.Fatalf("default port = %d, want 587", s.cfg.Port)
	}
	if s.cfg.From != "santa@example.com" {
		t.Fatalf("From should default to User, got %q", s.cfg.From)
	}
}

func TestNewSMTP_RequiresHost(t *testing.T) {
	if _, err := NewSMTP(SMTPConfig{}); err == nil {
		t.Fatalf("expected error for missing host")
	}
}

func TestSMTP_SendBuildsMessage(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"})
	if err != nil {
		t.Fatalf("NewSMTP error: %v", err)
	}

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	inv := Invitation{
		Name:      "Alice",
		Email:     "alice@example.com",
		RevealURL: "https://santa.example.com/reveal?token=abc",
	}
	if err := s.Send(context.Background(), inv); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if gotAddr != "smtp.example.com:587" {
		t.Fatalf("addr = %q", gotAddr)
	}
	if gotFrom != "noreply@example.com" {
		t.Fatalf("from = %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Fatalf("to = %v", gotTo)
	}
	body := string(gotMsg)
	if !strings.Contains(body, "Hi Alice!") || !strings.Contains(body, inv.RevealURL) {
		t.Fatalf("message missing greeting or link:\n%s", body)
	}
	if strings.Contains(body, "Bob") {
		t.Fatalf("message must not name the recipient")
	}
}

func TestSMTP_SendEmptyAddress(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "smtp.example.com"})
	if err != nil {
		t.Fatalf("NewSMTP error: %v", err)
	}
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatalf("send must not be called for empty address")
		return nil
	}
	if err := s.Send(context.Background(), Invitation{Name: "X"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSMTP_SendWrapsError(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "smtp.example.com"})
	if err != nil {
		t.Fatalf("NewSMTP error: %v", err)
	}
	sendErr := errors.New("relay down")
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return sendErr }

	err = s.Send(context.Background(), Invitation{Name: "A", Email: "a@example.com"})
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped relay error, got %v", err)
	}
}
