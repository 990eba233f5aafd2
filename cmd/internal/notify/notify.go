package notify

import (
	"context"
	"log/slog"
)

// Invitation is the canonical payload for reveal-link delivery.
type Invitation struct {
	Name      string
	Email     string
	RevealURL string
}

// Notifier delivers a reveal link to one participant.
//
// A per-participant delivery failure is reported back to the caller but
// never rolls back the draw mutation that already happened.
type Notifier interface {
	Send(ctx context.Context, inv Invitation) error
}

// Noop is the default notifier when no SMTP relay is configured.
type Noop struct {
	Log *slog.Logger
}

// Send drops the invitation, logging the target at debug level.
func (n Noop) Send(_ context.Context, inv Invitation) error {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.Debug("notify.noop", "name", inv.Name)
	return nil
}
