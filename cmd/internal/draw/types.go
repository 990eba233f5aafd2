package draw

import (
	"strings"
	"time"
)

// Mode selects the assignment strategy for a Draw.
type Mode string

const (
	// ModeEager computes the full derangement at setup time.
	ModeEager Mode = "eager"
	// ModeLazy claims recipients from a shared pool at reveal time.
	ModeLazy Mode = "lazy"
)

// ParseMode normalizes a mode string; blank means eager.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeEager:
		return ModeEager, nil
	case ModeLazy:
		return ModeLazy, nil
	}
	return "", ErrInvalidInput
}

// Participant is one member of a Draw, keyed by display name in the
// aggregate. Department is opaque metadata passed through unchanged.
type Participant struct {
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Token      string `json:"token"`
}

// Draw is the persisted aggregate: the participant table, the giver ->
// recipient mapping, the reveal timestamps, and (lazy mode) the pool of
// names not yet claimed as a recipient.
type Draw struct {
	ID             string                 `json:"id,omitempty"`
	Mode           Mode                   `json:"mode,omitempty"`
	CreatedAt      time.Time              `json:"createdAt,omitzero"`
	Participants   map[string]Participant `json:"participants"`
	Assignments    map[string]string      `json:"assignments"`
	Revealed       map[string]time.Time   `json:"revealed"`
	AvailableNames []string               `json:"availableNames,omitempty"`
}

// Empty returns the default Draw used when nothing has been persisted yet.
func Empty() Draw {
	return Draw{
		Participants: make(map[string]Participant),
		Assignments:  make(map[string]string),
		Revealed:     make(map[string]time.Time),
	}
}

// normalize repairs nil maps after JSON decoding so callers can index freely.
func (d *Draw) normalize() {
	if d.Participants == nil {
		d.Participants = make(map[string]Participant)
	}
	if d.Assignments == nil {
		d.Assignments = make(map[string]string)
	}
	if d.Revealed == nil {
		d.Revealed = make(map[string]time.Time)
	}
}

// GiverByToken resolves the participant holding the given reveal token.
func (d Draw) GiverByToken(tok string) (string, bool) {
	for name, p := range d.Participants {
		if p.Token == tok {
			return name, true
		}
	}
	return "", false
}
