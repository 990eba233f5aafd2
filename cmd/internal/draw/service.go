package draw

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"santa/cmd/internal/notify"
	"santa/cmd/security/token"

	"github.com/oklog/ulid/v2"
)

// ParticipantInput describes one participant submitted to Setup.
type ParticipantInput struct {
	Name       string
	Email      string
	Department string
}

// RevealRef is the per-participant reveal reference handed to the notifier.
type RevealRef struct {
	Name      string
	Email     string
	Token     string
	RevealURL string
}

// SetupResult reports a completed setup including the delivery summary.
type SetupResult struct {
	DrawID string
	Total  int
	Sent   int
	Failed []string
	Refs   []RevealRef
}

// RevealResult is the outcome of a reveal: the first disclosure stamps
// state; any later call is an idempotent re-read with AlreadyRevealed set.
type RevealResult struct {
	Giver           string
	Recipient       string
	AlreadyRevealed bool
}

// ParticipantStatus is one row of the admin status snapshot.
type ParticipantStatus struct {
	Name        string
	Email       string
	Department  string
	HasRevealed bool
	RevealedAt  *time.Time
}

// StatusReport is a read-only snapshot of the current draw.
type StatusReport struct {
	DrawID         string
	Mode           Mode
	Total          int
	Revealed       int
	Participants   []ParticipantStatus
	PoolRemaining  int
	AvailableNames []string
}

// RemindResult reports the administrative sweep: how many participants
// were still pending, how many got force-assigned, and the delivery tally.
type RemindResult struct {
	Pending  int
	Assigned int
	Skipped  int
	Sent     int
	Failed   []string
}

// Service owns the draw aggregate. Every load-mutate-save cycle runs under
// one mutex; that serialization is what keeps two concurrent reveals from
// claiming the same name off the lazy pool.
type Service struct {
	mu       sync.Mutex
	store    Store
	notifier notify.Notifier
	log      *slog.Logger

	mode       Mode
	baseURL    string
	tokenBytes int
	now        func() time.Time
}

// Option configures the Service.
type Option func(*Service) error

// WithNotifier sets the delivery collaborator (default: notify.Noop).
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) error {
		if n == nil {
			return ErrInvalidInput
		}
		s.notifier = n
		return nil
	}
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) error {
		if log == nil {
			return ErrInvalidInput
		}
		s.log = log
		return nil
	}
}

// WithMode selects the assignment strategy (default: eager).
func WithMode(m Mode) Option {
	return func(s *Service) error {
		if m != ModeEager && m != ModeLazy {
			return ErrInvalidInput
		}
		s.mode = m
		return nil
	}
}

// WithBaseURL sets the public base used to build reveal links.
func WithBaseURL(u string) Option {
	return func(s *Service) error {
		s.baseURL = strings.TrimRight(strings.TrimSpace(u), "/")
		return nil
	}
}

// WithTokenBytes sets the length of generated reveal tokens in bytes.
func WithTokenBytes(n int) Option {
	return func(s *Service) error {
		if n < token.MinBytes {
			return ErrInvalidInput
		}
		s.tokenBytes = n
		return nil
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		if now == nil {
			return ErrInvalidInput
		}
		s.now = now
		return nil
	}
}

// NewService constructs a Service with safe defaults.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrInvalidInput
	}
	s := &Service{
		store:      store,
		notifier:   notify.Noop{},
		log:        slog.Default(),
		mode:       ModeEager,
		tokenBytes: token.DefaultBytes,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Setup replaces any prior draw wholesale: validate the list, mint a token
// per participant, run (or defer) the assignment engine, persist, then
// dispatch one reveal link per participant. Validation or save failure
// leaves the prior draw untouched.
func (s *Service) Setup(ctx context.Context, in []ParticipantInput) (SetupResult, error) {
	if err := ctx.Err(); err != nil {
		return SetupResult{}, err
	}
	if len(in) < 2 {
		return SetupResult{}, ErrInsufficientParticipants
	}

	names := make([]string, 0, len(in))
	participants := make(map[string]Participant, len(in))
	seenTokens := make(map[string]bool, len(in))

	for _, p := range in {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return SetupResult{}, fmt.Errorf("%w: blank participant name", ErrInvalidInput)
		}
		if _, dup := participants[name]; dup {
			return SetupResult{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}

		tok, err := s.newToken(seenTokens)
		if err != nil {
			return SetupResult{}, err
		}
		names = append(names, name)
		participants[name] = Participant{
			Email:      strings.TrimSpace(p.Email),
			Department: strings.TrimSpace(p.Department),
			Token:      tok,
		}
	}

	now := s.now()
	id, err := newDrawID(now)
	if err != nil {
		return SetupResult{}, err
	}

	d := Empty()
	d.ID = id
	d.Mode = s.mode
	d.CreatedAt = now
	d.Participants = participants

	switch s.mode {
	case ModeLazy:
		d.AvailableNames = names
	default:
		assignments, err := Perform(names)
		if err != nil {
			return SetupResult{}, err
		}
		d.Assignments = assignments
	}

	s.mu.Lock()
	err = s.store.Save(ctx, d)
	s.mu.Unlock()
	if err != nil {
		return SetupResult{}, fmt.Errorf("persist draw: %w", err)
	}

	refs := make([]RevealRef, 0, len(names))
	for _, name := range names {
		p := participants[name]
		refs = append(refs, RevealRef{
			Name:      name,
			Email:     p.Email,
			Token:     p.Token,
			RevealURL: s.revealURL(p.Token),
		})
	}

	sent, failed := s.dispatch(ctx, refs)
	s.log.Info("draw.setup",
		"draw_id", id,
		"mode", s.mode,
		"participants", len(names),
		"notified", sent,
	)

	return SetupResult{DrawID: id, Total: len(names), Sent: sent, Failed: failed, Refs: refs}, nil
}

// Reveal resolves a token to its giver and discloses the recipient.
//
// State machine per giver: Revealed -> idempotent re-read, no write.
// Assigned-unrevealed -> stamp the reveal time and persist. Not yet
// assigned (lazy) -> claim a recipient off the pool and commit assignment,
// reveal stamp, and shrunk pool in one save. The transition to Revealed is
// terminal; only Reset reverts it.
func (s *Service) Reveal(ctx context.Context, tok string) (RevealResult, error) {
	if err := ctx.Err(); err != nil {
		return RevealResult{}, err
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return RevealResult{}, ErrInvalidToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.store.Load(ctx)
	if err != nil {
		return RevealResult{}, err
	}

	giver, ok := d.GiverByToken(tok)
	if !ok {
		s.log.Info("reveal.unknown_token", "token", token.Redact(tok))
		return RevealResult{}, ErrInvalidToken
	}

	recipient, assigned := d.Assignments[giver]
	if assigned {
		if _, revealed := d.Revealed[giver]; revealed {
			s.log.Debug("reveal.repeat", "giver", giver)
			return RevealResult{Giver: giver, Recipient: recipient, AlreadyRevealed: true}, nil
		}
	} else {
		claimed, remaining, err := Claim(d.AvailableNames, giver)
		if err != nil {
			return RevealResult{}, err
		}
		recipient = claimed
		d.Assignments[giver] = claimed
		d.AvailableNames = remaining
	}

	d.Revealed[giver] = s.now()
	if err := s.store.Save(ctx, d); err != nil {
		return RevealResult{}, fmt.Errorf("persist draw: %w", err)
	}

	s.log.Info("reveal.first", "giver", giver, "pool_remaining", len(d.AvailableNames))
	return RevealResult{Giver: giver, Recipient: recipient, AlreadyRevealed: false}, nil
}

// Status returns a read-only snapshot of the current draw, participants
// sorted by name.
func (s *Service) Status(ctx context.Context) (StatusReport, error) {
	if err := ctx.Err(); err != nil {
		return StatusReport{}, err
	}

	s.mu.Lock()
	d, err := s.store.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return StatusReport{}, err
	}

	names := make([]string, 0, len(d.Participants))
	for name := range d.Participants {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]ParticipantStatus, 0, len(names))
	for _, name := range names {
		p := d.Participants[name]
		row := ParticipantStatus{Name: name, Email: p.Email, Department: p.Department}
		if at, ok := d.Revealed[name]; ok {
			t := at
			row.HasRevealed = true
			row.RevealedAt = &t
		}
		rows = append(rows, row)
	}

	return StatusReport{
		DrawID:         d.ID,
		Mode:           d.Mode,
		Total:          len(d.Participants),
		Revealed:       len(d.Revealed),
		Participants:   rows,
		PoolRemaining:  len(d.AvailableNames),
		AvailableNames: d.AvailableNames,
	}, nil
}

// Reset discards the current draw, persisting the empty default.
func (s *Service) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, Empty()); err != nil {
		return fmt.Errorf("persist draw: %w", err)
	}
	s.log.Info("draw.reset")
	return nil
}

// Remind sweeps participants who have not revealed yet. In lazy mode each
// pending participant gets a recipient force-claimed off the pool (stamped
// revealed in the same commit, exactly as if they had clicked); in eager
// mode nothing mutates and the sweep just re-sends reveal links. The whole
// sweep persists once; delivery runs after the commit.
func (s *Service) Remind(ctx context.Context) (RemindResult, error) {
	if err := ctx.Err(); err != nil {
		return RemindResult{}, err
	}

	s.mu.Lock()
	d, err := s.store.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return RemindResult{}, err
	}
	if len(d.Participants) == 0 {
		s.mu.Unlock()
		return RemindResult{}, ErrNoDraw
	}

	pending := make([]string, 0, len(d.Participants))
	for name := range d.Participants {
		if _, revealed := d.Revealed[name]; !revealed {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)

	res := RemindResult{Pending: len(pending)}
	now := s.now()
	refs := make([]RevealRef, 0, len(pending))

	for _, name := range pending {
		if _, assigned := d.Assignments[name]; !assigned {
			recipient, remaining, err := Claim(d.AvailableNames, name)
			if err != nil {
				// Nothing left for this giver; leave them pending.
				res.Skipped++
				continue
			}
			d.Assignments[name] = recipient
			d.Revealed[name] = now
			d.AvailableNames = remaining
			res.Assigned++
		}
		p := d.Participants[name]
		refs = append(refs, RevealRef{
			Name:      name,
			Email:     p.Email,
			Token:     p.Token,
			RevealURL: s.revealURL(p.Token),
		})
	}

	if res.Assigned > 0 {
		if err := s.store.Save(ctx, d); err != nil {
			s.mu.Unlock()
			return RemindResult{}, fmt.Errorf("persist draw: %w", err)
		}
	}
	s.mu.Unlock()

	res.Sent, res.Failed = s.dispatch(ctx, refs)
	s.log.Info("draw.remind",
		"pending", res.Pending,
		"assigned", res.Assigned,
		"skipped", res.Skipped,
		"notified", res.Sent,
	)
	return res, nil
}

func (s *Service) dispatch(ctx context.Context, refs []RevealRef) (int, []string) {
	sent := 0
	var failed []string
	for _, ref := range refs {
		inv := notify.Invitation{Name: ref.Name, Email: ref.Email, RevealURL: ref.RevealURL}
		if err := s.notifier.Send(ctx, inv); err != nil {
			s.log.Warn("notify.fail", "name", ref.Name, "err", err)
			failed = append(failed, ref.Name)
			continue
		}
		sent++
	}
	return sent, failed
}

func (s *Service) newToken(seen map[string]bool) (string, error) {
	for {
		tok, err := token.New(s.tokenBytes)
		if err != nil {
			return "", err
		}
		if !seen[tok] {
			seen[tok] = true
			return tok, nil
		}
	}
}

func (s *Service) revealURL(tok string) string {
	return s.baseURL + "/reveal?token=" + tok
}

func newDrawID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
