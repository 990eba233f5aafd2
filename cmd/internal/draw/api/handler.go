package drawapi

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"santa/cmd/internal/draw"
	"santa/cmd/security/password"
)

const defaultMaxBodyBytes = 1 << 20

// Config carries the request-layer knobs.
type Config struct {
	// AdminPasswordHash is an argon2id encoded hash; preferred.
	AdminPasswordHash string
	// AdminPassword is the plain dev fallback, compared in constant time.
	AdminPassword string
	MaxBodyBytes  int64
}

// Handler exposes the draw service over HTTP. It owns no state beyond
// configuration; every operation round-trips through the service.
type Handler struct {
	log *slog.Logger
	svc *draw.Service
	cfg Config
}

// NewHandler constructs the request layer for a draw service.
func NewHandler(log *slog.Logger, svc *draw.Service, cfg Config) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("drawapi: nil service")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{log: log, svc: svc, cfg: cfg}, nil
}

// Register wires draw routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/api/reveal", h.handleReveal)
	mux.HandleFunc("/api/admin/setup", h.admin(h.handleSetup))
	mux.HandleFunc("/api/admin/status", h.admin(h.handleStatus))
	mux.HandleFunc("/api/admin/reset", h.admin(h.handleReset))
	mux.HandleFunc("/api/admin/remind", h.admin(h.handleRemind))
}

// admin guards an endpoint with the operator password. With neither a
// hash nor a plain password configured the admin surface stays closed.
func (h *Handler) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.AdminPasswordHash == "" && h.cfg.AdminPassword == "" {
			writeError(w, http.StatusServiceUnavailable, "admin_disabled", "no admin password configured")
			return
		}

		supplied := adminSecret(r)
		if supplied == "" || !h.checkAdminSecret(supplied) {
			h.log.Warn("admin.unauthorized", "path", r.URL.Path, "remote", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid admin password")
			return
		}
		next(w, r)
	}
}

func adminSecret(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Admin-Password")); v != "" {
		return v
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

func (h *Handler) checkAdminSecret(supplied string) bool {
	if h.cfg.AdminPasswordHash != "" {
		ok, err := password.Verify(h.cfg.AdminPasswordHash, supplied)
		if err != nil {
			h.log.Error("admin.hash.invalid", "err", err)
			return false
		}
		return ok
	}
	want := sha256.Sum256([]byte(h.cfg.AdminPassword))
	got := sha256.Sum256([]byte(supplied))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}

func (h *Handler) handleSetup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}

	var req setupRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	in := make([]draw.ParticipantInput, 0, len(req.Participants))
	for _, p := range req.Participants {
		in = append(in, draw.ParticipantInput{
			Name:       p.Name,
			Email:      p.Email,
			Department: p.Department,
		})
	}

	res, err := h.svc.Setup(r.Context(), in)
	if err != nil {
		h.writeDrawError(w, err)
		return
	}
	setupsTotal.Inc()

	writeJSON(w, http.StatusOK, setupResponse{
		DrawID: res.DrawID,
		Total:  res.Total,
		Sent:   res.Sent,
		Failed: res.Failed,
		Message: fmt.Sprintf("Secret Santa set up; %d of %d notifications sent",
			res.Sent, res.Total),
	})
}

func (h *Handler) handleReveal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required")
		return
	}

	tok := strings.TrimSpace(r.URL.Query().Get("token"))
	if tok == "" {
		writeError(w, http.StatusBadRequest, "token_required", "token is required")
		return
	}

	res, err := h.svc.Reveal(r.Context(), tok)
	if err != nil {
		switch {
		case errors.Is(err, draw.ErrInvalidToken):
			revealsTotal.WithLabelValues(outcomeInvalid).Inc()
		default:
			revealsTotal.WithLabelValues(outcomeError).Inc()
		}
		h.writeDrawError(w, err)
		return
	}

	if res.AlreadyRevealed {
		revealsTotal.WithLabelValues(outcomeRepeat).Inc()
	} else {
		revealsTotal.WithLabelValues(outcomeFirst).Inc()
	}
	writeJSON(w, http.StatusOK, revealResponse{
		Giver:           res.Giver,
		Recipient:       res.Recipient,
		AlreadyRevealed: res.AlreadyRevealed,
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required")
		return
	}

	st, err := h.svc.Status(r.Context())
	if err != nil {
		h.writeDrawError(w, err)
		return
	}

	rows := make([]participantStatusResponse, 0, len(st.Participants))
	for _, p := range st.Participants {
		rows = append(rows, participantStatusResponse{
			Name:        p.Name,
			Email:       p.Email,
			Department:  p.Department,
			HasRevealed: p.HasRevealed,
			RevealedAt:  p.RevealedAt,
		})
	}

	writeJSON(w, http.StatusOK, statusResponse{
		DrawID:         st.DrawID,
		Mode:           string(st.Mode),
		Total:          st.Total,
		Revealed:       st.Revealed,
		Participants:   rows,
		RemainingCount: st.PoolRemaining,
		RemainingNames: st.AvailableNames,
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}

	if err := h.svc.Reset(r.Context()); err != nil {
		h.writeDrawError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{Success: true, Message: "Secret Santa reset successfully"})
}

func (h *Handler) handleRemind(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}

	res, err := h.svc.Remind(r.Context())
	if err != nil {
		h.writeDrawError(w, err)
		return
	}
	remindersTotal.Inc()

	writeJSON(w, http.StatusOK, remindResponse{
		Pending:  res.Pending,
		Assigned: res.Assigned,
		Skipped:  res.Skipped,
		Sent:     res.Sent,
		Failed:   res.Failed,
		Message: fmt.Sprintf("%d pending; %d auto-assigned; %d of %d notifications sent",
			res.Pending, res.Assigned, res.Sent, res.Pending),
	})
}

// writeDrawError maps core errors onto the wire taxonomy.
func (h *Handler) writeDrawError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draw.ErrInsufficientParticipants):
		writeError(w, http.StatusBadRequest, "insufficient_participants", "need at least 2 participants")
	case errors.Is(err, draw.ErrDuplicateName):
		writeError(w, http.StatusBadRequest, "duplicate_name", "participant names must be unique")
	case errors.Is(err, draw.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid participant list")
	case errors.Is(err, draw.ErrInvalidToken):
		writeError(w, http.StatusNotFound, "invalid_token", "invalid token")
	case errors.Is(err, draw.ErrPoolExhausted):
		writeError(w, http.StatusConflict, "pool_exhausted", "no names left to draw; contact the admin")
	case errors.Is(err, draw.ErrNoDraw):
		writeError(w, http.StatusConflict, "no_draw", "no draw configured")
	case errors.Is(err, draw.ErrDrawExhausted):
		writeError(w, http.StatusInternalServerError, "draw_exhausted", "could not generate valid assignments")
	default:
		h.log.Error("drawapi.internal", "err", err)
		writeError(w, http.StatusInternalServerError, "storage_failure", "server error")
	}
}
