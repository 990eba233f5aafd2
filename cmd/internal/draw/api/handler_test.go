package drawapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"santa/cmd/internal/draw"
)

const testAdminPassword = "test-operator-password"

func newTestMux(t *testing.T, opts ...draw.Option) *http.ServeMux {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := draw.NewFileStore(filepath.Join(t.TempDir(), "data.json"), log)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	opts = append([]draw.Option{draw.WithLogger(log)}, opts...)
	svc, err := draw.NewService(store, opts...)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	h, err := NewHandler(log, svc, Config{AdminPassword: testAdminPassword})
	if err != nil {
		t.Fatalf("NewHandler error: %v", err)
	}

	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func doAdmin(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("X-Admin-Password", testAdminPassword)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rr.Body.String())
	}
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[errorResponse](t, rr).Error.Code
}

const setupThree = `{"participants":[
	{"name":"Alice","email":"alice@example.com","department":"Eng"},
	{"name":"Bob","email":"bob@example.com"},
	{"name":"Carol","email":"carol@example.com"}
]}`

func TestSetupStatusRevealFlow(t *testing.T) {
	mux := newTestMux(t)

	rr := doAdmin(t, mux, http.MethodPost, "/api/admin/setup", setupThree)
	if rr.Code != http.StatusOK {
		t.Fatalf("setup status = %d: %s", rr.Code, rr.Body.String())
	}
	setup := decodeBody[setupResponse](t, rr)
	if setup.Total != 3 || setup.DrawID == "" {
		t.Fatalf("setup response wrong: %+v", setup)
	}

	rr = doAdmin(t, mux, http.MethodGet, "/api/admin/status", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	st := decodeBody[statusResponse](t, rr)
	if st.Total != 3 || st.Revealed != 0 || len(st.Participants) != 3 {
		t.Fatalf("status wrong: %+v", st)
	}

	// The status payload must not leak tokens anywhere.
	if strings.Contains(rr.Body.String(), `"token"`) {
		t.Fatalf("status leaks tokens: %s", rr.Body.String())
	}

	// Reveal needs a real token; fish it out of the persisted aggregate
	// via a second reveal attempt per participant is circular, so use the
	// admin flow: reset and re-setup is unnecessary — drive the service
	// through the public route with a bad token first.
	req := httptest.NewRequest(http.MethodGet, "/api/reveal?token=nope", nil)
	rr2 := httptest.NewRecorder()
	mux.ServeHTTP(rr2, req)
	if rr2.Code != http.StatusNotFound {
		t.Fatalf("invalid token status = %d", rr2.Code)
	}
	if errorCode(t, rr2) != "invalid_token" {
		t.Fatalf("invalid token code = %s", rr2.Body.String())
	}
}

func TestReveal_FullRoundtrip(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := draw.NewFileStore(filepath.Join(t.TempDir(), "data.json"), log)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	svc, err := draw.NewService(store, draw.WithLogger(log))
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	h, err := NewHandler(log, svc, Config{AdminPassword: testAdminPassword})
	if err != nil {
		t.Fatalf("NewHandler error: %v", err)
	}
	mux := http.NewServeMux()
	h.Register(mux)

	res, err := svc.Setup(t.Context(), []draw.ParticipantInput{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}

	var tokenAlice string
	for _, ref := range res.Refs {
		if ref.Name == "Alice" {
			tokenAlice = ref.Token
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/reveal?token="+tokenAlice, nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("reveal status = %d: %s", rr.Code, rr.Body.String())
	}
	first := decodeBody[revealResponse](t, rr)
	if first.Giver != "Alice" || first.Recipient != "Bob" || first.AlreadyRevealed {
		t.Fatalf("first reveal wrong: %+v", first)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reveal?token="+tokenAlice, nil))
	second := decodeBody[revealResponse](t, rr)
	if !second.AlreadyRevealed || second.Recipient != "Bob" {
		t.Fatalf("repeat reveal wrong: %+v", second)
	}
}

func TestReveal_TokenRequired(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/reveal", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if errorCode(t, rr) != "token_required" {
		t.Fatalf("code = %s", rr.Body.String())
	}
}

func TestSetup_InsufficientParticipants(t *testing.T) {
	mux := newTestMux(t)

	rr := doAdmin(t, mux, http.MethodPost, "/api/admin/setup",
		`{"participants":[{"name":"Solo","email":"solo@example.com"}]}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if errorCode(t, rr) != "insufficient_participants" {
		t.Fatalf("code = %s", rr.Body.String())
	}
}

func TestSetup_InvalidJSON(t *testing.T) {
	mux := newTestMux(t)

	rr := doAdmin(t, mux, http.MethodPost, "/api/admin/setup", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if errorCode(t, rr) != "invalid_json" {
		t.Fatalf("code = %s", rr.Body.String())
	}
}

func TestAdmin_Unauthorized(t *testing.T) {
	mux := newTestMux(t)

	for _, tc := range []struct {
		name   string
		header func(*http.Request)
	}{
		{"missing", func(*http.Request) {}},
		{"wrong", func(r *http.Request) { r.Header.Set("X-Admin-Password", "wrong") }},
		{"wrong-bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer wrong") }},
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/status", nil)
		tc.header(req)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d", tc.name, rr.Code)
		}
	}
}

func TestAdmin_BearerAccepted(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/status", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminPassword)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAdmin_DisabledWithoutPassword(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := draw.NewFileStore(filepath.Join(t.TempDir(), "data.json"), log)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	svc, err := draw.NewService(store, draw.WithLogger(log))
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	h, err := NewHandler(log, svc, Config{})
	if err != nil {
		t.Fatalf("NewHandler error: %v", err)
	}
	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/status", nil)
	req.Header.Set("X-Admin-Password", "anything")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	if errorCode(t, rr) != "admin_disabled" {
		t.Fatalf("code = %s", rr.Body.String())
	}
}

func TestReset_ClearsDraw(t *testing.T) {
	mux := newTestMux(t)

	if rr := doAdmin(t, mux, http.MethodPost, "/api/admin/setup", setupThree); rr.Code != http.StatusOK {
		t.Fatalf("setup status = %d", rr.Code)
	}
	if rr := doAdmin(t, mux, http.MethodPost, "/api/admin/reset", ""); rr.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rr.Code)
	}

	rr := doAdmin(t, mux, http.MethodGet, "/api/admin/status", "")
	st := decodeBody[statusResponse](t, rr)
	if st.Total != 0 || st.Revealed != 0 {
		t.Fatalf("status after reset: %+v", st)
	}
}

func TestRemind_NoDrawConflict(t *testing.T) {
	mux := newTestMux(t)

	rr := doAdmin(t, mux, http.MethodPost, "/api/admin/remind", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d", rr.Code)
	}
	if errorCode(t, rr) != "no_draw" {
		t.Fatalf("code = %s", rr.Body.String())
	}
}

func TestLazyStatusReportsPool(t *testing.T) {
	mux := newTestMux(t, draw.WithMode(draw.ModeLazy))

	if rr := doAdmin(t, mux, http.MethodPost, "/api/admin/setup", setupThree); rr.Code != http.StatusOK {
		t.Fatalf("setup status = %d", rr.Code)
	}

	rr := doAdmin(t, mux, http.MethodGet, "/api/admin/status", "")
	st := decodeBody[statusResponse](t, rr)
	if st.Mode != "lazy" || st.RemainingCount != 3 || len(st.RemainingNames) != 3 {
		t.Fatalf("lazy status wrong: %+v", st)
	}
}

func TestMethodGuards(t *testing.T) {
	mux := newTestMux(t)

	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/admin/setup"},
		{http.MethodPost, "/api/admin/status"},
		{http.MethodGet, "/api/admin/reset"},
		{http.MethodGet, "/api/admin/remind"},
		{http.MethodPost, "/api/reveal"},
	}
	for _, tc := range cases {
		var rr *httptest.ResponseRecorder
		if strings.HasPrefix(tc.path, "/api/admin/") {
			rr = doAdmin(t, mux, tc.method, tc.path, "")
		} else {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr = httptest.NewRecorder()
			mux.ServeHTTP(rr, req)
		}
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: status = %d", tc.method, tc.path, rr.Code)
		}
	}
}
