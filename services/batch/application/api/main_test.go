package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ghuser/medtrace/pkg/locker"
	"github.com/ghuser/medtrace/pkg/logger"
	"github.com/ghuser/medtrace/pkg/signing"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
	"github.com/ghuser/medtrace/services/batch/infrastructure/persistence/memory"
)

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "error")
	signer, err := signing.NewSigner("test-signing-secret-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	batches := memory.NewBatchRepository()
	scans := memory.NewScanLogRepository()
	recorder := appsvcs.NewScanRecorder(scans, nil, nil, log)
	svcs := &appsvcs.Services{
		Ledger:       appsvcs.NewLedgerService(batches, nil, locker.NewLocalLocker(), time.Second, signer, log),
		Verification: appsvcs.NewVerificationService(batches, scans, memory.NewScoringReader(batches, scans), recorder, nil, signer, log),
		Recorder:     recorder,
	}
	store := sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		Routes(r, svcs, store, log, Options{DevLogin: true})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv}
}

// login returns the session cookies for the given identity.
func (s *testServer) login(email, role string) []*http.Cookie {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/api/session", nil, map[string]string{"email": email, "role": role})
	if resp.StatusCode != http.StatusNoContent {
		s.t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	return resp.Cookies()
}

func (s *testServer) do(method, path string, cookies []*http.Cookie, body any) *http.Response {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	s.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func registerBody(id string, units int) map[string]any {
	return map[string]any{
		"batch_id":         id,
		"name":             "Paracetamol 500mg",
		"producer_name":    "Acme Pharma",
		"manufacture_date": time.Now().UTC().AddDate(0, -1, 0).Format(time.DateOnly),
		"expiry_date":      time.Now().UTC().AddDate(2, 0, 0).Format(time.DateOnly),
		"total_units":      units,
	}
}

func TestRoutes_SupplyChainFlow(t *testing.T) {
	s := newTestServer(t)
	mfg := s.login("mfg@example.com", "MANUFACTURER")
	dist := s.login("dist@example.com", "DISTRIBUTOR")

	resp := s.do(http.MethodPost, "/api/batches", mfg, registerBody("PCM-1", 100))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	reg := decode[struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		Signature string `json:"signature"`
	}](t, resp)
	if reg.ID != "PCM-1" || reg.Status != "ACTIVE" || reg.Signature == "" {
		t.Fatalf("unexpected registration: %+v", reg)
	}

	resp = s.do(http.MethodPost, "/api/batches/PCM-1/transfers", mfg,
		map[string]any{"recipient": "dist@example.com", "recipient_role": "DISTRIBUTOR", "units": 40})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transfer: expected 200, got %d", resp.StatusCode)
	}

	resp = s.do(http.MethodGet, "/api/batches/PCM-1/available", dist, nil)
	if got := decode[struct {
		Available int `json:"available"`
	}](t, resp); got.Available != 40 {
		t.Fatalf("expected 40 available to dist, got %d", got.Available)
	}

	resp = s.do(http.MethodPost, "/api/batches/PCM-1/sales", dist, map[string]any{"units": 5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sale: expected 200, got %d", resp.StatusCode)
	}

	resp = s.do(http.MethodGet, "/api/holdings", dist, nil)
	holdings := decode[[]struct {
		BatchID   string `json:"batch_id"`
		Available int    `json:"available"`
	}](t, resp)
	if len(holdings) != 1 || holdings[0].Available != 35 {
		t.Fatalf("unexpected holdings: %+v", holdings)
	}

	// Anonymous verification.
	resp = s.do(http.MethodPost, "/api/verify", nil, map[string]any{"batch_id": "PCM-1", "signature": reg.Signature, "device_id": "d1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", resp.StatusCode)
	}
	v := decode[struct {
		Outcome string `json:"outcome"`
		Batch   *struct {
			LatestOwner string `json:"latest_owner"`
			UnitsSold   int    `json:"units_sold"`
		} `json:"batch"`
	}](t, resp)
	if v.Outcome != "GENUINE" || v.Batch == nil || v.Batch.UnitsSold != 5 {
		t.Fatalf("unexpected verification: %+v", v)
	}

	resp = s.do(http.MethodGet, "/api/batches/PCM-1/scans", mfg, nil)
	if got := decode[struct {
		Total int `json:"total"`
	}](t, resp); got.Total != 1 {
		t.Fatalf("expected 1 logged scan, got %d", got.Total)
	}
}

func TestRoutes_ErrorMapping(t *testing.T) {
	s := newTestServer(t)
	mfg := s.login("mfg@example.com", "MANUFACTURER")
	dist := s.login("dist@example.com", "DISTRIBUTOR")
	admin := s.login("admin@example.com", "ADMIN")
	if resp := s.do(http.MethodPost, "/api/batches", mfg, registerBody("PCM-2", 30)); resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %d", resp.StatusCode)
	}

	tests := []struct {
		name    string
		method  string
		path    string
		cookies []*http.Cookie
		body    any
		want    int
	}{
		{"no session", http.MethodGet, "/api/batches/PCM-2", nil, nil, http.StatusUnauthorized},
		{"unknown batch", http.MethodGet, "/api/batches/NOPE", mfg, nil, http.StatusNotFound},
		{"duplicate", http.MethodPost, "/api/batches", mfg, registerBody("PCM-2", 30), http.StatusConflict},
		{"bad batch id", http.MethodPost, "/api/batches", mfg, registerBody("A", 30), http.StatusUnprocessableEntity},
		{"customer registers", http.MethodPost, "/api/batches", s.login("c@example.com", "CUSTOMER"), registerBody("PCM-3", 3), http.StatusForbidden},
		{"overdraw", http.MethodPost, "/api/batches/PCM-2/transfers", mfg,
			map[string]any{"recipient": "dist@example.com", "recipient_role": "DISTRIBUTOR", "units": 50}, http.StatusConflict},
		{"non holder sells", http.MethodPost, "/api/batches/PCM-2/sales", dist, map[string]any{"units": 1}, http.StatusForbidden},
		{"bad recipient", http.MethodPost, "/api/batches/PCM-2/transfers", mfg,
			map[string]any{"recipient": "nope", "recipient_role": "DISTRIBUTOR", "units": 1}, http.StatusUnprocessableEntity},
		{"distributor blocks", http.MethodPost, "/api/batches/PCM-2/block", dist, nil, http.StatusForbidden},
		{"other party balance", http.MethodGet, "/api/batches/PCM-2/available?party=mfg@example.com", dist, nil, http.StatusForbidden},
		{"admin reads balance", http.MethodGet, "/api/batches/PCM-2/available?party=mfg@example.com", admin, nil, http.StatusOK},
		{"distributor scans", http.MethodGet, "/api/batches/PCM-2/scans", dist, nil, http.StatusForbidden},
		{"bad limit", http.MethodGet, "/api/batches/PCM-2/scans?limit=x", mfg, nil, http.StatusBadRequest},
		{"offset past int4", http.MethodGet, "/api/batches/PCM-2/scans?offset=2147483648", mfg, nil, http.StatusBadRequest},
		{"largest offset", http.MethodGet, "/api/holdings?offset=2147483647", mfg, nil, http.StatusOK},
		{"signature for registrant", http.MethodGet, "/api/batches/PCM-2/signature", mfg, nil, http.StatusOK},
		{"verify without batch id", http.MethodPost, "/api/verify", nil, map[string]any{"signature": "x"}, http.StatusUnprocessableEntity},
		{"admin blocks", http.MethodPost, "/api/batches/PCM-2/block", admin, nil, http.StatusOK},
		{"transfer after block", http.MethodPost, "/api/batches/PCM-2/transfers", mfg,
			map[string]any{"recipient": "dist@example.com", "recipient_role": "DISTRIBUTOR", "units": 1}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(tt.method, tt.path, tt.cookies, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestRoutes_InsufficientBalanceBody(t *testing.T) {
	s := newTestServer(t)
	mfg := s.login("mfg@example.com", "MANUFACTURER")
	s.do(http.MethodPost, "/api/batches", mfg, registerBody("PCM-4", 30))

	resp := s.do(http.MethodPost, "/api/batches/PCM-4/transfers", mfg,
		map[string]any{"recipient": "dist@example.com", "recipient_role": "DISTRIBUTOR", "units": 50})
	got := decode[struct {
		Available int `json:"available"`
		Requested int `json:"requested"`
	}](t, resp)
	if got.Available != 30 || got.Requested != 50 {
		t.Fatalf("expected 30/50 in body, got %+v", got)
	}
}

func TestRoutes_VerifyNegativeOutcomesAre200(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodPost, "/api/verify", nil, map[string]any{"batch_id": "GHOST", "signature": "deadbeef"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decode[struct {
		Outcome string   `json:"outcome"`
		Anomaly bool     `json:"anomaly"`
		Reasons []string `json:"reasons"`
	}](t, resp)
	if got.Outcome != "FAKE_SIGNATURE" || !got.Anomaly || got.Reasons == nil {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestRoutes_SessionNotMountedWithoutDevLogin(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "error")
	store := sessions.NewCookieStore([]byte("test-auth-key-must-be-32-bytes!!"))
	r := chi.NewRouter()
	Routes(r, &appsvcs.Services{}, store, log, Options{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/session", bytes.NewBufferString(`{"email":"a@b.c","role":"ADMIN"}`)))
	if rr.Code != http.StatusNotFound && rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected /session to be unavailable, got %d", rr.Code)
	}
}
