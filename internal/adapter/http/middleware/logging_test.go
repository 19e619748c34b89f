package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/domain"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	mw := NewLoggingMiddleware(zerolog.New(&buf))

	a := NewAuthenticator(nil, stubSessions{identity: &domain.Identity{AccountID: "seid-9", Role: domain.RoleMember}}, nil, zerolog.Nop())
	handler := chimiddleware.RequestID(mw.Wrap(a.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auctions/a1/bids", nil)
	req.Header.Set(SessionHeader, "s")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["status"] != float64(http.StatusCreated) {
		t.Errorf("status = %v", entry["status"])
	}
	if entry["account_id"] != "seid-9" {
		t.Errorf("account_id = %v", entry["account_id"])
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Errorf("missing request_id")
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
}
