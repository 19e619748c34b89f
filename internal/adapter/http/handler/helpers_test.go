package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/adapter/http/dto"
	"github.com/iho/vamledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/auctions?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/auctions?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"auction not found", domain.ErrAuctionNotFound, http.StatusNotFound},
		{"already settled", domain.ErrAlreadySettled, http.StatusConflict},
		{"duplicate bid", domain.ErrDuplicateBid, http.StatusConflict},
		{"auction ended", domain.ErrAuctionEnded, http.StatusConflict},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"below reserve", domain.ErrBidBelowReserve, http.StatusUnprocessableEntity},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"invalid token", domain.ErrInvalidTokenType, http.StatusBadRequest},
		{"wrapped", fmt.Errorf("place bid: %w", domain.ErrDuplicateBid), http.StatusConflict},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auctions", nil)

	respondError(rec, req, zerolog.Nop(), errors.New("pq: connection reset by peer"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Message != "internal server error" {
		t.Fatalf("internal error leaked: %q", resp.Message)
	}
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantOK      bool
		wantCode    string
		wantDetails []string
	}{
		{
			name:   "valid",
			body:   `{"account_id":"alice","token_type":"COMM","delta":"5"}`,
			wantOK: true,
		},
		{
			name:     "malformed json",
			body:     `{"account_id":`,
			wantCode: "invalid_request",
		},
		{
			name:     "unknown field",
			body:     `{"account_id":"alice","token_type":"COMM","delta":"5","extra":1}`,
			wantCode: "invalid_request",
		},
		{
			name:        "field errors use json names",
			body:        `{"token_type":"GOLD","delta":"5"}`,
			wantCode:    "validation_failed",
			wantDetails: []string{"account_id", "token_type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/balances/adjust", bytes.NewBufferString(tt.body))

			var dst dto.AdjustBalanceRequest
			ok := decodeAndValidate(rec, req, &dst)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok {
				return
			}

			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if resp.Error != tt.wantCode {
				t.Fatalf("code = %q, want %q", resp.Error, tt.wantCode)
			}
			for _, field := range tt.wantDetails {
				if _, ok := resp.Details[field]; !ok {
					t.Errorf("missing detail for %s in %v", field, resp.Details)
				}
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "auction_not_found", "auction not found", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %s", ct)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "auction_not_found" || resp.Message != "auction not found" {
		t.Fatalf("unexpected error response: %+v", resp)
	}
}
