package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/vamledger/internal/domain"
)

func TestSessionStoreGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	seedSession(t, mr, "s-1", `{"seid":"seid-42","wallet_address":"0xabc"}`, 0)
	seedSession(t, mr, "broken", `not json`, 0)
	seedSession(t, mr, "anon", `{"wallet_address":"0xdef"}`, 0)

	store := NewSessionStore(client)

	tests := []struct {
		name        string
		sessionID   string
		wantAccount string
		expectedErr error
	}{
		{name: "valid session", sessionID: "s-1", wantAccount: "seid-42"},
		{name: "unknown session", sessionID: "s-2", expectedErr: domain.ErrUnauthorized},
		{name: "empty id", sessionID: "  ", expectedErr: domain.ErrUnauthorized},
		{name: "malformed record", sessionID: "broken", expectedErr: domain.ErrUnauthorized},
		{name: "record without seid", sessionID: "anon", expectedErr: domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := store.Get(context.Background(), tt.sessionID)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if identity.AccountID != tt.wantAccount || identity.Role != domain.RoleMember || identity.WalletAddress != "0xabc" {
				t.Fatalf("unexpected identity %+v", identity)
			}
		})
	}
}

func TestSessionStoreExpiredSession(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	seedSession(t, mr, "s-1", `{"seid":"seid-42"}`, 24*time.Hour)
	mr.FastForward(25 * time.Hour)

	_, err := NewSessionStore(client).Get(context.Background(), "s-1")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
