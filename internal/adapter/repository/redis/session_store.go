package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/iho/vamledger/internal/domain"
)

// session is the record the wallet-connection flow writes for a member.
type session struct {
	SEID          string `json:"seid"`
	WalletAddress string `json:"wallet_address"`
}

// SessionStore implements usecase.SessionStore on top of the session keys
// written by the wallet-connection service.
type SessionStore struct {
	client *redis.Client
	prefix string
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "session:",
	}
}

// Get resolves a session id to a member identity. Missing, expired and
// malformed sessions all read as domain.ErrUnauthorized.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.Identity, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.ErrUnauthorized
	}

	raw, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.SEID == "" {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Identity{
		AccountID:     sess.SEID,
		Role:          domain.RoleMember,
		WalletAddress: sess.WalletAddress,
	}, nil
}
