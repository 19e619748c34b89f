package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/infrastructure/auth"
	"github.com/iho/vamledger/internal/infrastructure/logger"
	"github.com/iho/vamledger/internal/infrastructure/metrics"
	"github.com/iho/vamledger/internal/usecase"
)

// SessionHeader carries a member session issued by the wallet-connection flow.
const SessionHeader = "X-Session-ID"

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticator resolves the caller from a bearer token or a member session.
// Requests without credentials pass through anonymously; requests with
// credentials that do not resolve are rejected.
type Authenticator struct {
	tokens   TokenVerifier
	sessions usecase.SessionStore
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewAuthenticator creates an Authenticator. tokens may be nil when bearer
// tokens are disabled.
func NewAuthenticator(tokens TokenVerifier, sessions usecase.SessionStore, m *metrics.Metrics, log zerolog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: sessions, metrics: m, logger: log}
}

// Authenticate attaches the resolved identity to the request context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.resolve(r.Context(), r)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) && !errors.Is(err, domain.ErrInvalidToken) && !errors.Is(err, domain.ErrExpiredToken) {
				log := logger.FromContext(r.Context(), a.logger)
				log.Error().Err(err).Msg("resolving caller identity")
				writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}
			a.recordFailure(err)
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired credentials")
			return
		}

		if identity != nil {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("account_id", identity.AccountID)
			})
			r = r.WithContext(domain.ContextWithIdentity(r.Context(), *identity))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) resolve(ctx context.Context, r *http.Request) (*domain.Identity, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || a.tokens == nil {
			return nil, domain.ErrInvalidToken
		}

		claims, err := a.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			return nil, err
		}
		identity := claims.Identity()
		return &identity, nil
	}

	if sessionID := r.Header.Get(SessionHeader); sessionID != "" && a.sessions != nil {
		return a.sessions.Get(ctx, sessionID)
	}

	return nil, nil
}

func (a *Authenticator) recordFailure(err error) {
	if a.metrics == nil {
		return
	}
	reason := "unauthorized"
	switch {
	case errors.Is(err, domain.ErrExpiredToken):
		reason = "expired_token"
	case errors.Is(err, domain.ErrInvalidToken):
		reason = "invalid_token"
	}
	a.metrics.AuthFailures.WithLabelValues(reason).Inc()
}

// RequireMember rejects anonymous requests.
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := domain.IdentityFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOperator rejects callers without the operator role.
func RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := domain.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !identity.Role.CanOperate() {
			writeError(w, http.StatusForbidden, "forbidden", domain.ErrForbidden.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
