package domain

import (
	"context"
	"errors"
)

// Role is the access level of an authenticated caller.
type Role string

const (
	// RoleMember may bid and read its own balances and bids.
	RoleMember Role = "member"

	// RoleOperator may additionally settle, seed, cancel, adjust and reconcile.
	RoleOperator Role = "operator"
)

func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleOperator
}

// CanOperate reports whether the role may run administrative operations.
func (r Role) CanOperate() bool {
	return r == RoleOperator
}

// Identity is the resolved caller of a request.
type Identity struct {
	AccountID     string
	Role          Role
	WalletAddress string
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("insufficient role for this operation")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type identityKey struct{}

// ContextWithIdentity stores the caller identity in ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller identity stored by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
