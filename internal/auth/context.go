package auth

import (
	"context"

	reporting "contract-ledger/internal/reporting/domain"
)

type contextKey string

const contextKeyIdentity contextKey = "auth.identity"

// Identity is the authenticated caller.
type Identity struct {
	Subject    string
	DivisionID int
	Role       Role
}

// Scope returns the periods the caller may read. Division-wide views pass
// allDivisions=false; admins get every division only when allDivisions is set.
func (id Identity) Scope(allDivisions bool) reporting.Scope {
	if allDivisions && id.Role.SeesAllDivisions() {
		return reporting.AllDivisions()
	}
	return reporting.DivisionScope(id.DivisionID)
}

// WithIdentity stores the caller in context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, identity)
}

// IdentityFromContext extracts the caller; ok is false for unauthenticated requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(contextKeyIdentity).(Identity)
	return identity, ok
}

// RoleFromContext extracts the caller's role.
func RoleFromContext(ctx context.Context) Role {
	identity, _ := IdentityFromContext(ctx)
	return identity.Role
}

// SubjectFromContext extracts the caller's subject.
func SubjectFromContext(ctx context.Context) string {
	identity, _ := IdentityFromContext(ctx)
	return identity.Subject
}
