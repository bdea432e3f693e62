package session

import "context"

// Role selects which role-scoped sub-API issues downstream requests.
// The origination workflow itself is identical under either prefix.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleEmployee }

// Prefix is the path segment of the role-scoped sub-API.
func (r Role) Prefix() string { return string(r) }

// Session is the authenticated identity supplied by the external session
// collaborator. It is read-only from the workflow's perspective.
type Session struct {
	Token string
	Role  Role
}

type ctxKey struct{}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
