// Package session carries the authenticated caller through a request context.
package session

import "context"

// Session identifies the caller of a request.
type Session struct {
	UserUID  string `json:"user_uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type ctxKey struct{}

// WithSession returns a copy of ctx that carries s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	if !ok || s.UserUID == "" {
		return Session{}, false
	}
	return s, true
}
