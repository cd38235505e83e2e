package auth

import "context"

// Session is the authenticated caller. Operations that act on behalf of a
// user take one explicitly.
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Authenticated reports whether the session carries a user id.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext extracts the session from ctx. The zero Session is returned
// when none is present.
func FromContext(ctx context.Context) Session {
	sess, _ := ctx.Value(sessionKey).(Session)
	return sess
}
