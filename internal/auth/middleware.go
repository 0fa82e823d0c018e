package auth

import (
	"context"
	"net/http"
	"strings"

	"thinkclear-backend/internal/analytics"
	"thinkclear-backend/internal/httpx"
)

type ctxKey string

const sessionIDKey ctxKey = "session_id"

type Middleware struct {
	secret []byte
}

func New(secret []byte) Middleware {
	return Middleware{secret: secret}
}

// Wrap requires a valid session token.
func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			httpx.Error(w, http.StatusUnauthorized, "missing token")
			return
		}

		sessionID, err := ParseToken(m.secret, strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r.WithContext(withSession(r.Context(), sessionID)))
	}
}

// Optional attaches the session when a valid token is present and lets the
// request through either way.
func (m Middleware) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if strings.HasPrefix(h, "Bearer ") {
			if sessionID, err := ParseToken(m.secret, strings.TrimPrefix(h, "Bearer ")); err == nil {
				r = r.WithContext(withSession(r.Context(), sessionID))
			}
		}
		next(w, r)
	}
}

func withSession(ctx context.Context, sessionID string) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)

	// прокидываем session_id в analytics context
	return analytics.WithSessionID(ctx, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok && v != ""
}
