package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"thinkclear-backend/internal/httpx"
)

// Eraser deletes every record that belongs to a session.
type Eraser interface {
	DeleteSession(ctx context.Context, sessionID string) error
}

// Erasers runs several erasers in order and stops at the first error.
type Erasers []Eraser

func (es Erasers) DeleteSession(ctx context.Context, sessionID string) error {
	for _, e := range es {
		if err := e.DeleteSession(ctx, sessionID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteSessionHandler forgets the session: journal, prefs and events.
// JWT stateless => сам токен продолжит парситься, но данных за ним уже нет.
func DeleteSessionHandler(eraser Eraser, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := SessionIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if err := eraser.DeleteSession(r.Context(), sid); err != nil {
			log.Error("delete session", zap.String("session_id", sid), zap.Error(err))
			httpx.Error(w, http.StatusInternalServerError, "delete session failed")
			return
		}

		log.Info("session deleted", zap.String("session_id", sid))
		httpx.OK(w)
	}
}
