package auth

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"thinkclear-backend/internal/httpx"
)

// CreateSessionHandler issues an anonymous session and its token.
func CreateSessionHandler(secret []byte, ttl time.Duration, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := uuid.NewString()

		token, exp, err := GenerateToken(secret, sessionID, ttl)
		if err != nil {
			log.Error("sign session token", zap.Error(err))
			httpx.Error(w, http.StatusInternalServerError, "token error")
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, map[string]any{
			"sessionId": sessionID,
			"token":     token,
			"expiresAt": exp.UTC().Format(time.RFC3339),
		})
	}
}
