package prefs

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"thinkclear-backend/internal/auth"
	"thinkclear-backend/internal/contract"
	"thinkclear-backend/internal/httpx"
)

// GetHandler returns the stored prefs, or guide mode with no trial when the
// session has none yet.
func GetHandler(store Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := auth.SessionIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		p, err := store.Get(r.Context(), sid)
		if errors.Is(err, ErrNotFound) {
			p = Prefs{AppMode: contract.ModeGuide}
		} else if err != nil {
			log.Error("get prefs", zap.String("session_id", sid), zap.Error(err))
			httpx.Error(w, http.StatusInternalServerError, "db error")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, p)
	}
}

func PutHandler(store Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := auth.SessionIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var body struct {
			AppMode string `json:"appMode"`
			Trial   *Trial `json:"trial"`
		}
		if err := httpx.Decode(r, &body); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		mode := contract.Mode(body.AppMode)
		if !mode.Valid() {
			httpx.Error(w, http.StatusBadRequest, "appMode must be lite, guide or push")
			return
		}
		if body.Trial != nil && body.Trial.Mode != contract.ModeGuide && body.Trial.Mode != contract.ModePush {
			httpx.Error(w, http.StatusBadRequest, "trial mode must be guide or push")
			return
		}

		p, err := store.Put(r.Context(), sid, Prefs{AppMode: mode, Trial: body.Trial})
		if err != nil {
			log.Error("put prefs", zap.String("session_id", sid), zap.Error(err))
			httpx.Error(w, http.StatusInternalServerError, "db error")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, p)
	}
}
