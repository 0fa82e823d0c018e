package journal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"thinkclear-backend/internal/auth"
	"thinkclear-backend/internal/httpx"
)

const maxLimit = 200

// ListHandler: GET /journal?limit=
func ListHandler(store Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := auth.SessionIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		limit := DefaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				httpx.Error(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxLimit)
		}

		entries, err := store.List(r.Context(), sid, limit)
		if err != nil {
			log.Error("list journal", zap.String("session_id", sid), zap.Error(err))
			httpx.Error(w, http.StatusInternalServerError, "db error")
			return
		}
		if entries == nil {
			entries = []Entry{}
		}

		httpx.WriteJSON(w, http.StatusOK, entries)
	}
}

// PatchHandler: PATCH /journal/{id} with {"aligns": ..., "done": ...}.
// An absent field is left as is, null clears it.
func PatchHandler(store Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := auth.SessionIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var body map[string]json.RawMessage
		if err := httpx.Decode(r, &body); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := decodePatch(body)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		e, err := store.Patch(r.Context(), sid, r.PathValue("id"), p)
		if errors.Is(err, ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "entry not found")
			return
		}
		if err != nil {
			log.Error("patch journal", zap.String("session_id", sid), zap.Error(err))
			httpx.Error(w, http.StatusInternalServerError, "db error")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, e)
	}
}

// DeleteHandler: DELETE /journal/{id}
func DeleteHandler(store Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := auth.SessionIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		err := store.Delete(r.Context(), sid, r.PathValue("id"))
		if errors.Is(err, ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "entry not found")
			return
		}
		if err != nil {
			log.Error("delete journal", zap.String("session_id", sid), zap.Error(err))
			httpx.Error(w, http.StatusInternalServerError, "db error")
			return
		}

		httpx.OK(w)
	}
}

var errBadPatch = errors.New("aligns must be one of Да, Скорее да, Скорее нет, Нет or null; done must be a boolean or null")

func decodePatch(body map[string]json.RawMessage) (Patch, error) {
	var p Patch

	if raw, ok := body["aligns"]; ok {
		p.SetAligns = true
		var a *Aligns
		if err := json.Unmarshal(raw, &a); err != nil {
			return Patch{}, errBadPatch
		}
		if a != nil && !a.Valid() {
			return Patch{}, errBadPatch
		}
		p.Aligns = a
	}

	if raw, ok := body["done"]; ok {
		p.SetDone = true
		var d *bool
		if err := json.Unmarshal(raw, &d); err != nil {
			return Patch{}, errBadPatch
		}
		p.Done = d
	}

	if !p.SetAligns && !p.SetDone {
		return Patch{}, errors.New("nothing to patch")
	}
	return p, nil
}
