package analytics

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"thinkclear-backend/internal/httpx"
)

// Client events accepted by POST /events. Props are whitelisted per event;
// anything else in the body is dropped.
var clientEvents = map[string][]string{
	// app_opened: базовая метрика "открыли приложение"
	"app_opened": {"cold_start", "from"},
	// mode_selected: выбрали режим
	"mode_selected": {"mode", "from_mode", "source"},
	// answer_rated: отметили "Совпало?" в журнале
	"answer_rated": {"entry_id", "aligns", "done", "mode"},
}

// EventsHandler records one whitelisted client event.
func EventsHandler(sink Sink, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Event string         `json:"event"`
			Props map[string]any `json:"props"`
		}
		if err := httpx.Decode(r, &body); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		name := strings.TrimSpace(body.Event)
		allowed, ok := clientEvents[name]
		if !ok {
			httpx.Error(w, http.StatusBadRequest, "unknown event")
			return
		}

		props := make(map[string]any, len(allowed))
		for _, k := range allowed {
			if v, ok := body.Props[k]; ok {
				props[k] = v
			}
		}

		// аналитика не ломает основной флоу
		if err := sink.Log(r.Context(), FromRequest(r), name, props, SourceEventKeyFromRequest(r)); err != nil {
			log.Warn("analytics event dropped", zap.String("event", name), zap.Error(err))
		}

		httpx.OK(w)
	}
}
