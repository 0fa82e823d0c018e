package analyze

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"thinkclear-backend/internal/ai"
	"thinkclear-backend/internal/analytics"
	"thinkclear-backend/internal/auth"
	"thinkclear-backend/internal/contract"
	"thinkclear-backend/internal/httpx"
	"thinkclear-backend/internal/journal"
	"thinkclear-backend/internal/sanitize"
)

// EmptyInputText is shown when the request carries no text at all.
const EmptyInputText = "Сначала напиши пару слов о ситуации."

type AnalyzeHandler struct {
	AI        ai.Completer
	Sanitizer *sanitize.Sanitizer
	Journal   journal.Store  // nil: nothing is journalled
	Events    analytics.Sink // nil: no events
	Log       *zap.Logger
}

func New(completer ai.Completer, s *sanitize.Sanitizer, j journal.Store, events analytics.Sink, log *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		AI:        completer,
		Sanitizer: s,
		Journal:   j,
		Events:    events,
		Log:       log,
	}
}

// ServeHTTP: POST /api/analyze. The body is always a StructuredResponse;
// only a missing upstream credential changes the status.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, httpx.MaxBody))
	if err != nil {
		h.Log.Warn("read analyze body", zap.Error(err))
		httpx.WriteJSON(w, http.StatusOK, h.Sanitizer.Fallback(contract.ModeGuide))
		return
	}
	req, err := decodeRequest(body)
	if err != nil {
		h.Log.Warn("invalid analyze body", zap.Error(err))
		httpx.WriteJSON(w, http.StatusOK, h.Sanitizer.Fallback(contract.ModeGuide))
		return
	}

	mode := req.ModeValue()
	c := h.Sanitizer.Contract(mode)

	content := req.Content()
	if content == "" {
		httpx.WriteJSON(w, http.StatusOK, sanitize.Notice(c, EmptyInputText))
		return
	}

	turn := req.Turn()
	raw, err := h.AI.Complete(r.Context(), ai.BuildPrompt(c, content, turn))
	if err != nil {
		status := http.StatusOK
		if errors.Is(err, ai.ErrNotConfigured) {
			status = http.StatusInternalServerError
		}
		h.Log.Error("upstream model failed",
			zap.String("mode", mode.String()),
			zap.Int("status", status),
			zap.Error(err),
		)
		h.event(r, "analyze_completed", map[string]any{
			"mode":       mode.String(),
			"outcome":    "upstream_error",
			"latency_ms": time.Since(start).Milliseconds(),
			"input_len":  utf8.RuneCountInString(content),
		})
		httpx.WriteJSON(w, status, sanitize.Fallback(c))
		return
	}

	res := h.Sanitizer.Sanitize(mode, raw)
	if res.Err != nil {
		// сырой ответ модели в лог не пишем, только причину
		h.Log.Warn("reply replaced by fallback",
			zap.String("mode", mode.String()),
			zap.String("stage", string(res.Stage)),
			zap.Int("raw_len", raw.Len()),
			zap.Error(res.Err),
		)
	}

	out := res.Response
	coerced := false
	if turn.Coerce() && out.Kind == sanitize.KindQuestion {
		out = sanitize.CoerceAnswer(c, out)
		coerced = true
	}

	if out.Kind == sanitize.KindAnswer {
		h.journal(r.Context(), req, mode, content, out)
	}

	h.event(r, "analyze_completed", map[string]any{
		"mode":       mode.String(),
		"kind":       string(out.Kind),
		"outcome":    string(res.Outcome),
		"stage":      string(res.Stage),
		"coerced":    coerced,
		"latency_ms": time.Since(start).Milliseconds(),
		"input_len":  utf8.RuneCountInString(content),
		"raw_len":    raw.Len(),
	})

	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *AnalyzeHandler) journal(ctx context.Context, req Request, mode contract.Mode, content string, out sanitize.Response) {
	if h.Journal == nil {
		return
	}
	sid, ok := auth.SessionIDFromContext(ctx)
	if !ok {
		return
	}

	_, err := h.Journal.Append(ctx, journal.Entry{
		SessionID: sid,
		InputText: content,
		Mode:      mode,
		ActionKey: req.ActionKey,
		Output:    out,
	})
	if err != nil {
		// журнал не ломает ответ
		h.Log.Warn("journal append failed", zap.String("session_id", sid), zap.Error(err))
	}
}

func (h *AnalyzeHandler) event(r *http.Request, name string, props map[string]any) {
	if h.Events == nil {
		return
	}
	if err := h.Events.Log(r.Context(), analytics.FromRequest(r), name, props, ""); err != nil {
		h.Log.Warn("analytics event dropped", zap.String("event", name), zap.Error(err))
	}
}
