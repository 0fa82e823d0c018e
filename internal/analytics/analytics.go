package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"thinkclear-backend/internal/db"
)

type CtxKey string

const (
	ctxSessionIDKey CtxKey = "analytics_session_id"
)

// Envelope is what we store with every event.
type Envelope struct {
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
	IPCountry    string
}

// FromRequest extracts event envelope fields from request.
// Backend-trustable fields only.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	if platform != "ios" && platform != "android" && platform != "web" {
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok {
		sessionID = strings.TrimSpace(r.Header.Get("X-Session-Id"))
	}

	// ip_country: geoip нет -> пусто
	return Envelope{
		SessionID:    sessionID,
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxSessionIDKey, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(ctxSessionIDKey).(string)
	return sid, ok && sid != ""
}

// Client-provided idempotency key (optional)
// If present and duplicates, insert is ignored.
func SourceEventKeyFromRequest(r *http.Request) string {
	// preferred: Idempotency-Key header
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	// fallback
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Sink records analytics events. Props must never carry raw user or model text.
type Sink interface {
	Log(ctx context.Context, env Envelope, eventName string, props map[string]any, sourceEventKey string) error
}

// SQLSink inserts into analytics_events.
type SQLSink struct {
	db *db.DB
}

func NewSQLSink(d *db.DB) *SQLSink {
	return &SQLSink{db: d}
}

func (s *SQLSink) Log(ctx context.Context, env Envelope, eventName string, props map[string]any, sourceEventKey string) error {
	if eventName == "" {
		return nil
	}

	b, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encode props of %s: %w", eventName, err)
	}

	// If source_event_key duplicates -> do nothing; NULL keys never conflict
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO analytics_events (
			event_name, event_time,
			session_id,
			platform, app_version, device_locale, ip_country,
			source_event_key,
			properties
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_event_key) DO NOTHING
	`), eventName, eventTime(s.db.Dialect),
		nullIfEmpty(env.SessionID),
		env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale), nullIfEmpty(env.IPCountry),
		nullIfEmpty(sourceEventKey),
		string(b),
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", eventName, err)
	}
	return nil
}

func eventTime(d db.Dialect) any {
	now := time.Now().UTC()
	if d == db.SQLite {
		return now.Format(time.RFC3339Nano)
	}
	return now
}

// LogSink writes events to the structured log. Used with memory storage.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Log(_ context.Context, env Envelope, eventName string, props map[string]any, sourceEventKey string) error {
	if eventName == "" {
		return nil
	}
	s.log.Info("analytics event",
		zap.String("event", eventName),
		zap.String("session_id", env.SessionID),
		zap.String("platform", env.Platform),
		zap.String("app_version", env.AppVersion),
		zap.String("source_event_key", sourceEventKey),
		zap.Any("props", props),
	)
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
