package db

// created_at / updated_at are unix milliseconds in both dialects.

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS journal_entries (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL,
		created_at  BIGINT NOT NULL,
		input_text  TEXT NOT NULL,
		lens        TEXT NOT NULL,
		mode        TEXT NOT NULL,
		action_key  TEXT,
		output      JSONB NOT NULL,
		aligns      TEXT,
		done        BOOLEAN
	)`,
	`CREATE INDEX IF NOT EXISTS journal_entries_session_idx
		ON journal_entries (session_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS prefs (
		session_id  TEXT PRIMARY KEY,
		app_mode    TEXT NOT NULL,
		trial       JSONB,
		updated_at  BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS analytics_events (
		id               BIGSERIAL PRIMARY KEY,
		event_name       TEXT NOT NULL,
		event_time       TIMESTAMPTZ NOT NULL,
		session_id       TEXT,
		platform         TEXT NOT NULL,
		app_version      TEXT NOT NULL,
		device_locale    TEXT,
		ip_country       TEXT,
		source_event_key TEXT UNIQUE,
		properties       JSONB NOT NULL
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS journal_entries (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL,
		created_at  INTEGER NOT NULL,
		input_text  TEXT NOT NULL,
		lens        TEXT NOT NULL,
		mode        TEXT NOT NULL,
		action_key  TEXT,
		output      TEXT NOT NULL,
		aligns      TEXT,
		done        BOOLEAN
	)`,
	`CREATE INDEX IF NOT EXISTS journal_entries_session_idx
		ON journal_entries (session_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS prefs (
		session_id  TEXT PRIMARY KEY,
		app_mode    TEXT NOT NULL,
		trial       TEXT,
		updated_at  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS analytics_events (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		event_name       TEXT NOT NULL,
		event_time       TEXT NOT NULL,
		session_id       TEXT,
		platform         TEXT NOT NULL,
		app_version      TEXT NOT NULL,
		device_locale    TEXT,
		ip_country       TEXT,
		source_event_key TEXT UNIQUE,
		properties       TEXT NOT NULL
	)`,
}
