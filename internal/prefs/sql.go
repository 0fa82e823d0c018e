package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"thinkclear-backend/internal/contract"
	"thinkclear-backend/internal/db"
)

type SQLStore struct {
	db  *db.DB
	now func() time.Time
}

func NewSQLStore(d *db.DB) *SQLStore {
	return &SQLStore{db: d, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, sessionID string) (Prefs, error) {
	var (
		p         Prefs
		mode      string
		trial     []byte
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT app_mode, trial, updated_at FROM prefs WHERE session_id = ?
	`), sessionID).Scan(&mode, &trial, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Prefs{}, ErrNotFound
	}
	if err != nil {
		return Prefs{}, fmt.Errorf("query prefs: %w", err)
	}

	p.AppMode = contract.Mode(mode)
	p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	if len(trial) > 0 {
		var t Trial
		if err := json.Unmarshal(trial, &t); err != nil {
			return Prefs{}, fmt.Errorf("decode trial: %w", err)
		}
		p.Trial = &t
	}
	return p, nil
}

func (s *SQLStore) Put(ctx context.Context, sessionID string, p Prefs) (Prefs, error) {
	p.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	var trial sql.NullString
	if p.Trial != nil {
		b, err := json.Marshal(p.Trial)
		if err != nil {
			return Prefs{}, fmt.Errorf("encode trial: %w", err)
		}
		trial = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO prefs (session_id, app_mode, trial, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			app_mode = excluded.app_mode,
			trial = excluded.trial,
			updated_at = excluded.updated_at
	`), sessionID, string(p.AppMode), trial, p.UpdatedAt.UnixMilli())
	if err != nil {
		return Prefs{}, fmt.Errorf("upsert prefs: %w", err)
	}
	return p, nil
}
