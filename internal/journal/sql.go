package journal

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

// SQLStore keeps entries in journal_entries (PostgreSQL or SQLite).
type SQLStore struct {
	db  *db.DB
	now func() time.Time
}

func NewSQLStore(d *db.DB) *SQLStore {
	return &SQLStore{db: d, now: time.Now}
}

const entryColumns = `id, session_id, created_at, input_text, lens, mode, action_key, output, aligns, done`

func (s *SQLStore) Append(ctx context.Context, e Entry) (Entry, error) {
	fill(&e, s.now)

	out, err := json.Marshal(e.Output)
	if err != nil {
		return Entry{}, fmt.Errorf("encode output: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		e.ID, e.SessionID, e.CreatedAt.UnixMilli(), e.InputText, e.Lens, string(e.Mode),
		nullString(e.ActionKey), string(out), alignsValue(e.Aligns), boolValue(e.Done),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert journal entry: %w", err)
	}
	return e, nil
}

func (s *SQLStore) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal rows: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Patch(ctx context.Context, sessionID, id string, p Patch) (Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, s.db.Rebind(`
		SELECT `+entryColumns+` FROM journal_entries WHERE session_id = ? AND id = ?
	`), sessionID, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}

	p.apply(&e)
	if _, err := tx.ExecContext(ctx, s.db.Rebind(`
		UPDATE journal_entries SET aligns = ?, done = ? WHERE session_id = ? AND id = ?
	`), alignsValue(e.Aligns), boolValue(e.Done), sessionID, id); err != nil {
		return Entry{}, fmt.Errorf("update journal entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit: %w", err)
	}
	return e, nil
}

func (s *SQLStore) Delete(ctx context.Context, sessionID, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM journal_entries WHERE session_id = ? AND id = ?
	`), sessionID, id)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e         Entry
		createdAt int64
		mode      string
		actionKey sql.NullString
		output    []byte
		aligns    sql.NullString
		done      sql.NullBool
	)
	err := sc.Scan(&e.ID, &e.SessionID, &createdAt, &e.InputText, &e.Lens, &mode, &actionKey, &output, &aligns, &done)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, err
	}
	if err != nil {
		return Entry{}, fmt.Errorf("scan journal entry: %w", err)
	}

	e.CreatedAt = time.UnixMilli(createdAt).UTC()
	e.Mode = contract.Mode(mode)
	e.ActionKey = actionKey.String
	if err := json.Unmarshal(output, &e.Output); err != nil {
		return Entry{}, fmt.Errorf("decode output of %s: %w", e.ID, err)
	}
	if aligns.Valid {
		a := Aligns(aligns.String)
		e.Aligns = &a
	}
	if done.Valid {
		d := done.Bool
		e.Done = &d
	}
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func alignsValue(a *Aligns) sql.NullString {
	if a == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*a), Valid: true}
}

func boolValue(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
