package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"thinkclear-backend/internal/analytics"
	"thinkclear-backend/internal/auth"
	"thinkclear-backend/internal/config"
	"thinkclear-backend/internal/db"
	"thinkclear-backend/internal/journal"
	"thinkclear-backend/internal/prefs"
)

// Storage bundles the session-keyed stores of one backend.
type Storage struct {
	Journal journal.Store
	Prefs   prefs.Store
	Events  analytics.Sink
	Eraser  auth.Eraser

	db *db.DB
}

// OpenStorage connects to the configured backend and applies the schema.
func OpenStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	driver, dsn := cfg.DSN()
	if driver == "" {
		j := journal.NewMemoryStore()
		p := prefs.NewMemoryStore()
		log.Info("storage: memory")
		return &Storage{
			Journal: j,
			Prefs:   p,
			Events:  analytics.NewLogSink(log),
			Eraser:  auth.Erasers{j, p},
		}, nil
	}

	d, err := db.Connect(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("storage %s: %w", driver, err)
	}
	log.Info("storage: sql", zap.String("driver", driver))

	return &Storage{
		Journal: journal.NewSQLStore(d),
		Prefs:   prefs.NewSQLStore(d),
		Events:  analytics.NewSQLSink(d),
		Eraser:  d,
		db:      d,
	}, nil
}

func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
