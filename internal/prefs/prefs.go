package prefs

import (
	"context"
	"errors"
	"time"

	"thinkclear-backend/internal/contract"
)

var ErrNotFound = errors.New("prefs not found")

// Trial is stored as the client sent it. The server never evaluates it.
type Trial struct {
	Mode      contract.Mode `json:"mode"`
	Started   string        `json:"started"`
	Finished  bool          `json:"finished"`
	Continued bool          `json:"continued"`
}

// Prefs of one session.
type Prefs struct {
	AppMode   contract.Mode `json:"appMode"`
	Trial     *Trial        `json:"trial"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type Store interface {
	Get(ctx context.Context, sessionID string) (Prefs, error)
	// Put replaces the prefs of the session and stamps UpdatedAt.
	Put(ctx context.Context, sessionID string, p Prefs) (Prefs, error)
}
