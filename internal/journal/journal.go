package journal

import (
	"context"
	"errors"
	"time"

	"thinkclear-backend/internal/contract"
	"thinkclear-backend/internal/sanitize"
)

var ErrNotFound = errors.New("journal entry not found")

// DefaultLens: линза, через которую сейчас смотрим на записи.
const DefaultLens = "Курс"

const DefaultLimit = 50

// Aligns: насколько ответ совпал с ощущением.
type Aligns string

const (
	AlignsYes       Aligns = "Да"
	AlignsRatherYes Aligns = "Скорее да"
	AlignsRatherNo  Aligns = "Скорее нет"
	AlignsNo        Aligns = "Нет"
)

func (a Aligns) Valid() bool {
	switch a {
	case AlignsYes, AlignsRatherYes, AlignsRatherNo, AlignsNo:
		return true
	}
	return false
}

// Entry is one answered request. Only answers are journalled.
type Entry struct {
	ID        string            `json:"id"`
	SessionID string            `json:"-"`
	CreatedAt time.Time         `json:"createdAt"`
	InputText string            `json:"inputText"`
	Lens      string            `json:"lens"`
	Mode      contract.Mode     `json:"appMode"`
	ActionKey string            `json:"actionKey,omitempty"`
	Output    sanitize.Response `json:"output"`
	Aligns    *Aligns           `json:"aligns"`
	Done      *bool             `json:"done"`
}

// Patch of the user-editable fields. Set* distinguishes "set to null" from
// "leave as is".
type Patch struct {
	SetAligns bool
	Aligns    *Aligns
	SetDone   bool
	Done      *bool
}

func (p Patch) apply(e *Entry) {
	if p.SetAligns {
		e.Aligns = p.Aligns
	}
	if p.SetDone {
		e.Done = p.Done
	}
}

// Store persists entries keyed by session.
type Store interface {
	// Append assigns ID, CreatedAt and Lens when they are empty.
	Append(ctx context.Context, e Entry) (Entry, error)
	// List returns up to limit entries, newest first.
	List(ctx context.Context, sessionID string, limit int) ([]Entry, error)
	Patch(ctx context.Context, sessionID, id string, p Patch) (Entry, error)
	Delete(ctx context.Context, sessionID, id string) error
}
