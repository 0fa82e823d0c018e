package analyze

import (
	"bytes"
	"encoding/json"
	"strings"

	"thinkclear-backend/internal/ai"
	"thinkclear-backend/internal/contract"
)

// Request is the body of POST /api/analyze. Fields of the wrong JSON type
// are treated as absent.
type Request struct {
	Text                 string
	Input                string
	Mode                 string
	AppMode              string
	ActionKey            string
	ActionLabel          string
	PreviousKind         string
	ConsecutiveUncertain int
}

func decodeRequest(body []byte) (Request, error) {
	var f map[string]json.RawMessage
	if err := json.Unmarshal(body, &f); err != nil {
		return Request{}, err
	}
	return Request{
		Text:                 str(f["text"]),
		Input:                str(f["input"]),
		Mode:                 str(f["mode"]),
		AppMode:              str(f["appMode"]),
		ActionKey:            str(f["actionKey"]),
		ActionLabel:          str(f["actionLabel"]),
		PreviousKind:         str(f["previousKind"]),
		ConsecutiveUncertain: num(f["consecutiveUncertain"]),
	}, nil
}

// Content: text важнее input.
func (r Request) Content() string {
	if t := strings.TrimSpace(r.Text); t != "" {
		return t
	}
	return strings.TrimSpace(r.Input)
}

// AppMode wins over Mode; anything unknown is guide.
func (r Request) ModeValue() contract.Mode {
	if r.AppMode != "" {
		return contract.ParseMode(r.AppMode)
	}
	return contract.ParseMode(r.Mode)
}

func (r Request) Turn() ai.Turn {
	return ai.Turn{
		PreviousKind:         r.PreviousKind,
		ConsecutiveUncertain: r.ConsecutiveUncertain,
		ActionKey:            r.ActionKey,
		ActionLabel:          strings.TrimSpace(r.ActionLabel),
	}
}

func str(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func num(raw json.RawMessage) int {
	var n float64
	if json.Unmarshal(raw, &n) != nil || n < 0 {
		return 0
	}
	return int(n)
}
