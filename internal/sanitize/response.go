package sanitize

import (
	"strings"

	"thinkclear-backend/internal/contract"
)

// Kind tags the two shapes of a StructuredResponse.
type Kind string

const (
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
)

type Block struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Response is the StructuredResponse sent to the client:
// {kind:"question", text} or {kind:"answer", blocks, nextStep?}.
type Response struct {
	Kind     Kind    `json:"kind"`
	Text     string  `json:"text,omitempty"`
	Blocks   []Block `json:"blocks,omitempty"`
	NextStep string  `json:"nextStep,omitempty"`
}

// FallbackText is the user-facing line of the fallback marker.
const FallbackText = "Сбой ответа. Повтори ещё раз."

// Fallback returns the always-valid marker for c: every required block,
// the primary one carrying FallbackText.
func Fallback(c contract.Contract) Response {
	return Notice(c, FallbackText)
}

// Notice is an answer with text in the primary block and every other block empty.
func Notice(c contract.Contract, text string) Response {
	blocks := emptyBlocks(c)
	blocks[c.PrimaryBlock].Text = text
	return Response{Kind: KindAnswer, Blocks: blocks}
}

// CoerceAnswer replaces a question with the answer-shaped fallback of c.
func CoerceAnswer(c contract.Contract, r Response) Response {
	if r.Kind == KindQuestion {
		return Fallback(c)
	}
	return r
}

func emptyBlocks(c contract.Contract) []Block {
	blocks := make([]Block, len(c.Titles))
	for i, t := range c.Titles {
		blocks[i].Title = t
	}
	return blocks
}

// visibleText is everything a user would read, titles excluded.
func visibleText(r Response) string {
	if r.Kind == KindQuestion {
		return r.Text
	}
	parts := make([]string, 0, len(r.Blocks)+1)
	for _, b := range r.Blocks {
		parts = append(parts, b.Text)
	}
	parts = append(parts, r.NextStep)
	return strings.Join(parts, "\n")
}

func (r Response) empty() bool {
	if r.Kind == KindQuestion {
		return strings.TrimSpace(r.Text) == ""
	}
	for _, b := range r.Blocks {
		if strings.TrimSpace(b.Text) != "" {
			return false
		}
	}
	return true
}
