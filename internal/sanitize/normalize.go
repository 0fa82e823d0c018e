package sanitize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"thinkclear-backend/internal/contract"
)

// Normalize turns a parsed reply into a best-effort candidate for c.
// The candidate is not yet contract-validated.
func Normalize(c contract.Contract, p Parsed) (Response, error) {
	switch v := p.(type) {
	case ParsedObject:
		return fromFields(c, v.Fields)
	case ParsedJSONString:
		return fromFields(c, v.Fields)
	case PlainText:
		text := strings.TrimSpace(v.Text)
		if text == "" {
			return Response{}, newError(KindEmpty, StageNormalized, "plain text reply is empty")
		}
		return Notice(c, text), nil
	default:
		return Response{}, newError(KindInternal, StageNormalized, fmt.Sprintf("unknown parse variant %T", p))
	}
}

func fromFields(c contract.Contract, f map[string]json.RawMessage) (Response, error) {
	if _, ok := f["kind"]; ok {
		kind, ok := stringField(f, "kind")
		if !ok {
			return Response{}, newError(KindShape, StageNormalized, "kind is not a string")
		}

		switch Kind(strings.ToLower(strings.TrimSpace(kind))) {
		case KindQuestion:
			text, ok := stringField(f, "text")
			if !ok {
				return Response{}, newError(KindShape, StageNormalized, "question text is not a string")
			}
			return Response{Kind: KindQuestion, Text: strings.TrimSpace(text)}, nil

		case KindAnswer:
			blocks, err := decodeBlocks(f["blocks"])
			if err != nil {
				return Response{}, err
			}
			next, ok := stringField(f, "nextStep")
			if !ok {
				next, _ = stringField(f, "next_step")
			}
			return Response{
				Kind:     KindAnswer,
				Blocks:   alignBlocks(c, blocks),
				NextStep: strings.TrimSpace(next),
			}, nil

		default:
			return Response{}, newError(KindShape, StageNormalized, fmt.Sprintf("unknown kind %q", kind))
		}
	}

	// {"text": "...", "next": "..." | null}
	if _, ok := f["text"]; ok {
		text, ok := stringField(f, "text")
		if !ok {
			return Response{}, newError(KindShape, StageNormalized, "text is not a string")
		}
		next, _ := stringField(f, "next")
		text = strings.TrimSpace(text)
		next = strings.TrimSpace(next)

		if text == "" && next != "" {
			return Response{Kind: KindQuestion, Text: next}, nil
		}
		if next != "" && c.Mode != contract.ModePush {
			text = joinSentences(text, next)
		}
		if text == "" {
			return Response{}, newError(KindEmpty, StageNormalized, "text and next are empty")
		}
		return Notice(c, text), nil
	}

	return Response{}, newError(KindShape, StageNormalized, "unrecognised reply shape")
}

func decodeBlocks(raw json.RawMessage) ([]Block, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, newError(KindShape, StageNormalized, "blocks is not an array")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, wrapError(KindShape, StageNormalized, "blocks is not an array", err)
	}

	out := make([]Block, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			out = append(out, Block{})
			continue
		}
		title, _ := stringField(obj, "title")
		text, _ := stringField(obj, "text")
		out = append(out, Block{Title: strings.TrimSpace(title), Text: strings.TrimSpace(text)})
	}
	return out, nil
}

// alignBlocks places blocks whose title names a required title into that slot,
// fills the remaining slots in order with the rest, drops the excess and
// forces every title to its required value.
func alignBlocks(c contract.Contract, in []Block) []Block {
	out := emptyBlocks(c)
	filled := make([]bool, len(out))

	var rest []Block
	for _, b := range in {
		if i := titleIndex(c.Titles, b.Title); i >= 0 && !filled[i] {
			out[i].Text = b.Text
			filled[i] = true
			continue
		}
		rest = append(rest, b)
	}

	slot := 0
	for _, b := range rest {
		for slot < len(out) && filled[slot] {
			slot++
		}
		if slot == len(out) {
			break
		}
		out[slot].Text = b.Text
		filled[slot] = true
	}
	return out
}

func titleIndex(titles []string, title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		return -1
	}
	for i, t := range titles {
		if strings.EqualFold(t, title) {
			return i
		}
	}
	return -1
}

func joinSentences(a, b string) string {
	a = strings.TrimSpace(a)
	if a == "" {
		return b
	}
	if !strings.ContainsAny(a[len(a)-1:], ".!?") && !strings.HasSuffix(a, "…") {
		a += "."
	}
	return a + " " + b
}
