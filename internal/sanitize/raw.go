package sanitize

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Raw is the untrusted reply of the upstream model for one request:
// either plain text or the JSON value of the message content field.
type Raw struct {
	text    string
	content json.RawMessage
}

// RawText wraps a reply that arrived as a plain string.
func RawText(s string) Raw {
	return Raw{text: s}
}

// RawContent wraps the message content exactly as it appeared on the wire
// (a JSON string or, rarely, a JSON object).
func RawContent(b json.RawMessage) Raw {
	return Raw{content: append(json.RawMessage(nil), b...)}
}

// Len is the size of the raw reply in bytes.
func (r Raw) Len() int {
	if len(r.content) > 0 {
		return len(r.content)
	}
	return len(r.text)
}

// Parsed is one of ParsedObject, ParsedJSONString or PlainText.
type Parsed interface {
	parsed()
}

// ParsedObject: the content field already was a JSON object.
type ParsedObject struct {
	Fields map[string]json.RawMessage
}

// ParsedJSONString: a string whose trimmed form is a JSON object.
type ParsedJSONString struct {
	Fields map[string]json.RawMessage
}

// PlainText: prose with no JSON wrapper.
type PlainText struct {
	Text string
}

func (ParsedObject) parsed()     {}
func (ParsedJSONString) parsed() {}
func (PlainText) parsed()        {}

// Parse sniffs the shape of raw. Structural interpretation is attempted only
// when the trimmed text starts with '{' and ends with '}'.
func Parse(raw Raw) (Parsed, error) {
	if c := bytes.TrimSpace(raw.content); len(c) > 0 {
		switch c[0] {
		case '{':
			fields, err := decodeObject(c)
			if err != nil {
				return nil, wrapError(KindParse, StageReceived, "content object is not valid json", err)
			}
			return ParsedObject{Fields: fields}, nil
		case '"':
			var s string
			if err := json.Unmarshal(c, &s); err != nil {
				return nil, wrapError(KindParse, StageReceived, "content string is not valid json", err)
			}
			return parseText(s, 1)
		default:
			return nil, newError(KindShape, StageReceived, "content is neither a string nor an object")
		}
	}
	return parseText(raw.text, 1)
}

// depth bounds how many layers of JSON string quoting are peeled.
func parseText(s string, depth int) (Parsed, error) {
	s = stripCodeFence(strings.TrimSpace(norm.NFC.String(s)))
	if s == "" {
		return nil, newError(KindEmpty, StageReceived, "reply is empty")
	}

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		fields, err := decodeObject([]byte(s))
		if err != nil {
			return nil, wrapError(KindParse, StageReceived, "reply looks like json but does not parse", err)
		}
		return ParsedJSONString{Fields: fields}, nil
	}

	if depth > 0 && len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var inner string
		if json.Unmarshal([]byte(s), &inner) == nil {
			return parseText(inner, depth-1)
		}
	}

	return PlainText{Text: s}, nil
}

func decodeObject(b []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// stripCodeFence removes a ```json ... ``` wrapper around the whole reply.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(s[3:], "```")
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		lang := strings.TrimSpace(body[:i])
		if lang == "" || !strings.ContainsAny(lang, " {") {
			body = body[i+1:]
		}
	}
	return strings.TrimSpace(body)
}

// stringField returns the NFC-normalised value of a JSON string field.
func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	return stringValue(raw)
}

func stringValue(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return norm.NFC.String(s), true
}
