package sanitize

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"thinkclear-backend/internal/contract"
)

// metaMarkers must never reach the user: structural words of the reply
// format, process and debug markers.
var metaMarkers = []string{
	"самообман",
	"факт:",
	"вопрос:",
	"ответ:",
	"kind:",
	"blocks:",
	"nextstep",
	"<think",
	"```",
	"system prompt",
	"as an ai",
	"языковая модель",
	"[debug]",
}

// Validate is the terminal gate. It returns the accepted response, or the
// fallback marker of c together with the reason it was substituted.
func Validate(c contract.Contract, r Response) (Response, error) {
	out, err := check(c, r)
	if err != nil {
		return Fallback(c), err
	}
	return out, nil
}

func check(c contract.Contract, r Response) (Response, error) {
	var out Response

	switch r.Kind {
	case KindQuestion:
		if !c.AllowsQuestion() {
			return Response{}, newError(KindContract, StageValidated, fmt.Sprintf("mode %s does not ask questions", c.Mode))
		}
		text := truncateRunes(collapse(r.Text), c.QuestionCap)
		if text == "" {
			return Response{}, newError(KindEmpty, StageValidated, "question text is empty")
		}
		if n := countQuestions(text); n > max(1, c.MaxQuestions) {
			return Response{}, newError(KindContract, StageValidated, fmt.Sprintf("%d questions in one reply", n))
		}
		out = Response{Kind: KindQuestion, Text: text}

	case KindAnswer:
		blocks := fitBlocks(c, r.Blocks)
		for i, b := range blocks {
			if b.Title != c.Titles[i] {
				return Response{}, newError(KindContract, StageValidated, fmt.Sprintf("block %d has title %q, want %q", i, b.Title, c.Titles[i]))
			}
		}
		out = Response{Kind: KindAnswer, Blocks: blocks}
		if out.empty() {
			return Response{}, newError(KindEmpty, StageValidated, "every block is empty")
		}
		action := blocks[c.ActionBlock].Text
		if c.AllowDeadline && action != FallbackText && !matches(deadlinePattern, action) {
			return Response{}, newError(KindContract, StageValidated, "action has no deadline")
		}

		next := collapse(r.NextStep)
		if c.AllowNextStep && next != "" && utf8.RuneCountInString(next) <= c.NextStepCap {
			out.NextStep = next
		}
		n := countQuestions(out.NextStep)
		for _, b := range blocks {
			n += countQuestions(b.Text)
		}
		if n > c.MaxQuestions {
			return Response{}, newError(KindContract, StageValidated, fmt.Sprintf("%d questions, mode allows %d", n, c.MaxQuestions))
		}

	default:
		return Response{}, newError(KindShape, StageValidated, fmt.Sprintf("unknown kind %q", r.Kind))
	}

	if m := forbiddenHit(c, out); m != "" {
		return Response{}, newError(KindForbidden, StageValidated, fmt.Sprintf("reply contains %q", m))
	}
	return out, nil
}

// fitBlocks pads missing blocks with empty text, drops the excess and forces
// the required titles.
func fitBlocks(c contract.Contract, in []Block) []Block {
	out := emptyBlocks(c)
	for i := range out {
		if i < len(in) {
			out[i].Text = collapse(in[i].Text)
		}
	}
	return out
}

// forbiddenHit returns the first marker found in the visible text of r,
// ignoring case and whitespace.
func forbiddenHit(c contract.Contract, r Response) string {
	hay := squash(visibleText(r))
	if hay == "" {
		return ""
	}
	for _, m := range metaMarkers {
		if strings.Contains(hay, squash(m)) {
			return m
		}
	}
	for _, t := range c.Titles {
		if strings.Contains(hay, squash(t)+":") {
			return t + ":"
		}
	}
	return ""
}

func countQuestions(text string) int {
	n := 0
	for _, s := range splitSentences(text) {
		if matches(questionMark, s) {
			n++
		}
	}
	return n
}

func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// truncateRunes cuts s to at most max runes, preferring a word boundary in
// the second half of the allowed span.
func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	cut := string([]rune(s)[:max])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:-—")
}
