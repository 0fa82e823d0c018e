package sanitize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Action is what a Rule does with its matches.
type Action int

const (
	// DeleteMatch replaces every match with a space.
	DeleteMatch Action = iota
	// TruncateAfterMatch drops the first match that does not open the text,
	// and everything after it.
	TruncateAfterMatch
	// KeepFirstMatching keeps N sentences that match; later matching sentences
	// are dropped, or with Cut everything from the first excess one onward.
	KeepFirstMatching
	// EnsureSuffix appends Suffix when the text has no match.
	EnsureSuffix
	// CapWords keeps the first N words.
	CapWords
)

func (a Action) String() string {
	switch a {
	case DeleteMatch:
		return "delete-match"
	case TruncateAfterMatch:
		return "truncate-after-match"
	case KeepFirstMatching:
		return "keep-first-matching"
	case EnsureSuffix:
		return "ensure-suffix"
	case CapWords:
		return "cap-words"
	default:
		return "unknown"
	}
}

// Matcher finds non-overlapping [start, end) byte ranges in s.
type Matcher interface {
	FindAll(s string) [][]int
}

type patternMatcher struct {
	re *regexp.Regexp
}

// Pattern matches a regular expression.
func Pattern(expr string) Matcher {
	return patternMatcher{re: regexp.MustCompile(expr)}
}

func (m patternMatcher) FindAll(s string) [][]int {
	return m.re.FindAllStringIndex(s, -1)
}

// wordMatcher matches whole words case-insensitively. RE2's \b only knows
// ASCII word characters, so boundaries are checked on runes instead.
type wordMatcher struct {
	re *regexp.Regexp
}

// Words matches any of words (or phrases) as whole words, ignoring case.
func Words(words ...string) Matcher {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})

	alts := make([]string, len(sorted))
	for i, w := range sorted {
		parts := strings.Fields(w)
		for j := range parts {
			parts[j] = regexp.QuoteMeta(parts[j])
		}
		alts[i] = strings.Join(parts, `\s+`)
	}
	return wordMatcher{re: regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)}
}

func (m wordMatcher) FindAll(s string) [][]int {
	var out [][]int
	for _, loc := range m.re.FindAllStringIndex(s, -1) {
		before, n := utf8.DecodeLastRuneInString(s[:loc[0]])
		if n > 0 && isWordRune(before) {
			continue
		}
		after, n := utf8.DecodeRuneInString(s[loc[1]:])
		if n > 0 && isWordRune(after) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func matches(m Matcher, s string) bool {
	return len(m.FindAll(s)) > 0
}

// Rule is one rewriting step. Rules of a mode run left to right.
type Rule struct {
	Name   string
	Action Action
	Match  Matcher
	N      int
	Cut    bool
	Suffix string

	// QuestionN replaces N when the rule runs over a question-kind reply.
	QuestionN int

	// Questions: the rule also rewrites question-kind replies.
	Questions bool
	// ActionOnly: the rule touches only the contract's action block.
	ActionOnly bool
}

// Apply runs r over text. Whitespace is collapsed afterwards.
func (r Rule) Apply(text string) string {
	switch r.Action {
	case DeleteMatch:
		text = deleteMatches(r.Match, text)
	case TruncateAfterMatch:
		text = truncateAfter(r.Match, text)
	case KeepFirstMatching:
		text, _ = keepFirstMatching(r.Match, text, r.N, r.Cut)
	case EnsureSuffix:
		text = ensureSuffix(r.Match, text, r.Suffix)
	case CapWords:
		if r.N > 0 {
			text, _ = capWords(text, r.N)
		}
	}
	return collapse(text)
}

// truncateAfter cuts at the first match past the start: a leading "Или"
// opens the sentence, the next one introduces an alternative.
func truncateAfter(m Matcher, text string) string {
	for _, loc := range m.FindAll(text) {
		if strings.TrimSpace(text[:loc[0]]) != "" {
			return text[:loc[0]]
		}
	}
	return text
}

// capWords keeps the first n words and reports how many were kept.
func capWords(text string, n int) (string, int) {
	words := strings.Fields(text)
	if n < 0 {
		n = 0
	}
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " "), len(words)
}

func deleteMatches(m Matcher, text string) string {
	locs := m.FindAll(text)
	if len(locs) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, loc := range locs {
		b.WriteString(text[prev:loc[0]])
		b.WriteByte(' ')
		prev = loc[1]
	}
	b.WriteString(text[prev:])
	return b.String()
}

// keepFirstMatching returns the rewritten text and the number of matching
// sentences it kept.
func keepFirstMatching(m Matcher, text string, n int, cut bool) (string, int) {
	sentences := splitSentences(text)
	kept := make([]string, 0, len(sentences))
	seen := 0
	for _, s := range sentences {
		if matches(m, s) {
			seen++
			if seen > n {
				if cut {
					break
				}
				continue
			}
		}
		kept = append(kept, s)
	}
	return strings.Join(kept, " "), min(seen, max(n, 0))
}

func ensureSuffix(m Matcher, text, suffix string) string {
	text = strings.TrimSpace(text)
	if text == "" || matches(m, text) {
		return text
	}
	base := strings.TrimLeft(strings.TrimRight(text, terminalPunct), terminalPunct)
	if base == "" {
		return suffix
	}
	return base + ". " + suffix
}

const terminalPunct = " .!?…,;:"

var sentenceRe = regexp.MustCompile(`[^.!?…]+[.!?…]*`)

// splitSentences cuts text after runs of . ! ? or …; an unterminated tail
// is a sentence too.
func splitSentences(text string) []string {
	raw := sentenceRe.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
