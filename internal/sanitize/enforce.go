package sanitize

import (
	"strings"
	"unicode/utf8"

	"thinkclear-backend/internal/contract"
)

// Vocabularies. Matching is whole-word and case-insensitive.
var (
	adviceWords = Words(
		"сделай", "попробуй", "нужно", "надо", "давай", "стоит", "например",
		"советую", "рекомендую", "может стоит",
	)

	guideActionWords = Words(
		"сделай", "напиши", "открой", "позвони", "отправь", "выбери", "начни", "заверши",
	)

	pushPersuasionWords = Words(
		"может", "попробуй", "давай", "хочешь", "если", "хорошо, тогда",
		"например", "можно", "стоит",
	)

	pushActionWords = Words(
		"открой", "напиши", "сделай", "поставь", "отправь", "заполни", "позвони", "отметь", "создай", "зайди",
		"открыть", "написать", "сделать", "поставить", "отправить", "заполнить", "позвонить", "отметить", "создать", "зайти",
	)

	alternativeWord = Words("или")
	listMarker      = Pattern(`\d+\)`)
	questionMark    = Pattern(`\?`)
	deadlinePattern = Pattern(`(?i)\d+\s*(?:минут|час|сек)`)
	reportPattern   = Pattern(`(?i)ответь.*сделал|сделал.*нет`)
)

const (
	DeadlineSuffix = "За 5 минут."
	ReportSuffix   = "Ответь: сделал/нет."

	liteDegenerate  = "Вижу, что тебе сейчас нелегко. Как ощущаешь себя?"
	pushDegenerate  = "Запиши одну фразу о том, что мешает. " + DeadlineSuffix + " " + ReportSuffix
	guideDegenerate = FallbackText
)

// RuleSet is the ordered rewriting program of one mode.
type RuleSet struct {
	Rules []Rule
	// Texts shorter than MinRunes after the rules count as empty.
	MinRunes int
	// Degenerate replaces an answer whose every block ended up empty.
	Degenerate string
}

// RulesFor builds the rule set for c. It is a pure function of the contract.
func RulesFor(c contract.Contract) RuleSet {
	questions := Rule{
		Name: "cap-questions", Action: KeepFirstMatching, Match: questionMark,
		N: c.MaxQuestions, QuestionN: max(1, c.MaxQuestions), Questions: true,
	}
	words := Rule{Name: "cap-words", Action: CapWords, N: c.MaxWords, Questions: true}

	switch c.Mode {
	case contract.ModeLite:
		return RuleSet{
			Rules: []Rule{
				{Name: "drop-advice", Action: KeepFirstMatching, Match: adviceWords, N: 0, Questions: true},
				questions,
				words,
			},
			MinRunes:   3,
			Degenerate: liteDegenerate,
		}

	case contract.ModePush:
		rules := []Rule{
			{Name: "drop-persuasion", Action: DeleteMatch, Match: pushPersuasionWords, Questions: true},
			{Name: "drop-alternatives", Action: TruncateAfterMatch, Match: alternativeWord, Questions: true},
			{Name: "drop-list-markers", Action: DeleteMatch, Match: listMarker, Questions: true},
			{Name: "one-action", Action: KeepFirstMatching, Match: pushActionWords, N: 1, Cut: true},
			questions,
			words,
		}
		if c.AllowDeadline {
			rules = append(rules,
				Rule{Name: "ensure-deadline", Action: EnsureSuffix, Match: deadlinePattern, Suffix: DeadlineSuffix, ActionOnly: true},
				Rule{Name: "ensure-report", Action: EnsureSuffix, Match: reportPattern, Suffix: ReportSuffix, ActionOnly: true},
			)
		}
		return RuleSet{Rules: rules, MinRunes: 1, Degenerate: pushDegenerate}

	default:
		return RuleSet{
			Rules: []Rule{
				{Name: "one-action", Action: KeepFirstMatching, Match: guideActionWords, N: 1},
				questions,
				words,
			},
			MinRunes:   1,
			Degenerate: guideDegenerate,
		}
	}
}

// pass runs a RuleSet over one reply. The counts of KeepFirstMatching and
// CapWords rules are shared by every block and the next step, so "one action"
// or "one question" holds for the reply as a whole.
type pass struct {
	set  RuleSet
	left []int
}

func (s RuleSet) newPass(question bool) *pass {
	left := make([]int, len(s.Rules))
	for i, r := range s.Rules {
		left[i] = r.N
		if question && r.QuestionN > 0 {
			left[i] = r.QuestionN
		}
	}
	return &pass{set: s, left: left}
}

func (p *pass) text(text string, question, actionBlock bool) string {
	text = collapse(text)
	for i, r := range p.set.Rules {
		if question && !r.Questions {
			continue
		}
		if r.ActionOnly && (question || !actionBlock) {
			continue
		}
		// Suffixes are never appended to an emptied text.
		if r.Action == EnsureSuffix && text == "" {
			continue
		}
		text = p.run(i, r, text)
	}
	if utf8.RuneCountInString(text) < p.set.MinRunes {
		return ""
	}
	return text
}

// nextStep gets only what the blocks left of the action and question caps.
func (p *pass) nextStep(text string) string {
	text = collapse(text)
	for i, r := range p.set.Rules {
		if r.Action == KeepFirstMatching {
			text = p.run(i, r, text)
		}
	}
	return text
}

func (p *pass) run(i int, r Rule, text string) string {
	var used int
	switch {
	case r.Action == KeepFirstMatching:
		text, used = keepFirstMatching(r.Match, text, p.left[i], r.Cut)
	case r.Action == CapWords && r.N > 0:
		text, used = capWords(text, p.left[i])
	default:
		return r.Apply(text)
	}
	p.left[i] -= used
	return collapse(text)
}

// Enforce rewrites a normalized candidate so that its text obeys c, whatever
// the upstream model produced. It never returns an empty reply.
func Enforce(c contract.Contract, r Response) Response {
	set := RulesFor(c)

	if r.Kind == KindQuestion {
		text := set.newPass(true).text(r.Text, true, false)
		if text == "" {
			return Notice(c, set.Degenerate)
		}
		return Response{Kind: KindQuestion, Text: text}
	}

	p := set.newPass(false)
	out := Response{
		Kind:   KindAnswer,
		Blocks: make([]Block, len(r.Blocks)),
	}
	// блоки идут в порядке заголовков, nextStep последним
	for i, b := range r.Blocks {
		out.Blocks[i] = Block{
			Title: b.Title,
			Text:  p.text(b.Text, false, i == c.ActionBlock),
		}
	}
	out.NextStep = p.nextStep(r.NextStep)

	if out.empty() {
		if len(out.Blocks) != len(c.Titles) {
			out.Blocks = emptyBlocks(c)
		}
		out.Blocks[c.PrimaryBlock].Text = set.Degenerate
	}
	return out
}

// EnforceText applies the answer rules of c to a single text, as if it were
// the only content of the action block. Used by the CLI and tests.
func EnforceText(c contract.Contract, text string) string {
	set := RulesFor(c)
	out := set.newPass(false).text(text, false, true)
	if strings.TrimSpace(out) == "" {
		return set.Degenerate
	}
	return out
}
