package contract

import "strings"

// Mode: персона, в которой отвечает ассистент.
type Mode string

const (
	ModeLite  Mode = "lite"
	ModeGuide Mode = "guide"
	ModePush  Mode = "push"
)

// Modes lists every mode in a stable order.
var Modes = []Mode{ModeLite, ModeGuide, ModePush}

// ParseMode maps request input to a Mode. Anything unrecognised becomes guide.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLite:
		return ModeLite
	case ModePush:
		return ModePush
	default:
		return ModeGuide
	}
}

func (m Mode) Valid() bool {
	return m == ModeLite || m == ModeGuide || m == ModePush
}

func (m Mode) String() string { return string(m) }

// Contract is the structural policy of one mode.
type Contract struct {
	Mode Mode

	MaxWords      int
	MaxQuestions  int
	AllowAction   bool
	AllowDeadline bool
	EmpathyLevel  int // 0..10

	// Titles is the exact ordered list of answer block titles.
	Titles []string
	// PrimaryBlock receives plain-text and envelope replies.
	PrimaryBlock int
	// ActionBlock carries the deadline and report suffixes when AllowDeadline is set.
	ActionBlock int

	QuestionCap int // runes

	AllowNextStep bool
	NextStepCap   int // runes

	// AllowClarifyingQuestion lets a mode with MaxQuestions == 0 still ask
	// one question when the object of action is unclear.
	AllowClarifyingQuestion bool
}

// AllowsQuestion reports whether a question-kind reply is acceptable at all.
func (c Contract) AllowsQuestion() bool {
	return c.MaxQuestions > 0 || c.AllowClarifyingQuestion
}

func (c Contract) clone() Contract {
	c.Titles = append([]string(nil), c.Titles...)
	return c
}

var defaults = map[Mode]Contract{
	ModeLite: {
		Mode:          ModeLite,
		MaxWords:      150,
		MaxQuestions:  1,
		AllowAction:   false,
		AllowDeadline: false,
		EmpathyLevel:  9,
		Titles:        []string{"Что слышу"},
		QuestionCap:   90,
		AllowNextStep: false,
	},
	ModeGuide: {
		Mode:          ModeGuide,
		MaxWords:      260,
		MaxQuestions:  1,
		AllowAction:   true,
		AllowDeadline: false,
		EmpathyLevel:  6,
		Titles:        []string{"Суть", "Как это выглядит", "Что если так оставить", "Направление"},
		ActionBlock:   3,
		QuestionCap:   120,
		AllowNextStep: true,
		NextStepCap:   140,
	},
	ModePush: {
		Mode:          ModePush,
		MaxWords:      200,
		MaxQuestions:  0,
		AllowAction:   true,
		AllowDeadline: true,
		EmpathyLevel:  2,
		Titles:        []string{"Действие"},
		QuestionCap:   120,
		AllowNextStep: false,
	},
}

// Options are the deploy-time policy switches applied when the table is built.
type Options struct {
	PushAllowClarify bool
}

// Table holds exactly one contract per mode. It is never mutated after NewTable.
type Table struct {
	byMode map[Mode]Contract
}

func NewTable(opts Options) *Table {
	t := &Table{byMode: make(map[Mode]Contract, len(defaults))}
	for m, c := range defaults {
		t.byMode[m] = c.clone()
	}

	push := t.byMode[ModePush]
	push.AllowClarifyingQuestion = opts.PushAllowClarify
	t.byMode[ModePush] = push

	return t
}

// Default is the table with every policy switch off.
func Default() *Table {
	return NewTable(Options{})
}

// Get returns a copy of the contract for m. Unknown modes fall back to guide,
// although callers are expected to pass a mode produced by ParseMode.
func (t *Table) Get(m Mode) Contract {
	c, ok := t.byMode[m]
	if !ok {
		c = t.byMode[ModeGuide]
	}
	return c.clone()
}
