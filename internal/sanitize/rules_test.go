package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordsMatchWholeCyrillicWords(t *testing.T) {
	m := Words("или")
	assert.Len(t, m.FindAll("милиция или нет"), 1)
	assert.Empty(t, m.FindAll("милиция"))
	assert.Len(t, Words("сделай").FindAll("СДЕЛАЙ это, сделай"), 2)
	assert.Len(t, Words("хорошо, тогда").FindAll("Хорошо,   тогда начнём"), 1)
}

func TestWordsPreferLongestAlternative(t *testing.T) {
	locs := Words("может", "может стоит").FindAll("может стоит подождать")
	if assert.Len(t, locs, 1) {
		assert.Equal(t, 0, locs[0][0])
		assert.Equal(t, len("может стоит"), locs[0][1])
	}
}

func TestRuleApply(t *testing.T) {
	cases := []struct {
		name string
		rule Rule
		in   string
		want string
	}{
		{
			name: "delete match",
			rule: Rule{Action: DeleteMatch, Match: Words("может")},
			in:   "Позвони может маме",
			want: "Позвони маме",
		},
		{
			name: "truncate after match",
			rule: Rule{Action: TruncateAfterMatch, Match: Words("или")},
			in:   "Сделай одно или другое",
			want: "Сделай одно",
		},
		{
			name: "truncate ignores a leading match",
			rule: Rule{Action: TruncateAfterMatch, Match: Words("или")},
			in:   "Или так",
			want: "Или так",
		},
		{
			name: "truncate skips a leading match",
			rule: Rule{Action: TruncateAfterMatch, Match: Words("или")},
			in:   "Или так, или иначе",
			want: "Или так,",
		},
		{
			name: "keep first matching drops later ones",
			rule: Rule{Action: KeepFirstMatching, Match: Words("сделай"), N: 1},
			in:   "Сделай раз. Подумай. Сделай два. Отдохни.",
			want: "Сделай раз. Подумай. Отдохни.",
		},
		{
			name: "keep first matching with cut",
			rule: Rule{Action: KeepFirstMatching, Match: Words("сделай"), N: 1, Cut: true},
			in:   "Сделай раз. Подумай. Сделай два. Отдохни.",
			want: "Сделай раз. Подумай.",
		},
		{
			name: "keep none",
			rule: Rule{Action: KeepFirstMatching, Match: questionMark, N: 0},
			in:   "Слышу. Почему так? Понимаю.",
			want: "Слышу. Понимаю.",
		},
		{
			name: "ensure suffix appends",
			rule: Rule{Action: EnsureSuffix, Match: deadlinePattern, Suffix: DeadlineSuffix},
			in:   "Позвони маме!",
			want: "Позвони маме. За 5 минут.",
		},
		{
			name: "ensure suffix keeps existing",
			rule: Rule{Action: EnsureSuffix, Match: deadlinePattern, Suffix: DeadlineSuffix},
			in:   "Позвони за 10 минут.",
			want: "Позвони за 10 минут.",
		},
		{
			name: "cap words",
			rule: Rule{Action: CapWords, N: 3},
			in:   "раз  два три четыре",
			want: "раз два три",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rule.Apply(tc.in))
		})
	}
}

func TestKeepFirstMatchingReportsKept(t *testing.T) {
	text, kept := keepFirstMatching(questionMark, "Как? Зачем? Ладно.", 1, false)
	assert.Equal(t, "Как? Ладно.", text)
	assert.Equal(t, 1, kept)

	_, kept = keepFirstMatching(questionMark, "Ладно.", 1, false)
	assert.Zero(t, kept)

	_, kept = keepFirstMatching(questionMark, "Как? Зачем?", 0, true)
	assert.Zero(t, kept)
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t,
		[]string{"Первое.", "Второе?!", "Третье…", "хвост"},
		splitSentences("Первое. Второе?! Третье… хвост"))
	assert.Empty(t, splitSentences("   "))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "ensure-suffix", EnsureSuffix.String())
	assert.Equal(t, "unknown", Action(99).String())
}
