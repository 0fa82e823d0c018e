package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"lite":   ModeLite,
		" PUSH ": ModePush,
		"guide":  ModeGuide,
		"":       ModeGuide,
		"boss":   ModeGuide,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseMode(in), "input %q", in)
	}
}

func TestDefaultTableValues(t *testing.T) {
	tbl := Default()

	lite := tbl.Get(ModeLite)
	assert.Equal(t, 150, lite.MaxWords)
	assert.Equal(t, 1, lite.MaxQuestions)
	assert.False(t, lite.AllowAction)
	assert.False(t, lite.AllowNextStep)
	assert.Equal(t, 9, lite.EmpathyLevel)

	guide := tbl.Get(ModeGuide)
	require.Len(t, guide.Titles, 4)
	assert.Equal(t, "Суть", guide.Titles[0])
	assert.True(t, guide.AllowNextStep)
	assert.Equal(t, 140, guide.NextStepCap)

	push := tbl.Get(ModePush)
	assert.Equal(t, 0, push.MaxQuestions)
	assert.True(t, push.AllowDeadline)
	assert.False(t, push.AllowsQuestion())
}

func TestPushClarifyOption(t *testing.T) {
	tbl := NewTable(Options{PushAllowClarify: true})
	assert.True(t, tbl.Get(ModePush).AllowsQuestion())
	assert.False(t, Default().Get(ModePush).AllowsQuestion())
}

func TestGetReturnsCopy(t *testing.T) {
	tbl := Default()
	c := tbl.Get(ModeGuide)
	c.Titles[0] = "changed"
	c.MaxWords = 1

	again := tbl.Get(ModeGuide)
	assert.Equal(t, "Суть", again.Titles[0])
	assert.Equal(t, 260, again.MaxWords)
}

func TestEveryModeHasConsistentContract(t *testing.T) {
	tbl := Default()
	for _, m := range Modes {
		c := tbl.Get(m)
		assert.Equal(t, m, c.Mode)
		assert.Greater(t, c.MaxWords, 0)
		assert.NotEmpty(t, c.Titles)
		assert.Less(t, c.PrimaryBlock, len(c.Titles))
		assert.Less(t, c.ActionBlock, len(c.Titles))
		assert.Greater(t, c.QuestionCap, 0)
	}
}
