package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thinkclear-backend/internal/contract"
	"thinkclear-backend/internal/sanitize"
)

func TestSystemPromptPerMode(t *testing.T) {
	tbl := contract.Default()

	lite := SystemPrompt(tbl.Get(contract.ModeLite))
	assert.Contains(t, lite, "(lite)")
	assert.Contains(t, lite, "Return ONLY valid JSON.")

	guide := SystemPrompt(tbl.Get(contract.ModeGuide))
	for _, title := range tbl.Get(contract.ModeGuide).Titles {
		assert.Contains(t, guide, title)
	}

	push := SystemPrompt(tbl.Get(contract.ModePush))
	assert.Contains(t, push, "Никаких вопросов")

	clarify := SystemPrompt(contract.NewTable(contract.Options{PushAllowClarify: true}).Get(contract.ModePush))
	assert.Contains(t, clarify, "уточняющий вопрос")
	assert.NotContains(t, clarify, "Никаких вопросов")
}

func TestBuildUserPrompt(t *testing.T) {
	assert.Equal(t, "User message:\nпривет\n\nReturn ONLY valid JSON.", BuildUserPrompt("  привет ", Turn{}))

	got := BuildUserPrompt("привет", Turn{PreviousKind: "question", ActionLabel: "Разобрать"})
	assert.Contains(t, got, "Выбранное действие: Разобрать")
	assert.Contains(t, got, "без нового вопроса")

	got = BuildUserPrompt("привет", Turn{ConsecutiveUncertain: 2})
	assert.Contains(t, got, "не уверен")
}

func TestTurnCoerce(t *testing.T) {
	assert.False(t, Turn{}.Coerce())
	assert.False(t, Turn{PreviousKind: "answer", ConsecutiveUncertain: 1}.Coerce())
	assert.True(t, Turn{PreviousKind: "question"}.Coerce())
	assert.True(t, Turn{ConsecutiveUncertain: 3}.Coerce())
}

func TestMockRepliesSurviveSanitizer(t *testing.T) {
	s := sanitize.New(nil)
	m := NewMock()
	for _, mode := range contract.Modes {
		raw, err := m.Complete(context.Background(), Prompt{Mode: mode})
		require.NoError(t, err)
		res := s.Sanitize(mode, raw)
		assert.Equal(t, sanitize.OutcomeValid, res.Outcome, "%s: %v", mode, res.Err)
	}
}

func TestNewCompleter(t *testing.T) {
	ctx := context.Background()

	c, err := NewCompleter(ctx, Settings{})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = NewCompleter(ctx, Settings{Provider: "Mock"})
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, c)

	c, err = NewCompleter(ctx, Settings{Provider: ProviderGemini})
	require.NoError(t, err)
	_, err = c.Complete(ctx, Prompt{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewCompleter(ctx, Settings{Provider: "llama"})
	assert.Error(t, err)
}
