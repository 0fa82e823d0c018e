package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thinkclear-backend/internal/sanitize"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		sanitizeMode = "guide"
		pushClarify = false
		configPath = ""
	})

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSanitizeCommand(t *testing.T) {
	stdout, err := execute(t,
		`{"text":"Может, попробуй сделать звонок или написать письмо?","next":null}`,
		"sanitize", "--mode", "push")
	require.NoError(t, err)

	var got sanitizeOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, sanitize.OutcomeValid, got.Outcome)
	assert.Equal(t, sanitize.KindAnswer, got.Response.Kind)
	assert.Contains(t, got.Response.Blocks[0].Text, "За 5 минут.")
	assert.Empty(t, got.Reason)
}

func TestSanitizeCommandFallback(t *testing.T) {
	stdout, err := execute(t, `{"kind":"answer","blocks":"nope"}`, "sanitize", "--mode", "guide")
	require.NoError(t, err)

	var got sanitizeOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, sanitize.OutcomeFallback, got.Outcome)
	assert.NotEmpty(t, got.Reason)
}

func TestEnforceCommand(t *testing.T) {
	stdout, err := execute(t, "Сделай звонок", "enforce", "--mode", "push")
	require.NoError(t, err)
	assert.Equal(t, "Сделай звонок. За 5 минут. Ответь: сделал/нет.\n", stdout)
}

func TestUnknownModeIsRejected(t *testing.T) {
	_, err := execute(t, "text", "sanitize", "--mode", "calm")
	assert.ErrorContains(t, err, "unknown mode")
}
