package sanitize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariants(t *testing.T) {
	t.Run("content object", func(t *testing.T) {
		p, err := Parse(RawContent(json.RawMessage(`{"kind":"answer","blocks":[]}`)))
		require.NoError(t, err)
		obj, ok := p.(ParsedObject)
		require.True(t, ok, "got %T", p)
		assert.Contains(t, obj.Fields, "kind")
	})

	t.Run("content string with json inside", func(t *testing.T) {
		p, err := Parse(RawContent(json.RawMessage(`"{\"text\":\"привет\",\"next\":null}"`)))
		require.NoError(t, err)
		s, ok := p.(ParsedJSONString)
		require.True(t, ok, "got %T", p)
		text, ok := stringField(s.Fields, "text")
		assert.True(t, ok)
		assert.Equal(t, "привет", text)
	})

	t.Run("code fence", func(t *testing.T) {
		p, err := Parse(RawText("```json\n{\"text\":\"a\"}\n```"))
		require.NoError(t, err)
		assert.IsType(t, ParsedJSONString{}, p)
	})

	t.Run("plain prose", func(t *testing.T) {
		p, err := Parse(RawText("  Просто текст без обёртки.  "))
		require.NoError(t, err)
		assert.Equal(t, PlainText{Text: "Просто текст без обёртки."}, p)
	})

	t.Run("unbalanced brace is prose", func(t *testing.T) {
		p, err := Parse(RawText("{незакрытая скобка"))
		require.NoError(t, err)
		assert.IsType(t, PlainText{}, p)
	})

	t.Run("quoted string is peeled once", func(t *testing.T) {
		p, err := Parse(RawText(`"привет"`))
		require.NoError(t, err)
		assert.Equal(t, PlainText{Text: "привет"}, p)
	})
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  Raw
		kind ErrorKind
	}{
		{"empty text", RawText("   "), KindEmpty},
		{"empty content string", RawContent(json.RawMessage(`""`)), KindEmpty},
		{"braces without json", RawText("{не json}"), KindParse},
		{"broken content object", RawContent(json.RawMessage(`{"kind":`)), KindParse},
		{"number content", RawContent(json.RawMessage(`42`)), KindShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw)
			require.Error(t, err)
			assert.True(t, IsKind(err, tc.kind), "got %v", err)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, StageReceived, e.Stage)
		})
	}
}

func TestRawLen(t *testing.T) {
	assert.Equal(t, 5, RawText("hello").Len())
	assert.Equal(t, 2, RawContent(json.RawMessage(`{}`)).Len())
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, "no fence", stripCodeFence("no fence"))
}
