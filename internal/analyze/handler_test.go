package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"thinkclear-backend/internal/ai"
	"thinkclear-backend/internal/analytics"
	"thinkclear-backend/internal/auth"
	"thinkclear-backend/internal/contract"
	"thinkclear-backend/internal/journal"
	"thinkclear-backend/internal/sanitize"
)

var secret = []byte("analyze-secret")

type fakeCompleter struct {
	mu     sync.Mutex
	reply  string
	err    error
	prompt ai.Prompt
}

func (f *fakeCompleter) Complete(_ context.Context, p ai.Prompt) (sanitize.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompt = p
	if f.err != nil {
		return sanitize.Raw{}, f.err
	}
	return sanitize.RawText(f.reply), nil
}

type sinkEvent struct {
	name  string
	props map[string]any
}

type memorySink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (s *memorySink) Log(_ context.Context, _ analytics.Envelope, name string, props map[string]any, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{name, props})
	return nil
}

type fixture struct {
	completer *fakeCompleter
	journal   *journal.MemoryStore
	sink      *memorySink
	handler   http.HandlerFunc
}

func newFixture(t *testing.T, reply string, err error) *fixture {
	f := &fixture{
		completer: &fakeCompleter{reply: reply, err: err},
		journal:   journal.NewMemoryStore(),
		sink:      &memorySink{},
	}
	h := New(f.completer, sanitize.New(nil), f.journal, f.sink, zaptest.NewLogger(t))
	f.handler = auth.New(secret).Optional(h.ServeHTTP)
	return f
}

func (f *fixture) post(t *testing.T, body, session string) (int, sanitize.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	if session != "" {
		token, _, err := auth.GenerateToken(secret, session, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler(rec, req)

	var out sanitize.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestAnalyzePushScenario(t *testing.T) {
	f := newFixture(t, `{"text":"Сделай звонок. Попробуй написать письмо.","next":null}`, nil)

	code, out := f.post(t, `{"text":"Не могу начать","appMode":"push","mode":"lite"}`, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, sanitize.Response{Kind: sanitize.KindAnswer, Blocks: []sanitize.Block{
		{Title: "Действие", Text: "Сделай звонок. За 5 минут. Ответь: сделал/нет."},
	}}, out)
	assert.Equal(t, contract.ModePush, f.completer.prompt.Mode)
	assert.Contains(t, f.completer.prompt.User, "Не могу начать")
}

func TestAnalyzeRequestFields(t *testing.T) {
	f := newFixture(t, `{"text":"Слышу.","next":null}`, nil)

	_, _ = f.post(t, `{"text":"  ","input":"из input","mode":"lite"}`, "")
	assert.Equal(t, contract.ModeLite, f.completer.prompt.Mode)
	assert.Contains(t, f.completer.prompt.User, "из input")

	_, _ = f.post(t, `{"text":"из text","input":"из input","mode":"boss"}`, "")
	assert.Equal(t, contract.ModeGuide, f.completer.prompt.Mode)
	assert.Contains(t, f.completer.prompt.User, "из text")
	assert.NotContains(t, f.completer.prompt.User, "из input")
}

func TestAnalyzeBoundaryFailures(t *testing.T) {
	guide := contract.Default().Get(contract.ModeGuide)
	push := contract.Default().Get(contract.ModePush)

	t.Run("invalid json", func(t *testing.T) {
		f := newFixture(t, "", nil)
		code, out := f.post(t, `{"text":`, "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, sanitize.Fallback(guide), out)
	})

	t.Run("blank text", func(t *testing.T) {
		f := newFixture(t, "", nil)
		code, out := f.post(t, `{"text":"   ","appMode":"push"}`, "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, sanitize.Notice(push, EmptyInputText), out)
	})

	t.Run("text of wrong type is blank", func(t *testing.T) {
		f := newFixture(t, "", nil)
		_, out := f.post(t, `{"text":42}`, "")
		assert.Equal(t, sanitize.Notice(guide, EmptyInputText), out)
	})

	t.Run("not configured", func(t *testing.T) {
		f := newFixture(t, "", ai.ErrNotConfigured)
		code, out := f.post(t, `{"text":"привет"}`, "")
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, sanitize.Fallback(guide), out)
	})

	t.Run("upstream error", func(t *testing.T) {
		f := newFixture(t, "", &ai.Error{Op: "chat completion", Status: 502, Cause: errors.New("bad gateway")})
		code, out := f.post(t, `{"text":"привет","mode":"push"}`, "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, sanitize.Fallback(push), out)
	})

	t.Run("garbage reply", func(t *testing.T) {
		f := newFixture(t, `{"kind":"essay"}`, nil)
		code, out := f.post(t, `{"text":"привет"}`, "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, sanitize.Fallback(guide), out)
	})
}

func TestAnalyzeCoercesAfterQuestion(t *testing.T) {
	guide := contract.Default().Get(contract.ModeGuide)
	question := `{"kind":"question","text":"Что именно мешает?"}`

	f := newFixture(t, question, nil)
	_, out := f.post(t, `{"text":"не знаю"}`, "")
	assert.Equal(t, sanitize.KindQuestion, out.Kind)

	_, out = f.post(t, `{"text":"не знаю","previousKind":"question"}`, "")
	assert.Equal(t, sanitize.Fallback(guide), out)

	_, out = f.post(t, `{"text":"не знаю","consecutiveUncertain":2}`, "")
	assert.Equal(t, sanitize.KindAnswer, out.Kind)

	last := f.sink.events[len(f.sink.events)-1]
	assert.Equal(t, true, last.props["coerced"])
}

func TestAnalyzeJournalsAnswers(t *testing.T) {
	f := newFixture(t, `{"text":"Слышу тебя.","next":null}`, nil)
	ctx := context.Background()

	_, _ = f.post(t, `{"text":"без сессии","mode":"lite"}`, "")
	_, _ = f.post(t, `{"text":"с сессией","mode":"lite","actionKey":"clarify"}`, "s1")

	entries, err := f.journal.List(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "с сессией", entries[0].InputText)
	assert.Equal(t, contract.ModeLite, entries[0].Mode)
	assert.Equal(t, "clarify", entries[0].ActionKey)
	assert.Equal(t, "Слышу тебя.", entries[0].Output.Blocks[0].Text)

	// вопросы в журнал не попадают
	f.completer.reply = `{"kind":"question","text":"Как ты?"}`
	_, out := f.post(t, `{"text":"ещё","mode":"lite"}`, "s1")
	require.Equal(t, sanitize.KindQuestion, out.Kind)
	entries, err = f.journal.List(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAnalyzeEventHasNoRawText(t *testing.T) {
	f := newFixture(t, `{"text":"Слышу тебя.","next":null}`, nil)
	_, _ = f.post(t, `{"text":"очень личное","mode":"lite"}`, "")

	require.Len(t, f.sink.events, 1)
	ev := f.sink.events[0]
	assert.Equal(t, "analyze_completed", ev.name)
	assert.Equal(t, "lite", ev.props["mode"])
	assert.Equal(t, "valid", ev.props["outcome"])
	assert.Equal(t, 12, ev.props["input_len"])
	for _, v := range ev.props {
		if s, ok := v.(string); ok {
			assert.NotContains(t, s, "личное")
			assert.NotContains(t, s, "Слышу")
		}
	}
}
