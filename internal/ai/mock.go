package ai

import (
	"context"
	"encoding/json"

	"thinkclear-backend/internal/contract"
	"thinkclear-backend/internal/sanitize"
)

// MockClient answers without any network call. Replies are fixed per mode,
// shaped like real model output.
type MockClient struct {
	Replies map[contract.Mode]string
}

var mockReplies = map[contract.Mode]string{
	contract.ModeLite: `{"text":"Слышу тебя. Похоже, сейчас правда непросто.","next":"Что сейчас тяжелее всего?"}`,
	contract.ModeGuide: `{"kind":"answer","blocks":[` +
		`{"title":"Суть","text":"Задача кажется слишком большой, поэтому ты её откладываешь."},` +
		`{"title":"Как это выглядит","text":"Ты возвращаешься к ней мыслями, но не начинаешь."},` +
		`{"title":"Что если так оставить","text":"Напряжение будет расти, а времени станет меньше."},` +
		`{"title":"Направление","text":"Выбери самый маленький кусок и начни с него."}` +
		`],"nextStep":"Запиши первый шаг одной фразой"}`,
	contract.ModePush: `{"text":"Открой заметки и запиши одну задачу на сегодня. 10 минут. Ответь: сделал/нет.","next":null}`,
}

func NewMock() *MockClient {
	return &MockClient{Replies: mockReplies}
}

func (m *MockClient) Complete(ctx context.Context, p Prompt) (sanitize.Raw, error) {
	if err := ctx.Err(); err != nil {
		return sanitize.Raw{}, err
	}
	reply, ok := m.Replies[p.Mode]
	if !ok {
		reply = m.Replies[contract.ModeGuide]
	}
	// как у OpenAI: content приходит JSON-строкой
	b, err := json.Marshal(reply)
	if err != nil {
		return sanitize.Raw{}, &Error{Op: "mock", Cause: err}
	}
	return sanitize.RawContent(b), nil
}
