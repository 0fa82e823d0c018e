package ai

import (
	"strings"

	"thinkclear-backend/internal/contract"
)

// Prompt is one upstream request.
type Prompt struct {
	Mode   contract.Mode
	System string
	User   string
}

// Turn: то, что клиент знает о предыдущих репликах.
type Turn struct {
	PreviousKind         string
	ConsecutiveUncertain int
	ActionKey            string
	ActionLabel          string
}

// Coerce reports whether a question must not be sent this turn.
func (t Turn) Coerce() bool {
	return t.PreviousKind == "question" || t.ConsecutiveUncertain >= 2
}

// BuildPrompt формирует system + user сообщения для одного запроса.
func BuildPrompt(c contract.Contract, text string, turn Turn) Prompt {
	return Prompt{
		Mode:   c.Mode,
		System: SystemPrompt(c),
		User:   BuildUserPrompt(text, turn),
	}
}

// BuildUserPrompt: текст пользователя плюс контекст хода
func BuildUserPrompt(text string, turn Turn) string {
	var b strings.Builder

	b.WriteString("User message:\n")
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n")

	if turn.ActionLabel != "" {
		b.WriteString("\nВыбранное действие: ")
		b.WriteString(turn.ActionLabel)
		b.WriteString("\n")
	}

	if turn.PreviousKind == "question" {
		b.WriteString("\nПредыдущая реплика уже была вопросом. Сейчас ответь, без нового вопроса.\n")
	} else if turn.ConsecutiveUncertain >= 2 {
		b.WriteString("\nЧеловек несколько раз подряд не уверен. Не спрашивай, дай опору.\n")
	}

	b.WriteString("\nReturn ONLY valid JSON.")
	return b.String()
}
