package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnreachable — API недоступен (ошибка соединения, таймаут).
var ErrUnreachable = errors.New("API кредитного риска недоступен")

// UnreachableMessage — сообщение пользователю при недоступности API.
const UnreachableMessage = "No se ha podido establecer conexión con el servidor."

// maxMessageLen — ограничение длины текстового сообщения из тела ответа.
const maxMessageLen = 200

// RemoteError — неуспешная операция с удалённым API.
type RemoteError struct {
	// Status — HTTP-статус ответа (0, если ответа не было)
	Status int
	// Message — сообщение для пользователя (может быть пустым)
	Message string
	// Unreachable — ответа не было: API недоступен
	Unreachable bool
	// Op — операция, например "GET customers/7"
	Op  string
	Err error
}

// Error реализует error.
func (e *RemoteError) Error() string {
	switch {
	case e.Unreachable:
		return fmt.Sprintf("%s: API недоступен: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: API вернул статус %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: API вернул статус %d", e.Op, e.Status)
	}
}

// Unwrap возвращает исходную ошибку транспорта.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is позволяет проверять недоступность через errors.Is(err, ErrUnreachable).
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnreachable && e.Unreachable
}

// UserMessage возвращает сообщение для пользователя.
// Порядок: недоступность API, поле error/message ответа, текст ответа.
func (e *RemoteError) UserMessage() string {
	if e.Unreachable {
		return UnreachableMessage
	}
	return e.Message
}

// extractMessage достаёт сообщение об ошибке из тела ответа API.
// Поддерживаются {"error":"..."}, {"error":{"message":"..."}}, {"message":"..."}
// и текстовое тело. HTML-страницы прокси игнорируются.
func extractMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err == nil {
		switch v := payload["error"].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if msg, ok := v["message"].(string); ok && msg != "" {
				return msg
			}
		}
		if msg, ok := payload["message"].(string); ok {
			return msg
		}
		return ""
	}

	if strings.HasPrefix(text, "<") || strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return ""
	}
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen]
	}
	return text
}
