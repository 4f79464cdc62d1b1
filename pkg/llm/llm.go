package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// LLM is a chat model that answers a single user prompt.
type LLM interface {
	Chat(ctx context.Context, prompt string, maxTokens int) (string, error)
	GetModel() string
}

// ErrNoContent is returned when a response parses but carries no message text.
var ErrNoContent = errors.New("content key not found in message")

// DefaultTimeout bounds a single inference request.
const DefaultTimeout = 120 * time.Second

// Infer calls l and folds any failure into the returned text, so callers can
// treat success and failure alike.
func Infer(ctx context.Context, l LLM, prompt string, maxTokens int) string {
	out, err := l.Chat(ctx, prompt, maxTokens)
	if errors.Is(err, ErrNoContent) {
		return "Error: 'content' key not found in message."
	}
	if err != nil {
		return fmt.Sprintf("API Request Error: %v", err)
	}
	return out
}
