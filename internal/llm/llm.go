// Package llm defines the boundary to a hosted text-completion service.
package llm

import (
	"context"
	"fmt"
	"log/slog"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged conversational turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Chatter answers an ordered transcript of messages.
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Completer answers a single text prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is a completion service that accepts both input shapes.
type Client interface {
	Chatter
	Completer
}

// SplitSystem separates leading system messages from the rest of the
// transcript, for APIs that take the system instruction out of band.
func SplitSystem(messages []Message) (string, []Message) {
	var system string
	i := 0
	for ; i < len(messages) && messages[i].Role == RoleSystem; i++ {
		if system != "" {
			system += "\n\n"
		}
		system += messages[i].Content
	}
	return system, messages[i:]
}

type retrying struct {
	next    Client
	retries int
	logger  *slog.Logger
}

// WithRetries re-issues a failed call immediately up to retries more times.
// It is the client-level retry count; callers add no back-off of their own.
func WithRetries(c Client, retries int, logger *slog.Logger) Client {
	if retries <= 0 {
		return c
	}
	return &retrying{next: c, retries: retries, logger: logger}
}

func (r *retrying) Chat(ctx context.Context, messages []Message) (string, error) {
	return r.do(ctx, "chat", func() (string, error) { return r.next.Chat(ctx, messages) })
}

func (r *retrying) Complete(ctx context.Context, prompt string) (string, error) {
	return r.do(ctx, "complete", func() (string, error) { return r.next.Complete(ctx, prompt) })
}

func (r *retrying) do(ctx context.Context, op string, call func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			r.logger.Warn("retrying completion call", "op", op, "attempt", attempt, "error", lastErr)
		}
		out, err := call()
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("%s failed after %d attempts: %w", op, r.retries+1, lastErr)
}
