package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prajwal-ck/aidoc/internal/llm"
)

// resetPhrases clear the session instead of being sent to the model.
var resetPhrases = []string{
	"clear memory, clear chat",
	"clear history",
}

// IsResetCommand reports whether input is one of the reset phrases,
// ignoring case and surrounding whitespace.
func IsResetCommand(input string) bool {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, p := range resetPhrases {
		if normalized == p {
			return true
		}
	}
	return false
}

// Outcome is the result of handling one input.
type Outcome struct {
	Cleared  bool   `json:"cleared"`
	Question string `json:"question,omitempty"`
	Response string `json:"response,omitempty"`
}

type Orchestrator struct {
	llm    llm.Chatter
	logger *slog.Logger
}

func New(chat llm.Chatter, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{llm: chat, logger: logger}
}

// Submit appends the question, sends the whole flow and appends the reply.
// A failed call leaves the question in the flow unanswered.
func (o *Orchestrator) Submit(ctx context.Context, st *State, question string) (string, error) {
	st.append(llm.RoleUser, question)

	o.logger.Debug("sending conversation",
		"question_len", len(question),
		"flow_len", len(st.flow),
	)

	reply, err := o.llm.Chat(ctx, st.Flow())
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	st.append(llm.RoleAssistant, reply)
	return reply, nil
}

// Handle runs command detection, then either resets st or submits the
// question and records the answered pair.
func (o *Orchestrator) Handle(ctx context.Context, st *State, input string) (Outcome, error) {
	if IsResetCommand(input) {
		st.Reset()
		o.logger.Info("conversation cleared")
		return Outcome{Cleared: true}, nil
	}

	reply, err := o.Submit(ctx, st, input)
	if err != nil {
		return Outcome{}, err
	}
	st.record(input, reply)

	o.logger.Info("question answered",
		"flow_len", len(st.flow),
		"history_len", len(st.history),
	)
	return Outcome{Question: input, Response: reply}, nil
}
