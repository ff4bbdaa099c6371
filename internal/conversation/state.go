// Package conversation holds the cricket assistant's transcript and the
// orchestrator that replays it against the completion service.
package conversation

import (
	"github.com/prajwal-ck/aidoc/internal/llm"
)

// QARecord is one answered question, kept for redisplay only.
type QARecord struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// State is one session's transcript. The flow always starts with the
// system instruction; history never outgrows half the flow.
type State struct {
	system  llm.Message
	flow    []llm.Message
	history []QARecord
}

func NewState(systemPrompt string) *State {
	s := &State{system: llm.Message{Role: llm.RoleSystem, Content: systemPrompt}}
	s.Reset()
	return s
}

// Reset drops every turn and record but keeps the system instruction.
func (s *State) Reset() {
	s.flow = []llm.Message{s.system}
	s.history = nil
}

// Flow returns a copy of the ordered transcript.
func (s *State) Flow() []llm.Message {
	return append([]llm.Message(nil), s.flow...)
}

// History returns a copy of the QA records, oldest first.
func (s *State) History() []QARecord {
	return append([]QARecord(nil), s.history...)
}

// Earlier returns every record except the most recent, newest first.
func (s *State) Earlier() []QARecord {
	if len(s.history) < 2 {
		return nil
	}
	out := make([]QARecord, 0, len(s.history)-1)
	for i := len(s.history) - 2; i >= 0; i-- {
		out = append(out, s.history[i])
	}
	return out
}

func (s *State) append(role llm.Role, content string) {
	s.flow = append(s.flow, llm.Message{Role: role, Content: content})
}

func (s *State) record(question, response string) {
	s.history = append(s.history, QARecord{Question: question, Response: response})
}
