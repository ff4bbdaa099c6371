package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prajwal-ck/aidoc/internal/conversation"
	"github.com/prajwal-ck/aidoc/internal/pipeline"
)

// page is the data of every HTML template.
type page struct {
	Title     string
	Error     string
	Outcome   *conversation.Outcome
	Earlier   []conversation.QARecord
	Path      string
	StagedDir string
	Result    *pipeline.Result
}

func (s *Server) render(w http.ResponseWriter, status int, name string, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages.ExecuteTemplate(w, name, p); err != nil {
		s.logger.Error("render page failed", "page", name, "error", err)
	}
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse carries the outcome plus the earlier records, newest first.
type ChatResponse struct {
	conversation.Outcome
	Earlier []conversation.QARecord `json:"earlier"`
}

func (s *Server) chatPage(w http.ResponseWriter, r *http.Request) {
	st, release := s.sessions.Acquire(s.sessionID(w, r))
	earlier := st.Earlier()
	release()

	s.render(w, http.StatusOK, "chat.html", page{Title: "Conversational Q&A Chatbot", Earlier: earlier})
}

func (s *Server) chatSubmit(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	question := r.FormValue("question")

	st, release := s.sessions.Acquire(id)
	defer release()

	p := page{Title: "Conversational Q&A Chatbot"}
	status := http.StatusOK

	out, err := s.chat.Handle(r.Context(), st, question)
	if err != nil {
		s.logger.Error("chat failed", "session", id.String(), "error", err)
		p.Error = fmt.Sprintf("The assistant could not answer: %v", err)
		status = http.StatusBadGateway
	} else {
		p.Outcome = &out
	}
	p.Earlier = st.Earlier()

	s.render(w, status, "chat.html", p)
}

// chatAPI handles POST /api/v1/chat
func (s *Server) chatAPI(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}

	id := s.sessionID(w, r)
	st, release := s.sessions.Acquire(id)
	defer release()

	out, err := s.chat.Handle(r.Context(), st, req.Question)
	if err != nil {
		s.logger.Error("chat failed", "session", id.String(), "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Outcome: out, Earlier: st.Earlier()})
}

// chatHistory handles GET /api/v1/chat
func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	st, release := s.sessions.Acquire(s.sessionID(w, r))
	defer release()

	writeJSON(w, http.StatusOK, map[string]any{
		"history":  st.History(),
		"flow_len": len(st.Flow()),
	})
}

// chatReset handles DELETE /api/v1/chat
func (s *Server) chatReset(w http.ResponseWriter, r *http.Request) {
	st, release := s.sessions.Acquire(s.sessionID(w, r))
	st.Reset()
	release()

	writeJSON(w, http.StatusOK, conversation.Outcome{Cleared: true})
}
