package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prajwal-ck/aidoc/internal/conversation"
	"github.com/prajwal-ck/aidoc/internal/corpus"
	"github.com/prajwal-ck/aidoc/internal/hermes"
	"github.com/prajwal-ck/aidoc/internal/llm"
	"github.com/prajwal-ck/aidoc/internal/pipeline"
)

func plain(s string) string { return s }

type cannedChatter struct {
	replies []string
	seen    [][]llm.Message
}

func (c *cannedChatter) Chat(_ context.Context, msgs []llm.Message) (string, error) {
	c.seen = append(c.seen, msgs)
	if len(c.seen) > len(c.replies) {
		return "", errors.New("no more replies")
	}
	return c.replies[len(c.seen)-1], nil
}

func TestRunChat(t *testing.T) {
	chatter := &cannedChatter{replies: []string{"India", "Dhoni"}}
	orch := conversation.New(chatter, slog.New(slog.NewTextHandler(io.Discard, nil)))
	st := conversation.NewState("You are a cricket expert.")

	in := strings.NewReader("Who won 2011?\nWho was captain?\nclear history\n\n")
	var out bytes.Buffer
	if err := runChat(context.Background(), in, &out, orch, st, plain); err != nil {
		t.Fatalf("runChat: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "## The Response is\n\nDhoni") {
		t.Errorf("missing second answer in %q", got)
	}
	if !strings.Contains(got, "**Q:** Who won 2011?") {
		t.Error("missing earlier exchange")
	}
	if !strings.Contains(got, "History cleared.") {
		t.Error("missing cleared notice")
	}
	if len(chatter.seen) != 2 {
		t.Errorf("expected 2 model calls, got %d", len(chatter.seen))
	}
	if n := len(chatter.seen[1]); n != 4 {
		t.Errorf("second call should replay system, q1, a1, q2; got %d messages", n)
	}
	if len(st.History()) != 0 {
		t.Error("history should be empty after reset")
	}
}

func TestRunChat_ErrorKeepsSessionGoing(t *testing.T) {
	chatter := &cannedChatter{}
	orch := conversation.New(chatter, slog.New(slog.NewTextHandler(io.Discard, nil)))
	st := conversation.NewState("sys")

	var out bytes.Buffer
	if err := runChat(context.Background(), strings.NewReader("hi\n"), &out, orch, st, plain); err != nil {
		t.Fatalf("runChat: %v", err)
	}
	if !strings.Contains(out.String(), "error: chat completion: no more replies") {
		t.Errorf("expected error line, got %q", out.String())
	}
}

func TestChatMarkdown_Cleared(t *testing.T) {
	got := chatMarkdown(conversation.Outcome{Cleared: true}, nil)
	if got != "History cleared.\n" {
		t.Errorf("got %q", got)
	}
}

type stubGenerator struct {
	res *pipeline.Result
	err error
}

func (s stubGenerator) Run(context.Context, string) (*pipeline.Result, error) {
	return s.res, s.err
}

func TestRunGenerate(t *testing.T) {
	gen := stubGenerator{res: &pipeline.Result{
		Frontend:     []corpus.FileRecord{{Name: "index.html"}},
		Backend:      []corpus.FileRecord{{Name: "app.py"}, {Name: "db.py"}},
		Document:     "# Workflow",
		DocumentPath: "out.pdf",
	}}

	var out bytes.Buffer
	if err := runGenerate(context.Background(), &out, gen, ".", plain); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	got := out.String()
	for _, want := range []string{"# Workflow", "Frontend files: 1, backend files: 2", "Document written to out.pdf"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %q", want, got)
		}
	}
}

func TestRunGenerate_Error(t *testing.T) {
	gen := stubGenerator{err: pipeline.ErrInvalidPath}
	err := runGenerate(context.Background(), io.Discard, gen, "/nope", plain)
	if !errors.Is(err, pipeline.ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}

func TestPrintEvent(t *testing.T) {
	data, _ := json.Marshal(hermes.RunEvent{RunID: "r1", Stage: "synthesis", OutputLen: 42, Timestamp: "t"})

	var out bytes.Buffer
	printEvent(&out, hermes.SubjectStageCompleted, data)
	if got := out.String(); got != "t run r1 stage synthesis done (42 chars)\n" {
		t.Errorf("got %q", got)
	}

	out.Reset()
	printEvent(&out, hermes.SubjectRunCompleted, []byte("not json"))
	if out.Len() != 0 {
		t.Errorf("expected nothing for a bad payload, got %q", out.String())
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"serve": false, "chat": false, "generate": false, "watch": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %s", name)
		}
	}
}

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	setupLogging(&buf, "warn")
	slog.Info("hidden")
	slog.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("expected JSON warn record, got %q", buf.String())
	}
}
