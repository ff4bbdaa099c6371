package hermes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestParseRunEvent(t *testing.T) {
	raw := `{
		"run_id": "3f1c",
		"root": "/srv/shop",
		"stage": "backend_analysis",
		"output_len": 512,
		"timestamp": "2026-10-16T10:00:00Z"
	}`

	evt, err := ParseRunEvent([]byte(raw))
	if err != nil {
		t.Fatalf("failed to parse RunEvent: %v", err)
	}
	if evt.RunID != "3f1c" {
		t.Errorf("expected run_id '3f1c', got '%s'", evt.RunID)
	}
	if evt.Stage != "backend_analysis" {
		t.Errorf("expected stage 'backend_analysis', got '%s'", evt.Stage)
	}
	if evt.OutputLen != 512 {
		t.Errorf("expected output_len 512, got %d", evt.OutputLen)
	}
}

func TestParseRunEvent_Invalid(t *testing.T) {
	if _, err := ParseRunEvent([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}

func TestSubjectsShareWildcard(t *testing.T) {
	prefix := strings.TrimSuffix(SubjectAll, ">")
	for _, s := range []string{SubjectRunStarted, SubjectStageCompleted, SubjectRunCompleted, SubjectRunFailed} {
		if !strings.HasPrefix(s, prefix) {
			t.Errorf("subject %s not covered by %s", s, SubjectAll)
		}
	}
}

func TestNewClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client, err := NewClient(ctx, "nats://127.0.0.1:4222", "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		client.Close()
		t.Fatal("expected an error for a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
