// Package pipeline runs the three-stage documentation synthesis over a
// project tree and exports the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/prajwal-ck/aidoc/internal/corpus"
	"github.com/prajwal-ck/aidoc/internal/hermes"
	"github.com/prajwal-ck/aidoc/internal/llm"
	"github.com/prajwal-ck/aidoc/internal/prompts"
)

// ErrInvalidPath is returned when the project root is not a directory.
var ErrInvalidPath = errors.New("the provided path is not a valid directory")

// Publisher receives run lifecycle events.
type Publisher interface {
	Publish(subject string, data any) error
}

// Renderer exports the final document and returns where it was written.
type Renderer interface {
	Render(text string) (string, error)
}

// StageOutput is the model's reply for one stage.
type StageOutput struct {
	Kind     prompts.Kind  `json:"kind"`
	Prompt   string        `json:"-"`
	Output   string        `json:"output"`
	Duration time.Duration `json:"duration"`
}

// Result is one run's output. It is not retained after the run.
type Result struct {
	RunID        uuid.UUID           `json:"run_id"`
	Root         string              `json:"root"`
	Frontend     []corpus.FileRecord `json:"-"`
	Backend      []corpus.FileRecord `json:"-"`
	Stages       []StageOutput       `json:"stages"`
	Document     string              `json:"document"`
	DocumentPath string              `json:"document_path"`
}

type Generator struct {
	llm      llm.Completer
	prompts  *prompts.Set
	backoff  Backoff
	renderer Renderer
	events   Publisher
	logger   *slog.Logger
}

// New builds a generator. events may be nil.
func New(c llm.Completer, p *prompts.Set, b Backoff, r Renderer, events Publisher, logger *slog.Logger) *Generator {
	return &Generator{
		llm:      c,
		prompts:  p,
		backoff:  b,
		renderer: r,
		events:   events,
		logger:   logger,
	}
}

// Run documents the project at root: frontend analysis, backend analysis,
// then a synthesis of both, strictly in that order. Any failure ends the
// run with no document.
func (g *Generator) Run(ctx context.Context, root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, root)
	}

	res := &Result{RunID: uuid.New(), Root: root}
	logger := g.logger.With("run_id", res.RunID.String())

	res.Frontend, err = corpus.Collect(root, corpus.Frontend)
	if err != nil {
		return nil, g.fail(res, err)
	}
	res.Backend, err = corpus.Collect(root, corpus.Backend)
	if err != nil {
		return nil, g.fail(res, err)
	}

	logger.Info("corpus collected",
		"root", root,
		"frontend_files", len(res.Frontend),
		"backend_files", len(res.Backend),
	)
	g.publish(hermes.SubjectRunStarted, hermes.RunEvent{
		RunID:     res.RunID.String(),
		Root:      root,
		FrontendN: len(res.Frontend),
		BackendN:  len(res.Backend),
	})

	front, err := g.stage(ctx, logger, res, prompts.FrontendAnalysis, prompts.Input{Corpus: corpus.Format(res.Frontend)})
	if err != nil {
		return nil, g.fail(res, err)
	}
	back, err := g.stage(ctx, logger, res, prompts.BackendAnalysis, prompts.Input{Corpus: corpus.Format(res.Backend)})
	if err != nil {
		return nil, g.fail(res, err)
	}
	final, err := g.stage(ctx, logger, res, prompts.Synthesis, prompts.Input{Frontend: front, Backend: back})
	if err != nil {
		return nil, g.fail(res, err)
	}
	res.Document = final

	res.DocumentPath, err = g.renderer.Render(final)
	if err != nil {
		return nil, g.fail(res, fmt.Errorf("export document: %w", err))
	}

	logger.Info("documentation generated", "document_path", res.DocumentPath, "document_len", len(final))
	g.publish(hermes.SubjectRunCompleted, hermes.RunEvent{
		RunID:        res.RunID.String(),
		Root:         root,
		OutputLen:    len(final),
		DocumentPath: res.DocumentPath,
	})
	return res, nil
}

func (g *Generator) stage(ctx context.Context, logger *slog.Logger, res *Result, kind prompts.Kind, in prompts.Input) (string, error) {
	prompt, err := g.prompts.Build(kind, in)
	if err != nil {
		return "", fmt.Errorf("build %s prompt: %w", kind, err)
	}

	logger.Info("waiting before stage", "stage", kind)
	if err := g.backoff.Wait(ctx, kind); err != nil {
		return "", fmt.Errorf("wait before %s: %w", kind, err)
	}

	start := time.Now()
	out, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s call: %w", kind, err)
	}
	elapsed := time.Since(start)

	res.Stages = append(res.Stages, StageOutput{Kind: kind, Prompt: prompt, Output: out, Duration: elapsed})
	logger.Info("stage complete",
		"stage", kind,
		"prompt_len", len(prompt),
		"output_len", len(out),
		"duration", elapsed,
	)
	g.publish(hermes.SubjectStageCompleted, hermes.RunEvent{
		RunID:     res.RunID.String(),
		Stage:     string(kind),
		OutputLen: len(out),
	})
	return out, nil
}

func (g *Generator) fail(res *Result, err error) error {
	g.logger.Error("documentation run failed", "run_id", res.RunID.String(), "root", res.Root, "error", err)
	g.publish(hermes.SubjectRunFailed, hermes.RunEvent{
		RunID: res.RunID.String(),
		Root:  res.Root,
		Error: err.Error(),
	})
	return err
}

func (g *Generator) publish(subject string, evt hermes.RunEvent) {
	if g.events == nil {
		return
	}
	evt.Timestamp = time.Now().UTC().Format(time.RFC3339)
	if err := g.events.Publish(subject, evt); err != nil {
		g.logger.Warn("failed to publish run event", "subject", subject, "error", err)
	}
}
