package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prajwal-ck/aidoc/internal/anthropic"
	"github.com/prajwal-ck/aidoc/internal/config"
	"github.com/prajwal-ck/aidoc/internal/gemini"
	"github.com/prajwal-ck/aidoc/internal/hermes"
	"github.com/prajwal-ck/aidoc/internal/llm"
	"github.com/prajwal-ck/aidoc/internal/pipeline"
	"github.com/prajwal-ck/aidoc/internal/prompts"
	"github.com/prajwal-ck/aidoc/internal/render"
)

// newLLM builds the configured provider's client for one model and
// temperature, wrapped with the client-level retry count.
func newLLM(ctx context.Context, cfg *config.Config, model string, temperature float64) (llm.Client, error) {
	if cfg.APIKey() == "" {
		if cfg.Provider == config.ProviderAnthropic {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
		return nil, fmt.Errorf("GOOGLE_API_KEY is required")
	}

	var client llm.Client
	switch cfg.Provider {
	case config.ProviderAnthropic:
		client = anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.AnthropicAPIKey,
			Model:       model,
			Temperature: temperature,
			Timeout:     cfg.Timeout,
		})
	default:
		gc, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.GoogleAPIKey,
			Model:       model,
			Temperature: temperature,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		client = gc
	}

	slog.Info("llm client ready", "provider", cfg.Provider, "model", model, "temperature", temperature)
	return llm.WithRetries(client, cfg.MaxRetries, slog.Default()), nil
}

// newGenerator wires the documentation pipeline. events may be nil.
func newGenerator(ctx context.Context, cfg *config.Config, set *prompts.Set, outputPath string, events *hermes.Client) (*pipeline.Generator, error) {
	client, err := newLLM(ctx, cfg, cfg.DocModel, cfg.DocTemperature)
	if err != nil {
		return nil, err
	}

	var pub pipeline.Publisher
	if events != nil {
		pub = events
	}

	backoff := pipeline.NewFixedDelay(cfg.FrontendDelay, cfg.BackendDelay, cfg.SynthesisDelay)
	return pipeline.New(client, set, backoff, render.NewPDF(outputPath), pub, slog.Default()), nil
}

// connectEvents returns nil when NATS is not configured or unreachable;
// run events are optional.
func connectEvents(ctx context.Context, cfg *config.Config) *hermes.Client {
	if cfg.NatsURL == "" {
		return nil
	}
	hc, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Warn("NATS unavailable, run events disabled", "url", cfg.NatsURL, "error", err)
		return nil
	}
	slog.Info("NATS connected", "url", cfg.NatsURL)
	return hc
}
