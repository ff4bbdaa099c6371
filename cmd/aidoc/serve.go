package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/prajwal-ck/aidoc/internal/api"
	"github.com/prajwal-ck/aidoc/internal/config"
	"github.com/prajwal-ck/aidoc/internal/conversation"
	"github.com/prajwal-ck/aidoc/internal/prompts"
)

func serveCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chatbot and document generator web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(os.Stdout, cfg.LogLevel)
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP port")
	return cmd
}

func runServe(parent context.Context, cfg *config.Config) error {
	slog.Info("aidoc starting", "port", cfg.Port, "provider", cfg.Provider)

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	set, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return err
	}

	chatClient, err := newLLM(ctx, cfg, cfg.ChatModel, cfg.ChatTemperature)
	if err != nil {
		return err
	}

	events := connectEvents(ctx, cfg)
	if events != nil {
		defer events.Close()
	}

	gen, err := newGenerator(ctx, cfg, set, cfg.OutputPath, events)
	if err != nil {
		return err
	}

	srv := api.NewServer(api.Options{
		Port:           cfg.Port,
		Chat:           conversation.New(chatClient, slog.Default()),
		Docs:           gen,
		Sessions:       conversation.NewSessions(set.CricketSystem),
		UploadMaxBytes: cfg.UploadMaxBytes,
		Logger:         slog.Default(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	slog.Info("aidoc ready", "port", cfg.Port)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}
	slog.Info("aidoc stopped")
	return nil
}
