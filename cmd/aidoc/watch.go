package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prajwal-ck/aidoc/internal/config"
	"github.com/prajwal-ck/aidoc/internal/hermes"
)

func watchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print documentation run events from NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(os.Stderr, cfg.LogLevel)
			if cfg.NatsURL == "" {
				return fmt.Errorf("NATS_URL is required")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			hc, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
			if err != nil {
				return err
			}
			defer hc.Close()

			out := cmd.OutOrStdout()
			if err := hc.Subscribe(hermes.SubjectAll, func(subject string, data []byte) {
				printEvent(out, subject, data)
			}); err != nil {
				return err
			}

			slog.Info("watching run events", "subject", hermes.SubjectAll)
			<-ctx.Done()
			return nil
		},
	}
}

func printEvent(w io.Writer, subject string, data []byte) {
	evt, err := hermes.ParseRunEvent(data)
	if err != nil {
		slog.Warn("unparseable run event", "subject", subject, "error", err)
		return
	}

	switch subject {
	case hermes.SubjectRunStarted:
		fmt.Fprintf(w, "%s run %s started on %s (%d frontend, %d backend files)\n",
			evt.Timestamp, evt.RunID, evt.Root, evt.FrontendN, evt.BackendN)
	case hermes.SubjectStageCompleted:
		fmt.Fprintf(w, "%s run %s stage %s done (%d chars)\n", evt.Timestamp, evt.RunID, evt.Stage, evt.OutputLen)
	case hermes.SubjectRunCompleted:
		fmt.Fprintf(w, "%s run %s completed: %s\n", evt.Timestamp, evt.RunID, evt.DocumentPath)
	case hermes.SubjectRunFailed:
		fmt.Fprintf(w, "%s run %s failed: %s\n", evt.Timestamp, evt.RunID, evt.Error)
	default:
		fmt.Fprintf(w, "%s %s %s\n", evt.Timestamp, subject, evt.RunID)
	}
}

