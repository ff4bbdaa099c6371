package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/prajwal-ck/aidoc/internal/config"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:           "aidoc",
		Short:         "aidoc - cricket Q&A chatbot and project workflow document generator",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd(&cfg))
	rootCmd.AddCommand(chatCmd(&cfg))
	rootCmd.AddCommand(generateCmd(&cfg))
	rootCmd.AddCommand(watchCmd(&cfg))

	return rootCmd
}

// setupLogging installs the JSON logger. Interactive commands log to stderr
// so their rendered output stays clean on stdout.
func setupLogging(w io.Writer, level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
