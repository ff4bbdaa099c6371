package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/prajwal-ck/aidoc/internal/config"
	"github.com/prajwal-ck/aidoc/internal/conversation"
	"github.com/prajwal-ck/aidoc/internal/prompts"
)

func chatCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask cricket questions in the terminal",
		Long: `Start an interactive cricket Q&A session.

Type "clear history" or "clear memory, clear chat" to start over.
An empty line or EOF ends the session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(os.Stderr, cfg.LogLevel)

			set, err := prompts.Load(cfg.PromptsFile)
			if err != nil {
				return err
			}
			client, err := newLLM(cmd.Context(), cfg, cfg.ChatModel, cfg.ChatTemperature)
			if err != nil {
				return err
			}

			orch := conversation.New(client, slog.Default())
			st := conversation.NewState(set.CricketSystem)
			return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), orch, st, newMarkdown())
		},
	}
}

type chatHandler interface {
	Handle(ctx context.Context, st *conversation.State, input string) (conversation.Outcome, error)
}

func runChat(ctx context.Context, in io.Reader, out io.Writer, h chatHandler, st *conversation.State, md func(string) string) error {
	fmt.Fprint(out, md("# cric🏏 chatbot"))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Input: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := scanner.Text()
		if strings.TrimSpace(input) == "" {
			return nil
		}

		outcome, err := h.Handle(ctx, st, input)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprint(out, md(chatMarkdown(outcome, st.Earlier())))
	}
}

// chatMarkdown lays out one turn: the answer first, then the earlier
// exchanges newest first.
func chatMarkdown(outcome conversation.Outcome, earlier []conversation.QARecord) string {
	if outcome.Cleared {
		return "History cleared.\n"
	}

	var b strings.Builder
	b.WriteString("## The Response is\n\n")
	b.WriteString(outcome.Response)
	b.WriteString("\n")
	for _, rec := range earlier {
		fmt.Fprintf(&b, "\n**Q:** %s\n\n**A:** %s\n", rec.Question, rec.Response)
	}
	return b.String()
}

// newMarkdown returns a terminal renderer, falling back to the raw text when
// glamour cannot be initialised.
func newMarkdown() func(string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		slog.Warn("markdown renderer unavailable", "error", err)
		return func(s string) string { return s }
	}
	return func(s string) string {
		out, err := r.Render(s)
		if err != nil {
			return s
		}
		return out
	}
}
