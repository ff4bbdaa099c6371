package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/prajwal-ck/aidoc/internal/config"
	"github.com/prajwal-ck/aidoc/internal/pipeline"
	"github.com/prajwal-ck/aidoc/internal/prompts"
)

func generateCmd(cfg *config.Config) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "generate [project-path]",
		Short: "Generate workflow documentation for a project folder",
		Long: `Analyse the frontend and backend sources of a project folder, synthesise
a workflow document and export it as a PDF.

Each stage waits its configured delay before calling the model, so a run
takes at least STAGE_DELAY_FRONTEND + STAGE_DELAY_BACKEND + STAGE_DELAY_SYNTHESIS.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(os.Stderr, cfg.LogLevel)

			set, err := prompts.Load(cfg.PromptsFile)
			if err != nil {
				return err
			}

			events := connectEvents(cmd.Context(), cfg)
			if events != nil {
				defer events.Close()
			}

			gen, err := newGenerator(cmd.Context(), cfg, set, out, events)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), gen, args[0], newMarkdown())
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", cfg.OutputPath, "PDF output path")
	return cmd
}

type docGenerator interface {
	Run(ctx context.Context, root string) (*pipeline.Result, error)
}

func runGenerate(ctx context.Context, out io.Writer, gen docGenerator, root string, md func(string) string) error {
	res, err := gen.Run(ctx, root)
	if err != nil {
		return err
	}
	fmt.Fprint(out, md(res.Document))
	fmt.Fprintf(out, "Frontend files: %d, backend files: %d\n", len(res.Frontend), len(res.Backend))
	fmt.Fprintf(out, "Document written to %s\n", res.DocumentPath)
	return nil
}
