package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"muxsystem/internal/episodes"
	"muxsystem/internal/history"
	"muxsystem/internal/logging"
	"muxsystem/internal/workflow"
)

var errNothingProcessed = errors.New("no episode was processed")

func newMuxCommand(ctx *commandContext) *cobra.Command {
	var (
		version int
		flag    string
		dryRun  bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "mux <episodes> [outdir]",
		Short: "Mux episodes into release files",
		Long: `Mux one or more episodes.

<episodes> is a number ("1"), a range ("1-5"), a comma list ("1,3,5"),
a mix ("1-3,5,7-9") or "all" to take every episode found in the subtitle
directory. [outdir] defaults to paths.output_dir.`,
		Example: "  muxsystem mux 1-5 muxed -f MyGroup -v 2\n  muxsystem mux all --dry-run",
		Args:    cobra.RangeArgs(1, 2),
		// Config loads after the selection parses so a bad selection exits 2.
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := episodes.Parse(args[0])
			if err != nil {
				return withExitCode(exitInvalidSelection, err)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return withExitCode(exitFailure, err)
			}

			opts := []workflow.Option{}
			store, err := ctx.openHistory()
			if err != nil {
				logging.WarnWithContext(logger, "history unavailable", "history_unavailable",
					logging.Error(err),
					logging.String(logging.FieldImpact, "outcomes not recorded"),
				)
			} else {
				defer store.Close()
				opts = append(opts, workflow.WithHistory(store))
			}

			pipeline, err := workflow.New(cfg, logger, opts...)
			if err != nil {
				return withExitCode(exitFailure, err)
			}
			req := workflow.Request{Episodes: sel, DryRun: dryRun, Flag: flag, Version: version}
			if len(args) > 1 {
				req.OutputDir = args[1]
			}
			summary, err := pipeline.Run(cmd.Context(), req)
			if err != nil {
				return withExitCode(exitFailure, err)
			}

			if asJSON {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			}
			if !summary.Succeeded() {
				return withExitCode(exitFailure, errNothingProcessed)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&version, "version", "v", 0, "Release version; 1 adds no suffix (default naming.version)")
	cmd.Flags().StringVarP(&flag, "flag", "f", "", "Group tag for the file name (default naming.flag)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Discover and merge inputs without muxing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run summary as JSON")
	return cmd
}

func renderSummary(summary workflow.Summary) string {
	rows := make([][]string, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		detail := o.Reason
		if o.OutputPath != "" {
			detail = filepath.Base(o.OutputPath)
		}
		if detail == "" && o.Status == history.StatusDryRun {
			detail = fmt.Sprintf("%d chapters, %d fonts", o.Chapters, o.Fonts)
			if len(o.Missing) > 0 {
				detail += ", missing " + strings.Join(o.Missing, ", ")
			}
		}
		rows = append(rows, []string{episodes.Format(o.Episode), string(o.Status), o.CRC32, detail})
	}
	table := renderTable([]string{"Episode", "Status", "CRC32", "Detail"}, rows, nil)
	return fmt.Sprintf("%s\n%d of %d episodes processed", table, summary.Processed, len(summary.Requested))
}
