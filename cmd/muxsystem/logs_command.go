package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"muxsystem/internal/episodes"
	"muxsystem/internal/logging"
	"muxsystem/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines   int
		follow  bool
		runID   string
		episode int
		grep    string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the persistent log file",
		Long:  "Show the log file written when logging.file is enabled. Filters match raw line text.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogFilePath()
			if !cfg.Logging.File {
				fmt.Fprintf(cmd.ErrOrStderr(), "logging.file is disabled; showing %s as it is\n", path)
			}

			terms := []string{grep, strings.TrimSpace(runID)}
			if episode > 0 {
				terms = append(terms, fieldTerm(cfg.Logging.Format, logging.FieldEpisode, episodes.Format(episode)))
			}
			keep := logs.Contains(terms...)

			out := cmd.OutOrStdout()
			found, offset, err := logs.Last(path, lines, keep)
			if err != nil {
				return withExitCode(exitFailure, err)
			}
			for _, line := range found {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			followCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return logs.Follow(followCtx, path, offset, 0, keep, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show; 0 shows the whole file")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&runID, "run", "", "Only lines containing this run id")
	cmd.Flags().IntVarP(&episode, "episode", "e", 0, "Only lines mentioning this episode label")
	cmd.Flags().StringVar(&grep, "grep", "", "Only lines containing this text")
	return cmd
}

// fieldTerm renders key and value the way the configured log format writes them.
func fieldTerm(format, key, value string) string {
	if format == "json" {
		return fmt.Sprintf("%q:%q", key, value)
	}
	return key + "=" + value
}
