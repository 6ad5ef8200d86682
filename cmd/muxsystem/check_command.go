package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"muxsystem/internal/notifications"
	"muxsystem/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun bool
		notify bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the preflight checks a mux run performs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg, dryRun)
			fmt.Fprintln(out, "Preflight:")
			for _, r := range results {
				kind := statusOK
				switch {
				case !r.Passed && r.Optional:
					kind = statusWarn
				case !r.Passed:
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if notify {
				if cfg.Notify.NtfyTopic == "" {
					fmt.Fprintln(out, renderStatusLine("ntfy", statusWarn, "notify.ntfy_topic not set", colorize))
				} else if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
					fmt.Fprintln(out, renderStatusLine("ntfy", statusError, err.Error(), colorize))
					return withExitCode(exitFailure, err)
				} else {
					fmt.Fprintln(out, renderStatusLine("ntfy", statusOK, "test notification sent", colorize))
				}
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return withExitCode(exitFailure, errors.New(pluralChecks(len(failed))))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Only run the checks a dry run needs")
	cmd.Flags().BoolVar(&notify, "notify", false, "Send a test notification to notify.ntfy_topic")
	return cmd
}

func pluralChecks(n int) string {
	if n == 1 {
		return "1 preflight check failed"
	}
	return fmt.Sprintf("%d preflight checks failed", n)
}
