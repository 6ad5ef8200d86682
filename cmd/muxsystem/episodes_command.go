package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"muxsystem/internal/episodes"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	var discover bool

	cmd := &cobra.Command{
		Use:   "episodes [selection]",
		Short: "Show which episodes a selection resolves to",
		Args:  cobra.MaximumNArgs(1),
		// Config loads after the selection parses so a bad selection exits 2.
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := "all"
			if len(args) > 0 {
				arg = args[0]
			}
			sel, err := episodes.Parse(arg)
			if err != nil {
				return withExitCode(exitInvalidSelection, err)
			}

			list := sel.Episodes
			if sel.All || discover {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				found, err := episodes.Discover(cfg.Paths.SubtitleDir)
				if err != nil && !errors.Is(err, fs.ErrNotExist) {
					return withExitCode(exitFailure, err)
				}
				if sel.All {
					list = found
				} else {
					list = intersect(list, found)
				}
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No episodes")
				return withExitCode(exitFailure, errors.New("no valid episodes specified"))
			}
			labels := make([]string, len(list))
			for i, ep := range list {
				labels[i] = episodes.Format(ep)
			}
			fmt.Fprintf(out, "Episodes: %s (%d)\n", episodes.Summary(list), len(list))
			fmt.Fprintln(out, strings.Join(labels, " "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&discover, "discover", false, "Only list selected episodes that have subtitle scripts")
	return cmd
}

func intersect(selected, available []int) []int {
	present := make(map[int]struct{}, len(available))
	for _, ep := range available {
		present[ep] = struct{}{}
	}
	var out []int
	for _, ep := range selected {
		if _, ok := present[ep]; ok {
			out = append(out, ep)
		}
	}
	return out
}
