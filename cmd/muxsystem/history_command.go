package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"muxsystem/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		episode string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded episode outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return withExitCode(exitFailure, err)
			}
			defer store.Close()

			var entries []history.Entry
			if episode != "" {
				n, err := strconv.Atoi(episode)
				if err != nil {
					return withExitCode(exitInvalidSelection, fmt.Errorf("invalid episode number: %s", episode))
				}
				latest, ok, err := store.Latest(cmd.Context(), fmt.Sprintf("%02d", n))
				if err != nil {
					return err
				}
				if ok {
					entries = append(entries, latest)
				}
			} else {
				entries, err = store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
			}

			if asJSON {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history recorded")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				detail := e.Reason
				if e.OutputPath != "" {
					detail = e.OutputPath
				}
				rows = append(rows, []string{
					strconv.FormatInt(e.ID, 10),
					e.CreatedAt.Local().Format("2006-01-02 15:04"),
					e.Episode,
					string(e.Status),
					e.CRC32,
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "When", "Episode", "Status", "CRC32", "Detail"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")
	cmd.Flags().StringVarP(&episode, "episode", "e", "", "Only show the latest outcome for this episode")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}
