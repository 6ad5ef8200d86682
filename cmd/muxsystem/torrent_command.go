package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"muxsystem/internal/textutil"
	"muxsystem/internal/torrent"
)

func newTorrentCommand(ctx *commandContext) *cobra.Command {
	var (
		output   string
		name     string
		trackers []string
		comment  string
		private  bool
	)

	cmd := &cobra.Command{
		Use:   "torrent [paths...]",
		Short: "Create a .torrent for muxed files",
		Long:  "Create a .torrent for the given files or directories, or for paths.output_dir when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			paths := args
			if len(paths) == 0 {
				paths = []string{cfg.Paths.OutputDir}
			}

			opts := torrent.Options{
				Name:        strings.TrimSpace(name),
				Trackers:    cfg.Torrent.Trackers,
				PieceLength: int64(cfg.Torrent.PieceLengthKiB) << 10,
				Private:     cfg.Torrent.Private || private,
				Comment:     cfg.Torrent.Comment,
			}
			if len(trackers) > 0 {
				opts.Trackers = trackers
			}
			if cmd.Flags().Changed("comment") {
				opts.Comment = comment
			}

			t, err := torrent.Build(paths, opts)
			if err != nil {
				return withExitCode(exitFailure, err)
			}
			target := strings.TrimSpace(output)
			if target == "" {
				target = filepath.Join(cfg.Paths.WorkDir, textutil.SanitizeFileName(t.Name)+".torrent")
			}
			if err := t.WriteFile(target); err != nil {
				return withExitCode(exitFailure, err)
			}
			hash, err := t.InfoHash()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			files := len(t.Files)
			if files == 0 {
				files = 1
			}
			fmt.Fprintf(out, "Wrote %s\n", target)
			fmt.Fprintf(out, "Name:       %s\n", t.Name)
			fmt.Fprintf(out, "Files:      %d\n", files)
			fmt.Fprintf(out, "Piece size: %d KiB (%d pieces)\n", t.PieceLength>>10, len(t.Pieces)/20)
			fmt.Fprintf(out, "Info hash:  %s\n", hash)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination .torrent path (default work_dir/<name>.torrent)")
	cmd.Flags().StringVar(&name, "name", "", "Torrent name (default file or directory name)")
	cmd.Flags().StringSliceVarP(&trackers, "tracker", "t", nil, "Announce URL; repeat for more (default torrent.trackers)")
	cmd.Flags().StringVar(&comment, "comment", "", "Comment (default torrent.comment)")
	cmd.Flags().BoolVar(&private, "private", false, "Mark the torrent private")
	return cmd
}
