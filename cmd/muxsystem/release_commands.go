package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"muxsystem/internal/fileutil"
	"muxsystem/internal/media/audio"
	"muxsystem/internal/media/ffprobe"
	"muxsystem/internal/release"
)

func newReleaseCommand(ctx *commandContext) *cobra.Command {
	releaseCmd := &cobra.Command{
		Use:   "release",
		Short: "Create and check release metadata templates",
	}

	releaseCmd.AddCommand(newReleaseInitCommand(ctx))
	releaseCmd.AddCommand(newReleaseValidateCommand())
	releaseCmd.AddCommand(newReleaseShowCommand())

	return releaseCmd
}

func newReleaseInitCommand(ctx *commandContext) *cobra.Command {
	var (
		from       string
		audioFiles []string
		output     string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a release metadata template",
		Long: "Write a release metadata template. With --from, the video, audio and subtitle\n" +
			"sections are prefilled from ffprobe output of a muxed file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var probe ffprobe.Result
			if path := strings.TrimSpace(from); path != "" {
				probe, err = ffprobe.Inspect(cmd.Context(), cfg.Mkvmerge.FFprobeBinary, path)
				if err != nil {
					return withExitCode(exitFailure, err)
				}
			}
			infos := make([]audio.Info, 0, len(audioFiles))
			for _, path := range audioFiles {
				info, err := audio.Probe(path)
				if err != nil {
					return withExitCode(exitFailure, fmt.Errorf("probe %s: %w", path, err))
				}
				infos = append(infos, info)
			}

			rendered := release.Render(release.FromProbe(cfg, probe, infos))
			target := strings.TrimSpace(output)
			if target == "" || target == "-" {
				fmt.Fprint(cmd.OutOrStdout(), rendered)
				return nil
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return withExitCode(exitFailure, fmt.Errorf("%s already exists (use --overwrite to replace it)", target))
				}
			}
			if err := fileutil.WriteFile(target, []byte(rendered), 0o644); err != nil {
				return withExitCode(exitFailure, fmt.Errorf("write template: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote release template to %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Muxed file to prefill video, audio and subtitle rows from")
	cmd.Flags().StringSliceVar(&audioFiles, "audio", nil, "Source audio files describing the audio tracks")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default stdout)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing template")
	return cmd
}

func newReleaseValidateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "validate FILE",
		Short:       "Check a filled release template",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readReleaseDocument(args[0])
			if err != nil {
				return err
			}
			issues := release.Validate(doc)

			if asJSON {
				if issues == nil {
					issues = []release.Issue{}
				}
				if err := writeJSON(cmd, issues); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				if len(issues) == 0 {
					fmt.Fprintf(out, "%s: template valid\n", args[0])
					return nil
				}
				rows := make([][]string, 0, len(issues))
				for _, issue := range issues {
					row := ""
					if issue.Row > 0 {
						row = strconv.Itoa(issue.Row)
					}
					rows = append(rows, []string{string(issue.Severity), issue.Section, row, issue.Field, issue.Message})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Severity", "Section", "Row", "Field", "Message"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
			}

			if release.HasErrors(issues) {
				return withExitCode(exitFailure, fmt.Errorf("%s has validation errors", args[0]))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print issues as JSON")
	return cmd
}

func newReleaseShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "show FILE",
		Short:       "Print the parsed contents of a release template",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readReleaseDocument(args[0])
			if err != nil {
				return err
			}
			meta, err := doc.Metadata()
			if err != nil {
				return withExitCode(exitFailure, err)
			}
			if asJSON {
				return writeJSON(cmd, meta)
			}
			fmt.Fprint(cmd.OutOrStdout(), release.Render(meta))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print metadata as JSON")
	return cmd
}

func readReleaseDocument(path string) (*release.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, withExitCode(exitFailure, fmt.Errorf("open template: %w", err))
	}
	defer f.Close()
	doc, err := release.ParseDocument(f)
	if err != nil {
		return nil, withExitCode(exitFailure, fmt.Errorf("parse template %s: %w", path, err))
	}
	return doc, nil
}
