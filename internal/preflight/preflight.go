package preflight

import (
	"context"

	"muxsystem/internal/config"
	"muxsystem/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunAll executes the checks that apply to a run.
func RunAll(ctx context.Context, cfg *config.Config, dryRun bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryReadable("Subtitle directory", cfg.Paths.SubtitleDir)}
	if dryRun {
		return results
	}

	results = append(results,
		CheckDirectoryReadable("Premux directory", cfg.Paths.PremuxDir),
		CheckDirectoryReadable("Audio directory", cfg.Paths.AudioDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckFreeSpace("Output free space", cfg.Paths.OutputDir, uint64(cfg.Preflight.MinFreeGiB)<<30),
	)
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, fromStatus(status))
	}
	if cfg.TMDBEnabled() {
		results = append(results, CheckTMDB(ctx, cfg.TMDB.BaseURL, cfg.TMDB.APIKey))
	}
	return results
}

// CheckSystemDeps evaluates the external binaries a mux run calls.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "mkvmerge",
			Command:     cfg.Mkvmerge.Binary,
			Description: "Required for muxing episodes",
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "ffprobe",
			Command:     cfg.Mkvmerge.FFprobeBinary,
			Description: "Used to pre-fill release templates from muxed files",
			Optional:    true,
			VersionArgs: []string{"-version"},
		},
	})
}

func fromStatus(status deps.Status) Result {
	detail := status.Detail
	if status.Available {
		detail = status.Command
		if status.Version != "" {
			detail = status.Version
		}
	}
	return Result{
		Name:     status.Name,
		Passed:   status.Available,
		Optional: status.Optional,
		Detail:   detail,
	}
}
