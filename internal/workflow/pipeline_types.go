package workflow

import (
	"errors"
	"fmt"

	"muxsystem/internal/episodes"
	"muxsystem/internal/history"
)

var (
	// ErrSkipped marks an episode whose inputs are incomplete.
	ErrSkipped = errors.New("episode skipped")
	// ErrNoEpisodes is returned when the selection resolves to nothing.
	ErrNoEpisodes = errors.New("no valid episodes specified")
	// ErrNoEpisodesFound is returned when "all" finds no subtitle scripts.
	ErrNoEpisodesFound = errors.New("no valid episodes found in subtitle directory")
	// ErrLocked is returned when another run holds the work directory lock.
	ErrLocked = errors.New("another mux run is using the work directory")
	// ErrPreflight wraps failed preflight checks.
	ErrPreflight = errors.New("preflight checks failed")
)

// SkipError explains why an episode was skipped.
type SkipError struct {
	Episode int
	Reason  string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("Skipping episode %s: %s", episodes.Format(e.Episode), e.Reason)
}

func (e *SkipError) Unwrap() error { return ErrSkipped }

// Request selects what a run processes.
type Request struct {
	Episodes  episodes.Selection
	DryRun    bool
	OutputDir string // empty uses paths.output_dir
	Flag      string // empty uses naming.flag
	Version   int    // zero uses naming.version
}

// Outcome is the result of one episode.
type Outcome struct {
	Episode    int            `json:"episode"`
	Status     history.Status `json:"status"`
	OutputPath string         `json:"output_path,omitempty"`
	CRC32      string         `json:"crc32,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Chapters   int            `json:"chapters"`
	Fonts      int            `json:"fonts"`
	Missing    []string       `json:"missing_fonts,omitempty"`
}

// Summary reports a finished run.
type Summary struct {
	RunID     string    `json:"run_id"`
	DryRun    bool      `json:"dry_run"`
	Requested []int     `json:"requested"`
	Processed int       `json:"processed"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Succeeded reports whether at least one episode was processed.
func (s Summary) Succeeded() bool { return s.Processed > 0 }
