package config

const (
	defaultConfigPath       = "~/.config/muxsystem/config.toml"
	projectConfigName       = "muxsystem.toml"
	defaultPremuxDir        = "premux"
	defaultAudioDir         = "audio"
	defaultSubtitleDir      = "subs"
	defaultFontsDir         = "fonts"
	defaultOutputDir        = "muxed"
	defaultWorkDir          = "work"
	defaultLogDir           = "~/.local/share/muxsystem/logs"
	defaultOutName          = "[$flag$] $show$ - $ep$$ver$ (BDRip 1920x1080 HEVC FLAC) [$crc32$]"
	defaultMKVTitle         = "$show$ - $ep$$ver$"
	defaultFlag             = "testing"
	defaultAudioLanguage    = "ja"
	defaultAudioName        = "Japanese"
	defaultSubtitleLanguage = "id"
	defaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL = "https://image.tmdb.org/t/p/original"
	defaultTMDBLanguage     = "en-US"
	defaultTMDBTimeout      = 15
	defaultMkvmergeBinary   = "mkvmerge"
	defaultFFprobeBinary    = "ffprobe"
	defaultPieceLengthKiB   = 0
	defaultMinFreeGiB       = 2
	defaultNotifyTimeout    = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Show: Show{
			Season: 1,
		},
		Paths: Paths{
			PremuxDir:   defaultPremuxDir,
			AudioDir:    defaultAudioDir,
			SubtitleDir: defaultSubtitleDir,
			FontsDir:    defaultFontsDir,
			OutputDir:   defaultOutputDir,
			WorkDir:     defaultWorkDir,
			LogDir:      defaultLogDir,
		},
		Naming: Naming{
			OutName:  defaultOutName,
			MKVTitle: defaultMKVTitle,
			Flag:     defaultFlag,
			Version:  1,
		},
		Tracks: Tracks{
			AudioLanguage:    defaultAudioLanguage,
			AudioName:        defaultAudioName,
			AudioExtensions:  []string{".flac"},
			SubtitleLanguage: defaultSubtitleLanguage,
		},
		Merge: Merge{
			Typesetting:       "$ep$/$show$ - $ep$*TS*.ass",
			Opening:           "$ep$/$show$ - $ep$*OP*.ass",
			Ending:            "$ep$/$show$ - $ep$*ED*.ass",
			OpeningSync:       "opsync",
			EndingSync:        "edsync",
			SourceSync:        "sync",
			Common:            []string{"common/warning.ass"},
			ChaptersFromActor: true,
		},
		TMDB: TMDB{
			BaseURL:        defaultTMDBBaseURL,
			ImageBaseURL:   defaultTMDBImageBaseURL,
			Language:       defaultTMDBLanguage,
			WriteCover:     true,
			TimeoutSeconds: defaultTMDBTimeout,
		},
		Mkvmerge: Mkvmerge{
			Binary:        defaultMkvmergeBinary,
			FFprobeBinary: defaultFFprobeBinary,
			PremuxArgs:    []string{"--no-global-tags", "--no-chapters"},
		},
		Torrent: Torrent{
			PieceLengthKiB: defaultPieceLengthKiB,
		},
		Notify: Notify{
			RequestTimeoutSeconds: defaultNotifyTimeout,
		},
		Preflight: Preflight{
			MinFreeGiB: defaultMinFreeGiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
