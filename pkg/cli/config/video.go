package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/service/video"
	"github.com/secmon-lab/guidebook/pkg/usecase"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Video holds configuration for remote video summarization. It stays disabled until
// a staging bucket is given.
type Video struct {
	bucket          string
	objectPrefix    string
	languageCode    string
	ytdlpPath       string
	workDir         string
	downloadTimeout time.Duration
	pollInterval    time.Duration
	maxChecks       int
}

// Flags returns CLI flags for video configuration
func (v *Video) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "video-bucket",
			Usage:       "Cloud Storage bucket to stage videos in (enables video summarization)",
			Category:    "Video",
			Sources:     cli.EnvVars("GUIDEBOOK_VIDEO_BUCKET"),
			Destination: &v.bucket,
		},
		&cli.StringFlag{
			Name:        "video-object-prefix",
			Usage:       "Object name prefix for staged videos",
			Value:       "staging/",
			Category:    "Video",
			Sources:     cli.EnvVars("GUIDEBOOK_VIDEO_OBJECT_PREFIX"),
			Destination: &v.objectPrefix,
		},
		&cli.StringFlag{
			Name:        "video-language",
			Usage:       "Speech language code for transcription",
			Value:       "en-US",
			Category:    "Video",
			Sources:     cli.EnvVars("GUIDEBOOK_VIDEO_LANGUAGE"),
			Destination: &v.languageCode,
		},
		&cli.StringFlag{
			Name:        "ytdlp-path",
			Usage:       "Path or name of the yt-dlp binary",
			Value:       "yt-dlp",
			Category:    "Video",
			Sources:     cli.EnvVars("GUIDEBOOK_YTDLP_PATH"),
			Destination: &v.ytdlpPath,
		},
		&cli.StringFlag{
			Name:        "video-work-dir",
			Usage:       "Directory for downloaded videos (default: system temp dir)",
			Category:    "Video",
			Sources:     cli.EnvVars("GUIDEBOOK_VIDEO_WORK_DIR"),
			Destination: &v.workDir,
		},
		&cli.DurationFlag{
			Name:        "video-download-timeout",
			Usage:       "Timeout of one video download",
			Value:       5 * time.Minute,
			Category:    "Video",
			Sources:     cli.EnvVars("GUIDEBOOK_VIDEO_DOWNLOAD_TIMEOUT"),
			Destination: &v.downloadTimeout,
		},
		&cli.DurationFlag{
			Name:        "video-poll-interval",
			Usage:       "Wait before each job status check",
			Value:       usecase.DefaultPollInterval,
			Category:    "Video",
			Sources:     cli.EnvVars("GUIDEBOOK_VIDEO_POLL_INTERVAL"),
			Destination: &v.pollInterval,
		},
		&cli.IntFlag{
			Name:        "video-max-checks",
			Usage:       "Status checks before a job is reported as timed out",
			Value:       usecase.DefaultMaxChecks,
			Category:    "Video",
			Sources:     cli.EnvVars("GUIDEBOOK_VIDEO_MAX_CHECKS"),
			Destination: &v.maxChecks,
		},
	}
}

// IsEnabled reports whether a staging bucket is configured
func (v *Video) IsEnabled() bool {
	return v.bucket != ""
}

// LogAttrs returns log attributes for the video configuration
func (v *Video) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("bucket", v.bucket),
		slog.String("object_prefix", v.objectPrefix),
		slog.String("language", v.languageCode),
		slog.String("ytdlp_path", v.ytdlpPath),
		slog.Duration("poll_interval", v.pollInterval),
		slog.Int("max_checks", v.maxChecks),
	}
}

// Configure returns the use case option that enables video summarization and a
// closer for the cloud clients. It returns a nil option when no bucket is set.
func (v *Video) Configure(ctx context.Context) (usecase.Option, func(), error) {
	if !v.IsEnabled() {
		return nil, func() {}, nil
	}
	if v.maxChecks < 1 {
		return nil, nil, goerr.Wrap(ErrInvalidConfig, "video-max-checks must be positive",
			goerr.V(OptionKey, "video-max-checks"), goerr.V("value", v.maxChecks))
	}

	stager, err := video.NewYTDLP(
		video.WithBinary(v.ytdlpPath),
		video.WithWorkDir(v.workDir),
		video.WithDownloadTimeout(v.downloadTimeout),
	)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to set up video downloader")
	}

	api, err := video.NewGCP(ctx, v.bucket,
		video.WithObjectPrefix(v.objectPrefix),
		video.WithLanguageCode(v.languageCode),
	)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to set up video job api")
	}

	closer := func() {
		if err := api.Close(); err != nil {
			logging.Default().Error("failed to close video clients", "error", err)
		}
	}

	opt := usecase.WithVideo(stager, api,
		usecase.WithPollInterval(v.pollInterval),
		usecase.WithMaxChecks(v.maxChecks),
	)
	return opt, closer, nil
}
