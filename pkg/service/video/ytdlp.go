package video

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
	"github.com/secmon-lab/guidebook/pkg/utils/safe"
)

// YTDLP downloads videos with the yt-dlp command
type YTDLP struct {
	binary  string
	workDir string
	timeout time.Duration
}

var _ Stager = &YTDLP{}

// YTDLPOption is a functional option for YTDLP
type YTDLPOption func(*YTDLP)

// WithBinary sets the yt-dlp executable path
func WithBinary(path string) YTDLPOption {
	return func(y *YTDLP) {
		y.binary = path
	}
}

// WithWorkDir sets the parent directory of per-download temp dirs
func WithWorkDir(dir string) YTDLPOption {
	return func(y *YTDLP) {
		y.workDir = dir
	}
}

// WithDownloadTimeout bounds a single download
func WithDownloadTimeout(d time.Duration) YTDLPOption {
	return func(y *YTDLP) {
		y.timeout = d
	}
}

// NewYTDLP creates a Stager. The binary must be resolvable.
func NewYTDLP(opts ...YTDLPOption) (*YTDLP, error) {
	y := &YTDLP{
		binary:  "yt-dlp",
		workDir: os.TempDir(),
		timeout: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(y)
	}

	if _, err := exec.LookPath(y.binary); err != nil {
		return nil, goerr.Wrap(err, "yt-dlp binary not found", goerr.V("binary", y.binary))
	}
	return y, nil
}

// Download runs yt-dlp into a fresh temp dir. The returned path is inside that dir and
// Remove deletes the whole dir.
func (y *YTDLP) Download(ctx context.Context, sourceURL string) (string, error) {
	if sourceURL == "" {
		return "", goerr.New("source url is empty")
	}

	if err := os.MkdirAll(y.workDir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create work dir", goerr.V("dir", y.workDir))
	}
	dir, err := os.MkdirTemp(y.workDir, "guidebook-video-*")
	if err != nil {
		return "", goerr.Wrap(err, "failed to create temp dir")
	}

	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, y.binary,
		"--no-playlist",
		"--quiet",
		"-f", "mp4/best",
		"-o", filepath.Join(dir, "video.%(ext)s"),
		sourceURL,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		safe.RemoveAll(ctx, dir)
		return "", goerr.Wrap(err, "yt-dlp failed",
			goerr.V("url", sourceURL),
			goerr.V("output", strings.TrimSpace(string(out))),
		)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "video.*"))
	if err != nil || len(matches) == 0 {
		safe.RemoveAll(ctx, dir)
		return "", goerr.New("yt-dlp produced no file", goerr.V("url", sourceURL), goerr.V("dir", dir))
	}

	logging.From(ctx).Info("downloaded video", "url", sourceURL, "path", matches[0])
	return matches[0], nil
}

// Remove deletes the temp dir that holds path
func (y *YTDLP) Remove(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if !strings.HasPrefix(filepath.Base(dir), "guidebook-video-") {
		return goerr.New("refusing to remove path outside a download dir", goerr.V("path", path))
	}
	if err := os.RemoveAll(dir); err != nil {
		return goerr.Wrap(err, "failed to remove download dir", goerr.V("dir", dir))
	}
	return nil
}
