package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"net/url"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/service/engine"
)

//go:embed prompt/video_summary.md
var videoSummaryPromptTmpl string

var videoSummaryPrompt = template.Must(template.New("video_summary").Parse(videoSummaryPromptTmpl))

// summaryTimeout bounds the single summary generation call
const summaryTimeout = 10 * time.Minute

type VideoUseCase struct {
	poller *JobPoller
	engine engine.Client
}

// NewVideoUseCase creates the use case. A nil poller disables video summarization.
func NewVideoUseCase(poller *JobPoller, client engine.Client) *VideoUseCase {
	return &VideoUseCase{
		poller: poller,
		engine: client,
	}
}

// SummarizeRemoteVideo processes the video at sourceURL and makes exactly one
// generation call on what was extracted. The generation is not retried.
func (uc *VideoUseCase) SummarizeRemoteVideo(ctx context.Context, sourceURL string) (string, error) {
	if err := validateSourceURL(sourceURL); err != nil {
		return "", err
	}
	if uc.poller == nil {
		return "", goerr.Wrap(ErrVideoDisabled, "no video job backend configured")
	}

	result, err := uc.poller.Run(ctx, sourceURL)
	if err != nil {
		return "", err
	}
	if result.IsEmpty() {
		return "", goerr.Wrap(ErrProcessingFailed, "video job extracted no content",
			goerr.V(JobIDKey, result.JobID),
			goerr.V(SourceURLKey, sourceURL),
		)
	}

	var buf bytes.Buffer
	if err := videoSummaryPrompt.Execute(&buf, result); err != nil {
		return "", goerr.Wrap(err, "failed to render summary prompt")
	}

	summary, err := uc.engine.Generate(ctx, &engine.Request{
		Prompt:  buf.String(),
		Timeout: summaryTimeout,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to summarize video", goerr.V(JobIDKey, result.JobID))
	}
	return summary, nil
}

func validateSourceURL(sourceURL string) error {
	if sourceURL == "" {
		return goerr.Wrap(ErrInvalidInput, "url is required")
	}
	u, err := url.Parse(sourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return goerr.Wrap(ErrInvalidInput, "url must be an absolute http(s) url", goerr.V(SourceURLKey, sourceURL))
	}
	return nil
}
