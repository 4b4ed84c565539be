package usecase

import (
	"context"

	"github.com/secmon-lab/guidebook/pkg/domain/model"
)

// RetryValidated is exported for testing
func RetryValidated(
	ctx context.Context,
	maxAttempts int,
	generate func(ctx context.Context) (string, error),
	parse func(raw string) (string, error),
) (string, int, error) {
	return retryValidated(ctx, maxAttempts, generate, parse)
}

// MaxGenerationAttempts is exported for testing
const MaxGenerationAttempts = maxGenerationAttempts

// RunJob returns the job state next to the result
func (p *JobPoller) RunJob(ctx context.Context, sourceURL string) (*model.VideoJob, *model.JobResult, error) {
	return p.run(ctx, sourceURL)
}
