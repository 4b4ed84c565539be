package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
	"github.com/secmon-lab/guidebook/pkg/service/video"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultMaxChecks    = 10
)

// JobPoller drives one video job from staging to a terminal state
type JobPoller struct {
	stager    video.Stager
	api       video.JobAPI
	interval  time.Duration
	maxChecks int
	now       func() time.Time
}

type PollerOption func(*JobPoller)

// WithPollInterval sets the wait before each status check
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *JobPoller) {
		p.interval = d
	}
}

// WithMaxChecks sets the number of status checks before giving up
func WithMaxChecks(n int) PollerOption {
	return func(p *JobPoller) {
		p.maxChecks = n
	}
}

func NewJobPoller(stager video.Stager, api video.JobAPI, opts ...PollerOption) *JobPoller {
	p := &JobPoller{
		stager:    stager,
		api:       api,
		interval:  DefaultPollInterval,
		maxChecks: DefaultMaxChecks,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxChecks < 1 {
		p.maxChecks = 1
	}
	return p
}

// Run stages sourceURL, submits it and polls until the job is ready, failed or out of
// checks. Staged input is released on every return path.
func (p *JobPoller) Run(ctx context.Context, sourceURL string) (*model.JobResult, error) {
	_, result, err := p.run(ctx, sourceURL)
	return result, err
}

func (p *JobPoller) run(ctx context.Context, sourceURL string) (*model.VideoJob, *model.JobResult, error) {
	job := model.NewVideoJob(sourceURL, p.now())
	logger := logging.From(ctx).With("job_id", job.ID, "source_url", sourceURL)
	// Cleanup must still run after the caller cancels
	cleanupCtx := context.WithoutCancel(ctx)

	path, err := p.stager.Download(ctx, sourceURL)
	if err != nil {
		p.finish(ctx, job, types.JobStateFailed)
		return job, nil, goerr.Wrap(ErrSubmissionFailed, "failed to stage video",
			goerr.V(JobIDKey, job.ID),
			goerr.V(SourceURLKey, sourceURL),
			goerr.V("error", err.Error()),
		)
	}
	job.StagedPath = path
	defer func() {
		if err := p.stager.Remove(cleanupCtx, job.StagedPath); err != nil {
			logger.Warn("failed to remove staged file", "path", job.StagedPath, "error", err)
		}
	}()

	sub, err := p.api.Submit(ctx, path)
	if err != nil {
		p.finish(ctx, job, types.JobStateFailed)
		return job, nil, goerr.Wrap(ErrSubmissionFailed, "failed to submit video job",
			goerr.V(JobIDKey, job.ID),
			goerr.V(SourceURLKey, sourceURL),
			goerr.V("error", err.Error()),
		)
	}
	job.ExternalRef = sub.ExternalRef
	job.StagedObject = sub.StagedObject
	defer func() {
		if err := p.api.Release(cleanupCtx, job.StagedObject); err != nil {
			logger.Warn("failed to release staged object", "object", job.StagedObject, "error", err)
		}
	}()

	if err := job.Transition(types.JobStateProcessing, p.now()); err != nil {
		return job, nil, err
	}
	logger.Info("video job submitted", "external_ref", job.ExternalRef)

	for job.AttemptsPolled < p.maxChecks {
		if err := wait(ctx, p.interval); err != nil {
			return job, nil, goerr.Wrap(err, "video job polling canceled",
				goerr.V(JobIDKey, job.ID),
				goerr.V(AttemptsKey, job.AttemptsPolled),
			)
		}

		status, err := p.api.Status(ctx, job.ExternalRef)
		job.AttemptsPolled++
		if err != nil && ctx.Err() != nil {
			return job, nil, goerr.Wrap(ctx.Err(), "video job polling canceled",
				goerr.V(JobIDKey, job.ID),
				goerr.V(AttemptsKey, job.AttemptsPolled),
			)
		}
		if err != nil {
			p.finish(ctx, job, types.JobStateFailed)
			return job, nil, goerr.Wrap(ErrProcessingFailed, "failed to check video job",
				goerr.V(JobIDKey, job.ID),
				goerr.V(AttemptsKey, job.AttemptsPolled),
				goerr.V("error", err.Error()),
			)
		}

		switch status.State {
		case types.ExternalStatusProcessing:
			logger.Debug("video job still processing", "checks", job.AttemptsPolled)
			continue

		case types.ExternalStatusReady:
			p.finish(ctx, job, types.JobStateReady)
			result := status.Result
			if result == nil {
				result = &model.JobResult{}
			}
			result.JobID = job.ID
			logger.Info("video job ready", "checks", job.AttemptsPolled)
			return job, result, nil

		case types.ExternalStatusFailed:
			p.finish(ctx, job, types.JobStateFailed)
			return job, nil, goerr.Wrap(ErrProcessingFailed, "video job failed",
				goerr.V(JobIDKey, job.ID),
				goerr.V(AttemptsKey, job.AttemptsPolled),
				goerr.V("reason", status.Reason),
			)

		default:
			p.finish(ctx, job, types.JobStateFailed)
			return job, nil, goerr.Wrap(ErrProcessingFailed, "unknown video job status",
				goerr.V(JobIDKey, job.ID),
				goerr.V("status", status.State),
			)
		}
	}

	p.finish(ctx, job, types.JobStateTimedOut)
	return job, nil, goerr.Wrap(ErrPollTimeout, "video job still processing after last check",
		goerr.V(JobIDKey, job.ID),
		goerr.V(AttemptsKey, job.AttemptsPolled),
		goerr.V("interval", p.interval.String()),
	)
}

func (p *JobPoller) finish(ctx context.Context, job *model.VideoJob, state types.JobState) {
	if err := job.Transition(state, p.now()); err != nil {
		logging.From(ctx).Error("invalid job transition", "job_id", job.ID, "error", err)
	}
}

// wait blocks for d or until ctx is done
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
