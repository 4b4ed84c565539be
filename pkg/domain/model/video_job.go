package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
)

// VideoJobID is the local identifier of a video processing job
type VideoJobID string

// NewVideoJobID returns a fresh time-ordered job id
func NewVideoJobID() VideoJobID {
	return VideoJobID(uuid.Must(uuid.NewV7()).String())
}

// VideoJob tracks one external video annotation job from submission to a terminal state.
type VideoJob struct {
	ID        VideoJobID
	SourceURL string

	// ExternalRef is the operation name assigned by the external service
	ExternalRef string

	// StagedPath is the local downloaded file, StagedObject the uploaded copy
	StagedPath   string
	StagedObject string

	State          types.JobState
	AttemptsPolled int
	CreatedAt      time.Time
	FinishedAt     time.Time
}

// NewVideoJob returns a job in the Submitted state
func NewVideoJob(sourceURL string, now time.Time) *VideoJob {
	return &VideoJob{
		ID:        NewVideoJobID(),
		SourceURL: sourceURL,
		State:     types.JobStateSubmitted,
		CreatedAt: now,
	}
}

// Transition moves the job to next. Terminal states are final and any change out of
// them is rejected with ErrJobFinalized.
func (j *VideoJob) Transition(next types.JobState, now time.Time) error {
	if !next.IsValid() {
		return goerr.New("invalid job state", goerr.V(JobStateKey, next))
	}
	if j.State.IsTerminal() {
		return goerr.Wrap(ErrJobFinalized, "job already finished",
			goerr.V(JobStateKey, j.State),
			goerr.V("next", next),
			goerr.V("job_id", j.ID),
		)
	}

	j.State = next
	if next.IsTerminal() {
		j.FinishedAt = now
	}
	return nil
}

// IsDone reports whether the job reached a terminal state
func (j *VideoJob) IsDone() bool {
	return j.State.IsTerminal()
}

// JobResult is the extracted content of a finished video job
type JobResult struct {
	JobID       VideoJobID
	Transcripts []string
	Labels      []string
	Texts       []string
}

// IsEmpty reports whether the job produced nothing usable
func (r *JobResult) IsEmpty() bool {
	return len(r.Transcripts) == 0 && len(r.Labels) == 0 && len(r.Texts) == 0
}
