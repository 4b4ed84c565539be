package video

import (
	"context"

	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
)

// Stager fetches a remote video into local storage
type Stager interface {
	// Download stores the video of sourceURL locally and returns the file path
	Download(ctx context.Context, sourceURL string) (string, error)

	// Remove deletes a path returned by Download
	Remove(ctx context.Context, path string) error
}

// Submission identifies a started external job and the remote copy of its input
type Submission struct {
	ExternalRef  string
	StagedObject string
}

// Status is one observation of an external job
type Status struct {
	State types.ExternalStatus

	// Result is set when State is ready
	Result *model.JobResult

	// Reason describes a failed job
	Reason string
}

// JobAPI starts and observes long running annotation jobs
type JobAPI interface {
	// Submit uploads the local file and starts a job on it
	Submit(ctx context.Context, localPath string) (*Submission, error)

	// Status checks the job once without waiting
	Status(ctx context.Context, externalRef string) (*Status, error)

	// Release deletes the uploaded input. Releasing a missing object is not an error.
	Release(ctx context.Context, stagedObject string) error
}
