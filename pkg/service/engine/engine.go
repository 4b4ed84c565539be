package engine

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
)

var (
	// ErrEngineUnavailable is returned when the engine cannot be reached or rejects the call
	ErrEngineUnavailable = goerr.New("generation engine unavailable")

	// ErrEngineTimeout is returned when a call exceeds its deadline
	ErrEngineTimeout = goerr.New("generation engine timed out")
)

// DefaultTimeout bounds a single generate call when the request does not set one
const DefaultTimeout = 2 * time.Minute

// Request is one generate call. It is built per attempt and not modified afterwards.
type Request struct {
	// Prompt is appended after the transcript as the final user input. It may be empty
	// when the transcript already ends with the user turn.
	Prompt string

	// Schema is the expected JSON shape. Nil means free text.
	Schema *gollem.Parameter

	// Transcript is replayed in order as role-structured history. A leading system turn
	// opens the history as a user message.
	Transcript []model.Turn

	Timeout time.Duration
}

// Client issues exactly one generate call per Generate. It holds no state between calls
// and never retries.
type Client interface {
	Generate(ctx context.Context, req *Request) (string, error)
}

type unavailable struct{}

// Unavailable returns a Client that fails every call with ErrEngineUnavailable. It is
// used when no engine is configured.
func Unavailable() Client {
	return unavailable{}
}

func (unavailable) Generate(ctx context.Context, req *Request) (string, error) {
	return "", goerr.Wrap(ErrEngineUnavailable, "no generation engine configured")
}
