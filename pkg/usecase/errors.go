package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidTopic = errors.New("invalid topic")

	// Generation errors
	ErrGenerationExhausted = errors.New("no conformant guide after all attempts")

	// Video job errors
	ErrSubmissionFailed = errors.New("video job submission failed")
	ErrProcessingFailed = errors.New("video job processing failed")
	ErrPollTimeout      = errors.New("video job did not finish in time")
	ErrVideoDisabled    = errors.New("video summarization is not configured")
)

// Context keys for error values
const (
	TopicKey      = "topic"
	TopicIndexKey = "topic_index"
	AttemptsKey   = "attempts"
	UserIDKey     = "user_id"
	SessionIDKey  = "session_id"
	JobIDKey      = "job_id"
	SourceURLKey  = "source_url"
)
