package types

import "fmt"

// JobState represents the lifecycle state of an external processing job
type JobState string

const (
	JobStateSubmitted  JobState = "SUBMITTED"
	JobStateProcessing JobState = "PROCESSING"
	JobStateReady      JobState = "READY"
	JobStateFailed     JobState = "FAILED"
	JobStateTimedOut   JobState = "TIMED_OUT"
)

// AllJobStates returns all valid job states
func AllJobStates() []JobState {
	return []JobState{
		JobStateSubmitted,
		JobStateProcessing,
		JobStateReady,
		JobStateFailed,
		JobStateTimedOut,
	}
}

// IsValid checks if the job state is valid
func (s JobState) IsValid() bool {
	switch s {
	case JobStateSubmitted,
		JobStateProcessing,
		JobStateReady,
		JobStateFailed,
		JobStateTimedOut:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition may happen from s
func (s JobState) IsTerminal() bool {
	switch s {
	case JobStateReady, JobStateFailed, JobStateTimedOut:
		return true
	default:
		return false
	}
}

// String returns the string representation of the job state
func (s JobState) String() string {
	return string(s)
}

// ParseJobState parses a string into a JobState
func ParseJobState(s string) (JobState, error) {
	state := JobState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid job state: %s", s)
	}
	return state, nil
}

// ExternalStatus is the status reported by an external job API on each check
type ExternalStatus string

const (
	ExternalStatusProcessing ExternalStatus = "processing"
	ExternalStatusReady      ExternalStatus = "ready"
	ExternalStatusFailed     ExternalStatus = "failed"
)
