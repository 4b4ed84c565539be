package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrMalformedGuide    = goerr.New("guide document is not valid JSON")
	ErrMissingGuideKey   = goerr.New("guide document has no guide key")
	ErrInvalidEntryCount = goerr.New("guide does not have the required number of days")
	ErrInvalidDay        = goerr.New("guide day is out of range or duplicated")
	ErrEmptyTitle        = goerr.New("guide day has no title")
	ErrEmptyApproaches   = goerr.New("guide day has no approaches")
	ErrRoleOrder         = goerr.New("conversation turn violates role order")
	ErrJobFinalized      = goerr.New("job is already in a terminal state")
)

// Context keys for error values
const (
	DayKey        = "day"
	EntryCountKey = "entry_count"
	RoleKey       = "role"
	JobStateKey   = "job_state"
)
