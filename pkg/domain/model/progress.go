package model

import "time"

// Progress is the completion flag of one guide day for one user
type Progress struct {
	UserID    string
	Topic     string
	Day       int
	Completed bool
	UpdatedAt time.Time
}
