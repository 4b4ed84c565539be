package config

import "time"

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string, timeout time.Duration) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
		timeout:   timeout,
	}
}

func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{
		backend:    backend,
		sqlitePath: sqlitePath,
	}
}

func NewVideoForTest(bucket string, maxChecks int) *Video {
	return &Video{
		bucket:    bucket,
		maxChecks: maxChecks,
	}
}

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

func NewCatalogForTest(path string) *Catalog {
	return &Catalog{path: path}
}
