package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/guidebook/pkg/service/engine"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the Gemini generation engine
type Gemini struct {
	projectID string
	location  string
	timeout   time.Duration
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "Gemini",
			Sources:     cli.EnvVars("GUIDEBOOK_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Category:    "Gemini",
			Sources:     cli.EnvVars("GUIDEBOOK_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.DurationFlag{
			Name:        "gemini-timeout",
			Usage:       "Default timeout of one generation call",
			Value:       engine.DefaultTimeout,
			Category:    "Gemini",
			Sources:     cli.EnvVars("GUIDEBOOK_GEMINI_TIMEOUT"),
			Destination: &g.timeout,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
		slog.Duration("timeout", g.timeout),
	}
}

// Configure creates the generation engine from the configured flags.
// Returns nil if projectID is not configured (generation features answer unavailable).
func (g *Gemini) Configure(ctx context.Context) (engine.Client, error) {
	if g.projectID == "" {
		return nil, nil
	}

	llm, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	client, err := engine.New(llm, engine.WithTimeout(g.timeout))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create generation engine")
	}
	return client, nil
}
