package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
)

// gollemClient implements Client on top of a gollem LLM client
type gollemClient struct {
	llmClient gollem.LLMClient
	timeout   time.Duration
}

// Option is a functional option for client configuration
type Option func(*gollemClient)

// WithTimeout sets the default per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *gollemClient) {
		c.timeout = d
	}
}

// New creates a Client with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (Client, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &gollemClient{
		llmClient: llmClient,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *gollemClient) Generate(ctx context.Context, req *Request) (string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	history, input, err := renderRequest(req)
	if err != nil {
		return "", err
	}

	var opts []gollem.SessionOption
	if req.Schema != nil {
		opts = append(opts,
			gollem.WithSessionContentType(gollem.ContentTypeJSON),
			gollem.WithSessionResponseSchema(req.Schema),
		)
	}
	if history != nil {
		opts = append(opts, gollem.WithSessionHistory(history))
	}

	// A fresh session per call so no history leaks between requests
	session, err := c.llmClient.NewSession(ctx, opts...)
	if err != nil {
		return "", classify(ctx, err, "failed to create LLM session")
	}

	started := time.Now()
	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(input)})
	if err != nil {
		return "", classify(ctx, err, "failed to generate content from LLM")
	}

	logging.From(ctx).Debug("generated content",
		"structured", req.Schema != nil,
		"turns", len(req.Transcript),
		"elapsed", time.Since(started),
	)

	return strings.Join(resp.Texts, ""), nil
}

// classify maps a failed call to ErrEngineTimeout or ErrEngineUnavailable. Cancellation
// by the caller is returned as is.
func classify(ctx context.Context, err error, msg string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return goerr.Wrap(ErrEngineTimeout, msg, goerr.V("error", err.Error()))
	case errors.Is(err, context.Canceled):
		return goerr.Wrap(err, msg)
	default:
		return goerr.Wrap(ErrEngineUnavailable, msg, goerr.V("error", err.Error()))
	}
}

// renderRequest turns the transcript into role-structured history and returns the final
// user input. A leading system turn is replayed as the opening user message so the
// history always starts with the user. Without a prompt, the last transcript turn must
// be the user's and becomes the input.
func renderRequest(req *Request) (*gollem.History, string, error) {
	turns := req.Transcript
	input := req.Prompt
	if input == "" {
		if len(turns) == 0 || turns[len(turns)-1].Role != types.RoleUser {
			return nil, "", goerr.New("request has no user input", goerr.V("turns", len(turns)))
		}
		input = turns[len(turns)-1].Content
		turns = turns[:len(turns)-1]
	}

	if len(turns) == 0 {
		return nil, input, nil
	}

	history := &gollem.History{Version: gollem.HistoryVersion}
	for _, t := range turns {
		role := gollem.RoleUser
		if t.Role == types.RoleAssistant {
			role = gollem.RoleAssistant
		}
		content, err := gollem.NewTextContent(t.Content)
		if err != nil {
			return nil, "", goerr.Wrap(err, "failed to encode transcript turn", goerr.V("role", t.Role))
		}
		history.Messages = append(history.Messages, gollem.Message{
			Role:     role,
			Contents: []gollem.MessageContent{content},
		})
	}

	return history, input, nil
}
