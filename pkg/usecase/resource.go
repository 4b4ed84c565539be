package usecase

import (
	"context"
	_ "embed"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
	"github.com/secmon-lab/guidebook/pkg/service/engine"
)

var (
	//go:embed prompt/resource_mentorship.md
	mentorshipPrompt string

	//go:embed prompt/resource_mentor_search.md
	mentorSearchPrompt string

	//go:embed prompt/resource_scholarship.md
	scholarshipPrompt string
)

var resourcePrompts = map[types.ResourceKind]string{
	types.ResourceKindMentorship:   mentorshipPrompt,
	types.ResourceKindMentorSearch: mentorSearchPrompt,
	types.ResourceKindScholarship:  scholarshipPrompt,
}

type ResourceUseCase struct {
	engine engine.Client
}

func NewResourceUseCase(client engine.Client) *ResourceUseCase {
	return &ResourceUseCase{engine: client}
}

// Generate writes a free text resource guide of kind with one generation call
func (uc *ResourceUseCase) Generate(ctx context.Context, kind types.ResourceKind) (string, error) {
	prompt, ok := resourcePrompts[kind]
	if !ok {
		return "", goerr.Wrap(ErrInvalidInput, "unknown resource kind", goerr.V("kind", kind))
	}

	text, err := uc.engine.Generate(ctx, &engine.Request{Prompt: prompt})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate resource guide", goerr.V("kind", kind))
	}
	return text, nil
}
