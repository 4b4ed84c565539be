package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
)

// maxGenerationAttempts bounds the validated retry loop
const maxGenerationAttempts = 5

// retryValidated calls generate until parse accepts its output, at most maxAttempts
// times. A parse rejection discards the attempt and is only logged. An error from
// generate itself ends the loop at once. It returns the accepted value and the number
// of attempts made.
func retryValidated[T any](
	ctx context.Context,
	maxAttempts int,
	generate func(ctx context.Context) (string, error),
	parse func(raw string) (T, error),
) (T, int, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, attempt - 1, goerr.Wrap(err, "generation canceled", goerr.V(AttemptsKey, attempt-1))
		}

		raw, err := generate(ctx)
		if err != nil {
			return zero, attempt, goerr.Wrap(err, "generation failed", goerr.V(AttemptsKey, attempt))
		}

		v, err := parse(raw)
		if err == nil {
			return v, attempt, nil
		}

		lastErr = err
		logging.From(ctx).Warn("discarding non-conformant generation",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err,
			"raw", raw,
		)
	}

	var lastMsg string
	if lastErr != nil {
		lastMsg = lastErr.Error()
	}
	return zero, maxAttempts, goerr.Wrap(ErrGenerationExhausted, "generation attempts exhausted",
		goerr.V(AttemptsKey, maxAttempts),
		goerr.V("last_error", lastMsg),
	)
}
