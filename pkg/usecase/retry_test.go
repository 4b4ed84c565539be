package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/guidebook/pkg/usecase"
)

func parseNonEmpty(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("empty")
	}
	return raw, nil
}

func TestRetryValidated(t *testing.T) {
	ctx := context.Background()

	t.Run("first conformant output stops the loop", func(t *testing.T) {
		outputs := []string{"", " ", "value", "never"}
		calls := 0
		v, attempts, err := usecase.RetryValidated(ctx, 5,
			func(ctx context.Context) (string, error) {
				calls++
				return outputs[calls-1], nil
			},
			parseNonEmpty,
		)
		gt.NoError(t, err).Required()
		gt.Value(t, v).Equal("value")
		gt.Value(t, attempts).Equal(3)
		gt.Value(t, calls).Equal(3)
	})

	t.Run("exhaustion after exactly max attempts", func(t *testing.T) {
		calls := 0
		_, attempts, err := usecase.RetryValidated(ctx, 5,
			func(ctx context.Context) (string, error) {
				calls++
				return "", nil
			},
			parseNonEmpty,
		)
		gt.Error(t, err).Is(usecase.ErrGenerationExhausted)
		gt.Value(t, attempts).Equal(5)
		gt.Value(t, calls).Equal(5)
	})

	t.Run("generate error is not retried", func(t *testing.T) {
		boom := errors.New("unreachable")
		calls := 0
		_, attempts, err := usecase.RetryValidated(ctx, 5,
			func(ctx context.Context) (string, error) {
				calls++
				return "", boom
			},
			parseNonEmpty,
		)
		gt.Error(t, err).Is(boom)
		gt.Value(t, attempts).Equal(1)
		gt.Value(t, calls).Equal(1)
	})

	t.Run("canceled context stops before next attempt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, attempts, err := usecase.RetryValidated(ctx, 5,
			func(ctx context.Context) (string, error) {
				calls++
				cancel()
				return "", nil
			},
			parseNonEmpty,
		)
		gt.Error(t, err).Is(context.Canceled)
		gt.Value(t, calls).Equal(1)
		gt.Value(t, attempts).Equal(1)
	})
}
