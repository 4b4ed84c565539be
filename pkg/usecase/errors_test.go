package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/guidebook/pkg/usecase"
)

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	all := []error{
		usecase.ErrInvalidInput,
		usecase.ErrInvalidTopic,
		usecase.ErrGenerationExhausted,
		usecase.ErrSubmissionFailed,
		usecase.ErrProcessingFailed,
		usecase.ErrPollTimeout,
		usecase.ErrVideoDisabled,
	}
	for i, a := range all {
		gt.Value(t, a).NotNil()
		for j, b := range all {
			if i != j {
				gt.Bool(t, errors.Is(a, b)).False()
			}
		}
	}
}
