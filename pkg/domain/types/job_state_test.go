package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
)

func TestJobState_IsTerminal(t *testing.T) {
	tests := []struct {
		state types.JobState
		want  bool
	}{
		{types.JobStateSubmitted, false},
		{types.JobStateProcessing, false},
		{types.JobStateReady, true},
		{types.JobStateFailed, true},
		{types.JobStateTimedOut, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			gt.Value(t, tt.state.IsTerminal()).Equal(tt.want)
		})
	}
}

func TestParseJobState(t *testing.T) {
	for _, s := range types.AllJobStates() {
		parsed, err := types.ParseJobState(s.String())
		gt.NoError(t, err)
		gt.Value(t, parsed).Equal(s)
	}

	_, err := types.ParseJobState("DONE")
	gt.Error(t, err)
}
