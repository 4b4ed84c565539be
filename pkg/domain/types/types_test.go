package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Role
		wantErr bool
	}{
		{"system", "system", types.RoleSystem, false},
		{"user", "user", types.RoleUser, false},
		{"assistant", "assistant", types.RoleAssistant, false},
		{"model is not a role", "model", "", true},
		{"case sensitive", "User", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseRole(tt.input)
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestResourceKind(t *testing.T) {
	for _, k := range types.AllResourceKinds() {
		t.Run(k.String(), func(t *testing.T) {
			gt.Bool(t, k.IsValid()).True()
			parsed, err := types.ParseResourceKind(k.String())
			gt.NoError(t, err).Required()
			gt.Value(t, parsed).Equal(k)
		})
	}

	_, err := types.ParseResourceKind("recipes")
	gt.Value(t, err).NotNil()
	gt.Bool(t, types.ResourceKind("").IsValid()).False()
}
