package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rescale/rescale-analyses/internal/models"
)

type staticOverride map[string]bool

func (s staticOverride) CanActFor(user, owner, action string) bool {
	return s[user+"|"+owner+"|"+action]
}

func running(id, owner string) models.Analysis {
	return models.Analysis{
		ID:              id,
		Status:          models.StatusRunning,
		InteractiveURLs: []string{"https://" + id + ".cyverse.run"},
		Owner:           owner,
		Batch:           true,
	}
}

func TestAllowRelaunch(t *testing.T) {
	enabled := models.Analysis{ID: "a"}
	disabled := models.Analysis{ID: "b", AppDisabled: true}

	assert.True(t, AllowRelaunch([]models.Analysis{enabled, enabled, enabled}), "all enabled")
	assert.False(t, AllowRelaunch([]models.Analysis{enabled, disabled, enabled}), "one disabled")
	assert.False(t, AllowRelaunch([]models.Analysis{disabled}), "single disabled")
	assert.False(t, AllowRelaunch(nil), "empty selection")
}

func TestAllowDelete(t *testing.T) {
	tests := []struct {
		name      string
		selection []models.Analysis
		user      string
		want      bool
	}{
		{
			name:      "realm stripped on both sides",
			selection: []models.Analysis{{Owner: "alice@REALM"}, {Owner: "alice"}},
			user:      "alice",
			want:      true,
		},
		{
			name:      "foreign single",
			selection: []models.Analysis{{Owner: "bob"}},
			user:      "alice",
			want:      false,
		},
		{
			name:      "one foreign member denies all",
			selection: []models.Analysis{{Owner: "alice"}, {Owner: "bob"}, {Owner: "alice"}},
			user:      "alice",
			want:      false,
		},
		{
			name:      "missing owner denies",
			selection: []models.Analysis{{Owner: ""}},
			user:      "alice",
			want:      false,
		},
		{
			name:      "empty selection",
			selection: nil,
			user:      "alice",
			want:      false,
		},
		{
			name:      "empty user",
			selection: []models.Analysis{{Owner: "alice"}},
			user:      "",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowDelete(tt.selection, tt.user, nil))
		})
	}
}

func TestAllowDeleteWithOverride(t *testing.T) {
	selection := []models.Analysis{{Owner: "alice"}, {Owner: "bob"}}
	override := staticOverride{"alice|bob|delete": true}

	assert.True(t, AllowDelete(selection, "alice", override))
	assert.False(t, AllowDelete(selection, "carol", override), "override only covers alice")
	assert.False(t, AllowDelete(nil, "alice", override), "override never enables an empty selection")
}

func TestEvaluateSingle(t *testing.T) {
	flags := Evaluate([]models.Analysis{running("a1", "alice")}, "alice", Options{})

	assert.Equal(t, SelectionFlags{
		Count:              1,
		IsInteractive:      true,
		IsBatch:            true,
		AllowTimeExtension: true,
		AllowRelaunch:      true,
		AllowDelete:        true,
	}, flags)
}

func TestEvaluateMultiForcesSingleOnlyFlagsOff(t *testing.T) {
	selection := []models.Analysis{running("a1", "alice"), running("a2", "alice"), running("a3", "alice")}

	flags := Evaluate(selection, "alice", Options{})

	assert.Equal(t, 3, flags.Count)
	assert.False(t, flags.IsInteractive)
	assert.False(t, flags.IsBatch)
	assert.False(t, flags.AllowTimeExtension)
	assert.True(t, flags.AllowRelaunch)
	assert.True(t, flags.AllowDelete)
}

func TestEvaluateEmpty(t *testing.T) {
	assert.Equal(t, SelectionFlags{}, Evaluate(nil, "alice", Options{}))
}

func TestEvaluateOverrideDoesNotGrantTimeExtension(t *testing.T) {
	override := staticOverride{"carol|alice|delete": true}

	flags := Evaluate([]models.Analysis{running("a1", "alice")}, "carol", Options{Override: override})

	assert.True(t, flags.AllowDelete)
	assert.False(t, flags.AllowTimeExtension)
}
