package authz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescale/rescale-analyses/internal/models"
)

func TestPolicyOverrideGrant(t *testing.T) {
	override, err := NewPolicyOverride(nil)
	require.NoError(t, err)

	require.NoError(t, override.Grant("admins", "*", ActionDelete))
	require.NoError(t, override.AssignRole("carol@iplantcollaborative.org", "admins"))
	require.NoError(t, override.Grant("dave", "bob", ActionDelete))

	assert.True(t, override.CanActFor("carol", "bob", ActionDelete), "role grants any owner")
	assert.True(t, override.CanActFor("carol@REALM", "erin@REALM", ActionDelete), "realms are stripped")
	assert.True(t, override.CanActFor("dave", "bob", ActionDelete))
	assert.False(t, override.CanActFor("dave", "erin", ActionDelete), "dave only covers bob")
	assert.False(t, override.CanActFor("carol", "bob", "relaunch"), "action must match")
	assert.False(t, override.CanActFor("", "bob", ActionDelete))
	assert.False(t, override.CanActFor("carol", "", ActionDelete))
}

func TestLoadPolicyOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "admins.csv")
	policy := "p, admins, *, delete\ng, carol, admins\n"
	require.NoError(t, os.WriteFile(path, []byte(policy), 0600))

	override, err := LoadPolicyOverride(path, nil)
	require.NoError(t, err)

	selection := []models.Analysis{{Owner: "alice"}, {Owner: "bob"}}
	assert.True(t, AllowDelete(selection, "carol", override))
	assert.False(t, AllowDelete(selection, "alice", override))
}

func TestPolicyOverrideRealmQualifiedOwner(t *testing.T) {
	override, err := NewPolicyOverride(nil)
	require.NoError(t, err)
	require.NoError(t, override.Grant("carol", "bob@iplantcollaborative.org", ActionDelete))

	selection := []models.Analysis{{Owner: "bob@iplantcollaborative.org"}}
	assert.True(t, AllowDelete(selection, "carol", override))
	assert.True(t, override.CanActFor("carol", "bob", ActionDelete))
	assert.False(t, override.CanActFor("carol", "erin@iplantcollaborative.org", ActionDelete))
}

func TestLoadPolicyOverrideRealmQualified(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admins.csv")
	policy := "p, dave@iplantcollaborative.org, bob@iplantcollaborative.org, delete\n"
	require.NoError(t, os.WriteFile(path, []byte(policy), 0600))

	override, err := LoadPolicyOverride(path, nil)
	require.NoError(t, err)

	assert.True(t, AllowDelete([]models.Analysis{{Owner: "bob@iplantcollaborative.org"}}, "dave", override))
	assert.True(t, AllowDelete([]models.Analysis{{Owner: "bob"}}, "dave@iplantcollaborative.org", override))
	assert.False(t, AllowDelete([]models.Analysis{{Owner: "erin"}}, "dave", override))
}

func TestLoadPolicyOverrideMissingFile(t *testing.T) {
	_, err := LoadPolicyOverride(filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
}
