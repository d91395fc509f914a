package fs

import (
	"encoding/json"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ pflag.Value = (*Role)(nil)

func TestRoleSet(t *testing.T) {
	for _, test := range []struct {
		in   string
		want Role
		err  bool
	}{
		{"reader", RoleReader, false},
		{" Commenter ", RoleCommenter, false},
		{"WRITER", RoleWriter, false},
		{"", RoleNone, false},
		{"none", RoleNone, false},
		{"off", RoleNone, false},
		{"owner", RoleNone, true},
	} {
		r := RoleReader
		err := r.Set(test.in)
		if test.err {
			assert.Error(t, err, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, r, test.in)
	}
}

func TestRoleUnmarshalJSON(t *testing.T) {
	var r Role
	require.NoError(t, json.Unmarshal([]byte(`"writer"`), &r))
	assert.Equal(t, RoleWriter, r)
	assert.Error(t, json.Unmarshal([]byte(`"organizer"`), &r))
	assert.Error(t, json.Unmarshal([]byte(`3`), &r))
}

func TestClonePolicy(t *testing.T) {
	p := NewClonePolicy()
	assert.Equal(t, DefaultPlaceholder, p.PlaceholderToken)
	assert.False(t, p.Substituting())
	require.NoError(t, p.Validate())

	p.SubstitutionValue = "Jan"
	assert.True(t, p.Substituting())

	p.AnyoneRole = "owner"
	assert.Error(t, p.Validate())
	p.AnyoneRole = RoleCommenter
	assert.NoError(t, p.Validate())

	p = &ClonePolicy{SubstitutionValue: "Jan"}
	assert.False(t, p.Substituting())
	assert.Error(t, p.Validate())
	p = &ClonePolicy{RootNameTemplate: "Fixed"}
	assert.Error(t, p.Validate())
	p = &ClonePolicy{}
	assert.NoError(t, p.Validate())
}
