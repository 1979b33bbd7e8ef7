// AngelaMos | 2026
// access_test.go

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsFor(t *testing.T) {
	tests := []struct {
		role Role
		want []string
	}{
		{RoleGuest, []string{"view"}},
		{RoleUser, []string{"view", "vote", "post", "comment"}},
		{RoleAdmin, []string{"view", "vote", "post", "comment", "moderate", "delete"}},
		{Role("root"), []string{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, PermissionsFor(tt.role).Names())
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("superuser")
	require.Error(t, err)
	assert.False(t, Role("superuser").Valid())
}

func TestActorCanModify(t *testing.T) {
	author := Actor{UserID: "u1", Role: RoleUser}
	other := Actor{UserID: "u2", Role: RoleUser}
	admin := Actor{UserID: "u3", Role: RoleAdmin}

	assert.True(t, author.CanModify("u1"))
	assert.False(t, other.CanModify("u1"))
	assert.True(t, admin.CanModify("u1"))
	assert.False(t, Actor{Role: RoleGuest}.Can(PermVote))
}
