package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	for _, bad := range []string{"", "Admin", "owner", "superuser"} {
		_, err := ParseRole(bad)
		assert.Error(t, err, bad)
	}
}

func TestRoleJSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{RoleStoreOwner})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"store_owner"}`, string(payload))

	var decoded struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"user"}`), &decoded))
	assert.Equal(t, RoleUser, decoded.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"role":"root"}`), &decoded))

	_, err = json.Marshal(struct{ Role Role }{RoleUnknown})
	assert.Error(t, err)
}
