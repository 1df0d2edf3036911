package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePolicyIsAdmin(t *testing.T) {
	policy := NewRolePolicy("admin")

	assert.True(t, policy.IsAdmin(Actor{ID: "u1", Role: "admin"}))
	assert.False(t, policy.IsAdmin(Actor{ID: "u1", Role: "customer"}))
	assert.False(t, policy.IsAdmin(Actor{ID: "u1"}))
}

func TestRolePolicyRejectsAnonymousAdminRole(t *testing.T) {
	policy := NewRolePolicy("admin")

	// An empty identity must never pass, whatever the role claim says.
	assert.False(t, policy.IsAdmin(Actor{Role: "admin"}))
}
