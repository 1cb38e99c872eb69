package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileComplete(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{
			name: "complete profile",
			user: User{FirstName: "Jane", LastName: "Doe", PasswordHash: "hash"},
			want: true,
		},
		{
			name: "invited account with nothing set",
			user: User{Email: "jane@example.com"},
			want: false,
		},
		{
			name: "missing password",
			user: User{FirstName: "Jane", LastName: "Doe"},
			want: false,
		},
		{
			name: "missing last name",
			user: User{FirstName: "Jane", PasswordHash: "hash"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.ProfileComplete())
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range ValidRoles() {
		assert.True(t, IsValidRole(role), role)
	}

	assert.False(t, IsValidRole("owner"))
	assert.False(t, IsValidRole("Admin"), "roles are case sensitive")
	assert.False(t, IsValidRole(""))
}
