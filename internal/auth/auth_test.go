package auth

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidandcat/tracker/internal/db"
)

func TestPasswordHash(t *testing.T) {
	h1, err := HashPassword("hunter2")
	require.NoError(t, err)
	h2, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "salted")
	assert.True(t, strings.HasPrefix(h1, "$2a$"), h1)
	assert.NotContains(t, h1, "hunter2")
	assert.True(t, CheckPassword(h1, "hunter2"))
	assert.False(t, CheckPassword(h1, "hunter3"))
	assert.False(t, CheckPassword("", "hunter2"))
	assert.False(t, CheckPassword("not-a-hash", ""))
}

func TestPasswordHashRejectsOverlongPasswords(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", MaxPasswordLen+1))
	assert.Error(t, err)

	h, err := HashPassword(strings.Repeat("x", MaxPasswordLen))
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, strings.Repeat("x", MaxPasswordLen)))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, BearerToken(r), tt.header)
	}
}

func TestCurrentUserFromContext(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Nil(t, CurrentUser(r))

	u := &db.User{ID: 7, Name: "Seven"}
	r = r.WithContext(WithUser(r.Context(), u))
	assert.Same(t, u, CurrentUser(r))
}
