package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_IsPublic(t *testing.T) {
	assert.True(t, (&User{}).IsPublic(), "missing visibility is public")
	assert.True(t, (&User{ProfileVisibility: VisibilityPublic}).IsPublic())
	assert.False(t, (&User{ProfileVisibility: VisibilityPrivate}).IsPublic())
}

func TestUser_IsAdmin(t *testing.T) {
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}

func TestPreferenceVector_Add(t *testing.T) {
	a := PreferenceVector{CrimeThriller: 1, Horror: 2, Fantasy: 3, Philosophy: 4}
	b := PreferenceVector{CrimeThriller: 10, Fantasy: 1}

	assert.Equal(t, PreferenceVector{CrimeThriller: 11, Horror: 2, Fantasy: 4, Philosophy: 4}, a.Add(b))
}
