package authflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafeReturnPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/profile", true},
		{"/matches/42?tab=photos", true},
		{"/", true},
		{"//evil.example/phish", false},
		{"https://evil.example", false},
		{"javascript:alert(1)", false},
		{"profile", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSafeReturnPath(tt.path), "path %q", tt.path)
	}
}

func TestNavigationTarget(t *testing.T) {
	assert.Equal(t, DashboardPath, NavigationTarget(true, "/matches/42"))
	assert.Equal(t, "/matches/42", NavigationTarget(false, "/matches/42"))
	assert.Equal(t, DefaultLandingPath, NavigationTarget(false, "//evil.example"))
	assert.Equal(t, DefaultLandingPath, NavigationTarget(false, ""))
}
