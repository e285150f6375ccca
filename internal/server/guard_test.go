package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRoute(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		loggedIn bool
		want     RouteDecision
	}{
		{"login while logged out", PathLogin, false, DecisionRender},
		{"login while logged in", PathLogin, true, DecisionRedirectDashboard},
		{"dashboard while logged in", PathDashboard, true, DecisionRender},
		{"dashboard while logged out", PathDashboard, false, DecisionRedirectLogin},
		{"ticker while logged in", PathTicker, true, DecisionRender},
		{"ticker while logged out", PathTicker, false, DecisionRedirectLogin},
		{"root logged out", "/", false, DecisionRedirectLogin},
		{"root logged in", "/", true, DecisionRedirectLogin},
		{"unknown path logged out", "/no-such-view", false, DecisionRedirectLogin},
		{"unknown path logged in", "/no-such-view", true, DecisionRedirectLogin},
		{"empty path", "", false, DecisionRedirectLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRoute(tt.path, tt.loggedIn))
		})
	}
}

func TestResolveRouteTotality(t *testing.T) {
	paths := []string{PathLogin, PathDashboard, PathTicker, "/", "/health", "/x", ""}

	for _, path := range paths {
		for _, loggedIn := range []bool{true, false} {
			got := ResolveRoute(path, loggedIn)
			assert.Contains(t,
				[]RouteDecision{DecisionRender, DecisionRedirectLogin, DecisionRedirectDashboard},
				got, "path=%q loggedIn=%v", path, loggedIn)
		}
	}
}
