package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studycal/internal/auth"
	"studycal/internal/model"
	"studycal/internal/session"
	"studycal/internal/slot"
)

func TestEvaluate(t *testing.T) {
	id := &model.Identity{ID: "u1", Email: "a@b.com", Name: "Ada"}

	tests := []struct {
		name string
		st   session.State
		want Decision
	}{
		{"still loading", session.State{}, Placeholder},
		{"loading with stale identity", session.State{Identity: id}, Placeholder},
		{"loaded, logged out", session.State{Loaded: true}, RedirectToLogin},
		{"loaded, logged in", session.State{Loaded: true, Identity: id}, Render},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.st))
		})
	}
}

func TestWatch_ReEvaluatesOnEverySessionChange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]string{"id": "u1", "email": "a@b.com", "name": "Ada"},
		})
	}))
	defer server.Close()

	store := session.New(slot.NewMemory(), auth.NewClient(server.URL, time.Second))

	var decisions []Decision
	Watch(store, func(d Decision) { decisions = append(decisions, d) })

	store.Load()
	_, err := store.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	store.Logout()

	// Initial snapshot, load completing, login, logout.
	require.Len(t, decisions, 4)
	assert.Equal(t, Placeholder, decisions[0])
	assert.Equal(t, RedirectToLogin, decisions[1])
	assert.Equal(t, Render, decisions[2])
	assert.Equal(t, RedirectToLogin, decisions[3], "a protected view redirects after logout")
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "placeholder", Placeholder.String())
	assert.Equal(t, "redirect-to-login", RedirectToLogin.String())
}
