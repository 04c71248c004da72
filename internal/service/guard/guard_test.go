package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/barnmonitor/internal/domain/models"
	"github.com/mamadbah2/barnmonitor/internal/session"
)

type brokenStore struct{ session.MemoryStore }

func (*brokenStore) Get() (*models.Session, error) { return nil, errors.New("disk unreadable") }

func TestCanEnter(t *testing.T) {
	assert.False(t, CanEnter(nil))
	assert.False(t, CanEnter(&models.Session{User: models.Farmer{ID: 7}}))
	assert.True(t, CanEnter(&models.Session{Token: "tok"}))
}

func TestCheck(t *testing.T) {
	store := session.NewMemoryStore()
	g := New(store)

	for _, path := range []string{"/", "/login", "/signup/", "healthz"} {
		redirect, ok := g.Check(path)
		assert.True(t, ok, path)
		assert.Empty(t, redirect)
	}

	redirect, ok := g.Check("/dashboard")
	assert.False(t, ok)
	assert.Equal(t, LoginPath, redirect)

	require.NoError(t, store.Set(models.Session{User: models.Farmer{ID: 7}, Token: "tok"}))
	redirect, ok = g.Check("/dashboard")
	assert.True(t, ok)
	assert.Empty(t, redirect)

	require.NoError(t, store.Clear())
	_, ok = g.Check("/api/sales")
	assert.False(t, ok)
}

func TestCheckCustomPublicPaths(t *testing.T) {
	g := New(session.NewMemoryStore(), "/status")
	assert.True(t, g.IsPublic("/status"))
	assert.False(t, g.IsPublic("/login"))
}

func TestCheckFailsClosed(t *testing.T) {
	g := New(&brokenStore{})
	redirect, ok := g.Check("/dashboard")
	assert.False(t, ok)
	assert.Equal(t, LoginPath, redirect)
}

func TestCheckCleansDotSegments(t *testing.T) {
	g := New(session.NewMemoryStore())

	assert.True(t, g.IsPublic("/api/../login"))
	assert.True(t, g.IsPublic("//signup/./"))

	for _, path := range []string{"/login/../api/sales", "/./dashboard", "/healthz/../api/profile"} {
		redirect, ok := g.Check(path)
		assert.False(t, ok, path)
		assert.Equal(t, LoginPath, redirect, path)
	}
}
