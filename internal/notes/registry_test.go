package notes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noteboard/internal/session"
)

func TestRegistryMountAndGet(t *testing.T) {
	f := newFixture(t)
	reg := NewRegistry(f.svc, time.Hour, discardLogger())

	v := reg.Mount(f.sess)
	require.NotEmpty(t, v.ID)
	assert.Equal(t, 1, reg.Len())

	got, ok := reg.Get(v.ID, f.sess)
	require.True(t, ok)
	assert.Same(t, v, got)

	_, ok = reg.Get(v.ID, session.Session{Token: "other"})
	assert.False(t, ok, "a view is only reachable with the token it was mounted with")

	_, ok = reg.Get("", f.sess)
	assert.False(t, ok)

	other := reg.Mount(f.sess)
	assert.NotEqual(t, v.ID, other.ID)
}

func TestRegistryUnmountSession(t *testing.T) {
	f := newFixture(t)
	reg := NewRegistry(f.svc, time.Hour, discardLogger())

	reg.Mount(f.sess)
	reg.Mount(f.sess)
	kept := reg.Mount(session.Session{Token: "T2"})

	assert.Equal(t, 2, reg.UnmountSession(f.sess))
	assert.Equal(t, 1, reg.Len())

	reg.Unmount(kept.ID)
	assert.Zero(t, reg.Len())
}

func TestRegistrySweepDropsIdleViews(t *testing.T) {
	f := newFixture(t)
	reg := NewRegistry(f.svc, time.Minute, discardLogger())

	v := reg.Mount(f.sess)

	assert.Zero(t, reg.Sweep(time.Now()))
	assert.Equal(t, 1, reg.Sweep(time.Now().Add(2*time.Minute)))

	_, ok := reg.Get(v.ID, f.sess)
	assert.False(t, ok)
}

func TestRegistrySweepDisabled(t *testing.T) {
	f := newFixture(t)
	reg := NewRegistry(f.svc, 0, discardLogger())

	reg.Mount(f.sess)
	assert.Zero(t, reg.Sweep(time.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, reg.Len())
}
