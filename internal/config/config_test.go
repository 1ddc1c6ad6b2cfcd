package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManagerSnapshotReturnsInitial(t *testing.T) {
	m := NewManager(Default())
	snap := m.Snapshot()
	require.True(t, snap.StallMode)
	require.Equal(t, ^uint64(0), snap.EnabledHooks)
}

func TestManagerUpdateClampsStallTimeout(t *testing.T) {
	m := NewManager(Default())
	snap := m.Update(func(c *Config) {
		c.StallTimeout = time.Millisecond // below MinWait
	})
	require.Equal(t, MinWait, snap.StallTimeout)

	snap = m.Update(func(c *Config) {
		c.StallTimeout = time.Hour // above MaxWait
	})
	require.Equal(t, MaxWait, snap.StallTimeout)
}

func TestManagerUpdateClampsContinueTimeoutFloor(t *testing.T) {
	m := NewManager(Default())
	snap := m.Update(func(c *Config) {
		c.StallTimeout = 500 * time.Millisecond
		c.ContinueTimeout = 10 * time.Millisecond // below stall timeout
	})
	require.Equal(t, snap.StallTimeout, snap.ContinueTimeout)
}

func TestManagerUpdateClampsContinueTimeoutCeiling(t *testing.T) {
	m := NewManager(Default())
	snap := m.Update(func(c *Config) {
		c.ContinueTimeout = time.Hour // above MaxExtended
	})
	require.Equal(t, MaxExtended, snap.ContinueTimeout)
}

func TestManagerFlushesOnStallModeTransition(t *testing.T) {
	m := NewManager(Default())
	flushed := false
	m.OnStallModeFlush(func(next Config) {
		flushed = true
		require.False(t, next.StallMode)
	})

	m.Update(func(c *Config) { c.StallMode = false })
	require.True(t, flushed)
}

func TestManagerDoesNotFlushWhenStallModeUnchanged(t *testing.T) {
	m := NewManager(Default())
	flushed := false
	m.OnStallModeFlush(func(Config) { flushed = true })

	m.Update(func(c *Config) { c.DenyOnTimeout = true })
	require.False(t, flushed)
}
