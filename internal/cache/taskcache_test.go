package cache

import (
	"testing"
	"time"

	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/stretchr/testify/require"
)

func TestTaskCacheRoundTrip(t *testing.T) {
	tc := NewTaskCache(4, time.Second)
	_, _, ok := tc.Lookup(1, event.Exec)
	require.False(t, ok)

	tc.Insert(1, event.Exec, Allow)
	v, _, ok := tc.Lookup(1, event.Exec)
	require.True(t, ok)
	require.Equal(t, Allow, v)

	// A different kind for the same tid is a distinct key.
	_, _, ok = tc.Lookup(1, event.Open)
	require.False(t, ok)
}

func TestInodeCacheRoundTrip(t *testing.T) {
	ic := NewInodeCache(4, time.Second)
	ic.Insert(1, 0xdead, event.Open, Deny)

	v, _, ok := ic.Lookup(1, 0xdead, event.Open)
	require.True(t, ok)
	require.Equal(t, Deny, v)

	// A different inode is a distinct key even for the same task/kind.
	_, _, ok = ic.Lookup(1, 0xbeef, event.Open)
	require.False(t, ok)
}

func TestTaskCacheFlush(t *testing.T) {
	tc := NewTaskCache(4, time.Second)
	tc.Insert(1, event.Exec, Allow)
	require.Equal(t, 1, tc.Len())
	tc.Flush()
	require.Equal(t, 0, tc.Len())
}
