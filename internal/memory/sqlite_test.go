package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreAndSummary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	summary, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, EmptySummary, summary)

	require.NoError(t, s.Store(ctx, "first thought"))
	require.NoError(t, s.Store(ctx, "research result"))

	summary, err = s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first thought\nresearch result", summary)
}

func TestSummaryWindow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < SummaryWindow+5; i++ {
		require.NoError(t, s.Store(ctx, fmt.Sprintf("memory %02d", i)))
	}

	recent, err := s.Recent(ctx, SummaryWindow)
	require.NoError(t, err)
	require.Len(t, recent, SummaryWindow)
	// Oldest of the window first, newest last.
	assert.Equal(t, "memory 05", recent[0])
	assert.Equal(t, fmt.Sprintf("memory %02d", SummaryWindow+4), recent[len(recent)-1])

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, SummaryWindow+5, n)
}

func TestCountTagged(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, "Analysis: deep insight"))
	require.NoError(t, s.Store(ctx, "plain memory"))
	require.NoError(t, s.Store(ctx, "Analysis: another insight"))

	n, err := s.CountTagged(ctx, "Analysis: ")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, "ephemeral"))
	require.NoError(t, s.Clear(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	summary, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, EmptySummary, summary)
}

func TestReopenKeepsMemories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memory.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, "durable"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	summary, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "durable", summary)
}
