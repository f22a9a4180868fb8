package runstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/change-detect/m3c2eval/internal/m3c2"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun() *Run {
	return &Run{
		Label:         "pylon-2024",
		ReferencePath: "ref.xyz",
		OtherPath:     "cmp.xyz",
		Params:        map[string]string{"NormalScale": "0.4"},
		Summary: &m3c2.Summary{
			Columns: []string{"Distance"},
			Stats: map[string]*m3c2.AttributeStats{
				"Distance": {Mean: 0.25, Median: 0.25, StdDev: 0.1},
				"Slope":    nil,
			},
			PctBothNaN:      12.5,
			PctReferenceNaN: 1.25,
		},
	}
}

func TestInsertAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.InsertRun(ctx, sampleRun())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetRun(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "pylon-2024", got.Label)
	assert.Equal(t, "ref.xyz", got.ReferencePath)
	assert.Equal(t, "cmp.xyz", got.OtherPath)
	assert.Equal(t, "0.4", got.Params["NormalScale"])

	require.NotNil(t, got.Summary)
	assert.Equal(t, 12.5, got.Summary.PctBothNaN)
	require.NotNil(t, got.Summary.Stats["Distance"])
	assert.Equal(t, 0.25, got.Summary.Stats["Distance"].Mean)

	// A nil stats entry means "too few values" and must survive the
	// JSON round trip as nil, not as zeroes.
	st, ok := got.Summary.Stats["Slope"]
	assert.True(t, ok)
	assert.Nil(t, st)

	assert.False(t, got.CreatedAt.IsZero())
}

func TestInsertRunKeepsExplicitID(t *testing.T) {
	s := openTestStore(t)
	run := sampleRun()
	run.ID = "fixed-id"

	id, err := s.InsertRun(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "nope")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, label := range []string{"a", "b", "c"} {
		run := sampleRun()
		run.Label = label
		_, err := s.InsertRun(ctx, run)
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	runs, err = s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)

	id, err := s.InsertRun(context.Background(), sampleRun())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening applies no further migrations and keeps the data.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	_, err = s2.GetRun(context.Background(), id)
	require.NoError(t, err)
}
