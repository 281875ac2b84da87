package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banner_agent/design"
	"banner_agent/generator"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(id string, created time.Time) generator.Result {
	dir := generator.DefaultCreativeDirection()
	return generator.Result{
		RunID:      id,
		CreatedAt:  created,
		Request:    "Ad for fresh strawberries",
		Canvas:     design.DefaultCanvas,
		Direction:  dir,
		Background: generator.DefaultBackground(dir),
		Layout:     generator.DefaultLayout(design.DefaultCanvas, dir),
		Iterations: []generator.Turn{
			{
				Iteration: 1,
				Feedback: design.Feedback{Issues: []design.Issue{
					{Element: "headline", Action: "resize", Parameters: map[string]any{"font_size": 48.0}},
				}},
				Outcomes:  []design.IssueOutcome{{Applied: true, Changed: []string{"font_size"}}},
				CreatedAt: created,
			},
			{Iteration: 2, Feedback: design.Feedback{Approved: true}, CreatedAt: created},
		},
		Approved:   true,
		StopReason: generator.StopApproved,
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := testResult("run-a", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, s.SaveRun(ctx, want))
	got, err := s.GetRun(ctx, "run-a")
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("archived run mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRunReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	res := testResult("run-a", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveRun(ctx, res))

	res.Iterations = res.Iterations[:1]
	res.Approved = false
	res.StopReason = generator.StopMaxIterations
	require.NoError(t, s.SaveRun(ctx, res))

	got, err := s.GetRun(ctx, "run-a")
	require.NoError(t, err)
	assert.Len(t, got.Iterations, 1)
	assert.False(t, got.Approved)

	list, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Iterations)
	assert.Equal(t, generator.StopMaxIterations, list[0].StopReason)
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.SaveRun(context.Background(), generator.Result{}))
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, s.SaveRun(ctx, testResult(id, base.Add(time.Duration(i)*time.Hour))))
	}

	list, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, base.Add(2*time.Hour), list[0].CreatedAt)
	assert.True(t, list[0].Approved)
	assert.Equal(t, 2, list[0].Iterations)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
