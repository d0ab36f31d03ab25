package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistorySqlite(t *testing.T) {
	h, err := NewHistorySqlite(":memory:")
	require.NoError(t, err)
	defer h.Close()

	first := &JobRecord{JobId: "job-1", Image: "cat.png", Slicer: "Simple",
		Config: `{"slicer":{}}`, Status: "started", CreateTime: 100}
	second := &JobRecord{JobId: "job-2", Image: "dog.png", Slicer: "NyanTile",
		DryRun: true, Status: "started", CreateTime: 200}
	require.NoError(t, h.Record(first))
	require.NoError(t, h.Record(second))

	got, err := h.Get("job-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "dog.png", got.Image)
	assert.True(t, got.DryRun)
	assert.Equal(t, int64(200), got.CreateTime)

	require.NoError(t, h.UpdateStatus("job-1", "aborted", "stopped by operator"))
	got, err = h.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, "aborted", got.Status)
	assert.Equal(t, "stopped by operator", got.Message)
	assert.Equal(t, `{"slicer":{}}`, got.Config)
	assert.False(t, got.DryRun)

	jobs, err := h.List(0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-2", jobs[0].JobId)
	assert.Equal(t, "job-1", jobs[1].JobId)

	jobs, err = h.List(1)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	missing, err := h.Get("nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
