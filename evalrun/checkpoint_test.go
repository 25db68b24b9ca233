package evalrun

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCheckpoint(t *testing.T) {
	t.Run("new run writes metadata", func(t *testing.T) {
		resultsDir := t.TempDir()

		checkpoint, err := NewRunCheckpoint(resultsDir, "testset.csv", map[string]string{"model": "gpt-4o"})
		require.NoError(t, err)

		assert.NotEmpty(t, checkpoint.RunID())
		assert.Equal(t, filepath.Join(resultsDir, runDirPrefix+checkpoint.RunID()), checkpoint.Dir())

		data, err := os.ReadFile(filepath.Join(checkpoint.Dir(), metadataFileName))
		require.NoError(t, err)
		var metadata RunMetadata
		require.NoError(t, json.Unmarshal(data, &metadata))
		assert.Equal(t, checkpoint.RunID(), metadata.RunID)
		assert.Equal(t, "testset.csv", metadata.TestSetPath)
		assert.Equal(t, "gpt-4o", metadata.Config["model"])
		assert.NotEmpty(t, metadata.Timestamp)
	})

	t.Run("restore reads metadata back", func(t *testing.T) {
		resultsDir := t.TempDir()

		original, err := NewRunCheckpoint(resultsDir, "testset.csv", nil)
		require.NoError(t, err)
		require.NoError(t, original.Store().Append(Result{CaseID: "c1", Question: "q1", Success: true}))

		restored, err := RestoreRunCheckpoint(resultsDir, original.RunID())
		require.NoError(t, err)
		assert.Equal(t, original.RunID(), restored.RunID())
		assert.Equal(t, original.Metadata(), restored.Metadata())

		results, _, err := restored.Store().Load()
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("restore does not rewrite metadata", func(t *testing.T) {
		resultsDir := t.TempDir()

		original, err := NewRunCheckpoint(resultsDir, "testset.csv", nil)
		require.NoError(t, err)

		metadataPath := filepath.Join(original.Dir(), metadataFileName)
		before, err := os.ReadFile(metadataPath)
		require.NoError(t, err)

		_, err = RestoreRunCheckpoint(resultsDir, original.RunID())
		require.NoError(t, err)

		after, err := os.ReadFile(metadataPath)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("restore of unknown run", func(t *testing.T) {
		_, err := RestoreRunCheckpoint(t.TempDir(), "no-such-run")
		assert.True(t, errors.Is(err, ErrRunNotFound))
	})

	t.Run("write summary", func(t *testing.T) {
		checkpoint, err := NewRunCheckpoint(t.TempDir(), "testset.csv", nil)
		require.NoError(t, err)

		require.NoError(t, checkpoint.WriteSummary(Summary{
			RunID:       checkpoint.RunID(),
			Total:       3,
			Successful:  2,
			SuccessRate: 2.0 / 3.0,
		}))

		data, err := os.ReadFile(filepath.Join(checkpoint.Dir(), summaryFileName))
		require.NoError(t, err)
		var summary Summary
		require.NoError(t, json.Unmarshal(data, &summary))
		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 2, summary.Successful)
		assert.InDelta(t, 0.667, summary.SuccessRate, 0.001)
	})
}
