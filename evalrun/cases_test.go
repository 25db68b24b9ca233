package evalrun

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestSet(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "testset.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCases(t *testing.T) {
	t.Run("loads questions in order", func(t *testing.T) {
		path := writeTestSet(t, "question,true_answer,metadata\n"+
			`what is go,a language,"{""topic"": ""programming""}"`+"\n"+
			"who made it,google,\n")

		cases, err := LoadCases(path)
		require.NoError(t, err)
		require.Len(t, cases, 2)

		assert.Equal(t, "what is go", cases[0].Question)
		assert.Equal(t, "a language", cases[0].TrueAnswer)
		assert.Equal(t, 0, cases[0].OriginalIndex)
		assert.Equal(t, "programming", cases[0].Metadata["topic"])

		assert.Equal(t, "who made it", cases[1].Question)
		assert.Equal(t, 1, cases[1].OriginalIndex)
		assert.Empty(t, cases[1].Metadata)
	})

	t.Run("case IDs are stable across reloads", func(t *testing.T) {
		path := writeTestSet(t, "question,true_answer\nwhat is go,a language\n")

		first, err := LoadCases(path)
		require.NoError(t, err)
		second, err := LoadCases(path)
		require.NoError(t, err)
		assert.Equal(t, first[0].ID, second[0].ID)
	})

	t.Run("repairs single quoted metadata", func(t *testing.T) {
		path := writeTestSet(t, "question,true_answer,metadata\n"+
			`q,a,"{'topic': 'history'}"`+"\n")

		cases, err := LoadCases(path)
		require.NoError(t, err)
		assert.Equal(t, "history", cases[0].Metadata["topic"])
	})

	t.Run("unparseable metadata degrades to empty", func(t *testing.T) {
		path := writeTestSet(t, "question,true_answer,metadata\nq,a,not json at all\n")

		cases, err := LoadCases(path)
		require.NoError(t, err)
		assert.NotNil(t, cases[0].Metadata)
		assert.Empty(t, cases[0].Metadata)
	})

	t.Run("missing question column", func(t *testing.T) {
		path := writeTestSet(t, "prompt,true_answer\nq,a\n")

		_, err := LoadCases(path)
		assert.True(t, errors.Is(err, ErrMissingColumn))
	})

	t.Run("missing true_answer column", func(t *testing.T) {
		path := writeTestSet(t, "question,answer\nq,a\n")

		_, err := LoadCases(path)
		assert.True(t, errors.Is(err, ErrMissingColumn))
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeTestSet(t, "")

		_, err := LoadCases(path)
		assert.True(t, errors.Is(err, ErrEmptyTestSet))
	})

	t.Run("header only is zero cases", func(t *testing.T) {
		path := writeTestSet(t, "question,true_answer\n")

		cases, err := LoadCases(path)
		require.NoError(t, err)
		assert.Empty(t, cases)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCases(filepath.Join(t.TempDir(), "nope.csv"))
		assert.Error(t, err)
	})
}
