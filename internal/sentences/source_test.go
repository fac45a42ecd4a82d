package sentences

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeSentenceFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "processed_sentences.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPreservesOrderAndTrims(t *testing.T) {
	path := writeSentenceFile(t, "  first sentence  \nsecond sentence\n\n   \nthird sentence\n")

	source, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"first sentence", "second sentence", "third sentence"}, source.All())
	assert.Equal(t, 3, source.Len())
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeSentenceFile(t, "\n\n")

	source, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, source.Len())
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preprocessing")
}
