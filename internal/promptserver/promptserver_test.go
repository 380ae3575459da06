package promptserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPrompt_ReturnsContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orchestrator.md"), []byte("you are a coach"), 0o644))

	s := New(dir)
	content, tErr := s.readPrompt("orchestrator.md")
	require.Nil(t, tErr)
	assert.Equal(t, "you are a coach", content)
}

func TestReadPrompt_RejectsPathTraversal(t *testing.T) {
	s := New(t.TempDir())
	_, tErr := s.readPrompt("../../etc/passwd")
	require.NotNil(t, tErr)
	assert.Equal(t, CodeInvalidFilename, tErr.Code)
}

func TestReadPrompt_RejectsSlash(t *testing.T) {
	s := New(t.TempDir())
	_, tErr := s.readPrompt("sub/dir.md")
	require.NotNil(t, tErr)
	assert.Equal(t, CodeInvalidFilename, tErr.Code)
}

func TestReadPrompt_MissingFileReportsNotFound(t *testing.T) {
	s := New(t.TempDir())
	_, tErr := s.readPrompt("missing.md")
	require.NotNil(t, tErr)
	assert.Equal(t, CodeFileNotFound, tErr.Code)
}
