package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/aigit/internal/filesystem"
)

func TestOSFileSystemRewritePreservesMode(testInstance *testing.T) {
	filePath := filepath.Join(testInstance.TempDir(), "script.sh")
	require.NoError(testInstance, os.WriteFile(filePath, []byte("echo one\n"), 0o700))

	fileSystem := filesystem.OSFileSystem{}
	require.NoError(testInstance, fileSystem.WriteFile(filePath, []byte("echo two\n"), 0o644))

	content, readError := fileSystem.ReadFile(filePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "echo two\n", string(content))

	fileInfo, statError := fileSystem.Stat(filePath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(0o700), fileInfo.Mode().Perm())
}
