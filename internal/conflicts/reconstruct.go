package conflicts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/aigit/internal/shared"
)

const (
	fileSystemMissingMessageConstant = "conflict file writer requires a file system"
	statFileErrorTemplateConstant    = "failed to inspect %s: %w"
	readFileErrorTemplateConstant    = "failed to read %s: %w"
	writeFileErrorTemplateConstant   = "failed to write %s: %w"
)

// ErrFileSystemNotConfigured indicates a file operation without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// Reconstruct alternates the untouched spans of lines with the resolutions, which must be in ascending block order.
// Text outside the blocks is reproduced byte for byte.
func Reconstruct(lines []string, resolvedBlocks []ResolvedBlock) string {
	var builder strings.Builder
	cursor := 0
	for _, resolvedBlock := range resolvedBlocks {
		for ; cursor < resolvedBlock.Block.StartLine; cursor++ {
			builder.WriteString(lines[cursor])
		}
		builder.WriteString(resolvedBlock.Resolution)
		cursor = resolvedBlock.Block.EndLine + 1
	}
	for ; cursor < len(lines); cursor++ {
		builder.WriteString(lines[cursor])
	}
	return builder.String()
}

// ReadFile loads the file content as text.
func ReadFile(fileSystem shared.FileSystem, filePath string) (string, error) {
	if fileSystem == nil {
		return "", ErrFileSystemNotConfigured
	}
	contents, readError := fileSystem.ReadFile(filePath)
	if readError != nil {
		return "", fmt.Errorf(readFileErrorTemplateConstant, filePath, readError)
	}
	return string(contents), nil
}

// WriteFile replaces the file content in place with a single write, keeping the existing permissions.
func WriteFile(fileSystem shared.FileSystem, filePath string, content string) error {
	if fileSystem == nil {
		return ErrFileSystemNotConfigured
	}
	fileInfo, statError := fileSystem.Stat(filePath)
	if statError != nil {
		return fmt.Errorf(statFileErrorTemplateConstant, filePath, statError)
	}
	if writeError := fileSystem.WriteFile(filePath, []byte(content), fileInfo.Mode().Perm()); writeError != nil {
		return fmt.Errorf(writeFileErrorTemplateConstant, filePath, writeError)
	}
	return nil
}
