package conflicts

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// OursMarkerPrefixConstant opens a conflict block.
	OursMarkerPrefixConstant = "<<<<<<< "
	// SeparatorMarkerConstant divides the two sides of a conflict block.
	SeparatorMarkerConstant = "======="
	// TheirsMarkerPrefixConstant closes a conflict block.
	TheirsMarkerPrefixConstant = ">>>>>>> "

	oursMarkerTokenConstant             = "<<<<<<<"
	theirsMarkerTokenConstant           = ">>>>>>>"
	lineFeedConstant                    = "\n"
	carriageReturnLineFeedConstant      = "\r\n"
	noConflictMarkersMessageConstant    = "no conflict markers found"
	noConflictMarkersErrorTemplateConst = "%w in %s"
	missingSeparatorErrorTemplateConst  = "missing separator marker for conflict starting at line %d in %s"
	missingEndMarkerErrorTemplateConst  = "missing end marker for conflict starting at line %d in %s"
)

// ErrNoConflictMarkers indicates a file without any conflict block.
var ErrNoConflictMarkers = errors.New(noConflictMarkersMessageConstant)

// MissingSeparatorError reports a conflict block whose separator marker never appears.
type MissingSeparatorError struct {
	FilePath  string
	StartLine int
}

// Error describes the malformed block.
func (missingError MissingSeparatorError) Error() string {
	return fmt.Sprintf(missingSeparatorErrorTemplateConst, missingError.StartLine+1, missingError.FilePath)
}

// MissingEndMarkerError reports a conflict block whose closing marker never appears.
type MissingEndMarkerError struct {
	FilePath  string
	StartLine int
}

// Error describes the malformed block.
func (missingError MissingEndMarkerError) Error() string {
	return fmt.Sprintf(missingEndMarkerErrorTemplateConst, missingError.StartLine+1, missingError.FilePath)
}

// Block is one conflict region. StartLine and EndLine are zero-based indexes of the opening and closing marker
// lines. Side lines keep their original terminators.
type Block struct {
	StartLine   int
	EndLine     int
	OursLines   []string
	TheirsLines []string
}

// Ours joins the ours side back into text.
func (block Block) Ours() string {
	return strings.Join(block.OursLines, "")
}

// Theirs joins the theirs side back into text.
func (block Block) Theirs() string {
	return strings.Join(block.TheirsLines, "")
}

// SplitLines splits content into lines that keep their terminators, so joining the result reproduces content exactly.
func SplitLines(content string) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(content, lineFeedConstant)
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ParseBlocks scans lines once and returns every conflict block in order. Marker lines inside an open block are
// treated as content. A file without blocks yields ErrNoConflictMarkers.
func ParseBlocks(filePath string, lines []string) ([]Block, error) {
	var blocks []Block
	for lineIndex := 0; lineIndex < len(lines); lineIndex++ {
		if !strings.HasPrefix(lines[lineIndex], OursMarkerPrefixConstant) {
			continue
		}
		block, parseError := parseBlock(filePath, lines, lineIndex)
		if parseError != nil {
			return nil, parseError
		}
		blocks = append(blocks, block)
		lineIndex = block.EndLine
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf(noConflictMarkersErrorTemplateConst, ErrNoConflictMarkers, filePath)
	}
	return blocks, nil
}

func parseBlock(filePath string, lines []string, startLine int) (Block, error) {
	separatorLine := -1
	for lineIndex := startLine + 1; lineIndex < len(lines); lineIndex++ {
		if isSeparatorLine(lines[lineIndex]) {
			separatorLine = lineIndex
			break
		}
	}
	if separatorLine < 0 {
		return Block{}, MissingSeparatorError{FilePath: filePath, StartLine: startLine}
	}

	for lineIndex := separatorLine + 1; lineIndex < len(lines); lineIndex++ {
		if strings.HasPrefix(lines[lineIndex], TheirsMarkerPrefixConstant) {
			return Block{
				StartLine:   startLine,
				EndLine:     lineIndex,
				OursLines:   append([]string{}, lines[startLine+1:separatorLine]...),
				TheirsLines: append([]string{}, lines[separatorLine+1:lineIndex]...),
			}, nil
		}
	}
	return Block{}, MissingEndMarkerError{FilePath: filePath, StartLine: startLine}
}

func isSeparatorLine(line string) bool {
	return trimLineTerminator(line) == SeparatorMarkerConstant
}

func trimLineTerminator(line string) string {
	if strings.HasSuffix(line, carriageReturnLineFeedConstant) {
		return strings.TrimSuffix(line, carriageReturnLineFeedConstant)
	}
	return strings.TrimSuffix(line, lineFeedConstant)
}

// ContainsMarkers reports whether text still carries an opening or closing marker token or a separator line.
func ContainsMarkers(text string) bool {
	if strings.Contains(text, oursMarkerTokenConstant) || strings.Contains(text, theirsMarkerTokenConstant) {
		return true
	}
	for _, line := range SplitLines(text) {
		if isSeparatorLine(line) {
			return true
		}
	}
	return false
}
