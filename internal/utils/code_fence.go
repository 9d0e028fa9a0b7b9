package utils

import "strings"

const (
	codeFenceDelimiterConstant = "```"
	lineFeedConstant           = "\n"
	carriageReturnConstant     = "\r"
)

// StripCodeFence removes one fenced code block wrapper when the whole trimmed text is exactly one fenced block, with
// an optional info string on the opening line. The block body is returned verbatim, including its final line
// terminator. Any other text is returned unchanged with false.
func StripCodeFence(text string) (string, bool) {
	trimmedText := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmedText, codeFenceDelimiterConstant) || !strings.HasSuffix(trimmedText, codeFenceDelimiterConstant) {
		return text, false
	}

	openingLineEnd := strings.Index(trimmedText, lineFeedConstant)
	if openingLineEnd < 0 {
		return text, false
	}
	infoString := strings.TrimSuffix(trimmedText[len(codeFenceDelimiterConstant):openingLineEnd], carriageReturnConstant)
	if strings.Contains(infoString, codeFenceDelimiterConstant[:1]) {
		return text, false
	}

	closingFenceStart := len(trimmedText) - len(codeFenceDelimiterConstant)
	if closingFenceStart < openingLineEnd+1 {
		return text, false
	}
	body := trimmedText[openingLineEnd+1 : closingFenceStart]
	if len(body) > 0 && !strings.HasSuffix(body, lineFeedConstant) {
		return text, false
	}

	for _, line := range strings.Split(body, lineFeedConstant) {
		if strings.HasPrefix(strings.TrimSpace(line), codeFenceDelimiterConstant) {
			return text, false
		}
	}

	return body, true
}
