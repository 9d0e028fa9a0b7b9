package completion

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/temirov/aigit/internal/utils"
)

const (
	jsonObjectOpenerConstant         = "{"
	missingJSONObjectMessageConstant = "response contains no JSON object"
)

var errMissingJSONObject = errors.New(missingJSONObjectMessageConstant)

// ExtractJSONObject returns the first complete JSON object embedded in text. A fenced code block wrapping the whole
// response is removed first, and prose before or after the object is ignored.
func ExtractJSONObject(text string) (json.RawMessage, error) {
	candidate, _ := utils.StripCodeFence(text)
	candidate = strings.TrimSpace(candidate)

	for searchOffset := 0; searchOffset < len(candidate); {
		openerIndex := strings.Index(candidate[searchOffset:], jsonObjectOpenerConstant)
		if openerIndex < 0 {
			break
		}
		objectStart := searchOffset + openerIndex

		var object json.RawMessage
		decoder := json.NewDecoder(strings.NewReader(candidate[objectStart:]))
		if decodeError := decoder.Decode(&object); decodeError == nil {
			return object, nil
		}
		searchOffset = objectStart + 1
	}
	return nil, errMissingJSONObject
}
