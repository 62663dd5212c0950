package analysis

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Models wrap JSON in prose or code fences more often than they should.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSONObject pulls the JSON object out of a model response: direct
// parse first, then the widest brace-delimited span.
func extractJSONObject(content string) ([]byte, bool) {
	trimmed := strings.TrimSpace(content)
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed), true
	}

	match := jsonObjectPattern.FindString(content)
	if match != "" && json.Valid([]byte(match)) {
		return []byte(match), true
	}
	return nil, false
}
