package gateway

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoJSON is returned when no JSON payload can be located in a model
// response.
var ErrNoJSON = eris.New("gateway: no JSON payload in response")

// ExtractJSON recovers the JSON payload from a raw model response.
// Providers routinely wrap output in markdown code fences or prepend
// prose, so this strips fences and slices out the outermost array or
// object span before any caller attempts to parse. Every LLM-consuming
// component must go through this instead of duplicating the heuristic.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Locate the outermost array or object span. Arrays win when they
	// start earlier, so list responses with embedded objects parse whole.
	arrStart := strings.Index(text, "[")
	objStart := strings.Index(text, "{")

	switch {
	case arrStart >= 0 && (objStart < 0 || arrStart < objStart):
		end := strings.LastIndex(text, "]")
		if end > arrStart {
			return strings.TrimSpace(text[arrStart : end+1]), nil
		}
	case objStart >= 0:
		end := strings.LastIndex(text, "}")
		if end > objStart {
			return strings.TrimSpace(text[objStart : end+1]), nil
		}
	}

	return "", ErrNoJSON
}
