package gemini

import "strings"

// sanitizeModelJSON strips markdown code fences and surrounding prose
// from a model response, leaving the JSON payload. Models sometimes
// wrap schema-constrained output anyway.
func sanitizeModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Trim leading prose before the first JSON bracket.
	objStart := strings.IndexAny(s, "{[")
	if objStart > 0 {
		s = s[objStart:]
	}

	// Trim trailing prose after the last matching bracket.
	if len(s) > 0 {
		var closing byte
		switch s[0] {
		case '{':
			closing = '}'
		case '[':
			closing = ']'
		}
		if closing != 0 {
			if idx := strings.LastIndexByte(s, closing); idx >= 0 {
				s = s[:idx+1]
			}
		}
	}
	return s
}
