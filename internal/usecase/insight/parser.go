package insight

import "strings"

// cleanInsights strips the markdown code fence some models wrap rich text
// in ("```html ... ```") and trims surrounding whitespace
func cleanInsights(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	// drop the language tag, if any
	if nl := strings.IndexByte(content, '\n'); nl != -1 && !strings.ContainsAny(content[:nl], " <") {
		content = content[nl+1:]
	}
	if idx := strings.LastIndex(content, "```"); idx != -1 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}
