package ai

import (
	"strings"

	"github.com/tidwall/gjson"
)

// extractJSON strips markdown code fences some models wrap around JSON output.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// stringList converts a gjson array into a []string, skipping non-string
// noise. Always returns a non-nil slice so downstream JSON stays an array.
func stringList(result gjson.Result) []string {
	items := []string{}
	for _, r := range result.Array() {
		s := strings.TrimSpace(r.String())
		if s != "" {
			items = append(items, s)
		}
	}
	return items
}
