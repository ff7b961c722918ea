// ABOUTME: Cleanup and repair helpers for LLM JSON output
// ABOUTME: Strips markdown fences and fixes the comma mistakes models commonly make

package sources

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRe = regexp.MustCompile("```json\\s*|```\\s*")

	missingCommaBetweenStrings = regexp.MustCompile(`"\s*\n\s*"`)
	missingCommaBetweenObjects = regexp.MustCompile(`}\s*\n\s*"`)
	trailingCommaBeforeBrace   = regexp.MustCompile(`,\s*}`)
	trailingCommaBeforeBracket = regexp.MustCompile(`,\s*]`)
)

// stripFences removes markdown code fences around a model response.
func stripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// parseModelJSON unmarshals a model response into a generic map, attempting
// a repair pass when the raw response is not valid JSON. When repair also
// fails, the raw response is preserved under raw_response so nothing the
// model produced is silently dropped.
func parseModelJSON(raw string) map[string]interface{} {
	cleaned := stripFences(raw)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
		return parsed
	}

	repaired := repairJSON(cleaned)
	if err := json.Unmarshal([]byte(repaired), &parsed); err == nil {
		return parsed
	}

	return map[string]interface{}{
		"raw_response": cleaned,
		"parse_error":  "model response was not valid JSON",
	}
}

// repairJSON fixes the comma mistakes models commonly make: missing commas
// between adjacent string values or objects, and trailing commas.
func repairJSON(s string) string {
	fixed := missingCommaBetweenStrings.ReplaceAllString(s, "\",\n\"")
	fixed = missingCommaBetweenObjects.ReplaceAllString(fixed, "},\n\"")
	fixed = trailingCommaBeforeBrace.ReplaceAllString(fixed, "}")
	fixed = trailingCommaBeforeBracket.ReplaceAllString(fixed, "]")
	return fixed
}
