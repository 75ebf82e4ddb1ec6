package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// previewLimit caps how much offending text a parse-failure diagnostic
// carries.
const previewLimit = 500

var (
	fenceOpenRe  = regexp.MustCompile("^```[a-zA-Z0-9_-]*\n?")
	fenceCloseRe = regexp.MustCompile("\n?```\\s*$")

	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

	// Missing-comma repairs, first pass: a string, scalar, or closing
	// bracket followed by a new line that opens the next property.
	missingCommaStringRe = regexp.MustCompile(`"\s*\n\s*"`)
	missingCommaScalarRe = regexp.MustCompile(`(\d|true|false|null)\s*\n\s*"`)
	missingCommaCloseRe  = regexp.MustCompile(`([}\]])\s*\n\s*"`)
	missingCommaObjectRe = regexp.MustCompile(`}\s*\n\s*{`)

	// Second, more aggressive pass folding all of the above into one rule.
	missingCommaAggressiveRe = regexp.MustCompile(`(["\d]|true|false|null|[}\]])\s*\n(\s*")`)
)

// ParseLoose parses raw model output into a JSON object, applying a series of
// increasingly aggressive repairs for the malformations models commonly emit:
// markdown code fences around the payload, prose surrounding the object,
// trailing commas, and missing commas between adjacent properties. Each
// repair is attempted only after the previous one failed to yield valid JSON.
func ParseLoose(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = fenceOpenRe.ReplaceAllString(text, "")
		text = fenceCloseRe.ReplaceAllString(text, "")
	}

	if v, err := parseObject(text); err == nil {
		return v, nil
	}

	// Extract the substring between the first '{' and the last '}'.
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start != -1 && end > start {
		if v, err := parseObject(text[start : end+1]); err == nil {
			return v, nil
		}
	}

	if v, err := parseObject(trailingCommaRe.ReplaceAllString(text, "$1")); err == nil {
		return v, nil
	}

	fixed := missingCommaStringRe.ReplaceAllString(text, "\",\n\"")
	fixed = missingCommaScalarRe.ReplaceAllString(fixed, "${1},\n\"")
	fixed = missingCommaCloseRe.ReplaceAllString(fixed, "${1},\n\"")
	fixed = missingCommaObjectRe.ReplaceAllString(fixed, "},\n{")
	if v, err := parseObject(fixed); err == nil {
		return v, nil
	}

	fixed = missingCommaAggressiveRe.ReplaceAllString(text, "${1},\n${2}")
	v, err := parseObject(fixed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (content preview: %s)", ErrUnparsableResponse, err, preview(text))
	}
	return v, nil
}

func parseObject(s string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func preview(s string) string {
	if len(s) > previewLimit {
		return s[:previewLimit] + "..."
	}
	return s
}
