// Package redact scrubs sensitive information from strings before they are
// logged or embedded in failure diagnostics. Vendor SDK errors can echo
// request headers, credential material, or local file paths; this package
// keeps them out of the log stream.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
)

var (
	// API keys and tokens appearing after a labelled field.
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// Bearer credentials from echoed HTTP headers.
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/=]{8,}`)

	// Password-style assignments.
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`)

	// Local file paths, e.g. a credentials file named in an auth error.
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)

	patterns = []*regexp.Regexp{apiKeyRegex, bearerRegex, passwordRegex, unixPathRegex}

	patternPlaceholders = map[*regexp.Regexp]string{
		apiKeyRegex:   RedactedKeyPlaceholder,
		bearerRegex:   RedactedCredentialPlaceholder,
		passwordRegex: RedactedCredentialPlaceholder,
		unixPathRegex: RedactedPathPlaceholder,
	}
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, pattern := range patterns {
		result = pattern.ReplaceAllString(result, patternPlaceholders[pattern])
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
