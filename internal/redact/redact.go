// Package redact removes credentials and personal data from strings before
// they are logged. Error details never reach HTTP clients; they reach the
// logs only after passing through Error.
package redact

import "regexp"

// Placeholders substituted for redacted values.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules run in order; later rules see the output of earlier ones.
var rules = []rule{
	// userinfo in database and broker URLs
	{
		regexp.MustCompile(`(?i)\b(postgres|postgresql|redis|rediss|mysql)://[^@\s/]+@`),
		"${1}://" + RedactedCredentialPlaceholder + "@",
	},
	{
		regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		RedactedJWTPlaceholder,
	},
	// key=value and key: value pairs with secret-looking keys
	{
		regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret|api[_-]?key|jwt_secret)(\s*[=:]\s*)("[^"]*"|'[^']*'|[^\s&,;]+)`),
		"${1}${2}" + RedactionPlaceholder,
	},
	{
		regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
		RedactedEmailPlaceholder,
	},
}

// String redacts sensitive information from s.
func String(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts sensitive information from err's message. A nil error
// yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
