package logging

import (
	"fmt"
	"regexp"
	"strings"
)

// Redactor masks secrets in log fields so provider credentials never
// reach log output.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// secretKeys are log attribute keys whose values are always masked
// outright, whatever they contain.
var secretKeys = map[string]struct{}{
	"api_key":       {},
	"apikey":        {},
	"authorization": {},
	"token":         {},
}

// NewRedactor creates a Redactor with the built-in secret patterns.
func NewRedactor() *Redactor {
	patterns := []struct {
		name    string
		pattern string
	}{
		// Vendor API keys (OpenAI-style and Anthropic-style)
		{"openai_key", `sk-[A-Za-z0-9_-]{16,}`},
		{"anthropic_key", `sk-ant-[A-Za-z0-9_-]{16,}`},
		{"bearer_token", `(?i)bearer\s+[A-Za-z0-9._-]{8,}`},
	}

	r := &Redactor{}
	for _, p := range patterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.pattern),
			replacement: "[REDACTED]",
		})
	}
	return r
}

// RedactArgs masks secrets in alternating key/value log arguments.
func (r *Redactor) RedactArgs(args ...any) []any {
	out := make([]any, len(args))
	copy(out, args)

	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if _, secret := secretKeys[strings.ToLower(key)]; secret {
			out[i+1] = "[REDACTED]"
			continue
		}
		if s, ok := out[i+1].(string); ok {
			out[i+1] = r.RedactString(s)
		}
	}

	return out
}

// RedactString masks secret patterns inside a single string value.
func (r *Redactor) RedactString(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// RedactError masks secret patterns inside an error message.
func (r *Redactor) RedactError(err error) error {
	if err == nil {
		return nil
	}
	redacted := r.RedactString(err.Error())
	if redacted == err.Error() {
		return err
	}
	return fmt.Errorf("%s", redacted)
}
