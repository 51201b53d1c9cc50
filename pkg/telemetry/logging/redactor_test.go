package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestRedactStringMasksVendorKeys(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "openai key",
			input: "using key sk-abcdefghij1234567890 for request",
			want:  "using key [REDACTED] for request",
		},
		{
			name:  "anthropic key",
			input: "key sk-ant-REDACTED rejected",
			want:  "key [REDACTED] rejected",
		},
		{
			name:  "bearer token",
			input: "Authorization: Bearer abc123def456ghi789",
			want:  "Authorization: [REDACTED]",
		},
		{
			name:  "no secrets",
			input: "request completed in 120ms",
			want:  "request completed in 120ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactArgsMasksSecretKeys(t *testing.T) {
	r := NewRedactor()

	out := r.RedactArgs("provider", "openai", "api_key", "anything-at-all", "Token", "value")

	if out[1] != "openai" {
		t.Errorf("non-secret value changed: %v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Errorf("api_key value = %v, want [REDACTED]", out[3])
	}
	// Key matching is case-insensitive.
	if out[5] != "[REDACTED]" {
		t.Errorf("Token value = %v, want [REDACTED]", out[5])
	}
}

func TestRedactArgsScansStringValues(t *testing.T) {
	r := NewRedactor()

	out := r.RedactArgs("error", "auth failed for sk-abcdefghij1234567890")

	s, _ := out[1].(string)
	if strings.Contains(s, "sk-") {
		t.Errorf("key leaked through value scan: %q", s)
	}
}

func TestRedactError(t *testing.T) {
	r := NewRedactor()

	err := errors.New("rejected key sk-abcdefghij1234567890")
	redacted := r.RedactError(err)
	if strings.Contains(redacted.Error(), "sk-") {
		t.Errorf("error still carries key: %v", redacted)
	}

	clean := errors.New("plain failure")
	if r.RedactError(clean) != clean {
		t.Error("clean error should be returned unchanged")
	}
	if r.RedactError(nil) != nil {
		t.Error("nil error should stay nil")
	}
}

func TestLoggerRedactsOnOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{
		Level:         "info",
		Format:        "json",
		RedactSecrets: true,
		Writer:        &buf,
	})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("provider call", "api_key", "sk-abcdefghij1234567890", "provider", "openai")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not JSON: %v (%s)", err, buf.String())
	}
	if record["api_key"] != "[REDACTED]" {
		t.Errorf("api_key in output = %v", record["api_key"])
	}
	if record["provider"] != "openai" {
		t.Errorf("provider in output = %v", record["provider"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %s", buf.String())
	}

	logger.Warn("should appear")
	if buf.Len() == 0 {
		t.Error("warn not logged at warn level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
