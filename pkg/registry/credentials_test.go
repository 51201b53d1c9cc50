package registry

import "testing"

func TestEnvVarDefaultConvention(t *testing.T) {
	creds := NewEnvCredentials(nil)

	if got := creds.EnvVar("openai"); got != "OPENAI_API_KEY" {
		t.Errorf("EnvVar(openai) = %q", got)
	}
	if got := creds.EnvVar("anthropic"); got != "ANTHROPIC_API_KEY" {
		t.Errorf("EnvVar(anthropic) = %q", got)
	}
}

func TestEnvVarMapped(t *testing.T) {
	creds := NewEnvCredentials(map[string]string{"openai": "CUSTOM_OPENAI_KEY"})

	if got := creds.EnvVar("openai"); got != "CUSTOM_OPENAI_KEY" {
		t.Errorf("EnvVar(openai) = %q", got)
	}
	// Unmapped providers still use the convention.
	if got := creds.EnvVar("anthropic"); got != "ANTHROPIC_API_KEY" {
		t.Errorf("EnvVar(anthropic) = %q", got)
	}
}

func TestHasCredential(t *testing.T) {
	creds := NewEnvCredentials(nil)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	if !creds.HasCredential("openai") {
		t.Error("HasCredential(openai) = false with key set")
	}
	if creds.HasCredential("anthropic") {
		t.Error("HasCredential(anthropic) = true with no key set")
	}
}

func TestHasCredentialEmptyValue(t *testing.T) {
	creds := NewEnvCredentials(nil)

	t.Setenv("OPENAI_API_KEY", "")
	if creds.HasCredential("openai") {
		t.Error("empty variable should not count as a credential")
	}

	t.Setenv("OPENAI_API_KEY", "   ")
	if creds.HasCredential("openai") {
		t.Error("whitespace-only variable should not count as a credential")
	}
}

func TestKeyTrimsWhitespace(t *testing.T) {
	creds := NewEnvCredentials(nil)

	t.Setenv("OPENAI_API_KEY", "  sk-test\n")
	if got := creds.Key("openai"); got != "sk-test" {
		t.Errorf("Key(openai) = %q", got)
	}
}
