package conversation

import "fmt"

// The error messages below are caller-facing: they travel verbatim in
// the error field of operation results, so they keep the harness's
// established phrasing rather than Go error conventions.

// NotFoundError indicates an operation targeted a conversation id with
// no record.
type NotFoundError struct {
	// ID is the conversation id that did not resolve
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Conversation with ID '%s' not found.", e.ID)
}

// ValidationError indicates a required parameter was missing or empty
// for the requested mode. Validation failures never touch storage.
type ValidationError struct {
	// Param is the missing parameter name
	Param string

	// Mode is the operation mode that required it
	Mode string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required parameter '%s' for '%s' mode.", e.Param, e.Mode)
}

// UnsupportedProviderError indicates the provider name is not in the
// registry.
type UnsupportedProviderError struct {
	// Provider is the unrecognized provider name
	Provider string
}

// Error implements the error interface.
func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("Provider '%s' not supported.", e.Provider)
}

// MissingCredentialError indicates the provider is recognized but has no
// usable credential.
type MissingCredentialError struct {
	// Provider is the provider name lacking a credential
	Provider string
}

// Error implements the error interface.
func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("API key for provider '%s' is not available.", e.Provider)
}
