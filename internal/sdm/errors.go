package sdm

import "fmt"

// AuthError means the access token could not be obtained, either because the
// exchange call failed or because the provider rejected the credentials.
type AuthError struct {
	HTTPCode int
	Message  string
	Err      error
}

func (e *AuthError) Error() string {
	if e.HTTPCode != 0 {
		return fmt.Sprintf("auth: %s (status %d)", e.Message, e.HTTPCode)
	}
	return "auth: " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError means a full device listing failed: transport, non-success
// status, or an unexpected response shape.
type FetchError struct {
	HTTPCode int
	Message  string
	Err      error
}

func (e *FetchError) Error() string {
	if e.HTTPCode != 0 {
		return fmt.Sprintf("fetch devices: %s (status %d)", e.Message, e.HTTPCode)
	}
	return "fetch devices: " + e.Message
}

func (e *FetchError) Unwrap() error { return e.Err }

// CommandError means an outbound device command failed.
type CommandError struct {
	Command  string
	HTTPCode int
	Message  string
	Err      error
}

func (e *CommandError) Error() string {
	if e.HTTPCode != 0 {
		return fmt.Sprintf("command %s: %s (status %d)", e.Command, e.Message, e.HTTPCode)
	}
	return fmt.Sprintf("command %s: %s", e.Command, e.Message)
}

func (e *CommandError) Unwrap() error { return e.Err }
