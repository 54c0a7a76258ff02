package connector

import "fmt"

// AuthError reports a failed login or company selection.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return "authentication failed: " + e.Reason
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError reports a failure retrieving the dashboard.
type FetchError struct {
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dashboard fetch failed: %s: %v", e.Reason, e.Err)
	}
	return "dashboard fetch failed: " + e.Reason
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
