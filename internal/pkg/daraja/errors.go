package daraja

import "fmt"

// AuthError reports a failed OAuth token fetch. It blocks any dependent
// outbound call and is never retried inside this package.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("daraja oauth token request failed: status=%d body=%s", e.StatusCode, e.Body)
}

// APIError reports a non-success response from a Daraja endpoint. The body is
// preserved verbatim for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daraja api request failed: status=%d body=%s", e.StatusCode, e.Body)
}
