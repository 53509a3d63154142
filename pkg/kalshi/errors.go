package kalshi

import "fmt"

// bodySnippetLimit caps how much of an error response body is carried in
// an error message.
const bodySnippetLimit = 512

func snippet(body []byte) string {
	s := string(body)
	if len(s) > bodySnippetLimit {
		s = s[:bodySnippetLimit] + "..."
	}
	return s
}

// KeyLoadError reports a private key that could not be read or parsed.
// It is returned at construction time, before any request is made.
type KeyLoadError struct {
	Path string
	Err  error
}

func (e *KeyLoadError) Error() string {
	return fmt.Sprintf("load private key %s: %v", e.Path, e.Err)
}

func (e *KeyLoadError) Unwrap() error { return e.Err }

// AuthError reports an HTTP 401 from the venue. A rejected signature
// stays rejected, so the request is never retried: exactly one call is
// made.
type AuthError struct {
	Body string
}

func (e *AuthError) Error() string {
	if e.Body == "" {
		return "authentication rejected (401)"
	}
	return fmt.Sprintf("authentication rejected (401): %s", e.Body)
}

// TransportError reports that every attempt failed before an HTTP
// response arrived (connection refused, timeout, DNS). It wraps the last
// underlying error.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RetryExhaustedError reports a retryable status (429 or transient 5xx)
// still present on the final attempt.
type RetryExhaustedError struct {
	Attempts   int
	StatusCode int
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts, last status %d", e.Attempts, e.StatusCode)
}

// StatusError reports a non-retryable, non-auth HTTP error status. The
// request is not retried.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// DecodeError reports a 2xx response whose body was not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid response body: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// OrderValidationError reports an order rejected client-side, before any
// network call.
type OrderValidationError struct {
	Field  string
	Reason string
}

func (e *OrderValidationError) Error() string {
	return fmt.Sprintf("invalid order: %s: %s", e.Field, e.Reason)
}
