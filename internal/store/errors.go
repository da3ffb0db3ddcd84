package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBaseURLRequired   = errors.New("store: base url required")
	ErrMissingIdentifier = errors.New("store: existing record exposes no identifier")
	ErrNotFound          = errors.New("store: record not found")
	ErrMalformedResponse = errors.New("store: malformed response")
)

const maxBodyInError = 512

// RemoteError reports a failed round-trip: a non-success status, a transport
// failure or an unusable response.
type RemoteError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	b.WriteString("store:")
	if e.Method != "" {
		fmt.Fprintf(&b, " %s %s:", e.Method, e.URL)
	}
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " status %d", e.StatusCode)
		if body := strings.TrimSpace(e.Body); body != "" {
			if len(body) > maxBodyInError {
				body = body[:maxBodyInError] + "..."
			}
			fmt.Fprintf(&b, ": %s", body)
		}
	}
	if e.Err != nil {
		if e.StatusCode > 0 {
			b.WriteString(":")
		}
		fmt.Fprintf(&b, " %v", e.Err)
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
