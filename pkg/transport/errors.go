package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks requests that never produced a usable HTTP response.
	ErrNetwork = errors.New("network error")
	// ErrServer marks non-2xx responses and bodies that are not valid JSON.
	ErrServer = errors.New("server error")
)

const maxErrorBody = 512

type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

type ServerError struct {
	Op         string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *ServerError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Op, e.URL, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.StatusCode)
	}
}

func (e *ServerError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrServer}
	}
	return []error{ErrServer, e.Err}
}

func snippet(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return string(body)
}
