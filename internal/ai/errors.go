package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"google.golang.org/genai"
)

// StatusError is a non-2xx answer from a provider HTTP API
type StatusError struct {
	Provider   ProviderID
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// statusOverloaded is the Anthropic overload status
const statusOverloaded = 529

func transientStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code == statusOverloaded:
		return true
	case code >= 500:
		return true
	}
	return false
}

// IsTransient reports whether err is worth retrying: network failures,
// per-call timeouts, rate limits and server-side errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return transientStatus(statusErr.StatusCode)
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return transientStatus(genaiErr.Code)
	}
	var genaiErrPtr *genai.APIError
	if errors.As(err, &genaiErrPtr) {
		return transientStatus(genaiErrPtr.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
