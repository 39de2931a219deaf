// Package resilience wraps Model.Generate and Tool.Call with retry,
// rate-limit handling, a circuit breaker, and failover across alternative
// models, per the core's resilience contract.
package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/agentcore/reactor/agenterr"
)

// Class is a deterministic error classification based on (error type,
// message pattern, HTTP status).
type Class string

const (
	ClassRateLimit      Class = "rate_limit"
	ClassTimeout        Class = "timeout"
	ClassAuthentication Class = "authentication"
	ClassClientError    Class = "client_error"
	ClassServerError    Class = "server_error"
	ClassUnknown        Class = "unknown"
)

// HTTPStatusError carries an HTTP status code alongside a message, for
// providers whose transport surfaces a status code explicitly.
type HTTPStatusError struct {
	StatusCode int
	RetryAfter float64
	Message    string
}

func (e *HTTPStatusError) Error() string { return e.Message }

// Classify deterministically assigns err a Class. Authentication errors are
// classified distinctly so callers can refuse to retry them. Concrete
// transport errors anywhere in the chain win over taxonomy kinds: a tool
// error wrapping a 429 is still a rate limit.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return ClassRateLimit
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}
	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusTooManyRequests:
			return ClassRateLimit
		case httpErr.StatusCode == http.StatusUnauthorized, httpErr.StatusCode == http.StatusForbidden:
			return ClassAuthentication
		case httpErr.StatusCode == http.StatusRequestTimeout, httpErr.StatusCode == http.StatusGatewayTimeout:
			return ClassTimeout
		case httpErr.StatusCode >= 500:
			return ClassServerError
		case httpErr.StatusCode >= 400:
			return ClassClientError
		}
	}
	if kind, ok := agenterr.Of(err); ok {
		switch kind {
		case agenterr.KindRateLimit:
			return ClassRateLimit
		case agenterr.KindTimeout:
			return ClassTimeout
		case agenterr.KindAuthentication:
			return ClassAuthentication
		case agenterr.KindService:
			return ClassServerError
		case agenterr.KindToolExecution, agenterr.KindParsing, agenterr.KindInterpreter,
			agenterr.KindConfiguration, agenterr.KindGeneration:
			// Reified into observations by the scheduler, never retried here.
			return ClassClientError
		}
	}
	return ClassUnknown
}

// Retryable reports whether a class is a transient condition the retry loop
// should attempt again. Authentication and client errors are never retried.
func (c Class) Retryable() bool {
	switch c {
	case ClassTimeout, ClassServerError, ClassUnknown, ClassRateLimit:
		return true
	default:
		return false
	}
}
