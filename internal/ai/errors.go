package ai

import (
	"errors"
	"fmt"
	"time"
)

// Kind groups narrative runtime failures so callers can report them without
// knowing which provider produced them.
type Kind string

const (
	KindAuth        Kind = "auth"
	KindQuota       Kind = "quota"
	KindRateLimit   Kind = "rate_limit"
	KindModel       Kind = "model"
	KindBadRequest  Kind = "bad_request"
	KindServer      Kind = "server"
	KindUnreachable Kind = "unreachable"
	KindOther       Kind = "other"
)

// Retryable reports whether a later attempt could succeed.
func (k Kind) Retryable() bool {
	return k == KindRateLimit || k == KindServer || k == KindUnreachable
}

// Classify returns the Kind of err, looking through wrapped errors.
func Classify(err error) Kind {
	var (
		auth     *AuthError
		quota    *QuotaExceededError
		rate     *RateLimitError
		notFound *ModelNotFoundError
		bad      *BadRequestError
		server   *ServerError
		down     *UnreachableError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &quota):
		return KindQuota
	case errors.As(err, &rate):
		return KindRateLimit
	case errors.As(err, &auth):
		return KindAuth
	case errors.As(err, &notFound):
		return KindModel
	case errors.As(err, &bad):
		return KindBadRequest
	case errors.As(err, &server):
		return KindServer
	case errors.As(err, &down):
		return KindUnreachable
	}
	return KindOther
}

// AuthError is a rejected API key (401/403).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string { return "credentials rejected: " + e.APIError.Error() }
func (e *AuthError) Unwrap() error { return unwrapAPI(e.APIError) }

// RateLimitError is a 429. RetryAfter is zero when the provider gave no hint.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry in %s: %s", e.RetryAfter.Round(time.Second), e.APIError.Error())
	}
	return "rate limited: " + e.APIError.Error()
}
func (e *RateLimitError) Unwrap() error { return unwrapAPI(e.APIError) }

// ModelNotFoundError means the configured narrative model does not exist.
type ModelNotFoundError struct{ *APIError }

func (e *ModelNotFoundError) Error() string { return "model unavailable: " + e.APIError.Error() }
func (e *ModelNotFoundError) Unwrap() error { return unwrapAPI(e.APIError) }

// BadRequestError means the provider refused the prompt payload.
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return "request rejected: " + e.APIError.Error() }
func (e *BadRequestError) Unwrap() error { return unwrapAPI(e.APIError) }

// QuotaExceededError is a billing or credit problem; retrying will not help.
type QuotaExceededError struct{ *APIError }

func (e *QuotaExceededError) Error() string { return "quota exhausted: " + e.APIError.Error() }
func (e *QuotaExceededError) Unwrap() error { return unwrapAPI(e.APIError) }

// ServerError is a 5xx from the provider.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return "provider failure: " + e.APIError.Error() }
func (e *ServerError) Unwrap() error { return unwrapAPI(e.APIError) }

// UnreachableError means no HTTP response was received at all.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("no response from %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("no response: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// unwrapAPI avoids handing errors.As a typed nil.
func unwrapAPI(e *APIError) error {
	if e == nil {
		return nil
	}
	return e
}
