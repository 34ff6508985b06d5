package ai

import (
	"errors"
	"fmt"
	"net/http"

	"cropdoc/pkg/apperror"
)

var (
	ErrRateLimited   = errors.New("ai: gateway rate limited")
	ErrQuotaExceeded = errors.New("ai: gateway quota exceeded")
	ErrEmptyReply    = errors.New("ai: gateway returned no content")
)

// StatusError is a non-2xx gateway response. It matches ErrRateLimited for
// 429 and ErrQuotaExceeded for 402 under errors.Is.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai: gateway status %d: %s", e.Code, truncate(e.Body, 300))
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Code == http.StatusTooManyRequests
	case ErrQuotaExceeded:
		return e.Code == http.StatusPaymentRequired
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// AsAppError maps a gateway failure onto the caller-facing taxonomy. failMsg
// is shown for anything that is neither a rate limit nor a quota error.
func AsAppError(err error, failMsg string) error {
	switch {
	case errors.Is(err, ErrRateLimited):
		return apperror.Busy(err)
	case errors.Is(err, ErrQuotaExceeded):
		return apperror.Unavailable(err)
	}
	return apperror.Internal(failMsg, err)
}
