package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	"github.com/nexosupport/nexomfa/internal/mfa/service"
	"github.com/nexosupport/nexomfa/internal/mfa/throttle"
	"github.com/nexosupport/nexomfa/pkg/mfasdk"
	"github.com/nexosupport/nexomfa/pkg/slogx"
)

// writeError maps service and factor errors onto the API envelope. Anything
// unrecognised is logged and reported as a bare server_error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apiError(err)
	if apiErr == nil {
		slogx.FromContext(r.Context()).ErrorContext(r.Context(), "request failed", "err", err)
		mfasdk.ErrServerError.WriteError(w)
		return
	}
	apiErr.WriteError(w)
}

func apiError(err error) *mfasdk.APIError {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return mfasdk.ErrInvalidRequest.WithDescription(detail(err, service.ErrInvalidRequest))
	case errors.Is(err, service.ErrSessionNotFound):
		return mfasdk.ErrNotFound.WithDescription("session not found")
	case errors.Is(err, service.ErrSessionExpired):
		return mfasdk.ErrSessionExpired
	case errors.Is(err, service.ErrSessionClosed):
		return mfasdk.ErrSessionClosed
	case errors.Is(err, service.ErrFactorResolved):
		return mfasdk.ErrFactorResolved
	case errors.Is(err, service.ErrNotInteractive):
		return mfasdk.ErrNotInteractive
	case errors.Is(err, service.ErrEnrollmentNotFound):
		return mfasdk.ErrNotFound.WithDescription("enrollment not found")
	case errors.Is(err, service.ErrIPRangeNotFound):
		return mfasdk.ErrNotFound.WithDescription("ip range not found")
	case errors.Is(err, service.ErrIPRangeExists):
		return mfasdk.ErrAlreadyExists.WithDescription("ip range already exists")
	case errors.Is(err, factor.ErrFactorNotFound):
		return mfasdk.ErrNotFound.WithDescription("factor not found or disabled")
	case errors.Is(err, factor.ErrNotEnrolled):
		return mfasdk.ErrNotEnrolled
	case errors.Is(err, factor.ErrNoPendingEnrollment):
		return mfasdk.ErrNotEnrolled.WithDescription("no pending enrollment to confirm")
	case errors.Is(err, factor.ErrAlreadyEnrolled):
		return mfasdk.ErrAlreadyEnrolled
	case errors.Is(err, factor.ErrInvalidDestination):
		return mfasdk.ErrInvalidRequest.WithDescription("invalid phone number or email address")
	case errors.Is(err, factor.ErrInvalidCode):
		return mfasdk.ErrInvalidCode
	case errors.Is(err, throttle.ErrLimited):
		return mfasdk.ErrRateLimited.WithDescription("code send limit reached, try again later")
	}
	return nil
}

// detail strips the sentinel prefix from a wrapped error message.
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error())
	msg = strings.TrimLeft(msg, ": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
