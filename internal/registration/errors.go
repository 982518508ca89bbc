package registration

import (
	"errors"
	"fmt"
)

// Base error kinds surfaced by the registration service. Business-rule
// violations and infrastructure failures are distinct so callers can tell
// "you may not do this" from "try again later".
var (
	// ErrInvalidInput marks a malformed request, rejected before any
	// storage access.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSponsorNotFound marks a reference to a sponsor that does not
	// exist. Terminal.
	ErrSponsorNotFound = errors.New("sponsor not found")
	// ErrStorageUnavailable marks a transient storage failure. The service
	// performs no implicit retry; the caller decides.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// FreeTierLimitError is returned when a free-tier sponsor attempts to exceed
// its agent limit. It carries the sponsor ID for diagnostics.
type FreeTierLimitError struct {
	SponsorID string
	Limit     int
}

func (e *FreeTierLimitError) Error() string {
	return fmt.Sprintf("sponsor %s has reached the free-tier limit of %d agent(s)", e.SponsorID, e.Limit)
}

// IsFreeTierLimit reports whether err is a free-tier limit violation.
func IsFreeTierLimit(err error) bool {
	var limitErr *FreeTierLimitError
	return errors.As(err, &limitErr)
}
