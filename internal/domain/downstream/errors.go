package downstream

import (
	"errors"
	"strings"
)

// ErrNetwork marks a transport-level failure (no usable response). Callers
// surface it with a generic retry-oriented message; it is never silently
// swallowed except where an explicit fallback computation exists.
var ErrNetwork = errors.New("network error, try again")

// RemoteRejection is a non-2xx response with structured field messages
// (`errors[]`) or a single `message`. Malformed response bodies also decode
// into a RemoteRejection rather than propagating as nil fields.
type RemoteRejection struct {
	Status   int
	Messages []string
}

func (e *RemoteRejection) Error() string {
	if len(e.Messages) == 0 {
		return "request rejected by server"
	}
	return strings.Join(e.Messages, "\n")
}

// WrongOTP reports whether the rejection is an OTP mismatch as opposed to
// a transport failure; the two must surface distinctly.
func WrongOTP(err error) bool {
	var rr *RemoteRejection
	return errors.As(err, &rr)
}
