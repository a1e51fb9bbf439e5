package badgeapi

import "errors"

// Error kinds returned by the client. Match them with errors.Is; the concrete
// value is always an *Error carrying the human-readable message.
var (
	// ErrConfiguration means the client cannot be built (no API key).
	ErrConfiguration = errors.New("API key not configured")

	// ErrValidation means a required request field is missing. It is
	// raised before any network activity.
	ErrValidation = errors.New("missing required data")

	// ErrAPI covers transport failures, timeouts, undecodable bodies and
	// responses whose success flag is false or missing.
	ErrAPI = errors.New("failed to communicate with IssueBadge API")

	// ErrInvalidResponse means the service claimed success but the payload
	// lacks a required field.
	ErrInvalidResponse = errors.New("invalid response from IssueBadge API")
)

// Error is the concrete error type of this package.
type Error struct {
	// Kind is one of the package sentinel errors.
	Kind error
	// Message is the text shown to users; defaults to Kind's text.
	Message string
	// StatusCode is the HTTP status of the response, if one was received.
	StatusCode int
	// Err is the underlying cause (transport or decode error), if any.
	Err error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "issuebadge: unknown error"
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the error kind, so errors.Is(err, ErrAPI) works on any *Error.
func (e *Error) Is(target error) bool { return e.Kind != nil && target == e.Kind }

func newError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// NotConfigured returns the error reported when no API key is set. Callers
// that start without a client use it to fail each call the same way New does.
func NotConfigured() error {
	return newError(ErrConfiguration, "API key not configured. Please configure it in the service settings.", nil)
}
