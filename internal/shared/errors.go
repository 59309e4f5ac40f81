package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Transport errors
	ErrTransportClosed = fmt.Errorf("transport closed")
	ErrBackpressure    = fmt.Errorf("send buffer full")
	ErrUnknownEvent    = fmt.Errorf("unknown event type")
	ErrBadPayload      = fmt.Errorf("malformed event payload")

	// Room synchronization errors
	ErrRoomNotFound           = fmt.Errorf("room not found")
	ErrServerRejected         = fmt.Errorf("server rejected mutation")
	ErrAcknowledgementTimeout = fmt.Errorf("server acknowledgement timed out")
	ErrWizardActive           = fmt.Errorf("a creation wizard is already active")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
