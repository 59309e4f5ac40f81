package transport

// Transport is a bidirectional named-event channel to the room server.
//
// Events are delivered in arrival order on a single channel, which is closed when the connection ends.
// Emit must not block: a full outbound buffer is reported as an error.
type Transport interface {
	Events() <-chan Event
	Emit(cmd Command) error
	Close() error
}
