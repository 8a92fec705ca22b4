package theta

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this module wraps exactly one of
// these sentinels, so callers classify with errors.Is.
var (
	// ErrConnection is returned on socket-level failure to establish or
	// maintain the control or stream connection.
	ErrConnection = errors.New("terminal connection error")

	// ErrTimeout is returned when a read deadline elapses while waiting for
	// a header, a body, or a subscription ack.
	ErrTimeout = errors.New("terminal timeout")

	// ErrNoData is returned when the Terminal reports that the requested
	// range holds no data. Not a fault; callers iterating over dates or
	// strikes are expected to skip it.
	ErrNoData = errors.New("no data for request")

	// ErrReconnecting is returned when the Terminal's upstream link is
	// down and the request did not complete. Retry after a short delay.
	ErrReconnecting = errors.New("terminal reconnecting to server")

	// ErrResponse is returned for any other Terminal-reported error; the
	// wrapped message carries the Terminal's text verbatim.
	ErrResponse = errors.New("terminal response error")

	// ErrParse is returned when a header or body that should be decodable
	// is not. Usually indicates version skew between library and Terminal.
	ErrParse = errors.New("response parse error")

	// ErrEnumParse is returned when a wire code does not map to a known
	// enum value.
	ErrEnumParse = errors.New("unknown enum code")

	// ErrAlreadyConnected is returned when connecting an already connected
	// session.
	ErrAlreadyConnected = errors.New("client already connected")
)

// Session-state errors. Both classify as ErrConnection.
var (
	// ErrNotConnected is returned when attempting an operation on a
	// disconnected or killed session.
	ErrNotConnected = fmt.Errorf("%w: client not connected", ErrConnection)

	// ErrStreamClosed is returned when subscribing on a dead stream session.
	ErrStreamClosed = fmt.Errorf("%w: stream session closed", ErrConnection)
)

// TerminalError classifies an ERROR response body into the taxonomy.
// The Terminal reports errors as human-readable text; classification is by
// substring, case-insensitive.
func TerminalError(body string) error {
	lower := strings.ToLower(body)
	switch {
	case strings.Contains(lower, "no data"):
		return fmt.Errorf("%w: %s", ErrNoData, body)
	case strings.Contains(lower, "disconnected"):
		return fmt.Errorf("%w: %s", ErrReconnecting, body)
	default:
		return fmt.Errorf("%w: %s", ErrResponse, body)
	}
}
