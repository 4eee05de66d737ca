// Package transport implements the timed send/await-response exchange
// used to profile a client's reaction to one challenge, against an
// abstract binary channel so the timing logic stays independent of the
// concrete WebSocket transport.
package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/ParthDesai/reliability-measurement-server/internal/protocol"
)

// ErrTransport is returned when a non-binary frame is received, or the
// underlying channel fails to send the payload. Receive errors are
// reported as ErrPeerClosed instead.
var ErrTransport = errors.New("transport: non-binary or malformed frame")

// ErrPeerClosed is returned when the channel closes before a response
// frame arrives.
var ErrPeerClosed = errors.New("transport: peer closed before responding")

// ClientReportedError wraps a Data.Error message received from the peer.
type ClientReportedError struct {
	Text string
}

func (e *ClientReportedError) Error() string {
	return fmt.Sprintf("transport: client reported error: %s", e.Text)
}

// Frame is a single binary or text frame read from a BinaryChannel.
type Frame struct {
	Binary bool
	Data   []byte
}

// BinaryChannel is the minimal interface TimedExchange needs from a
// transport: send one binary frame, receive the next frame of either
// kind. Implementations MUST NOT be polled concurrently with themselves.
type BinaryChannel interface {
	Send(data []byte) error
	Receive() (Frame, error)
}

// Policy selects when the clock starts relative to the send, which
// determines whether outbound transmission time counts toward the
// measured duration.
type Policy int

const (
	// ReceiveOnly starts the clock after sending, excluding transmission
	// time. Used for the CPU challenge so only client compute is measured.
	ReceiveOnly Policy = iota
	// RoundtripInclusive starts the clock before sending, including
	// transmission time. Used for the network challenge, where
	// transmission is the dominant term being measured.
	RoundtripInclusive
)

// Exchange sends payload as a single binary frame over channel, awaits
// exactly one response frame, and returns the decoded Message along
// with the elapsed time in milliseconds per policy's timing rule.
func Exchange(channel BinaryChannel, payload []byte, policy Policy) (protocol.Message, int64, error) {
	var start time.Time

	if policy == RoundtripInclusive {
		start = time.Now()
		if err := channel.Send(payload); err != nil {
			return protocol.Message{}, 0, fmt.Errorf("%w: %v", ErrTransport, err)
		}
	} else {
		if err := channel.Send(payload); err != nil {
			return protocol.Message{}, 0, fmt.Errorf("%w: %v", ErrTransport, err)
		}
		start = time.Now()
	}

	frame, err := channel.Receive()
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		// gorilla/websocket does not distinguish a clean close from a
		// framing-level read error in the error it returns, so every
		// Receive failure here is classified as the peer going away
		// rather than split into a separate ErrTransport case.
		return protocol.Message{}, 0, fmt.Errorf("%w: %v", ErrPeerClosed, err)
	}

	if !frame.Binary {
		return protocol.Message{}, 0, ErrTransport
	}

	msg, err := protocol.Decode(frame.Data)
	if err != nil {
		return protocol.Message{}, 0, err
	}

	if text, isErr := msg.IsError(); isErr {
		return protocol.Message{}, 0, &ClientReportedError{Text: text}
	}

	return msg, elapsed, nil
}
