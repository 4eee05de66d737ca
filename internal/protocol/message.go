// Package protocol implements the self-describing binary wire format
// exchanged between the probe server and a connecting client.
package protocol

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Kind tags a Message's active variant.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindChallengeCPU
	KindChallengeNetwork
	KindResponseCPU
	KindResponseNetwork
	KindDataInfo
	KindDataError
	KindDataResult
)

// ErrCodec is returned when Decode receives malformed or structurally
// invalid input.
var ErrCodec = errors.New("protocol: malformed message")

// Message is the only value that ever crosses the wire. Exactly one of
// Payload or Text is meaningful, depending on Kind.
type Message struct {
	Kind    Kind   `msgpack:"kind"`
	Payload []byte `msgpack:"payload,omitempty"`
	Text    string `msgpack:"text,omitempty"`
}

// ChallengeCPU wraps a serialized time-lock puzzle for the wire.
func ChallengeCPU(payload []byte) Message {
	return Message{Kind: KindChallengeCPU, Payload: payload}
}

// ChallengeNetwork wraps a roundtrip payload for the wire.
func ChallengeNetwork(payload []byte) Message {
	return Message{Kind: KindChallengeNetwork, Payload: payload}
}

// ResponseCPU wraps a big-endian CPU challenge answer.
func ResponseCPU(answer []byte) Message {
	return Message{Kind: KindResponseCPU, Payload: answer}
}

// ResponseNetwork wraps an echoed roundtrip payload.
func ResponseNetwork(echo []byte) Message {
	return Message{Kind: KindResponseNetwork, Payload: echo}
}

// DataInfo builds a human-readable, non-programmatic status message.
func DataInfo(text string) Message {
	return Message{Kind: KindDataInfo, Text: text}
}

// DataError builds an error side-channel message. Receipt of this
// variant by either peer aborts the session.
func DataError(text string) Message {
	return Message{Kind: KindDataError, Text: text}
}

// DataResult builds a human-readable measurement result message.
func DataResult(text string) Message {
	return Message{Kind: KindDataResult, Text: text}
}

// IsError reports whether m is a Data.Error variant, and returns its text.
func (m Message) IsError() (string, bool) {
	if m.Kind == KindDataError {
		return m.Text, true
	}
	return "", false
}

// Encode serializes m into its wire representation. Encode is total for
// every Message value constructed through the helpers above.
func Encode(m Message) ([]byte, error) {
	b, err := msgpack.Marshal(&m)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode: %w", err)
	}
	return b, nil
}

// Decode parses the wire representation produced by Encode. It fails
// with ErrCodec on malformed input or an unrecognized Kind tag.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	if m.Kind == KindUnknown || m.Kind > KindDataResult {
		return Message{}, fmt.Errorf("%w: unrecognized kind %d", ErrCodec, m.Kind)
	}
	return m, nil
}
