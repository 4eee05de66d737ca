package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/ParthDesai/reliability-measurement-server/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChannel is an in-memory BinaryChannel used to exercise Exchange
// without a real network, mirroring the teacher's MockConn pattern
// (chimera-pool-core/cmd/stratum/main_test.go).
type fakeChannel struct {
	sendDelay  time.Duration
	sent       []byte
	response   Frame
	receiveErr error
}

func (f *fakeChannel) Send(data []byte) error {
	f.sent = data
	if f.sendDelay > 0 {
		time.Sleep(f.sendDelay)
	}
	return nil
}

func (f *fakeChannel) Receive() (Frame, error) {
	if f.receiveErr != nil {
		return Frame{}, f.receiveErr
	}
	return f.response, nil
}

func encodedInfo(t *testing.T, text string) []byte {
	b, err := protocol.Encode(protocol.DataInfo(text))
	require.NoError(t, err)
	return b
}

func TestExchangeReceiveOnlyExcludesSendTime(t *testing.T) {
	ch := &fakeChannel{
		sendDelay: 30 * time.Millisecond,
		response:  Frame{Binary: true, Data: encodedInfo(t, "ack")},
	}

	_, elapsed, err := Exchange(ch, []byte("challenge"), ReceiveOnly)
	require.NoError(t, err)
	assert.Less(t, elapsed, int64(30), "ReceiveOnly must not count send transmission time")
}

func TestExchangeRoundtripInclusiveIncludesSendTime(t *testing.T) {
	ch := &fakeChannel{
		sendDelay: 30 * time.Millisecond,
		response:  Frame{Binary: true, Data: encodedInfo(t, "ack")},
	}

	_, elapsed, err := Exchange(ch, []byte("challenge"), RoundtripInclusive)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, int64(30), "RoundtripInclusive must count send transmission time")
}

func TestExchangeRejectsTextFrame(t *testing.T) {
	ch := &fakeChannel{response: Frame{Binary: false, Data: []byte("not binary")}}

	_, _, err := Exchange(ch, []byte("challenge"), ReceiveOnly)
	assert.ErrorIs(t, err, ErrTransport, "P10: a text frame response must fail with TransportError")
}

func TestExchangeFailsOnPeerClosed(t *testing.T) {
	ch := &fakeChannel{receiveErr: errors.New("EOF")}

	_, _, err := Exchange(ch, []byte("challenge"), ReceiveOnly)
	assert.ErrorIs(t, err, ErrPeerClosed)
}

func TestExchangeSurfacesClientReportedError(t *testing.T) {
	ch := &fakeChannel{response: Frame{Binary: true, Data: encodedInfo(t, "")}}
	errMsg, err := protocol.Encode(protocol.DataError("Failed CPU measurements"))
	require.NoError(t, err)
	ch.response = Frame{Binary: true, Data: errMsg}

	_, _, err = Exchange(ch, []byte("challenge"), ReceiveOnly)
	var reported *ClientReportedError
	require.ErrorAs(t, err, &reported)
	assert.Equal(t, "Failed CPU measurements", reported.Text)
}
