package acceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParthDesai/reliability-measurement-server/internal/directory"
	"github.com/ParthDesai/reliability-measurement-server/internal/session"
	"github.com/ParthDesai/reliability-measurement-server/internal/transport"
)

// closedChannel immediately reports the peer as gone, exercising the
// abort path without needing a real measurement exchange.
type closedChannel struct{}

func (closedChannel) Send(data []byte) error { return nil }
func (closedChannel) Receive() (transport.Frame, error) {
	return transport.Frame{}, assertAnError{}
}

type assertAnError struct{}

func (assertAnError) Error() string { return "connection closed" }

func TestAcceptTracksActiveSessionCount(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.CPUCount = 1
	cfg.NetworkCount = 1
	driver, err := session.NewDriver(cfg, nil, directory.New(), session.NopMetrics{})
	require.NoError(t, err)
	a := New(driver, nil)

	assert.Equal(t, int64(0), a.ActiveSessions())

	done := make(chan struct{})
	a.Go(context.Background(), closedChannel{})
	go func() {
		a.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("accept did not complete on a closed channel")
	}

	assert.Equal(t, int64(0), a.ActiveSessions())
}
