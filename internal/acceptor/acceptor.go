// Package acceptor bridges an upgraded WebSocket connection into a
// tracked measurement session, mirroring the teacher's
// StratumServer.handleConnection lifecycle (per-connection id, active
// count, goroutine-tracked cleanup) without any of its Stratum-specific
// message handling.
package acceptor

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ParthDesai/reliability-measurement-server/internal/session"
	"github.com/ParthDesai/reliability-measurement-server/internal/transport"
)

// ActiveGauge observes sessions starting and finishing, satisfied by
// internal/metrics.Collector. Optional: a nil gauge is a no-op.
type ActiveGauge interface {
	SessionStarted()
	SessionFinished()
}

// Acceptor tracks active sessions and dispatches each accepted
// connection to a session.Driver run, the same accounting the teacher
// keeps in StratumServer.connectionCount.
type Acceptor struct {
	driver *session.Driver
	gauge  ActiveGauge
	wg     sync.WaitGroup

	active int64
}

// New builds an Acceptor backed by driver. gauge may be nil.
func New(driver *session.Driver, gauge ActiveGauge) *Acceptor {
	return &Acceptor{driver: driver, gauge: gauge}
}

// ActiveSessions reports the number of sessions currently running.
func (a *Acceptor) ActiveSessions() int64 {
	return atomic.LoadInt64(&a.active)
}

// Accept draws a fresh session id (never transmitted to the client)
// and runs the measurement protocol over channel to completion,
// blocking the calling goroutine. Callers invoke Accept from its own
// goroutine per connection, matching the teacher's
// `go s.handleConnection(conn)` dispatch.
func (a *Acceptor) Accept(ctx context.Context, channel transport.BinaryChannel) {
	id := uuid.New()

	atomic.AddInt64(&a.active, 1)
	defer atomic.AddInt64(&a.active, -1)
	if a.gauge != nil {
		a.gauge.SessionStarted()
		defer a.gauge.SessionFinished()
	}

	log.Printf("session %s: accepted", id)

	if _, err := a.driver.Run(ctx, id, channel); err != nil {
		log.Printf("session %s: terminated: %v", id, err)
		return
	}

	log.Printf("session %s: completed", id)
}

// Wait blocks until every session dispatched through Go has returned.
// Callers that spawn Accept via the Go helper below can use this for
// graceful shutdown, matching the teacher's StratumServer.wg.Wait().
func (a *Acceptor) Wait() {
	a.wg.Wait()
}

// Go spawns Accept in its own tracked goroutine.
func (a *Acceptor) Go(ctx context.Context, channel transport.BinaryChannel) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Accept(ctx, channel)
	}()
}
