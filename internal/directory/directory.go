// Package directory holds the process-lifetime, in-memory mapping from
// session id to recorded measurement results.
package directory

import (
	"sync"

	"github.com/google/uuid"
)

// ClientRecord is the outcome of one fully completed measurement
// session: the final score and the ordered per-challenge timing
// vectors it was derived from.
type ClientRecord struct {
	Score            int
	CPUTimingsMS     []uint64
	NetworkTimingsMS []uint64
}

// Directory is a single-writer-many-reader map from session id to
// ClientRecord. Records are immutable once inserted; re-insertion under
// an existing id is not expected to occur given 128-bit random ids, and
// is left undefined rather than guarded against, matching the teacher's
// vardiff.Manager (a single map behind one sync.RWMutex, no sharding).
type Directory struct {
	mu      sync.RWMutex
	records map[uuid.UUID]ClientRecord
}

// New creates an empty Directory.
func New() *Directory {
	return &Directory{records: make(map[uuid.UUID]ClientRecord)}
}

// Insert records the outcome of a completed session. The exclusive
// lock is held only for the duration of the map write.
func (d *Directory) Insert(id uuid.UUID, record ClientRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records[id] = record
}

// ReadSnapshot returns the record for id, if any.
func (d *Directory) ReadSnapshot(id uuid.UUID) (ClientRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	record, ok := d.records[id]
	return record, ok
}

// Len returns the number of recorded sessions.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}
