// Package session holds the per-process device state: identity, the
// network-synced clock, the reading counter and the last-send marker.
package session

import (
	"sync"
	"time"
)

// Session is the device session. The device UID and location are fixed at
// startup; the clock is written by the network connector and read by the
// measurement loop and the diagnostics server.
type Session struct {
	uid      string
	location string

	mu          sync.Mutex
	syncedEpoch int64
	syncedAt    time.Time
	startEpoch  int64
	readings    uint64
	lastSend    int64

	now func() time.Time
}

// Snapshot is a point-in-time view of the session for diagnostics.
type Snapshot struct {
	UID          string `json:"uid"`
	Location     string `json:"location"`
	Epoch        int64  `json:"epoch"`
	StartEpoch   int64  `json:"start_epoch"`
	Uptime       int64  `json:"uptime"`
	ReadingCount uint64 `json:"reading_count"`
	LastSend     int64  `json:"last_send,omitempty"`
}

func New(uid, location string) *Session {
	return &Session{
		uid:      uid,
		location: location,
		now:      time.Now,
	}
}

func (s *Session) UID() string {
	return s.uid
}

func (s *Session) Location() string {
	return s.location
}

// Sync records an authoritative epoch fetched from the network. The first
// nonzero epoch also fixes the session start epoch; later resyncs only move
// the current clock. A zero epoch is ignored.
func (s *Session) Sync(epoch int64) {
	if epoch == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncedEpoch = epoch
	s.syncedAt = s.now()
	if s.startEpoch == 0 {
		s.startEpoch = epoch
	}
}

// Synced reports whether the clock has been set at least once.
func (s *Session) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncedEpoch != 0
}

// Epoch returns the current epoch seconds, advanced monotonically from the
// most recent sync. Zero until the first sync.
func (s *Session) Epoch() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch()
}

func (s *Session) epoch() int64 {
	if s.syncedEpoch == 0 {
		return 0
	}
	return s.syncedEpoch + int64(s.now().Sub(s.syncedAt)/time.Second)
}

// Uptime returns seconds elapsed since the session start epoch.
func (s *Session) Uptime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startEpoch == 0 {
		return 0
	}
	return s.epoch() - s.startEpoch
}

// NextReading increments the reading counter and returns the new count.
func (s *Session) NextReading() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings++
	return s.readings
}

// ReadingCount returns the number of readings taken since startup.
func (s *Session) ReadingCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readings
}

// MarkSent records the epoch at which the most recent publish cycle
// completed.
func (s *Session) MarkSent(epoch int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSend = epoch
}

// LastSend returns the epoch of the most recent completed publish cycle,
// zero if none has completed yet.
func (s *Session) LastSend() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSend
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		UID:          s.uid,
		Location:     s.location,
		Epoch:        s.epoch(),
		StartEpoch:   s.startEpoch,
		ReadingCount: s.readings,
		LastSend:     s.lastSend,
	}
	if s.startEpoch != 0 {
		snap.Uptime = snap.Epoch - s.startEpoch
	}
	return snap
}
