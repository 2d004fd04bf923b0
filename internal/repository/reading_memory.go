package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"noise_monitor/internal/models"
)

// DefaultHistoryLimit is the number of readings kept per device.
const DefaultHistoryLimit = 500

// MemoryHistory keeps a bounded, newest-first history of readings per device.
// It serves as the only store when no external store is configured and as a
// local mirror otherwise.
type MemoryHistory struct {
	mu      sync.RWMutex
	limit   int
	devices map[string]*ringBuffer
}

func NewMemoryHistory(limit int) *MemoryHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryHistory{
		limit:   limit,
		devices: make(map[string]*ringBuffer),
	}
}

// Ensure implementation of ReadingStore interface at compile time.
var _ ReadingStore = (*MemoryHistory)(nil)

// Limit reports the per-device capacity.
func (m *MemoryHistory) Limit() int { return m.limit }

// Append stores r as the newest reading of its device, evicting the oldest
// one when the device is at capacity.
func (m *MemoryHistory) Append(_ context.Context, r models.DeviceReading) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf, ok := m.devices[r.DeviceID]
	if !ok {
		buf = &ringBuffer{capacity: m.limit}
		m.devices[r.DeviceID] = buf
	}
	buf.push(r)
	return nil
}

// Latest returns the newest reading of deviceID, or nil if none is stored.
func (m *MemoryHistory) Latest(_ context.Context, deviceID string) (*models.DeviceReading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	buf, ok := m.devices[deviceID]
	if !ok || buf.len() == 0 {
		return nil, nil
	}
	r := buf.at(0)
	return &r, nil
}

// History returns up to limit readings of deviceID, newest first, whose
// RecordedAt lies within [from, to]. Zero bounds are open.
func (m *MemoryHistory) History(_ context.Context, deviceID string, from, to time.Time, limit int) ([]models.DeviceReading, error) {
	if limit <= 0 {
		return []models.DeviceReading{}, nil
	}
	if limit > m.limit {
		limit = m.limit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	buf, ok := m.devices[deviceID]
	if !ok {
		return []models.DeviceReading{}, nil
	}
	out := make([]models.DeviceReading, 0, min(limit, buf.len()))
	for i := 0; i < buf.len() && len(out) < limit; i++ {
		r := buf.at(i)
		if inRange(r.RecordedAt, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// LatestAll returns the newest reading of every known device, ordered by device ID.
func (m *MemoryHistory) LatestAll(_ context.Context) ([]models.DeviceReading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.DeviceReading, 0, len(m.devices))
	for _, buf := range m.devices {
		if buf.len() > 0 {
			out = append(out, buf.at(0))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

// ringBuffer is a fixed-capacity circular buffer. Storage grows lazily up
// to capacity, after which the oldest slot is overwritten.
type ringBuffer struct {
	items    []models.DeviceReading
	head     int // index of the newest item
	capacity int
}

func (b *ringBuffer) push(r models.DeviceReading) {
	if len(b.items) < b.capacity {
		b.items = append(b.items, r)
		b.head = len(b.items) - 1
		return
	}
	b.head = (b.head + 1) % b.capacity
	b.items[b.head] = r
}

func (b *ringBuffer) len() int { return len(b.items) }

// at returns the i-th newest item; at(0) is the most recent.
func (b *ringBuffer) at(i int) models.DeviceReading {
	n := len(b.items)
	return b.items[(b.head-i+n)%n]
}
