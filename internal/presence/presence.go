// Package presence records when each user was last seen by the request gate.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/hrms/internal/core/clock"
)

// Reader is the read side used by the team dashboards.
type Reader interface {
	LastSeen(ctx context.Context, userIDs []int64) (map[int64]time.Time, error)
}

// Memory keeps presence in process. It is only accurate for a single instance.
type Memory struct {
	mu    sync.RWMutex
	seen  map[int64]time.Time
	ttl   time.Duration
	clock clock.Clock
}

func NewMemory(ttl time.Duration, clk clock.Clock) *Memory {
	return &Memory{seen: make(map[int64]time.Time), ttl: ttl, clock: clk}
}

func (m *Memory) Touch(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[userID] = m.clock.Now().UTC()
	return nil
}

// LastSeen omits users not seen within the ttl.
func (m *Memory) LastSeen(_ context.Context, userIDs []int64) (map[int64]time.Time, error) {
	now := m.clock.Now()
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]time.Time, len(userIDs))
	for _, id := range userIDs {
		t, ok := m.seen[id]
		if !ok {
			continue
		}
		if m.ttl > 0 && now.Sub(t) > m.ttl {
			continue
		}
		out[id] = t
	}
	return out, nil
}
