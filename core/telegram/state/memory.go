package state

import (
	"sync"
	"time"
)

type entry struct {
	state State
	seen  time.Time
}

type memoryManager struct {
	initial State
	idle    time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	chats map[int64]entry
}

// NewMemoryManager returns an in-memory Manager. Chats untouched for longer
// than idle fall back to initial; idle <= 0 keeps entries forever.
func NewMemoryManager(initial State, idle time.Duration) Manager {
	return &memoryManager{
		initial: initial,
		idle:    idle,
		now:     time.Now,
		chats:   make(map[int64]entry),
	}
}

func (m *memoryManager) Get(chatID int64) State {
	m.mu.RLock()
	e, ok := m.chats[chatID]
	m.mu.RUnlock()
	if !ok || m.expired(e) {
		return m.initial
	}
	return e.state
}

func (m *memoryManager) Set(chatID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[chatID] = entry{state: st, seen: m.now()}
	if len(m.chats)%256 == 0 {
		m.sweepLocked()
	}
}

func (m *memoryManager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, chatID)
}

func (m *memoryManager) expired(e entry) bool {
	return m.idle > 0 && m.now().Sub(e.seen) > m.idle
}

func (m *memoryManager) sweepLocked() {
	for id, e := range m.chats {
		if m.expired(e) {
			delete(m.chats, id)
		}
	}
}
