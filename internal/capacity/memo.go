package capacity

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/repository"
)

type memoKey struct {
	line     uuid.UUID
	start    calendar.Date
	n        int
	versions repository.Versions
}

// memo — ограниченный кэш календарей. Вытесняет самые старые записи.
// Ключ содержит версии хранилищ, так что любая запись делает старые ключи недостижимыми.
type memo struct {
	mu    sync.Mutex
	limit int
	items map[memoKey][]EffectiveDay
	order []memoKey
}

func newMemo(limit int) *memo {
	return &memo{limit: limit, items: make(map[memoKey][]EffectiveDay)}
}

func (m *memo) get(k memoKey) ([]EffectiveDay, bool) {
	if m == nil || m.limit <= 0 {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	days, ok := m.items[k]
	if !ok {
		return nil, false
	}
	return cloneDays(days), true
}

func (m *memo) put(k memoKey, days []EffectiveDay) {
	if m == nil || m.limit <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[k]; ok {
		return
	}
	for len(m.order) >= m.limit {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.items, oldest)
	}
	m.items[k] = cloneDays(days)
	m.order = append(m.order, k)
}

func (m *memo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
