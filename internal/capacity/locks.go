package capacity

import (
	"sync"

	"github.com/google/uuid"
)

// lineLocks сериализует запись по линии. Чтение не блокируется:
// согласованность чтения обеспечивают версии хранилищ.
type lineLocks struct {
	mu sync.Mutex
	m  map[uuid.UUID]*sync.Mutex
}

func newLineLocks() *lineLocks {
	return &lineLocks{m: make(map[uuid.UUID]*sync.Mutex)}
}

// lock берёт замок линии и возвращает функцию освобождения.
// uuid.Nil — замок набора линий (создание, переименование).
func (l *lineLocks) lock(lineID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.m[lineID]
	if !ok {
		m = &sync.Mutex{}
		l.m[lineID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
