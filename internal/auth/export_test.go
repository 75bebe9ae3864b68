package auth

import "time"

// MemorySessions returns the number of stored sessions of a memory provider.
func MemorySessions(p Provider) int {
	m := p.(*memory)
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SetMemoryClock replaces the clock of a memory provider.
func SetMemoryClock(p Provider, now func() time.Time) {
	m := p.(*memory)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}
