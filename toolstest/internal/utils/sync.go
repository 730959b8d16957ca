package utils

import (
	"sync"
)

// OptionalMutex guards a shared mapping only when Enabled is set. A disabled mutex makes Lock and
// Unlock no-ops.
type OptionalMutex struct {
	mutex   sync.Mutex
	Enabled bool
}

var _ sync.Locker = &OptionalMutex{}

func (m *OptionalMutex) Lock() {
	if m.Enabled {
		m.mutex.Lock()
	}
}

func (m *OptionalMutex) Unlock() {
	if m.Enabled {
		m.mutex.Unlock()
	}
}

// Held reports whether another caller currently holds the lock. Always false when disabled.
func (m *OptionalMutex) Held() bool {
	if !m.Enabled {
		return false
	}
	if m.mutex.TryLock() {
		m.mutex.Unlock()
		return false
	}

	return true
}
