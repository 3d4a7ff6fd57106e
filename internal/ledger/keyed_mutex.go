package ledger

import (
	"sync"
)

// keyedMutex serializes operations per fingerprint so that the
// lazy-expiry-on-read mutation never races a concurrent write for the
// same device. Entries are never removed; the key space is bounded by
// the number of distinct devices seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[string]*sync.Mutex{}
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
