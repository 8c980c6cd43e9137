// Package keylock provides per-key mutual exclusion for read-modify-write
// sequences against shared aggregates. Two concurrent stock mutations for
// the same SKU must be serialized or both can validate against a stale
// read and jointly oversell; callers hold the key's lock for the whole
// load → mutate → persist span.
package keylock

import (
	"sort"
	"sync"
)

// KeyedMutex is a set of named mutexes, created lazily per key.
// The zero value is not usable; construct with New.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns an empty KeyedMutex.
func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, blocking until available, and returns
// the matching unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	m := k.mutexFor(key)
	m.Lock()
	return m.Unlock
}

// LockAll acquires the mutexes for every distinct key, always in sorted
// order so two callers locking overlapping key sets cannot deadlock.
// The returned function releases all of them.
func (k *KeyedMutex) LockAll(keys ...string) func() {
	distinct := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, key)
	}
	sort.Strings(distinct)

	held := make([]*sync.Mutex, 0, len(distinct))
	for _, key := range distinct {
		m := k.mutexFor(key)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		// Release in reverse acquisition order.
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (k *KeyedMutex) mutexFor(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
