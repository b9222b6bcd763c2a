// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/warp/edutime/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLocked(key)
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(key, value)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}

func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.keysLocked(prefix), nil
}

// Documents are copied in and out so callers can't alias stored bytes.
func (m *Memory) getLocked(key string) ([]byte, bool, error) {
	v, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) putLocked(key string, value []byte) {
	m.docs[key] = append([]byte(nil), value...)
}

func (m *Memory) keysLocked(prefix string) []string {
	var keys []string
	for k := range m.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(generic.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()

	if err := fn(&txMemoryView{parent: tm}); err != nil {
		tm.docs = snapshot
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() map[string][]byte {
	out := make(map[string][]byte, len(tm.docs))
	for k, v := range tm.docs {
		out[k] = v
	}
	return out
}

// txMemoryView writes straight through; the parent lock is already held.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) Get(_ context.Context, key string) ([]byte, bool, error) {
	return tv.parent.getLocked(key)
}

func (tv *txMemoryView) Put(_ context.Context, key string, value []byte) error {
	tv.parent.putLocked(key, value)
	return nil
}

func (tv *txMemoryView) Delete(_ context.Context, key string) error {
	delete(tv.parent.docs, key)
	return nil
}

func (tv *txMemoryView) Keys(_ context.Context, prefix string) ([]string, error) {
	return tv.parent.keysLocked(prefix), nil
}
