package sessionstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/pos-checkout/internal/application/checkout"
	"github.com/jhoicas/pos-checkout/internal/domain"
	"github.com/jhoicas/pos-checkout/internal/domain/allocation"
)

var _ checkout.SessionStore = (*MemoryStore)(nil)

type memoryEntry struct {
	snap      allocation.Snapshot
	expiresAt time.Time
}

// MemoryStore guarda sesiones en memoria del proceso. Sirve para una sola instancia y para tests.
// Guarda snapshots: cada llamada trabaja sobre su propia copia de la sesión.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore crea el store; ttl <= 0 desactiva la expiración.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

// WithClock reemplaza el reloj (tests de expiración).
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Create(_ context.Context, key string, s *allocation.Session) error {
	if s == nil {
		return fmt.Errorf("%w: sesión nil", domain.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lookup(key); ok {
		return fmt.Errorf("%w: la sesión %s ya existe", domain.ErrConflict, key)
	}
	m.put(key, s.Snapshot())
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (*allocation.Session, error) {
	m.mu.Lock()
	e, ok := m.lookup(key)
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return allocation.Restore(e.snap)
}

func (m *MemoryStore) Update(_ context.Context, key string, fn func(*allocation.Session) error) (*allocation.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok {
		return nil, domain.ErrNotFound
	}
	s, err := allocation.Restore(e.snap)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return s, err
	}
	if s.State().IsTerminal() {
		delete(m.entries, key)
		return s, nil
	}
	m.put(key, s.Snapshot())
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len cantidad de sesiones vigentes.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.entries {
		if _, ok := m.lookup(key); ok {
			n++
		}
	}
	return n
}

// lookup devuelve la entrada vigente y purga la expirada. Requiere m.mu tomado.
func (m *MemoryStore) lookup(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (m *MemoryStore) put(key string, snap allocation.Snapshot) {
	e := memoryEntry{snap: snap}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.entries[key] = e
}
