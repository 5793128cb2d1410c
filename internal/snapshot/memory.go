package snapshot

import (
	"context"
	"sync"

	"restaurant-floor/internal/domain"
)

// MemoryChannel is an in-process Channel. Several stores sharing one
// MemoryChannel behave like devices sharing one remote document.
type MemoryChannel struct {
	mu   sync.Mutex
	doc  domain.Document
	has  bool
	subs map[chan domain.Document]struct{}
}

func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{subs: map[chan domain.Document]struct{}{}}
}

func (m *MemoryChannel) Load(context.Context) (domain.Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.has {
		return domain.Document{}, false, nil
	}
	return m.doc.Clone(), true, nil
}

func (m *MemoryChannel) Replace(ctx context.Context, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc, m.has = doc.Clone(), true
	for sub := range m.subs {
		offer(sub, m.doc.Clone())
	}
	return nil
}

func (m *MemoryChannel) Subscribe(ctx context.Context) (<-chan domain.Document, error) {
	sub := make(chan domain.Document, 1)
	m.mu.Lock()
	m.subs[sub] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, sub)
		m.mu.Unlock()
		close(sub)
	}()
	return sub, nil
}
