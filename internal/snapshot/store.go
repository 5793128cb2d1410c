// Package snapshot keeps the last-known copy of the shared restaurant
// document and moves whole documents to and from a sync channel.
//
// Writes are last-writer-wins: a commit computed from an old snapshot
// overwrites anything written since. There is no compare-and-swap.
package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
)

// Channel carries whole documents between devices.
type Channel interface {
	// Load returns the stored document; ok is false when none exists yet.
	Load(ctx context.Context) (doc domain.Document, ok bool, err error)
	// Replace overwrites the stored document and notifies subscribers.
	Replace(ctx context.Context, doc domain.Document) error
	// Subscribe delivers every full document written after the call. The
	// returned channel is closed when ctx ends.
	Subscribe(ctx context.Context) (<-chan domain.Document, error)
}

// Mutator computes the next document from the current one. Engine
// operations fit this shape once their arguments are bound.
type Mutator func(domain.Document) (domain.Document, error)

var ErrNotLoaded = errors.New("snapshot not loaded")

type Store struct {
	ch     Channel
	dineIn int
	now    func() time.Time
	log    *logger.Logger

	mu     sync.RWMutex
	doc    domain.Document
	loaded bool
	sub    <-chan domain.Document

	commitMu sync.Mutex

	watchMu  sync.Mutex
	watchers map[int]chan domain.Document
	nextID   int
}

func NewStore(ch Channel, dineIn int, log *logger.Logger) *Store {
	return &Store{
		ch:       ch,
		dineIn:   dineIn,
		now:      time.Now,
		log:      log,
		watchers: map[int]chan domain.Document{},
	}
}

// Read returns the last-known snapshot. Callers must treat it as read-only.
func (s *Store) Read() domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Open subscribes, loads the current document and writes the default one if
// the channel has none. It is a no-op once the store is loaded.
func (s *Store) Open(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}
	sub, err := s.ch.Subscribe(ctx)
	if err != nil {
		return &domain.SyncFailureError{Op: "subscribe", Err: err}
	}
	doc, ok, err := s.ch.Load(ctx)
	if err != nil {
		return &domain.SyncFailureError{Op: "load", Err: err}
	}
	if !ok {
		doc = domain.DefaultDocument(s.dineIn, s.now().UnixMilli())
		if err := s.ch.Replace(ctx, doc); err != nil {
			return &domain.SyncFailureError{Op: "bootstrap", Err: err}
		}
		s.log.Info("document_bootstrapped", map[string]any{"tables": len(doc.Tables)})
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	s.apply(doc)
	return nil
}

// Run opens the store if needed and then applies every remote snapshot until
// ctx ends or the subscription closes.
func (s *Store) Run(ctx context.Context) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	s.mu.RLock()
	sub := s.sub
	s.mu.RUnlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case doc, ok := <-sub:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return &domain.SyncFailureError{Op: "subscribe", Err: errors.New("subscription closed")}
			}
			if !s.applyNewer(doc) {
				s.log.Debug("snapshot_stale", map[string]any{"last_updated": doc.LastUpdated})
				continue
			}
			s.log.Debug("snapshot_received", map[string]any{"last_updated": doc.LastUpdated})
		}
	}
}

// Commit runs fn on the last-known snapshot and replaces the shared document
// with the result. Engine errors come back unchanged. A failed write comes
// back as SyncFailureError and the local snapshot stays as it was.
func (s *Store) Commit(ctx context.Context, fn Mutator) (domain.Document, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if !s.Loaded() {
		return domain.Document{}, &domain.SyncFailureError{Op: "commit", Err: ErrNotLoaded}
	}
	base := s.Read()
	next, err := fn(base)
	if err != nil {
		return base, err
	}
	stamp := s.now().UnixMilli()
	if stamp <= base.LastUpdated {
		stamp = base.LastUpdated + 1
	}
	next.LastUpdated = stamp
	next.DroppedNotifications = nil

	if err := s.ch.Replace(ctx, next); err != nil {
		s.log.Error("commit_failed", err, map[string]any{"last_updated": base.LastUpdated})
		return base, &domain.SyncFailureError{Op: "replace", Err: err}
	}
	s.apply(next)
	return next, nil
}

// Watch streams snapshots as they are applied, starting with the current one.
// Slow readers only see the latest document. Call the returned func to stop.
func (s *Store) Watch() (<-chan domain.Document, func()) {
	out := make(chan domain.Document, 1)
	s.watchMu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = out
	s.watchMu.Unlock()

	if s.Loaded() {
		offer(out, s.Read())
	}

	var once sync.Once
	return out, func() {
		once.Do(func() {
			s.watchMu.Lock()
			delete(s.watchers, id)
			s.watchMu.Unlock()
			close(out)
		})
	}
}

func (s *Store) apply(doc domain.Document) {
	s.mu.Lock()
	s.doc = doc
	s.loaded = true
	s.mu.Unlock()
	s.notify(doc)
}

// applyNewer applies doc only when it is newer than the cached snapshot.
// Commit stamps always move forward, so anything at or below the cache is
// an echo of a write already applied here.
func (s *Store) applyNewer(doc domain.Document) bool {
	s.mu.Lock()
	if s.loaded && doc.LastUpdated <= s.doc.LastUpdated {
		s.mu.Unlock()
		return false
	}
	s.doc = doc
	s.loaded = true
	s.mu.Unlock()
	s.notify(doc)
	return true
}

func (s *Store) notify(doc domain.Document) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, w := range s.watchers {
		offer(w, doc)
	}
}

// offer replaces whatever is buffered in a one-slot channel with doc.
func offer(ch chan domain.Document, doc domain.Document) {
	for {
		select {
		case ch <- doc:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
