package service

import (
	"sync"

	"github.com/msomdec/collage-studio/internal/domain"
)

// MaxWorkingSetImages is the hard bound on the picker working set. The
// bound is enforced by the selection gate, not by the store; it lives here
// so both sides name the same constant.
const MaxWorkingSetImages = 6

// WorkingSetStore is the single owner of the ordered set of currently
// selected images. Reads are synchronous; every mutation atomically
// replaces the stored sequence and publishes the new value to subscribers
// in exact mutation order, with no coalescing.
//
// Append must only be called with images already admitted by the selection
// gate; the store does not re-validate the bound.
type WorkingSetStore struct {
	mu      sync.Mutex
	images  []domain.Image
	changes *broadcaster[[]domain.Image]
}

// NewWorkingSetStore creates an empty store.
func NewWorkingSetStore() *WorkingSetStore {
	return &WorkingSetStore{changes: newBroadcaster[[]domain.Image]()}
}

// Current returns a snapshot of the working set in selection order.
func (s *WorkingSetStore) Current() []domain.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Image, len(s.images))
	copy(out, s.images)
	return out
}

// Len returns the current working-set size.
func (s *WorkingSetStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// Append replaces the stored sequence with current+[img]. The read, the
// replacement, and the change publication happen under one lock, so no
// concurrent producer can fold against a stale value and no notification
// can be reordered against the mutation that produced it.
func (s *WorkingSetStore) Append(img domain.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]domain.Image, len(s.images)+1)
	copy(next, s.images)
	next[len(s.images)] = img
	s.images = next
	s.changes.Publish(next)
}

// Clear resets the working set to empty and notifies subscribers.
func (s *WorkingSetStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = nil
	s.changes.Publish(nil)
}

// Changes subscribes to the store's change notifications. Each mutation
// delivers the full new working set.
func (s *WorkingSetStore) Changes() *Feed[[]domain.Image] {
	return s.changes.Subscribe()
}

// Close ends the change stream. The store remains readable.
func (s *WorkingSetStore) Close() {
	s.changes.Close()
}
