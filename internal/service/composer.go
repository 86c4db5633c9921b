package service

import (
	"sync"

	"github.com/msomdec/collage-studio/internal/domain"
)

// PreviewUpdate pairs a freshly derived composite with the size of the
// working set it was derived from. The two always travel together so a
// consumer can never observe a count that belongs to a different preview.
type PreviewUpdate struct {
	Preview *domain.Image // nil when the working set is empty
	Count   int
}

// CollageComposer derives the composite preview. It subscribes to working
// set changes and, for every change in order, synchronously recomputes the
// composite through the pure compositor and publishes the result. Deriving
// from an empty set yields an absent preview, never an error.
type CollageComposer struct {
	compositor domain.Compositor
	target     domain.Size

	mu      sync.Mutex
	preview *domain.Image
	count   int

	updates *broadcaster[PreviewUpdate]
	feed    *Feed[[]domain.Image]
	done    chan struct{}
}

// NewCollageComposer attaches a composer to the store. The initial empty
// state is published immediately, before any mutation notification.
func NewCollageComposer(store *WorkingSetStore, compositor domain.Compositor, target domain.Size) *CollageComposer {
	c := &CollageComposer{
		compositor: compositor,
		target:     target,
		updates:    newBroadcaster[PreviewUpdate](),
		feed:       store.Changes(),
		done:       make(chan struct{}),
	}
	c.derive(store.Current())
	go c.run()
	return c
}

func (c *CollageComposer) run() {
	defer close(c.done)
	for images := range c.feed.C {
		c.derive(images)
	}
}

// derive recomputes the preview for one working-set value and publishes
// the paired update. Snapshot replacement and publication happen under the
// same lock, so Snapshot never returns a torn preview/count pair.
func (c *CollageComposer) derive(images []domain.Image) {
	composite := c.compositor.Composite(images, c.target)
	c.mu.Lock()
	c.preview = composite
	c.count = len(images)
	c.updates.Publish(PreviewUpdate{Preview: composite, Count: len(images)})
	c.mu.Unlock()
}

// Snapshot returns the most recently published preview and its count.
func (c *CollageComposer) Snapshot() (*domain.Image, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview, c.count
}

// Updates subscribes to preview changes.
func (c *CollageComposer) Updates() *Feed[PreviewUpdate] {
	return c.updates.Subscribe()
}

// Close detaches the composer from the store and ends its update stream.
// Changes still queued at close time may go underived.
func (c *CollageComposer) Close() {
	c.feed.Close()
	<-c.done
	c.updates.Close()
}
