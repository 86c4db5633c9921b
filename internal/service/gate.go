package service

import (
	"sync"

	"github.com/msomdec/collage-studio/internal/domain"
)

// SelectionGate forwards images from a single upstream source into the
// picker pipeline while the working set has room, then permanently stops.
// The predicate is evaluated per event against the live working-set length;
// once it fails the gate never re-opens, even if the set later shrinks — a
// gate models one "fill up to N" session, and re-arming means building a
// fresh gate on a fresh source.
//
// Admitted images are handed to the sink synchronously before the next
// event is evaluated, so the length predicate always sees the effect of the
// previous admission and the bound cannot be overshot by in-flight events.
// The forwarded stream is multicast: one upstream read fans out to every
// subscriber, so an extra observer never re-triggers the source.
type SelectionGate struct {
	source <-chan domain.Image
	length func() int
	max    int
	sink   func(domain.Image)

	out    *broadcaster[domain.Image]
	done   chan struct{}
	detach chan struct{}
	once   sync.Once
}

// NewSelectionGate arms a gate over source. length reports the current
// working-set size and max is the bound; forwarding stops for good the
// first time length() >= max is observed. sink receives each admitted image
// before the gate reads the next event.
func NewSelectionGate(source <-chan domain.Image, length func() int, max int, sink func(domain.Image)) *SelectionGate {
	g := &SelectionGate{
		source: source,
		length: length,
		max:    max,
		sink:   sink,
		out:    newBroadcaster[domain.Image](),
		done:   make(chan struct{}),
		detach: make(chan struct{}),
	}
	go g.run()
	return g
}

func (g *SelectionGate) run() {
	defer close(g.done)
	defer g.out.Close()
	for {
		select {
		case <-g.detach:
			return
		case img, ok := <-g.source:
			if !ok {
				return
			}
			if g.length() >= g.max {
				// Bound reached: stop forwarding from this source entirely.
				return
			}
			g.sink(img)
			g.out.Publish(img)
		}
	}
}

// Forwarded subscribes to the gated stream.
func (g *SelectionGate) Forwarded() *Feed[domain.Image] {
	return g.out.Subscribe()
}

// Done is closed once the gate has stopped, whether by bound, upstream
// completion, or detach.
func (g *SelectionGate) Done() <-chan struct{} {
	return g.done
}

// Detach stops the gate immediately so stale events from an old session
// cannot reach the current working set. Safe to call more than once.
func (g *SelectionGate) Detach() {
	g.once.Do(func() { close(g.detach) })
}
