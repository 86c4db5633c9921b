package service

import "sync"

// Feed is one subscription to a broadcaster. Values arrive on C in exact
// publication order; the internal queue is unbounded so a slow consumer
// never stalls the publisher or drops updates.
type Feed[T any] struct {
	C <-chan T

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []T
	finished bool // producer ended the stream; queued values still drain
	closed   bool // consumer detached; queued values are dropped
	out      chan T
	quit     chan struct{}
}

func newFeed[T any]() *Feed[T] {
	f := &Feed[T]{out: make(chan T), quit: make(chan struct{})}
	f.C = f.out
	f.cond = sync.NewCond(&f.mu)
	go f.drain()
	return f
}

// push reports false once the feed is finished or closed so the broadcaster
// can drop it.
func (f *Feed[T]) push(v T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.finished {
		return false
	}
	f.queue = append(f.queue, v)
	f.cond.Signal()
	return true
}

func (f *Feed[T]) drain() {
	for {
		f.mu.Lock()
		for len(f.queue) == 0 && !f.finished && !f.closed {
			f.cond.Wait()
		}
		if f.closed || len(f.queue) == 0 {
			f.mu.Unlock()
			close(f.out)
			return
		}
		v := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()

		// A detached consumer may have stopped receiving; don't block on it.
		select {
		case f.out <- v:
		case <-f.quit:
			close(f.out)
			return
		}
	}
}

// finish ends the feed from the producer side. No further values arrive;
// everything already queued is still delivered to a reading consumer, then
// C is closed.
func (f *Feed[T]) finish() {
	f.mu.Lock()
	if !f.finished {
		f.finished = true
		f.cond.Signal()
	}
	f.mu.Unlock()
}

// Close detaches the feed from the consumer side: queued values are dropped
// and C is closed. Safe to call more than once.
func (f *Feed[T]) Close() {
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.quit)
		f.cond.Signal()
	}
	f.mu.Unlock()
}

// broadcaster fans a single upstream of values out to any number of
// subscribed feeds. Each published value is delivered to every feed exactly
// once, in publication order, without re-triggering the upstream work per
// subscriber.
type broadcaster[T any] struct {
	mu     sync.Mutex
	feeds  []*Feed[T]
	closed bool
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{}
}

// Subscribe attaches a new feed. The feed sees only values published after
// the subscription.
func (b *broadcaster[T]) Subscribe() *Feed[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := newFeed[T]()
	if b.closed {
		f.finish()
		return f
	}
	b.feeds = append(b.feeds, f)
	return f
}

// Publish enqueues v on every subscribed feed. It never blocks; the lock is
// held across the whole fan-out so concurrent publishers cannot interleave
// their values differently on different feeds.
func (b *broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.feeds[:0]
	for _, f := range b.feeds {
		if f.push(v) {
			kept = append(kept, f)
		}
	}
	b.feeds = kept
}

// Close ends the stream for all current and future subscribers. Values
// already queued on a feed are still delivered to its reading consumer.
func (b *broadcaster[T]) Close() {
	b.mu.Lock()
	feeds := b.feeds
	b.feeds = nil
	b.closed = true
	b.mu.Unlock()
	for _, f := range feeds {
		f.finish()
	}
}
