package service

import (
	"testing"
	"time"

	"github.com/msomdec/collage-studio/internal/domain"
)

// armGate wires a gate to a store the way a picker session does: admitted
// images append synchronously.
func armGate(store *WorkingSetStore) (chan domain.Image, *SelectionGate) {
	source := make(chan domain.Image)
	gate := NewSelectionGate(source, store.Len, MaxWorkingSetImages, store.Append)
	return source, gate
}

func TestGate_AdmitsUpToBoundInOrder(t *testing.T) {
	store := NewWorkingSetStore()
	defer store.Close()
	source, gate := armGate(store)
	defer gate.Detach()

	for _, id := range []string{"a", "b", "c"} {
		source <- testImage(id)
	}

	waitFor(t, func() bool { return store.Len() == 3 })
	got := ids(store.Current())
	for i, want := range []string{"a", "b", "c"} {
		if got[i] != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i])
		}
	}
}

func TestGate_StopsPermanentlyAtBound(t *testing.T) {
	store := NewWorkingSetStore()
	defer store.Close()
	source, gate := armGate(store)

	for i := 0; i < MaxWorkingSetImages; i++ {
		source <- testImage(string(rune('a' + i)))
	}
	waitFor(t, func() bool { return store.Len() == MaxWorkingSetImages })

	// The event over the bound stops the gate for good.
	select {
	case source <- testImage("overflow"):
	case <-time.After(time.Second):
		t.Fatal("gate stopped reading before observing the over-bound event")
	}
	select {
	case <-gate.Done():
	case <-time.After(time.Second):
		t.Fatal("gate did not stop after the bound was reached")
	}
	if got := store.Len(); got != MaxWorkingSetImages {
		t.Fatalf("over-bound image was admitted: len %d", got)
	}

	// Shrinking the set does not re-open a stopped gate.
	store.Clear()
	select {
	case source <- testImage("late"):
		t.Fatal("stopped gate read another event")
	default:
	}
	if got := store.Len(); got != 0 {
		t.Fatalf("expected empty set, got %d", got)
	}
}

func TestGate_DetachStopsForwardingImmediately(t *testing.T) {
	store := NewWorkingSetStore()
	defer store.Close()
	source, gate := armGate(store)

	source <- testImage("a")
	gate.Detach()
	<-gate.Done()

	select {
	case source <- testImage("stale"):
		t.Fatal("detached gate accepted an event")
	default:
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("expected 1 image, got %d", got)
	}

	// Detach is idempotent.
	gate.Detach()
}

func TestGate_ForwardedStreamIsMulticast(t *testing.T) {
	store := NewWorkingSetStore()
	defer store.Close()
	source, gate := armGate(store)
	defer gate.Detach()

	first := gate.Forwarded()
	second := gate.Forwarded()

	source <- testImage("a")
	source <- testImage("b")

	for name, feed := range map[string]*Feed[domain.Image]{"first": first, "second": second} {
		for _, want := range []string{"a", "b"} {
			select {
			case img := <-feed.C:
				if img.AssetID != want {
					t.Fatalf("%s subscriber: expected %s, got %s", name, want, img.AssetID)
				}
			case <-time.After(time.Second):
				t.Fatalf("%s subscriber: timed out waiting for %s", name, want)
			}
		}
	}

	// Two observers, but each image was appended exactly once.
	if got := store.Len(); got != 2 {
		t.Fatalf("expected 2 images, got %d", got)
	}
}

func TestGate_StopsWhenSourceCloses(t *testing.T) {
	store := NewWorkingSetStore()
	defer store.Close()
	source, gate := armGate(store)

	close(source)
	select {
	case <-gate.Done():
	case <-time.After(time.Second):
		t.Fatal("gate did not stop when its source closed")
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}
