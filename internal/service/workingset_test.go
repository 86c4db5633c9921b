package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/msomdec/collage-studio/internal/domain"
)

func testImage(id string) domain.Image {
	return domain.Image{AssetID: id, ContentType: "image/png", Data: []byte(id)}
}

func TestWorkingSet_AppendPreservesSelectionOrder(t *testing.T) {
	s := NewWorkingSetStore()
	defer s.Close()

	s.Append(testImage("a"))
	s.Append(testImage("b"))
	s.Append(testImage("c"))

	got := s.Current()
	if len(got) != 3 {
		t.Fatalf("expected 3 images, got %d", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].AssetID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].AssetID)
		}
	}
}

func TestWorkingSet_CurrentReturnsSnapshot(t *testing.T) {
	s := NewWorkingSetStore()
	defer s.Close()

	s.Append(testImage("a"))
	snap := s.Current()
	s.Append(testImage("b"))

	if len(snap) != 1 {
		t.Fatalf("snapshot mutated by later append: len %d", len(snap))
	}
}

func TestWorkingSet_NotificationPerMutationInOrder(t *testing.T) {
	s := NewWorkingSetStore()
	defer s.Close()
	feed := s.Changes()
	defer feed.Close()

	s.Append(testImage("a"))
	s.Append(testImage("b"))
	s.Clear()

	first := <-feed.C
	if len(first) != 1 || first[0].AssetID != "a" {
		t.Fatalf("first notification: expected [a], got %v", ids(first))
	}
	second := <-feed.C
	if len(second) != 2 || second[1].AssetID != "b" {
		t.Fatalf("second notification: expected [a b], got %v", ids(second))
	}
	third := <-feed.C
	if len(third) != 0 {
		t.Fatalf("third notification: expected empty, got %v", ids(third))
	}
}

func TestWorkingSet_ConcurrentAppendsAreAtomic(t *testing.T) {
	s := NewWorkingSetStore()
	defer s.Close()
	feed := s.Changes()
	defer feed.Close()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(testImage(fmt.Sprintf("img-%d", i)))
		}(i)
	}
	wg.Wait()

	if got := s.Len(); got != n {
		t.Fatalf("expected %d images after concurrent appends, got %d", n, got)
	}

	seen := make(map[string]bool)
	for _, img := range s.Current() {
		if seen[img.AssetID] {
			t.Fatalf("image %s appended twice", img.AssetID)
		}
		seen[img.AssetID] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct images, got %d", n, len(seen))
	}

	// Each notification grows the set by exactly one: no folds against a
	// stale value, no coalescing.
	for i := 1; i <= n; i++ {
		notif := <-feed.C
		if len(notif) != i {
			t.Fatalf("notification %d: expected length %d, got %d", i, i, len(notif))
		}
	}
}

func ids(images []domain.Image) []string {
	out := make([]string, len(images))
	for i, img := range images {
		out[i] = img.AssetID
	}
	return out
}
