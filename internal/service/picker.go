package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/msomdec/collage-studio/internal/domain"
)

// Snapshot is the externally observable picker state: the current preview,
// the count it was derived from, and the outcome of the most recent save.
type Snapshot struct {
	Preview  *domain.Image
	Count    int
	LastSave *domain.SaveResult
}

// PickerSession wires one user's collage session together: the asset
// facade feeds a bounded selection gate, gated images fold into the working
// set store, the composer derives the preview, and saves settle back into
// observable state. Store mutation and preview derivation are serialized
// through the store's ordered notification stream; fetches and the
// persistence write are the only operations that run off that path.
type PickerSession struct {
	assets *AssetService
	writer domain.CollageWriter
	userID int64

	store    *WorkingSetStore
	composer *CollageComposer

	mu       sync.Mutex
	gate     *SelectionGate
	source   chan domain.Image
	preview  *domain.Image
	count    int
	lastSave *domain.SaveResult

	updates      *broadcaster[Snapshot]
	composerFeed *Feed[PreviewUpdate]
}

// NewPickerSession creates a session with an armed gate and an empty
// working set.
func NewPickerSession(userID int64, assets *AssetService, writer domain.CollageWriter, compositor domain.Compositor, target domain.Size) *PickerSession {
	store := NewWorkingSetStore()
	p := &PickerSession{
		assets:  assets,
		writer:  writer,
		userID:  userID,
		store:   store,
		updates: newBroadcaster[Snapshot](),
	}
	p.composer = NewCollageComposer(store, compositor, target)
	p.composerFeed = p.composer.Updates()
	go p.relay()
	p.Add()
	return p
}

// relay republishes composer updates with the save state attached, keeping
// preview, count, and last-save observable as one consistent snapshot.
func (p *PickerSession) relay() {
	for u := range p.composerFeed.C {
		p.mu.Lock()
		p.preview = u.Preview
		p.count = u.Count
		snap := Snapshot{Preview: u.Preview, Count: u.Count, LastSave: p.lastSave}
		p.mu.Unlock()
		p.updates.Publish(snap)
	}
	p.updates.Close()
}

// Add re-arms the session with a fresh source and gate. The previous gate
// is detached first, so events still in flight from the old source can no
// longer reach the working set.
func (p *PickerSession) Add() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gate != nil {
		p.gate.Detach()
	}
	p.source = make(chan domain.Image)
	p.gate = NewSelectionGate(p.source, p.store.Len, MaxWorkingSetImages, p.store.Append)
}

// SelectImage resolves the asset off the consumer path and offers the
// final full-resolution image to the current gate. A failed fetch produces
// no event and no user-visible error; it is logged and dropped.
func (p *PickerSession) SelectImage(ctx context.Context, assetID string) {
	go func() {
		img, err := p.assets.FetchFull(ctx, assetID)
		if err != nil {
			slog.Warn("asset fetch failed, selection dropped", "asset_id", assetID, "error", err)
			return
		}

		p.mu.Lock()
		source, done := p.source, p.gate.Done()
		p.mu.Unlock()

		select {
		case source <- img:
		case <-done:
			// Gate already stopped; the selection is silently dropped.
		}
	}()
}

// Clear empties the working set without touching the gate.
func (p *PickerSession) Clear() {
	p.store.Clear()
}

// Save persists the current preview. With no preview it is a no-op and
// returns nil. Otherwise it issues exactly one persistence write and
// returns a channel that receives the settled result. On settlement,
// whether success or failure, the result becomes observable and the
// working set is cleared, ending the collage session either way.
//
// Overlapping saves are not serialized: two in-flight saves race, and the
// later settlement wins the observable result. See the session tests.
func (p *PickerSession) Save(ctx context.Context) <-chan domain.SaveResult {
	preview, count := p.composer.Snapshot()
	if preview == nil {
		return nil
	}

	settled := make(chan domain.SaveResult, 1)
	go func() {
		id, err := p.writer.Write(ctx, p.userID, *preview, count)
		res := domain.SaveResult{ID: id}
		if err != nil {
			res = domain.SaveResult{Err: err.Error()}
		}

		p.mu.Lock()
		saved := res
		p.lastSave = &saved
		p.mu.Unlock()

		p.store.Clear()
		settled <- res
	}()
	return settled
}

// Snapshot returns the current observable state.
func (p *PickerSession) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{Preview: p.preview, Count: p.count, LastSave: p.lastSave}
}

// Preview returns the current composite preview, or nil.
func (p *PickerSession) Preview() *domain.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.preview
}

// Count returns the current working-set size as last published.
func (p *PickerSession) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// LastSaveResult returns the most recent settled save outcome, or nil if
// no save has settled yet.
func (p *PickerSession) LastSaveResult() *domain.SaveResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSave
}

// Updates subscribes to snapshot changes.
func (p *PickerSession) Updates() *Feed[Snapshot] {
	return p.updates.Subscribe()
}

// Close tears the session down: gate detached, composer drained, streams
// closed.
func (p *PickerSession) Close() {
	p.mu.Lock()
	gate := p.gate
	p.mu.Unlock()
	if gate != nil {
		gate.Detach()
	}
	p.composer.Close()
	p.store.Close()
}

// PickerService hands out one PickerSession per user, created lazily on
// first use and kept for the process lifetime.
type PickerService struct {
	assets     *AssetService
	writer     domain.CollageWriter
	compositor domain.Compositor
	target     domain.Size

	mu       sync.Mutex
	sessions map[int64]*PickerSession
}

// NewPickerService creates a new PickerService.
func NewPickerService(assets *AssetService, writer domain.CollageWriter, compositor domain.Compositor, target domain.Size) *PickerService {
	return &PickerService{
		assets:     assets,
		writer:     writer,
		compositor: compositor,
		target:     target,
		sessions:   make(map[int64]*PickerSession),
	}
}

// Session returns the user's picker session, creating it if needed.
func (s *PickerService) Session(userID int64) *PickerSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[userID]; ok {
		return session
	}
	session := NewPickerSession(userID, s.assets, s.writer, s.compositor, s.target)
	s.sessions[userID] = session
	return session
}

// Close tears down all sessions.
func (s *PickerService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[int64]*PickerSession)
	s.mu.Unlock()
	for _, session := range sessions {
		session.Close()
	}
}
