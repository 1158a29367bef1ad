package pageads

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type slotKey struct {
	page string
	pos  Position
}

// MemoryRepository serializes every write under one mutex, which gives the
// same add/remove-from-set atomicity the Mongo repository gets from the server.
type MemoryRepository struct {
	mu    sync.RWMutex
	slots map[slotKey]*PageAd
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{slots: make(map[slotKey]*PageAd)}
}

func clone(pa *PageAd) *PageAd {
	cp := *pa
	cp.AdIDs = append([]primitive.ObjectID{}, pa.AdIDs...)
	return &cp
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// slot returns the record for k, creating it when absent. Caller holds mu.
func (m *MemoryRepository) slot(k slotKey) *PageAd {
	pa, ok := m.slots[k]
	if !ok {
		now := time.Now().UTC()
		pa = &PageAd{ID: primitive.NewObjectID(), Page: k.page, Position: k.pos, AdIDs: []primitive.ObjectID{}, CreatedAt: now, UpdatedAt: now}
		m.slots[k] = pa
	}
	return pa
}

func (m *MemoryRepository) AddAd(ctx context.Context, page string, pos Position, adID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pa := m.slot(slotKey{page, pos})
	if !contains(pa.AdIDs, adID) {
		pa.AdIDs = append(pa.AdIDs, adID)
	}
	pa.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepository) RemoveAd(ctx context.Context, page string, pos Position, adID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pa, ok := m.slots[slotKey{page, pos}]
	if !ok {
		return ErrNotFound
	}
	if contains(pa.AdIDs, adID) {
		pa.AdIDs = without(pa.AdIDs, map[primitive.ObjectID]bool{adID: true})
		pa.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func without(ids []primitive.ObjectID, drop map[primitive.ObjectID]bool) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}

func (m *MemoryRepository) Find(ctx context.Context, page string, pos Position) (*PageAd, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pa, ok := m.slots[slotKey{page, pos}]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(pa), nil
}

func (m *MemoryRepository) FindByPage(ctx context.Context, page string) ([]*PageAd, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*PageAd{}
	for _, pos := range Positions {
		if pa, ok := m.slots[slotKey{page, pos}]; ok {
			out = append(out, clone(pa))
		}
	}
	return out, nil
}

// List orders slots by page, then top before bottom.
func (m *MemoryRepository) List(ctx context.Context) ([]*PageAd, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*PageAd, 0, len(m.slots))
	for _, pa := range m.slots {
		out = append(out, clone(pa))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Position == Top && out[j].Position == Bottom
	})
	return out, nil
}

func (m *MemoryRepository) Merge(ctx context.Context, page string, from, to Position) (*PageAd, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.slots[slotKey{page, from}]
	if !ok {
		return nil, ErrNotFound
	}
	dst := m.slot(slotKey{page, to})
	for _, id := range src.AdIDs {
		if !contains(dst.AdIDs, id) {
			dst.AdIDs = append(dst.AdIDs, id)
		}
	}
	now := time.Now().UTC()
	src.AdIDs = []primitive.ObjectID{}
	src.UpdatedAt = now
	dst.UpdatedAt = now
	return clone(dst), nil
}

func (m *MemoryRepository) DeletePage(ctx context.Context, page string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, pos := range Positions {
		k := slotKey{page, pos}
		if _, ok := m.slots[k]; ok {
			delete(m.slots, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) RemoveAds(ctx context.Context, adIDs []primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[primitive.ObjectID]bool, len(adIDs))
	for _, id := range adIDs {
		drop[id] = true
	}
	now := time.Now().UTC()
	for _, pa := range m.slots {
		kept := without(pa.AdIDs, drop)
		if len(kept) != len(pa.AdIDs) {
			pa.AdIDs = kept
			pa.UpdatedAt = now
		}
	}
	return nil
}
