package ads

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-memory Repository used for tests and when MongoDB is not configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	store map[primitive.ObjectID]*Advertisement
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[primitive.ObjectID]*Advertisement)}
}

func (m *MemoryRepository) Create(ctx context.Context, ad *Advertisement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	ad.ID = primitive.NewObjectID()
	ad.CreatedAt = now
	ad.UpdatedAt = now
	cp := *ad
	m.store[ad.ID] = &cp
	m.order = append(m.order, ad.ID)
	return nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]*Advertisement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Advertisement, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.store[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryRepository) Get(ctx context.Context, id primitive.ObjectID) (*Advertisement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ad, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ad
	return &cp, nil
}

func (m *MemoryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Advertisement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Advertisement{}
	for _, id := range ids {
		if ad, ok := m.store[id]; ok {
			cp := *ad
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRepository) Update(ctx context.Context, ad *Advertisement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[ad.ID]; !ok {
		return ErrNotFound
	}
	ad.UpdatedAt = time.Now().UTC()
	cp := *ad
	m.store[ad.ID] = &cp
	return nil
}

func (m *MemoryRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.store[id]; ok {
			delete(m.store, id)
			n++
		}
	}
	kept := m.order[:0]
	for _, id := range m.order {
		if _, ok := m.store[id]; ok {
			kept = append(kept, id)
		}
	}
	m.order = kept
	return n, nil
}
