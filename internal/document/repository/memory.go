package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Manushivuz/IISPPR-MainSite/internal/document"
)

var (
	ErrNotFound = errors.New("document not found")
)

// Repository is implemented by MemoryRepo and MongoRepo. Every lookup is scoped by type.
type Repository interface {
	Create(ctx context.Context, doc *document.Document) error
	Get(ctx context.Context, t document.Type, id primitive.ObjectID) (*document.Document, error)
	List(ctx context.Context, t document.Type) ([]*document.Document, error)
	Delete(ctx context.Context, t document.Type, id primitive.ObjectID) error
}

// MemoryRepo is the in-memory repository used in development mode and unit tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]*document.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[primitive.ObjectID]*document.Document)}
}

func (m *MemoryRepo) Create(ctx context.Context, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	cp := *doc
	m.store[doc.ID] = &cp
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, t document.Type, id primitive.ObjectID) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.store[id]; ok && d.Type == t {
		cp := *d
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) List(ctx context.Context, t document.Type) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*document.Document, 0, len(m.store))
	for _, d := range m.store {
		if d.Type == t {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, t document.Type, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.store[id]; !ok || d.Type != t {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}
