package testimonials

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Manushivuz/IISPPR-MainSite/internal/database"
)

var ErrNotFound = errors.New("testimonial not found")

type Repository interface {
	Create(ctx context.Context, t *Testimonial) error
	List(ctx context.Context) ([]*Testimonial, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Testimonial, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Testimonial, error)
	Update(ctx context.Context, t *Testimonial) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, t *Testimonial) error {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *MongoRepository) List(ctx context.Context) ([]*Testimonial, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return database.DecodeAll[Testimonial](ctx, cur)
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (*Testimonial, error) {
	var t Testimonial
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *MongoRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Testimonial, error) {
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return database.DecodeAll[Testimonial](ctx, cur)
}

func (r *MongoRepository) Update(ctx context.Context, t *Testimonial) error {
	t.UpdatedAt = time.Now().UTC()
	set := bson.M{"text": t.Text, "author": t.Author, "imageUrl": t.ImageURL, "updatedAt": t.UpdatedAt}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": t.ID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// MemoryRepository keeps testimonials in insertion order.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []*Testimonial
}

func NewMemoryRepository() *MemoryRepository { return &MemoryRepository{} }

func (m *MemoryRepository) Create(ctx context.Context, t *Testimonial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	m.items = append(m.items, &cp)
	return nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]*Testimonial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Testimonial, 0, len(m.items))
	for _, t := range m.items {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryRepository) Get(ctx context.Context, id primitive.ObjectID) (*Testimonial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.items {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Testimonial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []*Testimonial{}
	for _, t := range m.items {
		if want[t.ID] {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRepository) Update(ctx context.Context, t *Testimonial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.items {
		if cur.ID == t.ID {
			t.UpdatedAt = time.Now().UTC()
			cp := *t
			m.items[i] = &cp
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.items[:0]
	var n int64
	for _, t := range m.items {
		if drop[t.ID] {
			n++
			continue
		}
		kept = append(kept, t)
	}
	m.items = kept
	return n, nil
}
