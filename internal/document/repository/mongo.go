package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Manushivuz/IISPPR-MainSite/internal/database"
	"github.com/Manushivuz/IISPPR-MainSite/internal/document"
)

// MongoRepo stores articles and reports in one collection keyed by type.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// EnsureIndexes backs listing, which is always by type, newest first.
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "type", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("type_createdAt"),
	}
	_, err := m.col.Indexes().CreateOne(ctx, idx)
	return err
}

func (m *MongoRepo) Create(ctx context.Context, doc *document.Document) error {
	now := time.Now().UTC()
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	_, err := m.col.InsertOne(ctx, doc)
	return err
}

func (m *MongoRepo) Get(ctx context.Context, t document.Type, id primitive.ObjectID) (*document.Document, error) {
	var d document.Document
	err := m.col.FindOne(ctx, bson.M{"_id": id, "type": t}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) List(ctx context.Context, t document.Type) ([]*document.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"type": t}, opts)
	if err != nil {
		return nil, err
	}
	return database.DecodeAll[document.Document](ctx, cur)
}

func (m *MongoRepo) Delete(ctx context.Context, t document.Type, id primitive.ObjectID) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id, "type": t})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
