package ads

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Manushivuz/IISPPR-MainSite/internal/database"
)

var ErrNotFound = errors.New("advertisement not found")

// Repository defines persistence operations for advertisements
type Repository interface {
	Create(ctx context.Context, ad *Advertisement) error
	List(ctx context.Context) ([]*Advertisement, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Advertisement, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Advertisement, error)
	Update(ctx context.Context, ad *Advertisement) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, ad *Advertisement) error {
	now := time.Now().UTC()
	ad.ID = primitive.NewObjectID()
	ad.CreatedAt = now
	ad.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, ad)
	return err
}

func (r *MongoRepository) List(ctx context.Context) ([]*Advertisement, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return database.DecodeAll[Advertisement](ctx, cur)
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (*Advertisement, error) {
	var ad Advertisement
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&ad); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ad, nil
}

func (r *MongoRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Advertisement, error) {
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return database.DecodeAll[Advertisement](ctx, cur)
}

func (r *MongoRepository) Update(ctx context.Context, ad *Advertisement) error {
	ad.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"title":       ad.Title,
		"description": ad.Description,
		"imageUrl":    ad.ImageURL,
		"updatedAt":   ad.UpdatedAt,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": ad.ID}, bson.M{"$set": set})
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
