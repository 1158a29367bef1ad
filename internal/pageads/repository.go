package pageads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Manushivuz/IISPPR-MainSite/internal/database"
)

var ErrNotFound = errors.New("page ad not found")

// Repository mutates slots with set semantics: AddAd never duplicates an id
// and RemoveAd never deletes the slot itself.
type Repository interface {
	AddAd(ctx context.Context, page string, pos Position, adID primitive.ObjectID) error
	RemoveAd(ctx context.Context, page string, pos Position, adID primitive.ObjectID) error
	Find(ctx context.Context, page string, pos Position) (*PageAd, error)
	FindByPage(ctx context.Context, page string) ([]*PageAd, error)
	List(ctx context.Context) ([]*PageAd, error)
	// Merge moves every id of the source slot into the destination and empties the source.
	Merge(ctx context.Context, page string, from, to Position) (*PageAd, error)
	DeletePage(ctx context.Context, page string) (int64, error)
	RemoveAds(ctx context.Context, adIDs []primitive.ObjectID) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

// EnsureIndexes creates the unique (page, position) index that arbitrates concurrent first assignments.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "page", Value: 1}, {Key: "position", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("page_position_unique"),
	}
	_, err := r.col.Indexes().CreateOne(ctx, idx)
	return err
}

func slotFilter(page string, pos Position) bson.M {
	return bson.M{"page": page, "position": pos}
}

func (r *MongoRepository) addToSet(ctx context.Context, page string, pos Position, ids []primitive.ObjectID) error {
	now := time.Now().UTC()
	update := bson.M{
		"$addToSet":    bson.M{"adIds": bson.M{"$each": ids}},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, slotFilter(page, pos), update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// another request created the slot between our match and insert; it exists now
		_, err = r.col.UpdateOne(ctx, slotFilter(page, pos), update, opts)
	}
	return err
}

func (r *MongoRepository) AddAd(ctx context.Context, page string, pos Position, adID primitive.ObjectID) error {
	return r.addToSet(ctx, page, pos, []primitive.ObjectID{adID})
}

func (r *MongoRepository) RemoveAd(ctx context.Context, page string, pos Position, adID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"adIds": adID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, slotFilter(page, pos), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Find(ctx context.Context, page string, pos Position) (*PageAd, error) {
	var pa PageAd
	if err := r.col.FindOne(ctx, slotFilter(page, pos)).Decode(&pa); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pa, nil
}

func (r *MongoRepository) FindByPage(ctx context.Context, page string) ([]*PageAd, error) {
	cur, err := r.col.Find(ctx, bson.M{"page": page})
	if err != nil {
		return nil, err
	}
	return database.DecodeAll[PageAd](ctx, cur)
}

func (r *MongoRepository) List(ctx context.Context) ([]*PageAd, error) {
	opts := options.Find().SetSort(bson.D{{Key: "page", Value: 1}, {Key: "position", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return database.DecodeAll[PageAd](ctx, cur)
}

func (r *MongoRepository) Merge(ctx context.Context, page string, from, to Position) (*PageAd, error) {
	src, err := r.Find(ctx, page, from)
	if err != nil {
		return nil, err
	}
	if len(src.AdIDs) > 0 {
		if err := r.addToSet(ctx, page, to, src.AdIDs); err != nil {
			return nil, fmt.Errorf("merge into %s: %w", to, err)
		}
		// pull only what was copied so ids assigned to the source meanwhile survive
		update := bson.M{
			"$pullAll": bson.M{"adIds": src.AdIDs},
			"$set":     bson.M{"updatedAt": time.Now().UTC()},
		}
		if _, err := r.col.UpdateOne(ctx, slotFilter(page, from), update); err != nil {
			return nil, fmt.Errorf("empty %s: %w", from, err)
		}
	} else if err := r.addToSet(ctx, page, to, []primitive.ObjectID{}); err != nil {
		return nil, fmt.Errorf("merge into %s: %w", to, err)
	}
	return r.Find(ctx, page, to)
}

func (r *MongoRepository) DeletePage(ctx context.Context, page string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"page": page})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoRepository) RemoveAds(ctx context.Context, adIDs []primitive.ObjectID) error {
	if len(adIDs) == 0 {
		return nil
	}
	_, err := r.col.UpdateMany(ctx,
		bson.M{"adIds": bson.M{"$in": adIDs}},
		bson.M{"$pull": bson.M{"adIds": bson.M{"$in": adIDs}}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	return err
}
