package pageads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var (
	updated   = mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1})
	unmatched = mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0})
	dupKey    = mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"})
)

// nextUpdate pops the next started command, which must be an update, and
// returns its first statement.
func nextUpdate(mt *mtest.T) bson.Raw {
	mt.Helper()
	ev := mt.GetStartedEvent()
	require.NotNil(mt, ev)
	require.Equal(mt, "update", ev.CommandName)
	return ev.Command.Lookup("updates").Array().Index(0).Value().Document()
}

func objectIDs(mt *mtest.T, v bson.RawValue) []primitive.ObjectID {
	mt.Helper()
	vals, err := v.Array().Values()
	require.NoError(mt, err)
	out := make([]primitive.ObjectID, 0, len(vals))
	for _, rv := range vals {
		out = append(out, rv.ObjectID())
	}
	return out
}

func slotDoc(page string, pos Position, ids ...primitive.ObjectID) bson.D {
	arr := bson.A{}
	for _, id := range ids {
		arr = append(arr, id)
	}
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "page", Value: page},
		{Key: "position", Value: string(pos)},
		{Key: "adIds", Value: arr},
	}
}

func TestMongoRepository_AddAdUpserts(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("addToSet upsert", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(updated)

		require.NoError(mt, repo.AddAd(context.Background(), "home", Top, id))

		stmt := nextUpdate(mt)
		require.Equal(mt, "home", stmt.Lookup("q", "page").StringValue())
		require.Equal(mt, "top", stmt.Lookup("q", "position").StringValue())
		require.True(mt, stmt.Lookup("upsert").Boolean())
		require.Equal(mt, []primitive.ObjectID{id}, objectIDs(mt, stmt.Lookup("u", "$addToSet", "adIds", "$each")))
		_, err := stmt.LookupErr("u", "$setOnInsert", "createdAt")
		require.NoError(mt, err)
		_, err = stmt.LookupErr("u", "$set", "updatedAt")
		require.NoError(mt, err)
		require.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("retries once on duplicate key", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(dupKey, updated)

		require.NoError(mt, repo.AddAd(context.Background(), "home", Bottom, id))

		first, second := nextUpdate(mt), nextUpdate(mt)
		require.Equal(mt, first.Lookup("q").String(), second.Lookup("q").String())
		require.Equal(mt, []primitive.ObjectID{id}, objectIDs(mt, second.Lookup("u", "$addToSet", "adIds", "$each")))
		require.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("second duplicate key is returned", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(dupKey, dupKey)

		err := repo.AddAd(context.Background(), "home", Top, primitive.NewObjectID())
		require.True(mt, mongo.IsDuplicateKeyError(err), err)

		nextUpdate(mt)
		nextUpdate(mt)
		require.Nil(mt, mt.GetStartedEvent())
	})
}

func TestMongoRepository_RemoveAd(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("pulls from the slot", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(updated)

		require.NoError(mt, repo.RemoveAd(context.Background(), "about", Top, id))

		stmt := nextUpdate(mt)
		require.Equal(mt, id, stmt.Lookup("u", "$pull", "adIds").ObjectID())
		_, err := stmt.LookupErr("upsert")
		require.Error(mt, err)
	})

	mt.Run("missing slot", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(unmatched)

		err := repo.RemoveAd(context.Background(), "about", Top, primitive.NewObjectID())
		require.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoRepository_MergePullsOnlyCopiedIDs(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("merge", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, slotDoc("home", Top, a, b)),
			updated,
			updated,
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, slotDoc("home", Bottom, c, a, b)),
		)

		got, err := repo.Merge(context.Background(), "home", Top, Bottom)
		require.NoError(mt, err)
		require.Equal(mt, Bottom, got.Position)
		require.Equal(mt, []primitive.ObjectID{c, a, b}, got.AdIDs)

		find := mt.GetStartedEvent()
		require.Equal(mt, "find", find.CommandName)
		require.Equal(mt, "top", find.Command.Lookup("filter", "position").StringValue())

		add := nextUpdate(mt)
		require.Equal(mt, "bottom", add.Lookup("q", "position").StringValue())
		require.True(mt, add.Lookup("upsert").Boolean())
		require.Equal(mt, []primitive.ObjectID{a, b}, objectIDs(mt, add.Lookup("u", "$addToSet", "adIds", "$each")))

		pull := nextUpdate(mt)
		require.Equal(mt, "top", pull.Lookup("q", "position").StringValue())
		require.Equal(mt, []primitive.ObjectID{a, b}, objectIDs(mt, pull.Lookup("u", "$pullAll", "adIds")))

		require.Equal(mt, "find", mt.GetStartedEvent().CommandName)
	})

	mt.Run("missing source", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.Merge(context.Background(), "home", Top, Bottom)
		require.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoRepository_RemoveAdsCascade(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("pulls from every slot", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(updated)

		require.NoError(mt, repo.RemoveAds(context.Background(), []primitive.ObjectID{a, b}))

		stmt := nextUpdate(mt)
		require.True(mt, stmt.Lookup("multi").Boolean())
		require.Equal(mt, []primitive.ObjectID{a, b}, objectIDs(mt, stmt.Lookup("q", "adIds", "$in")))
		require.Equal(mt, []primitive.ObjectID{a, b}, objectIDs(mt, stmt.Lookup("u", "$pull", "adIds", "$in")))
		_, err := stmt.LookupErr("u", "$set", "updatedAt")
		require.NoError(mt, err)
	})

	mt.Run("no ids is a no-op", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		require.NoError(mt, repo.RemoveAds(context.Background(), nil))
		require.Nil(mt, mt.GetStartedEvent())
	})
}
