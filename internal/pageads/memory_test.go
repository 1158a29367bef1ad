package pageads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryRepository_RemoveAdsTouchesChangedSlots(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	require.NoError(t, repo.AddAd(ctx, "home", Top, a))
	require.NoError(t, repo.AddAd(ctx, "home", Top, b))
	require.NoError(t, repo.AddAd(ctx, "about", Bottom, b))

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.mu.Lock()
	for _, pa := range repo.slots {
		pa.UpdatedAt = past
	}
	repo.mu.Unlock()

	require.NoError(t, repo.RemoveAds(ctx, []primitive.ObjectID{a}))

	home, err := repo.Find(ctx, "home", Top)
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{b}, home.AdIDs)
	require.True(t, home.UpdatedAt.After(past))

	about, err := repo.Find(ctx, "about", Bottom)
	require.NoError(t, err)
	require.Equal(t, past, about.UpdatedAt)
}
