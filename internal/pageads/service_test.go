package pageads

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Manushivuz/IISPPR-MainSite/internal/ads"
	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
	"github.com/Manushivuz/IISPPR-MainSite/internal/storage"
)

type fixture struct {
	svc    *Service
	repo   *MemoryRepository
	adRepo *ads.MemoryRepository
	adSvc  *ads.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	adRepo := ads.NewMemoryRepository()
	local, err := storage.NewLocalStorage(t.TempDir(), "/uploads/assets")
	require.NoError(t, err)
	adSvc := ads.NewService(adRepo, local)
	repo := NewMemoryRepository()
	return &fixture{svc: NewService(repo, adSvc), repo: repo, adRepo: adRepo, adSvc: adSvc}
}

func (f *fixture) ad(t *testing.T, title string) *ads.Advertisement {
	t.Helper()
	ad := &ads.Advertisement{Title: title}
	require.NoError(t, f.adRepo.Create(context.Background(), ad))
	return ad
}

func ids(list []*ads.Advertisement) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func TestParsePosition(t *testing.T) {
	p, err := ParsePosition("Top ")
	require.NoError(t, err)
	assert.Equal(t, Top, p)

	p, err = ParsePosition(" BOTTOM")
	require.NoError(t, err)
	assert.Equal(t, Bottom, p)

	_, err = ParsePosition("Left")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAssign_NormalizesAndReportsSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.ad(t, "X")

	slots, err := f.svc.Assign(ctx, x.ID.Hex(), []string{"home", " About "}, "Top ")
	require.NoError(t, err)
	require.Equal(t, "Ad assigned to: home (top), about (top)", AssignMessage(slots))

	for _, page := range []string{"home", "about"} {
		pa, err := f.repo.Find(ctx, page, Top)
		require.NoError(t, err)
		require.Equal(t, []primitive.ObjectID{x.ID}, pa.AdIDs)
	}
}

func TestAssign_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.ad(t, "X")

	_, err := f.svc.Assign(ctx, x.ID.Hex(), []string{"home"}, "top")
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, x.ID.Hex(), []string{"home", "HOME"}, "top")
	require.NoError(t, err)

	pa, err := f.repo.Find(ctx, "home", Top)
	require.NoError(t, err)
	require.Len(t, pa.AdIDs, 1)
}

func TestAssign_UnknownAdCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, primitive.NewObjectID().Hex(), []string{"home"}, "top")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.svc.Assign(ctx, "nope", []string{"home"}, "top")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	all, err := f.repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestAssign_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.ad(t, "X")

	_, err := f.svc.Assign(ctx, x.ID.Hex(), []string{"home"}, "Left")
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.Assign(ctx, x.ID.Hex(), nil, "top")
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.Assign(ctx, x.ID.Hex(), []string{"  "}, "top")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAssign_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var adsList []*ads.Advertisement
	for i := 0; i < 20; i++ {
		adsList = append(adsList, f.ad(t, "ad"))
	}

	var wg sync.WaitGroup
	for _, a := range adsList {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.svc.Assign(ctx, id, []string{"home"}, "top")
			assert.NoError(t, err)
		}(a.ID.Hex())
	}
	wg.Wait()

	pa, err := f.repo.Find(ctx, "home", Top)
	require.NoError(t, err)
	require.ElementsMatch(t, ids(adsList), pa.AdIDs, "no assignment may be lost")
}

func TestUnassign_LeavesOtherPositionUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.ad(t, "A"), f.ad(t, "B"), f.ad(t, "C")
	for _, ad := range []*ads.Advertisement{a, b} {
		_, err := f.svc.Assign(ctx, ad.ID.Hex(), []string{"home"}, "top")
		require.NoError(t, err)
	}
	_, err := f.svc.Assign(ctx, c.ID.Hex(), []string{"home"}, "bottom")
	require.NoError(t, err)

	require.NoError(t, f.svc.Unassign(ctx, a.ID.Hex(), "home", "top"))

	top, err := f.repo.Find(ctx, "home", Top)
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{b.ID}, top.AdIDs)
	bottom, err := f.repo.Find(ctx, "home", Bottom)
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{c.ID}, bottom.AdIDs)
}

func TestUnassign_AbsentAdIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.ad(t, "A")
	_, err := f.svc.Assign(ctx, a.ID.Hex(), []string{"home"}, "top")
	require.NoError(t, err)
	before, err := f.repo.Find(ctx, "home", Top)
	require.NoError(t, err)

	require.NoError(t, f.svc.Unassign(ctx, primitive.NewObjectID().Hex(), "home", "top"))

	after, err := f.repo.Find(ctx, "home", Top)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestUnassign_MissingSlotAndEmptyRecordKept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.ad(t, "A")

	err := f.svc.Unassign(ctx, a.ID.Hex(), "home", "top")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Assign(ctx, a.ID.Hex(), []string{"home"}, "top")
	require.NoError(t, err)
	require.NoError(t, f.svc.Unassign(ctx, a.ID.Hex(), "Home", "TOP"))

	pa, err := f.repo.Find(ctx, "home", Top)
	require.NoError(t, err, "an emptied slot is kept")
	require.Empty(t, pa.AdIDs)
}

func TestAdsForPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.ad(t, "A"), f.ad(t, "B"), f.ad(t, "C")

	_, err := f.svc.AdsForPage(ctx, "home", "")
	require.ErrorIs(t, err, apperr.ErrNotFound, "no record means no ads")

	_, err = f.svc.Assign(ctx, c.ID.Hex(), []string{"home"}, "bottom")
	require.NoError(t, err)
	for _, ad := range []*ads.Advertisement{b, a} {
		_, err := f.svc.Assign(ctx, ad.ID.Hex(), []string{"home"}, "top")
		require.NoError(t, err)
	}

	got, err := f.svc.AdsForPage(ctx, "HOME", "")
	require.NoError(t, err)
	require.Equal(t, Top, got.Position)
	require.Equal(t, []primitive.ObjectID{b.ID, a.ID}, ids(got.Ads), "stored order")

	got, err = f.svc.AdsForPage(ctx, "home", "bottom")
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{c.ID}, ids(got.Ads))

	_, err = f.svc.AdsForPage(ctx, "home", "left")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAdsForPage_EmptySlotIsNoAds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.ad(t, "A")
	_, err := f.svc.Assign(ctx, a.ID.Hex(), []string{"home"}, "top")
	require.NoError(t, err)
	require.NoError(t, f.svc.Unassign(ctx, a.ID.Hex(), "home", "top"))

	_, err = f.svc.AdsForPage(ctx, "home", "top")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAll_ResolvesAds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.ad(t, "A"), f.ad(t, "B")
	_, err := f.svc.Assign(ctx, a.ID.Hex(), []string{"home", "about"}, "top")
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, b.ID.Hex(), []string{"home"}, "bottom")
	require.NoError(t, err)

	all, err := f.svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "about", all[0].Page)
	require.Equal(t, "home", all[1].Page)
	require.Equal(t, Top, all[1].Position)
	require.Equal(t, "B", all[2].AdIDs[0].Title)
}

func TestUpdatePosition_MergesAndDeduplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.ad(t, "A"), f.ad(t, "B"), f.ad(t, "C")
	for _, ad := range []*ads.Advertisement{a, b} {
		_, err := f.svc.Assign(ctx, ad.ID.Hex(), []string{"home"}, "top")
		require.NoError(t, err)
	}
	for _, ad := range []*ads.Advertisement{c, a} {
		_, err := f.svc.Assign(ctx, ad.ID.Hex(), []string{"home"}, "bottom")
		require.NoError(t, err)
	}

	pa, err := f.svc.UpdatePosition(ctx, "home", "bottom", "")
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{c.ID, a.ID, b.ID}, pa.AdIDs)

	top, err := f.repo.Find(ctx, "home", Top)
	require.NoError(t, err)
	require.Empty(t, top.AdIDs)

	_, err = f.svc.UpdatePosition(ctx, "nowhere", "top", "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.svc.UpdatePosition(ctx, "home", "top", "top")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeletePage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.ad(t, "A")
	_, err := f.svc.Assign(ctx, a.ID.Hex(), []string{"home"}, "top")
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, a.ID.Hex(), []string{"home", "about"}, "bottom")
	require.NoError(t, err)

	n, err := f.svc.DeletePage(ctx, "Home")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, err = f.svc.DeletePage(ctx, "home")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.repo.Find(ctx, "about", Bottom)
	require.NoError(t, err)
}

func TestAdDeleteCascadesToRegistry(t *testing.T) {
	f := newFixture(t)
	f.adSvc.SetUnlinker(f.repo)
	ctx := context.Background()
	a, b := f.ad(t, "A"), f.ad(t, "B")
	for _, ad := range []*ads.Advertisement{a, b} {
		_, err := f.svc.Assign(ctx, ad.ID.Hex(), []string{"home", "about"}, "top")
		require.NoError(t, err)
	}

	n, err := f.adSvc.DeleteMany(ctx, []string{a.ID.Hex()})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	for _, page := range []string{"home", "about"} {
		pa, err := f.repo.Find(ctx, page, Top)
		require.NoError(t, err)
		require.Equal(t, []primitive.ObjectID{b.ID}, pa.AdIDs)
	}
}
