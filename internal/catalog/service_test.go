package catalog

import (
	"context"
	"testing"
	"time"

	"realty-catalog/internal/favorites"
	"realty-catalog/internal/models"
	"realty-catalog/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(policy Policy) *Service {
	return NewService(NewStore(), favorites.NewIndex(), nil, policy)
}

func TestSubmitOfferAppendsToLedger(t *testing.T) {
	svc := newTestService(Policy{})
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)

	offer, err := svc.SubmitOffer(ctx, p.ID, OfferInput{
		BuyerID:   "buyer1",
		BuyerName: "Jane Doe",
		Amount:    340000,
		Message:   "Ready to close quickly.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, offer.ID)
	assert.Equal(t, models.OfferStatusPending, offer.Status)
	assert.WithinDuration(t, time.Now(), offer.CreatedAt, time.Second)

	got, err := svc.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Offers, 1)
	assert.Equal(t, offer.ID, got.Offers[0].ID)
	assert.Equal(t, int64(1), got.Inquiries)
	assert.False(t, got.UpdatedAt.Before(p.UpdatedAt))
}

func TestSubmitOfferUnknownPropertyLeavesStoreUnchanged(t *testing.T) {
	svc := newTestService(Policy{})
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)
	gen := svc.Generation()

	_, err = svc.SubmitOffer(ctx, "missing", OfferInput{BuyerID: "buyer1", Amount: 100})
	require.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, gen, svc.Generation())
	got, err := svc.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Offers)
}

func TestSubmitOfferNegativeAmount(t *testing.T) {
	svc := newTestService(Policy{})
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)

	_, err = svc.SubmitOffer(ctx, p.ID, OfferInput{BuyerID: "buyer1", Amount: -1})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestResolveOfferTerminalStates(t *testing.T) {
	svc := newTestService(Policy{})
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)
	offer, err := svc.SubmitOffer(ctx, p.ID, OfferInput{BuyerID: "buyer1", Amount: 340000})
	require.NoError(t, err)

	resolved, err := svc.ResolveOffer(ctx, p.ID, offer.ID, models.OfferStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, resolved.Status)
	require.Len(t, resolved.History, 2)
	assert.Equal(t, models.OfferStatusPending, resolved.History[0].Status)
	assert.Equal(t, models.OfferStatusAccepted, resolved.History[1].Status)

	// Accepted is terminal
	_, err = svc.ResolveOffer(ctx, p.ID, offer.ID, models.OfferStatusRejected)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestResolveOfferCounteredReArms(t *testing.T) {
	svc := newTestService(Policy{})
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)
	offer, err := svc.SubmitOffer(ctx, p.ID, OfferInput{BuyerID: "buyer1", Amount: 300000})
	require.NoError(t, err)

	countered, err := svc.ResolveOffer(ctx, p.ID, offer.ID, models.OfferStatusCountered)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusCountered, countered.Status)

	// Countered is not terminal: the offer can still be accepted
	accepted, err := svc.ResolveOffer(ctx, p.ID, offer.ID, models.OfferStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, accepted.Status)
	assert.Len(t, accepted.History, 3)
}

func TestResolveOfferRejectsBadDecision(t *testing.T) {
	svc := newTestService(Policy{})
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)
	offer, err := svc.SubmitOffer(ctx, p.ID, OfferInput{BuyerID: "buyer1", Amount: 300000})
	require.NoError(t, err)

	_, err = svc.ResolveOffer(ctx, p.ID, offer.ID, models.OfferStatusPending)
	require.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.ResolveOffer(ctx, p.ID, "missing", models.OfferStatusAccepted)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestAcceptRejectsOthersPolicy(t *testing.T) {
	svc := newTestService(Policy{AcceptRejectsOthers: true})
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)
	first, err := svc.SubmitOffer(ctx, p.ID, OfferInput{BuyerID: "buyer1", Amount: 340000})
	require.NoError(t, err)
	second, err := svc.SubmitOffer(ctx, p.ID, OfferInput{BuyerID: "buyer2", Amount: 345000})
	require.NoError(t, err)

	_, err = svc.ResolveOffer(ctx, p.ID, first.ID, models.OfferStatusAccepted)
	require.NoError(t, err)

	got, err := svc.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	statuses := map[string]models.OfferStatus{}
	for _, o := range got.Offers {
		statuses[o.ID] = o.Status
	}
	assert.Equal(t, models.OfferStatusAccepted, statuses[first.ID])
	assert.Equal(t, models.OfferStatusRejected, statuses[second.ID])
}

func TestScheduleViewingRequiresDateAndTime(t *testing.T) {
	svc := newTestService(Policy{})
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)

	_, err = svc.ScheduleViewing(ctx, p.ID, ViewingInput{UserID: "user1", Date: "", Time: "10:00"})
	require.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.ScheduleViewing(ctx, p.ID, ViewingInput{UserID: "user1", Date: "2026-09-01", Time: ""})
	require.ErrorIs(t, err, models.ErrValidation)

	viewing, err := svc.ScheduleViewing(ctx, p.ID, ViewingInput{
		UserID:   "user1",
		UserName: "Jane Doe",
		Date:     "2026-09-01",
		Time:     "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ViewingStatusScheduled, viewing.Status)

	got, err := svc.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Viewings, 1)
	assert.Equal(t, int64(1), got.Inquiries)
}

func TestViewingTransitions(t *testing.T) {
	svc := newTestService(Policy{})
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)
	viewing, err := svc.ScheduleViewing(ctx, p.ID, ViewingInput{UserID: "user1", Date: "2026-09-01", Time: "10:00"})
	require.NoError(t, err)

	completed, err := svc.CompleteViewing(ctx, p.ID, viewing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ViewingStatusCompleted, completed.Status)

	// Completed is terminal
	_, err = svc.CancelViewing(ctx, p.ID, viewing.ID)
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CancelViewing(ctx, p.ID, "missing")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestToggleFavorite(t *testing.T) {
	svc := newTestService(Policy{})
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)

	on, err := svc.ToggleFavorite(ctx, "user1", p.ID)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, svc.IsFavorite(ctx, "user1", p.ID))

	off, err := svc.ToggleFavorite(ctx, "user1", p.ID)
	require.NoError(t, err)
	assert.False(t, off)
	assert.Empty(t, svc.ListFavorites(ctx, "user1"))

	_, err = svc.ToggleFavorite(ctx, "user1", "missing")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetPropertyCountsViews(t *testing.T) {
	svc := newTestService(Policy{})
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)

	_, err = svc.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	got, err := svc.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)
}

// Concrete scenario from the catalog's reference behavior: two listings, one
// in New York and one in Brooklyn.
func newScenarioCatalog(t *testing.T, svc *Service) (a, b models.Property) {
	t.Helper()
	ctx := context.Background()

	var err error
	a, err = svc.CreateProperty(ctx, sampleProperty("New York", 350000, models.PropertyTypeApartment, 2))
	require.NoError(t, err)
	bData := sampleProperty("Brooklyn", 2500, models.PropertyTypeHouse, 4)
	bData.Status = models.PropertyStatusForRent
	b, err = svc.CreateProperty(ctx, bData)
	require.NoError(t, err)
	return a, b
}

func TestSearchScenarioLocationSubstring(t *testing.T) {
	svc := newTestService(Policy{})
	a, _ := newScenarioCatalog(t, svc)

	minPrice, maxPrice := 0.0, 1000000.0
	results, err := svc.Search(context.Background(), search.Filters{
		Location: "new",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	}, search.SortNewest)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, a.ID, results[0].ID)
}

func TestSearchScenarioTypeSet(t *testing.T) {
	svc := newTestService(Policy{})
	_, b := newScenarioCatalog(t, svc)

	results, err := svc.Search(context.Background(), search.Filters{
		Types: []models.PropertyType{models.PropertyTypeHouse, models.PropertyTypeOffice},
	}, search.SortNewest)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, b.ID, results[0].ID)
}

func TestDeleteRemovesFromSearch(t *testing.T) {
	svc := newTestService(Policy{})
	a, b := newScenarioCatalog(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.DeleteProperty(ctx, a.ID))

	_, err := svc.GetProperty(ctx, a.ID)
	require.ErrorIs(t, err, models.ErrNotFound)

	results, err := svc.Search(ctx, search.Filters{}, search.SortNewest)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, b.ID, results[0].ID)
}

func TestSearchAsyncCompletes(t *testing.T) {
	svc := newTestService(Policy{})
	a, _ := newScenarioCatalog(t, svc)

	future := svc.SearchAsync(context.Background(), search.Filters{Location: "new"}, search.SortNewest)
	results, err := future.Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, a.ID, results[0].ID)
}

func TestSearchAsyncCancelledWait(t *testing.T) {
	svc := newTestService(Policy{})
	newScenarioCatalog(t, svc)

	future := svc.SearchAsync(context.Background(), search.Filters{}, search.SortNewest)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := future.Wait(cancelled)
	require.ErrorIs(t, err, context.Canceled)

	// Abandoning the wait had no effect on catalog state
	results, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
