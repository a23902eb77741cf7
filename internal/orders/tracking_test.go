package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabishkhalil463/FeastDash/internal/api"
	"github.com/tabishkhalil463/FeastDash/internal/domain"
)

type customerRemote struct {
	getOrder    func(ctx context.Context, ts api.TokenStore, orderNumber string) (*domain.Order, error)
	listOrders  func(ctx context.Context, ts api.TokenStore, status string, page int) ([]domain.Order, error)
	cancelOrder func(ctx context.Context, ts api.TokenStore, orderNumber string) error
	reviews     func(ctx context.Context, slug string) ([]domain.Review, error)
	createRev   func(ctx context.Context, ts api.TokenStore, slug, orderNumber string, rating int, comment string) error
}

func (r *customerRemote) GetOrder(ctx context.Context, ts api.TokenStore, orderNumber string) (*domain.Order, error) {
	return r.getOrder(ctx, ts, orderNumber)
}

func (r *customerRemote) ListOrders(ctx context.Context, ts api.TokenStore, status string, page int) ([]domain.Order, error) {
	return r.listOrders(ctx, ts, status, page)
}

func (r *customerRemote) CancelOrder(ctx context.Context, ts api.TokenStore, orderNumber string) error {
	return r.cancelOrder(ctx, ts, orderNumber)
}

func (r *customerRemote) RestaurantReviews(ctx context.Context, slug string) ([]domain.Review, error) {
	return r.reviews(ctx, slug)
}

func (r *customerRemote) CreateReview(ctx context.Context, ts api.TokenStore, slug, orderNumber string, rating int, comment string) error {
	return r.createRev(ctx, ts, slug, orderNumber, rating, comment)
}

func TestProgress(t *testing.T) {
	stages := Progress(domain.StatusPreparing)
	require.Len(t, stages, 6)
	for i, s := range stages {
		assert.Equal(t, domain.ProgressStages[i], s.Status)
		assert.Equal(t, i <= 2, s.Complete, "stage %s", s.Status)
	}

	stages = Progress(domain.StatusDelivered)
	for _, s := range stages {
		assert.True(t, s.Complete)
	}

	assert.Nil(t, Progress(domain.StatusCancelled), "cancelled orders have no progress indicator")
}

func TestCanCancel(t *testing.T) {
	assert.True(t, domain.CanCancel(domain.StatusPending))
	assert.True(t, domain.CanCancel(domain.StatusConfirmed))
	for _, s := range []domain.OrderStatus{
		domain.StatusPreparing, domain.StatusReady, domain.StatusPickedUp,
		domain.StatusDelivered, domain.StatusCancelled,
	} {
		assert.False(t, domain.CanCancel(s), "status %s", s)
	}
}

func TestTracking_ReviewExists(t *testing.T) {
	remote := &customerRemote{
		reviews: func(ctx context.Context, slug string) ([]domain.Review, error) {
			assert.Equal(t, "karachi-biryani-house", slug)
			return []domain.Review{
				{ID: 1, OrderNumber: "FD-AAAA1111", Rating: 5},
				{ID: 2, OrderNumber: "FD-BBBB2222", Rating: 3},
			}, nil
		},
	}
	tr := NewTracking(remote, nil)

	exists, err := tr.ReviewExists(context.Background(), "karachi-biryani-house", "FD-BBBB2222")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = tr.ReviewExists(context.Background(), "karachi-biryani-house", "FD-CCCC3333")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTracking_CanReview(t *testing.T) {
	remote := &customerRemote{
		reviews: func(ctx context.Context, slug string) ([]domain.Review, error) {
			return []domain.Review{{OrderNumber: "FD-REVIEWED"}}, nil
		},
	}
	tr := NewTracking(remote, nil)
	ctx := context.Background()

	ok, err := tr.CanReview(ctx, &domain.Order{OrderNumber: "FD-FRESH", Status: domain.StatusDelivered}, "slug")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.CanReview(ctx, &domain.Order{OrderNumber: "FD-REVIEWED", Status: domain.StatusDelivered}, "slug")
	require.NoError(t, err)
	assert.False(t, ok, "already reviewed")

	ok, err = tr.CanReview(ctx, &domain.Order{OrderNumber: "FD-FRESH", Status: domain.StatusPickedUp}, "slug")
	require.NoError(t, err)
	assert.False(t, ok, "not delivered yet")
}

func TestTracking_CancelSurfacesServerReason(t *testing.T) {
	rejection := &api.APIError{StatusCode: 400, Message: "Order can no longer be cancelled"}
	remote := &customerRemote{
		cancelOrder: func(ctx context.Context, ts api.TokenStore, orderNumber string) error {
			return rejection
		},
	}
	tr := NewTracking(remote, nil)

	err := tr.Cancel(context.Background(), "FD-AAAA1111")
	var apiErr *api.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Order can no longer be cancelled", apiErr.Message)
}
