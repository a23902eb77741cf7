package orders

import (
	"context"

	"github.com/tabishkhalil463/FeastDash/internal/api"
	"github.com/tabishkhalil463/FeastDash/internal/domain"
)

type CustomerRemote interface {
	GetOrder(ctx context.Context, ts api.TokenStore, orderNumber string) (*domain.Order, error)
	ListOrders(ctx context.Context, ts api.TokenStore, status string, page int) ([]domain.Order, error)
	CancelOrder(ctx context.Context, ts api.TokenStore, orderNumber string) error
	RestaurantReviews(ctx context.Context, slug string) ([]domain.Review, error)
	CreateReview(ctx context.Context, ts api.TokenStore, slug, orderNumber string, rating int, comment string) error
}

// Stage is one segment of the customer progress indicator.
type Stage struct {
	Status   domain.OrderStatus `json:"status"`
	Complete bool               `json:"complete"`
}

// Progress marks every stage up to and including the order's current status
// complete. A cancelled order has no progress indicator at all.
func Progress(status domain.OrderStatus) []Stage {
	idx := domain.StageIndex(status)
	if idx < 0 {
		return nil
	}
	stages := make([]Stage, len(domain.ProgressStages))
	for i, s := range domain.ProgressStages {
		stages[i] = Stage{Status: s, Complete: i <= idx}
	}
	return stages
}

// Tracking is the customer's read-mostly view over their orders.
type Tracking struct {
	remote CustomerRemote
	tokens api.TokenStore
}

func NewTracking(remote CustomerRemote, tokens api.TokenStore) *Tracking {
	return &Tracking{remote: remote, tokens: tokens}
}

func (t *Tracking) Order(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return t.remote.GetOrder(ctx, t.tokens, orderNumber)
}

func (t *Tracking) List(ctx context.Context, status string, page int) ([]domain.Order, error) {
	return t.remote.ListOrders(ctx, t.tokens, status, page)
}

// Cancel requests cancellation; the server validates the transition and its
// rejection reason is surfaced unchanged.
func (t *Tracking) Cancel(ctx context.Context, orderNumber string) error {
	return t.remote.CancelOrder(ctx, t.tokens, orderNumber)
}

// ReviewExists scans the restaurant's review list for the order. The backend
// has no existence query, so this linear scan is the contract; it can miss a
// review submitted elsewhere until the next fetch.
func (t *Tracking) ReviewExists(ctx context.Context, restaurantSlug, orderNumber string) (bool, error) {
	reviews, err := t.remote.RestaurantReviews(ctx, restaurantSlug)
	if err != nil {
		return false, err
	}
	for _, r := range reviews {
		if r.OrderNumber == orderNumber {
			return true, nil
		}
	}
	return false, nil
}

// CanReview gates the review affordance: delivered, and not yet reviewed.
func (t *Tracking) CanReview(ctx context.Context, order *domain.Order, restaurantSlug string) (bool, error) {
	if order.Status != domain.StatusDelivered {
		return false, nil
	}
	exists, err := t.ReviewExists(ctx, restaurantSlug, order.OrderNumber)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (t *Tracking) SubmitReview(ctx context.Context, restaurantSlug, orderNumber string, rating int, comment string) error {
	return t.remote.CreateReview(ctx, t.tokens, restaurantSlug, orderNumber, rating, comment)
}
