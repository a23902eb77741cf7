package cart

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"

	"github.com/tabishkhalil463/FeastDash/internal/api"
	"github.com/tabishkhalil463/FeastDash/internal/domain"
)

// Remote is the slice of the API client the cart needs.
type Remote interface {
	GetCart(ctx context.Context, ts api.TokenStore) (*domain.Cart, error)
	AddToCart(ctx context.Context, ts api.TokenStore, menuItemID, quantity int, specialInstructions string) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, ts api.TokenStore, cartItemID, quantity int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, ts api.TokenStore, cartItemID int) (*domain.Cart, error)
	ClearCart(ctx context.Context, ts api.TokenStore) error
}

// AddResult is the structured outcome of an add. A cross-restaurant conflict
// is not an error: the caller prompts the user to clear the cart and retry.
type AddResult struct {
	Success           bool   `json:"success"`
	Conflict          bool   `json:"conflict,omitempty"`
	CurrentRestaurant string `json:"current_restaurant,omitempty"`
	Message           string `json:"message,omitempty"`
}

// Store is the single writer for one session's cart projection. The server
// owns the cart; every mutation replaces the cached copy with the server's
// full response.
type Store struct {
	remote Remote
	tokens api.TokenStore

	mu   sync.RWMutex
	cart domain.Cart
}

func NewStore(remote Remote, tokens api.TokenStore) *Store {
	return &Store{remote: remote, tokens: tokens}
}

// Snapshot returns the cached cart.
func (s *Store) Snapshot() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

func (s *Store) replace(c *domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = *c
	if s.cart.Items == nil {
		s.cart.Items = []domain.CartLine{}
	}
}

func (s *Store) clearLocal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = domain.Cart{Items: []domain.CartLine{}}
}

// Fetch loads the authoritative cart. Read failures degrade silently to the
// previous snapshot; only a dead session propagates.
func (s *Store) Fetch(ctx context.Context) error {
	c, err := s.remote.GetCart(ctx, s.tokens)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return err
		}
		log.Printf("WARN: cart fetch failed: %v", err)
		return nil
	}
	s.replace(c)
	return nil
}

// Add asks the server to add or increment a line. A conflict payload becomes
// a structured result and leaves the cart untouched.
func (s *Store) Add(ctx context.Context, menuItemID, quantity int, specialInstructions string) (AddResult, error) {
	if quantity < 1 {
		quantity = 1
	}
	c, err := s.remote.AddToCart(ctx, s.tokens, menuItemID, quantity, specialInstructions)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return AddResult{}, err
		}
		if apiErr, ok := api.AsAPIError(err); ok && apiErr.Conflict {
			return AddResult{
				Conflict:          true,
				CurrentRestaurant: apiErr.CurrentRestaurant,
			}, nil
		}
		msg := "Failed to add to cart"
		if apiErr, ok := api.AsAPIError(err); ok && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return AddResult{Message: msg}, nil
	}
	s.replace(c)
	return AddResult{Success: true}, nil
}

// UpdateQuantity sets a line's quantity. The server decides the resulting
// totals and removes the line when quantity drops to zero or below.
func (s *Store) UpdateQuantity(ctx context.Context, cartItemID, quantity int) error {
	c, err := s.remote.UpdateCartItem(ctx, s.tokens, cartItemID, quantity)
	if err != nil {
		return err
	}
	s.replace(c)
	return nil
}

func (s *Store) Remove(ctx context.Context, cartItemID int) error {
	c, err := s.remote.RemoveCartItem(ctx, s.tokens, cartItemID)
	if err != nil {
		return err
	}
	s.replace(c)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.remote.ClearCart(ctx, s.tokens); err != nil {
		return err
	}
	s.clearLocal()
	return nil
}

// Totals is the display-only money breakdown derived from the cached cart.
type Totals struct {
	Subtotal    domain.Money `json:"subtotal"`
	DeliveryFee domain.Money `json:"delivery_fee"`
	Tax         domain.Money `json:"tax"`
	GrandTotal  domain.Money `json:"grand_total"`
}

// ComputeTotals applies the only tax policy in the system: 5% of the
// subtotal, rounded to 2 decimals.
func ComputeTotals(c domain.Cart) Totals {
	subtotal := c.TotalAmount
	var deliveryFee domain.Money
	if c.Restaurant != nil {
		deliveryFee = c.Restaurant.DeliveryFee
	}
	tax := domain.Money(math.Round(float64(subtotal)*0.05*100) / 100)
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Tax:         tax,
		GrandTotal:  subtotal + deliveryFee + tax,
	}
}

// Totals projects the cached snapshot.
func (s *Store) Totals() Totals {
	return ComputeTotals(s.Snapshot())
}
