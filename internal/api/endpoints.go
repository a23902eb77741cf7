package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/tabishkhalil463/FeastDash/internal/domain"
)

// paginated accepts both DRF page envelopes and bare arrays.
type paginated[T any] struct {
	items []T
}

func (p *paginated[T]) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Results != nil {
		p.items = envelope.Results
		return nil
	}
	return json.Unmarshal(data, &p.items)
}

// --- Auth ---

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	UserType  string `json:"user_type"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, nil, http.MethodPost, "auth/login/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.do(ctx, nil, http.MethodPost, "auth/register/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, ts TokenStore, refresh string) error {
	body := map[string]string{"refresh": refresh}
	return c.do(ctx, ts, http.MethodPost, "auth/logout/", body, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, ts TokenStore, fields map[string]string) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, ts, http.MethodPatch, "auth/profile/", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfileWithImage sends the profile update as multipart form data,
// which the backend requires whenever an image is attached.
func (c *Client) UpdateProfileWithImage(ctx context.Context, ts TokenStore, fields map[string]string, imageName string, image io.Reader) (*domain.User, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	part, err := w.CreateFormFile("profile_picture", imageName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out domain.User
	if err := c.doRaw(ctx, ts, http.MethodPatch, "auth/profile/", w.FormDataContentType(), buf.Bytes(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Cart ---

func (c *Client) GetCart(ctx context.Context, ts TokenStore) (*domain.Cart, error) {
	var out domain.Cart
	if err := c.do(ctx, ts, http.MethodGet, "cart/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddToCart(ctx context.Context, ts TokenStore, menuItemID, quantity int, specialInstructions string) (*domain.Cart, error) {
	body := map[string]any{
		"menu_item_id":         menuItemID,
		"quantity":             quantity,
		"special_instructions": specialInstructions,
	}
	var out domain.Cart
	if err := c.do(ctx, ts, http.MethodPost, "cart/add/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, ts TokenStore, cartItemID, quantity int) (*domain.Cart, error) {
	body := map[string]int{"quantity": quantity}
	var out domain.Cart
	path := fmt.Sprintf("cart/item/%d/update/", cartItemID)
	if err := c.do(ctx, ts, http.MethodPatch, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, ts TokenStore, cartItemID int) (*domain.Cart, error) {
	var out domain.Cart
	path := fmt.Sprintf("cart/item/%d/remove/", cartItemID)
	if err := c.do(ctx, ts, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClearCart(ctx context.Context, ts TokenStore) error {
	return c.do(ctx, ts, http.MethodDelete, "cart/", nil, nil)
}

// --- Orders ---

type CreateOrderRequest struct {
	DeliveryAddress     string `json:"delivery_address"`
	DeliveryCity        string `json:"delivery_city"`
	PaymentMethod       string `json:"payment_method"`
	SpecialInstructions string `json:"special_instructions"`
}

// CreateOrder materializes an order from the caller's current server-side
// cart and returns the assigned order number.
func (c *Client) CreateOrder(ctx context.Context, ts TokenStore, req CreateOrderRequest) (string, error) {
	var out struct {
		OrderNumber string `json:"order_number"`
	}
	if err := c.do(ctx, ts, http.MethodPost, "orders/create/", req, &out); err != nil {
		return "", err
	}
	return out.OrderNumber, nil
}

func (c *Client) ListOrders(ctx context.Context, ts TokenStore, status string, page int) ([]domain.Order, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	if page > 1 {
		params.Set("page", fmt.Sprint(page))
	}
	path := "orders/"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var out paginated[domain.Order]
	if err := c.do(ctx, ts, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.items, nil
}

func (c *Client) GetOrder(ctx context.Context, ts TokenStore, orderNumber string) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, ts, http.MethodGet, "orders/"+orderNumber+"/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelOrder(ctx context.Context, ts TokenStore, orderNumber string) error {
	return c.do(ctx, ts, http.MethodPost, "orders/"+orderNumber+"/cancel/", nil, nil)
}

// --- Restaurant owner ---

func (c *Client) RestaurantOrders(ctx context.Context, ts TokenStore) ([]domain.Order, error) {
	var out paginated[domain.Order]
	if err := c.do(ctx, ts, http.MethodGet, "restaurant/orders/", nil, &out); err != nil {
		return nil, err
	}
	return out.items, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, ts TokenStore, orderNumber string, status domain.OrderStatus) error {
	body := map[string]domain.OrderStatus{"status": status}
	return c.do(ctx, ts, http.MethodPatch, "restaurant/orders/"+orderNumber+"/update/", body, nil)
}

// --- Driver ---

func (c *Client) DriverActiveOrder(ctx context.Context, ts TokenStore) (*domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, ts, http.MethodGet, "driver/active-order/", nil, &out)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if out.OrderNumber == "" {
		return nil, nil
	}
	return &out, nil
}

func (c *Client) DriverAvailableOrders(ctx context.Context, ts TokenStore) ([]domain.Order, error) {
	var out paginated[domain.Order]
	if err := c.do(ctx, ts, http.MethodGet, "driver/available-orders/", nil, &out); err != nil {
		return nil, err
	}
	return out.items, nil
}

func (c *Client) DriverOrderHistory(ctx context.Context, ts TokenStore) ([]domain.Order, error) {
	var out paginated[domain.Order]
	if err := c.do(ctx, ts, http.MethodGet, "driver/order-history/", nil, &out); err != nil {
		return nil, err
	}
	return out.items, nil
}

func (c *Client) AcceptOrder(ctx context.Context, ts TokenStore, orderNumber string) error {
	return c.do(ctx, ts, http.MethodPost, "driver/orders/"+orderNumber+"/accept/", nil, nil)
}

func (c *Client) UpdateDriverOrderStatus(ctx context.Context, ts TokenStore, orderNumber string, status domain.OrderStatus) error {
	body := map[string]domain.OrderStatus{"status": status}
	return c.do(ctx, ts, http.MethodPatch, "driver/orders/"+orderNumber+"/update/", body, nil)
}

// --- Restaurants & reviews ---

func (c *Client) ListRestaurants(ctx context.Context, search string) ([]domain.Restaurant, error) {
	path := "restaurants/"
	if search != "" {
		path = "restaurants/search/?q=" + url.QueryEscape(search)
	}
	var out paginated[domain.Restaurant]
	if err := c.do(ctx, nil, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.items, nil
}

func (c *Client) RestaurantReviews(ctx context.Context, slug string) ([]domain.Review, error) {
	var out paginated[domain.Review]
	if err := c.do(ctx, nil, http.MethodGet, "restaurants/"+slug+"/reviews/", nil, &out); err != nil {
		return nil, err
	}
	return out.items, nil
}

func (c *Client) CreateReview(ctx context.Context, ts TokenStore, slug, orderNumber string, rating int, comment string) error {
	body := map[string]any{"rating": rating, "comment": comment}
	path := "restaurants/" + slug + "/reviews/create/" + orderNumber + "/"
	return c.do(ctx, ts, http.MethodPost, path, body, nil)
}
