package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabishkhalil463/FeastDash/internal/api"
	"github.com/tabishkhalil463/FeastDash/internal/domain"
	"github.com/tabishkhalil463/FeastDash/internal/session"
)

// fakeBackend is an in-memory stand-in for the remote FeastDash API, just
// enough of it for the gateway flows under test.
type fakeBackend struct {
	mu sync.Mutex

	users        map[string]domain.User // access token -> user
	cart         domain.Cart
	conflictWith string // restaurant name that rejects cross-restaurant adds
	orderSeq     int
	orders       []domain.Order
	statusLog    []string
	reviews      map[string][]domain.Review
	restaurants  []domain.Restaurant
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:   map[string]domain.User{},
		cart:    domain.Cart{Items: []domain.CartLine{}},
		reviews: map[string][]domain.Review{},
		restaurants: []domain.Restaurant{
			{ID: 1, Name: "Karachi Biryani House", Slug: "karachi-biryani-house", DeliveryFee: 100, IsOpen: true},
			{ID: 2, Name: "Spice Hut", Slug: "spice-hut", DeliveryFee: 80, IsOpen: true},
		},
	}
}

func (b *fakeBackend) addUser(email string, userType domain.UserType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := "acc-" + email
	b.users[token] = domain.User{ID: len(b.users) + 1, Email: email, UserType: userType}
}

func (b *fakeBackend) userFor(r *http.Request) (domain.User, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[token]
	return u, ok
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path

	switch {
	case path == "/api/auth/login/":
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		token := "acc-" + req["email"]
		b.mu.Lock()
		user, ok := b.users[token]
		b.mu.Unlock()
		if !ok || req["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(domain.AuthResponse{
			User:   user,
			Tokens: domain.Tokens{Access: token, Refresh: "ref-" + req["email"]},
		})

	case path == "/api/auth/logout/":
		w.WriteHeader(http.StatusOK)

	case path == "/api/restaurants/" || path == "/api/restaurants/search/":
		b.mu.Lock()
		list := b.restaurants
		b.mu.Unlock()
		if q := r.URL.Query().Get("q"); q != "" {
			var filtered []domain.Restaurant
			for _, rest := range list {
				if strings.Contains(strings.ToLower(rest.Name), strings.ToLower(q)) {
					filtered = append(filtered, rest)
				}
			}
			list = filtered
		}
		json.NewEncoder(w).Encode(map[string]any{"results": list})

	case strings.HasSuffix(path, "/reviews/") && strings.HasPrefix(path, "/api/restaurants/"):
		slug := strings.TrimSuffix(strings.TrimPrefix(path, "/api/restaurants/"), "/reviews/")
		b.mu.Lock()
		list := b.reviews[slug]
		b.mu.Unlock()
		if list == nil {
			list = []domain.Review{}
		}
		json.NewEncoder(w).Encode(list)

	default:
		b.serveAuthed(w, r)
	}
}

func (b *fakeBackend) serveAuthed(w http.ResponseWriter, r *http.Request) {
	user, ok := b.userFor(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Token invalid"})
		return
	}
	path := r.URL.Path
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case path == "/api/cart/" && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(b.cart)

	case path == "/api/cart/add/":
		var req struct {
			MenuItemID int `json:"menu_item_id"`
			Quantity   int `json:"quantity"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if b.conflictWith != "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"conflict":           true,
				"current_restaurant": b.conflictWith,
				"error":              "Your cart contains items from another restaurant",
			})
			return
		}
		b.cart = domain.Cart{
			ID:         1,
			Restaurant: &b.restaurants[0],
			Items: []domain.CartLine{
				{ID: 1, MenuItem: domain.MenuItem{ID: req.MenuItemID, Name: "Chicken Biryani", Price: 450},
					Quantity: req.Quantity, Subtotal: domain.Money(450 * req.Quantity)},
			},
			TotalAmount: domain.Money(450 * req.Quantity),
			ItemsCount:  req.Quantity,
		}
		json.NewEncoder(w).Encode(b.cart)

	case path == "/api/cart/" && r.Method == http.MethodDelete:
		b.cart = domain.Cart{Items: []domain.CartLine{}}
		w.WriteHeader(http.StatusOK)

	case path == "/api/orders/create/":
		if b.cart.IsEmpty() {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Cart is empty"})
			return
		}
		b.orderSeq++
		number := fmt.Sprintf("FD-%08d", b.orderSeq)
		b.orders = append(b.orders, domain.Order{
			OrderNumber: number,
			Status:      domain.StatusPending,
			GrandTotal:  b.cart.TotalAmount,
			CreatedAt:   time.Now(),
		})
		b.cart = domain.Cart{Items: []domain.CartLine{}}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"order_number": number})

	case path == "/api/orders/" && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(b.orders)

	case strings.HasPrefix(path, "/api/orders/") && r.Method == http.MethodGet:
		number := strings.TrimSuffix(strings.TrimPrefix(path, "/api/orders/"), "/")
		for _, o := range b.orders {
			if o.OrderNumber == number {
				json.NewEncoder(w).Encode(o)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not found."})

	case path == "/api/restaurant/orders/":
		json.NewEncoder(w).Encode(b.orders)

	case strings.HasPrefix(path, "/api/restaurant/orders/") && strings.HasSuffix(path, "/update/"):
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		number := strings.TrimSuffix(strings.TrimPrefix(path, "/api/restaurant/orders/"), "/update/")
		b.statusLog = append(b.statusLog, number+":"+req["status"])
		for i := range b.orders {
			if b.orders[i].OrderNumber == number {
				b.orders[i].Status = domain.OrderStatus(req["status"])
			}
		}
		w.WriteHeader(http.StatusOK)

	case path == "/api/driver/active-order/":
		for _, o := range b.orders {
			if o.DriverName == user.Email && o.Status != domain.StatusDelivered {
				json.NewEncoder(w).Encode(o)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not found."})

	case path == "/api/driver/available-orders/":
		var available []domain.Order
		for _, o := range b.orders {
			if o.Status == domain.StatusReady && o.DriverName == "" {
				available = append(available, o)
			}
		}
		json.NewEncoder(w).Encode(available)

	case path == "/api/driver/order-history/":
		var history []domain.Order
		for _, o := range b.orders {
			if o.DriverName == user.Email && o.Status == domain.StatusDelivered {
				history = append(history, o)
			}
		}
		json.NewEncoder(w).Encode(history)

	case strings.HasPrefix(path, "/api/driver/orders/") && strings.HasSuffix(path, "/accept/"):
		number := strings.TrimSuffix(strings.TrimPrefix(path, "/api/driver/orders/"), "/accept/")
		for i := range b.orders {
			if b.orders[i].OrderNumber == number {
				b.orders[i].DriverName = user.Email
			}
		}
		w.WriteHeader(http.StatusOK)

	case strings.HasPrefix(path, "/api/driver/orders/") && strings.HasSuffix(path, "/update/"):
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		number := strings.TrimSuffix(strings.TrimPrefix(path, "/api/driver/orders/"), "/update/")
		for i := range b.orders {
			if b.orders[i].OrderNumber == number {
				b.orders[i].Status = domain.OrderStatus(req["status"])
			}
		}
		w.WriteHeader(http.StatusOK)

	case strings.Contains(path, "/reviews/create/"):
		rest := strings.TrimPrefix(path, "/api/restaurants/")
		slug := rest[:strings.Index(rest, "/")]
		number := strings.TrimSuffix(rest[strings.Index(rest, "/reviews/create/")+len("/reviews/create/"):], "/")
		var req struct {
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		b.reviews[slug] = append(b.reviews[slug], domain.Review{
			ID:          len(b.reviews[slug]) + 1,
			OrderNumber: number,
			Rating:      req.Rating,
			Comment:     req.Comment,
		})
		w.WriteHeader(http.StatusCreated)

	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not found."})
	}
}

type stubQR struct{}

func (stubQR) Generate(orderNumber string) ([]byte, error) {
	return []byte("png:" + orderNumber), nil
}

type gateway struct {
	handler *Handler
	router  http.Handler
	backend *fakeBackend
	store   *session.MemoryStore
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	client := api.NewClient(srv.URL, nil)
	h := NewHandler(session.NewService(store, client), client, stubQR{})
	h.Sleep = func(time.Duration) {}

	return &gateway{handler: h, router: h.Routes(), backend: backend, store: store}
}

// login runs the real login flow and returns the session cookie.
func (g *gateway) login(t *testing.T, email string, userType domain.UserType) *http.Cookie {
	t.Helper()
	g.backend.addUser(email, userType)
	rec := g.do(t, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"email": email, "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func (g *gateway) do(t *testing.T, method, path string, cookie *http.Cookie, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(data)
	} else {
		payload = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLogin_SetsCookieAndRedirectsByRole(t *testing.T) {
	tests := []struct {
		userType domain.UserType
		redirect string
	}{
		{domain.UserCustomer, "/"},
		{domain.UserRestaurantOwner, "/restaurant/dashboard"},
		{domain.UserDeliveryDriver, "/driver/dashboard"},
	}
	for _, tc := range tests {
		t.Run(string(tc.userType), func(t *testing.T) {
			g := newGateway(t)
			email := string(tc.userType) + "@feastdash.pk"
			g.backend.addUser(email, tc.userType)

			rec := g.do(t, http.MethodPost, "/api/auth/login", nil,
				map[string]string{"email": email, "password": "secret"})
			require.Equal(t, http.StatusOK, rec.Code)

			body := decode[map[string]any](t, rec)
			assert.Equal(t, tc.redirect, body["redirect"])
			assert.NotEmpty(t, rec.Result().Cookies())
		})
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	g := newGateway(t)
	g.backend.addUser("x@y.pk", domain.UserCustomer)

	rec := g.do(t, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"email": "x@y.pk", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "Invalid credentials", body["error"])
}

func TestRequireAuth(t *testing.T) {
	g := newGateway(t)

	rec := g.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", decode[map[string]string](t, rec)["redirect"])

	rec = g.do(t, http.MethodGet, "/api/auth/me", &http.Cookie{Name: sessionCookie, Value: "bogus"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole_RedirectsToOwnDashboard(t *testing.T) {
	g := newGateway(t)
	customer := g.login(t, "eater@feastdash.pk", domain.UserCustomer)
	owner := g.login(t, "owner@feastdash.pk", domain.UserRestaurantOwner)

	// A customer cannot see the restaurant board.
	rec := g.do(t, http.MethodGet, "/api/restaurant/orders", customer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/", decode[map[string]string](t, rec)["redirect"])

	// An owner cannot use the customer cart.
	rec = g.do(t, http.MethodGet, "/api/cart", owner, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/restaurant/dashboard", decode[map[string]string](t, rec)["redirect"])
}

func TestMe_ReturnsSessionUser(t *testing.T) {
	g := newGateway(t)
	cookie := g.login(t, "eater@feastdash.pk", domain.UserCustomer)

	rec := g.do(t, http.MethodGet, "/api/auth/me", cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[domain.User](t, rec)
	assert.Equal(t, "eater@feastdash.pk", user.Email)
}

func TestLogout_DestroysSession(t *testing.T) {
	g := newGateway(t)
	cookie := g.login(t, "eater@feastdash.pk", domain.UserCustomer)

	rec := g.do(t, http.MethodPost, "/api/auth/logout", cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = g.do(t, http.MethodGet, "/api/auth/me", cookie, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredSessionIsTornDown(t *testing.T) {
	g := newGateway(t)
	cookie := g.login(t, "eater@feastdash.pk", domain.UserCustomer)

	// Kill the tokens server-side: the gateway's replay will 401 twice and
	// the session must be destroyed.
	g.backend.mu.Lock()
	g.backend.users = map[string]domain.User{}
	g.backend.mu.Unlock()

	rec := g.do(t, http.MethodGet, "/api/cart", cookie, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", decode[map[string]string](t, rec)["redirect"])

	rec = g.do(t, http.MethodGet, "/api/auth/me", cookie, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "session record is gone")
}

func TestRecoverMiddleware(t *testing.T) {
	g := newGateway(t)
	router := g.handler.Routes()
	router.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "Something went wrong. Please try again.", body["error"])
}

func TestHealthCheck(t *testing.T) {
	g := newGateway(t)
	rec := g.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "feastdash-gateway", body["service"])
}

func TestPublicRestaurantListAndSearch(t *testing.T) {
	g := newGateway(t)

	rec := g.do(t, http.MethodGet, "/api/restaurants", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Restaurant](t, rec), 2)

	rec = g.do(t, http.MethodGet, "/api/restaurants?search=spice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]domain.Restaurant](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, "spice-hut", found[0].Slug)
}
