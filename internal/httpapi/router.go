package httpapi

import (
	"github.com/gorilla/mux"

	"github.com/tabishkhalil463/FeastDash/internal/domain"
)

// Routes is the role-gated route table. Pages the original app protected by
// user type are gated the same way here; everyone else is pointed at their
// own dashboard.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	owner := h.requireRole(domain.UserRestaurantOwner)
	driver := h.requireRole(domain.UserDeliveryDriver)
	customer := h.requireRole(domain.UserCustomer)

	// Public
	r.HandleFunc("/api/auth/register", h.register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.login).Methods("POST")
	r.HandleFunc("/api/restaurants", h.listRestaurants).Methods("GET")
	r.HandleFunc("/api/restaurants/{slug}/reviews", h.restaurantReviews).Methods("GET")

	// Authenticated, any role
	r.HandleFunc("/api/auth/logout", h.requireAuth(h.logout)).Methods("POST")
	r.HandleFunc("/api/auth/me", h.requireAuth(h.me)).Methods("GET")
	r.HandleFunc("/api/auth/profile", h.requireAuth(h.updateProfile)).Methods("PATCH")
	r.HandleFunc("/api/search", h.requireAuth(h.liveSearchHandler)).Methods("GET")

	// Customer
	r.HandleFunc("/api/cart", customer(h.getCart)).Methods("GET")
	r.HandleFunc("/api/cart/add", customer(h.addToCart)).Methods("POST")
	r.HandleFunc("/api/cart/item/{itemId}", customer(h.updateCartItem)).Methods("PATCH")
	r.HandleFunc("/api/cart/item/{itemId}", customer(h.removeCartItem)).Methods("DELETE")
	r.HandleFunc("/api/cart", customer(h.clearCart)).Methods("DELETE")

	r.HandleFunc("/api/checkout", customer(h.beginCheckout)).Methods("POST")
	r.HandleFunc("/api/checkout", customer(h.checkoutState)).Methods("GET")
	r.HandleFunc("/api/checkout", customer(h.abandonCheckout)).Methods("DELETE")
	r.HandleFunc("/api/checkout/delivery", customer(h.checkoutDelivery)).Methods("POST")
	r.HandleFunc("/api/checkout/payment", customer(h.checkoutPayment)).Methods("POST")
	r.HandleFunc("/api/checkout/next", customer(h.checkoutNext)).Methods("POST")
	r.HandleFunc("/api/checkout/back", customer(h.checkoutBack)).Methods("POST")
	r.HandleFunc("/api/checkout/submit", customer(h.checkoutSubmit)).Methods("POST")
	r.HandleFunc("/api/checkout/retry", customer(h.checkoutRetry)).Methods("POST")
	r.HandleFunc("/api/checkout/fallback-cod", customer(h.checkoutFallbackCOD)).Methods("POST")

	r.HandleFunc("/api/orders", customer(h.listOrders)).Methods("GET")
	r.HandleFunc("/api/orders/{orderNumber}", customer(h.getOrder)).Methods("GET")
	r.HandleFunc("/api/orders/{orderNumber}/cancel", customer(h.cancelOrder)).Methods("POST")
	r.HandleFunc("/api/orders/{orderNumber}/review-eligibility", customer(h.reviewEligibility)).Methods("GET")
	r.HandleFunc("/api/orders/{orderNumber}/review", customer(h.createReview)).Methods("POST")
	r.HandleFunc("/api/orders/{orderNumber}/qrcode", customer(h.orderQRCode)).Methods("GET")

	// Restaurant owner
	r.HandleFunc("/api/restaurant/orders", owner(h.ownerBoard)).Methods("GET")
	r.HandleFunc("/api/restaurant/orders/{orderNumber}/advance", owner(h.ownerAdvanceOrder)).Methods("POST")
	r.HandleFunc("/api/restaurant/orders/view", owner(h.ownerLeaveBoard)).Methods("DELETE")

	// Delivery driver
	r.HandleFunc("/api/driver/dashboard", driver(h.driverDashboard)).Methods("GET")
	r.HandleFunc("/api/driver/orders/{orderNumber}/accept", driver(h.driverAccept)).Methods("POST")
	r.HandleFunc("/api/driver/advance", driver(h.driverAdvance)).Methods("POST")
	r.HandleFunc("/api/driver/dashboard", driver(h.driverLeave)).Methods("DELETE")

	r.Use(recoverMiddleware)
	return r
}
