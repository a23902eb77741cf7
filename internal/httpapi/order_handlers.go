package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tabishkhalil463/FeastDash/internal/domain"
	"github.com/tabishkhalil463/FeastDash/internal/orders"
)

func (h *Handler) tracking(r *http.Request) *orders.Tracking {
	return orders.NewTracking(h.Client, h.Sessions.Tokens(sessionFrom(r).ID))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	list, err := h.tracking(r).List(r.Context(), status, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// getOrder returns the order with its derived progress indicator and action
// affordances.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := mux.Vars(r)["orderNumber"]
	tracking := h.tracking(r)
	order, err := tracking.Order(r.Context(), orderNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	order.RestaurantImage = h.Client.MediaURL(order.RestaurantImage)
	writeJSON(w, http.StatusOK, map[string]any{
		"order":      order,
		"progress":   orders.Progress(order.Status),
		"can_cancel": domain.CanCancel(order.Status),
	})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := mux.Vars(r)["orderNumber"]
	if err := h.tracking(r).Cancel(r.Context(), orderNumber); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// reviewEligibility answers whether the review affordance should show:
// delivered, and no review yet in the restaurant's list.
func (h *Handler) reviewEligibility(w http.ResponseWriter, r *http.Request) {
	orderNumber := mux.Vars(r)["orderNumber"]
	slug := r.URL.Query().Get("restaurant")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "restaurant query parameter is required")
		return
	}
	tracking := h.tracking(r)
	order, err := tracking.Order(r.Context(), orderNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	canReview, err := tracking.CanReview(r.Context(), order, slug)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"can_review": canReview})
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	orderNumber := mux.Vars(r)["orderNumber"]
	var req struct {
		Restaurant string `json:"restaurant"`
		Rating     int    `json:"rating"`
		Comment    string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.tracking(r).SubmitReview(r.Context(), req.Restaurant, orderNumber, req.Rating, req.Comment); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// orderQRCode serves the tracking-URL QR for a placed order as a PNG.
func (h *Handler) orderQRCode(w http.ResponseWriter, r *http.Request) {
	orderNumber := mux.Vars(r)["orderNumber"]
	// Resolve through the API so only the order's owner can mint its code.
	if _, err := h.tracking(r).Order(r.Context(), orderNumber); err != nil {
		h.fail(w, r, err)
		return
	}
	png, err := h.QR.Generate(orderNumber)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// --- Restaurant owner board ---

func (h *Handler) ownerBoard(w http.ResponseWriter, r *http.Request) {
	board := h.Boards.Open(sessionFrom(r).ID)
	if r.URL.Query().Get("refresh") != "" {
		board.Refresh()
	}
	tab := r.URL.Query().Get("tab")
	if tab == "" {
		tab = "new"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders": board.Tab(tab),
		"counts": board.Counts(),
	})
}

func (h *Handler) ownerAdvanceOrder(w http.ResponseWriter, r *http.Request) {
	board := h.Boards.Open(sessionFrom(r).ID)
	orderNumber := mux.Vars(r)["orderNumber"]
	if err := board.Advance(r.Context(), orderNumber); err != nil {
		h.advanceFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) ownerLeaveBoard(w http.ResponseWriter, r *http.Request) {
	h.Boards.Close(sessionFrom(r).ID)
	w.WriteHeader(http.StatusNoContent)
}

// --- Driver dashboard ---

func (h *Handler) driverDashboard(w http.ResponseWriter, r *http.Request) {
	dash := h.Drivers.Open(sessionFrom(r).ID)
	if r.URL.Query().Get("refresh") != "" {
		dash.Refresh()
	}
	view := dash.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"active_order":     view.Active,
		"available_orders": view.Available,
		"order_history":    view.History,
		"today":            orders.TodayStats(view.History, time.Now()),
	})
}

func (h *Handler) driverAccept(w http.ResponseWriter, r *http.Request) {
	dash := h.Drivers.Open(sessionFrom(r).ID)
	orderNumber := mux.Vars(r)["orderNumber"]
	if err := dash.Accept(r.Context(), orderNumber); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (h *Handler) driverAdvance(w http.ResponseWriter, r *http.Request) {
	dash := h.Drivers.Open(sessionFrom(r).ID)
	if err := dash.Advance(r.Context()); err != nil {
		h.advanceFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) driverLeave(w http.ResponseWriter, r *http.Request) {
	h.Drivers.Close(sessionFrom(r).ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) advanceFail(w http.ResponseWriter, r *http.Request, err error) {
	switch err {
	case orders.ErrNoTransition:
		writeError(w, http.StatusConflict, err.Error())
	case orders.ErrUnknownOrder:
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.fail(w, r, err)
	}
}

// --- Public restaurants ---

func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	list, err := h.Client.ListRestaurants(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for i := range list {
		list[i].Image = h.Client.MediaURL(list[i].Image)
	}
	writeJSON(w, http.StatusOK, list)
}

// liveSearchHandler is the debounced search box: each keystroke lands here,
// only the last one in a quiet period reaches the remote API.
func (h *Handler) liveSearchHandler(w http.ResponseWriter, r *http.Request) {
	search := h.Search.For(sessionFrom(r).ID)
	if q, ok := r.URL.Query()["q"]; ok && len(q) > 0 {
		search.SetQuery(q[0])
	}
	writeJSON(w, http.StatusOK, search.Snapshot())
}

func (h *Handler) restaurantReviews(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	reviews, err := h.Client.RestaurantReviews(r.Context(), slug)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
