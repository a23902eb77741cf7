package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tabishkhalil463/FeastDash/internal/cart"
)

func (h *Handler) cartStore(r *http.Request) *cart.Store {
	return h.Carts.ForSession(sessionFrom(r).ID)
}

type cartResponse struct {
	Cart   any         `json:"cart"`
	Totals cart.Totals `json:"totals"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	store := h.cartStore(r)
	if err := store.Fetch(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Cart: store.Snapshot(), Totals: store.Totals()})
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MenuItemID          int    `json:"menu_item_id"`
		Quantity            int    `json:"quantity"`
		SpecialInstructions string `json:"special_instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	store := h.cartStore(r)
	result, err := store.Add(r.Context(), req.MenuItemID, req.Quantity, req.SpecialInstructions)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if result.Conflict {
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{
		"result": result,
		"cart":   store.Snapshot(),
		"totals": store.Totals(),
	})
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, _ := strconv.Atoi(mux.Vars(r)["itemId"])
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	store := h.cartStore(r)
	if err := store.UpdateQuantity(r.Context(), itemID, req.Quantity); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Cart: store.Snapshot(), Totals: store.Totals()})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, _ := strconv.Atoi(mux.Vars(r)["itemId"])
	store := h.cartStore(r)
	if err := store.Remove(r.Context(), itemID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Cart: store.Snapshot(), Totals: store.Totals()})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	store := h.cartStore(r)
	if err := store.Clear(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Cart: store.Snapshot(), Totals: store.Totals()})
}
