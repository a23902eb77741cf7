package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tabishkhalil463/FeastDash/internal/api"
	"github.com/tabishkhalil463/FeastDash/internal/checkout"
)

func (h *Handler) placeOrderFunc(sessionID string) checkout.PlaceOrderFunc {
	tokens := h.Sessions.Tokens(sessionID)
	return func(ctx context.Context, req api.CreateOrderRequest) (string, error) {
		return h.Client.CreateOrder(ctx, tokens, req)
	}
}

// beginCheckout starts a fresh wizard from the current cart; an empty cart
// short-circuits before any step is shown.
func (h *Handler) beginCheckout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	store := h.cartStore(r)
	if err := store.Fetch(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	wizard, err := h.Checkouts.Begin(sess.ID, store, h.placeOrderFunc(sess.ID), h.Sleep)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, http.StatusConflict, "Cart is empty")
		case errors.Is(err, checkout.ErrProcessing):
			h.checkoutFail(w, err)
		default:
			h.fail(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, wizard.Snapshot())
}

func (h *Handler) wizard(w http.ResponseWriter, r *http.Request) (*checkout.Wizard, bool) {
	wizard, ok := h.Checkouts.Get(sessionFrom(r).ID)
	if !ok {
		writeError(w, http.StatusNotFound, "No checkout in progress")
		return nil, false
	}
	return wizard, true
}

func (h *Handler) checkoutState(w http.ResponseWriter, r *http.Request) {
	wizard, ok := h.wizard(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wizard.Snapshot())
}

func (h *Handler) checkoutDelivery(w http.ResponseWriter, r *http.Request) {
	wizard, ok := h.wizard(w, r)
	if !ok {
		return
	}
	var details checkout.DeliveryDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := wizard.SetDelivery(details); err != nil {
		h.checkoutFail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizard.Snapshot())
}

type paymentRequest struct {
	PaymentMethod string `json:"payment_method"`
	WalletPhone   string `json:"wallet_phone"`
	CardNumber    string `json:"card_number"`
	CardName      string `json:"card_name"`
	CardExpiry    string `json:"card_expiry"`
	CardCVV       string `json:"card_cvv"`
}

func (p paymentRequest) details() (checkout.PaymentDetails, error) {
	switch checkout.PaymentMethod(p.PaymentMethod) {
	case checkout.MethodCOD:
		return checkout.CODDetails{}, nil
	case checkout.MethodJazzCash, checkout.MethodEasyPaisa:
		return checkout.WalletDetails{
			Wallet: checkout.PaymentMethod(p.PaymentMethod),
			Phone:  p.WalletPhone,
		}, nil
	case checkout.MethodCard:
		return checkout.CardDetails{
			Number: p.CardNumber,
			Name:   p.CardName,
			Expiry: p.CardExpiry,
			CVV:    p.CardCVV,
		}, nil
	}
	return nil, errors.New("unknown payment method")
}

func (h *Handler) checkoutPayment(w http.ResponseWriter, r *http.Request) {
	wizard, ok := h.wizard(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	details, err := req.details()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := wizard.SetPayment(details); err != nil {
		h.checkoutFail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizard.Snapshot())
}

func (h *Handler) checkoutNext(w http.ResponseWriter, r *http.Request) {
	wizard, ok := h.wizard(w, r)
	if !ok {
		return
	}
	err := wizard.Next()
	if err != nil && !errors.Is(err, checkout.ErrStepBlocked) {
		h.checkoutFail(w, err)
		return
	}
	// Blocked steps still return the snapshot so field errors can render.
	writeJSON(w, http.StatusOK, wizard.Snapshot())
}

func (h *Handler) checkoutBack(w http.ResponseWriter, r *http.Request) {
	wizard, ok := h.wizard(w, r)
	if !ok {
		return
	}
	if err := wizard.Back(); err != nil {
		h.checkoutFail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizard.Snapshot())
}

// checkoutSubmit blocks for the processing window and responds with the
// terminal state.
func (h *Handler) checkoutSubmit(w http.ResponseWriter, r *http.Request) {
	wizard, ok := h.wizard(w, r)
	if !ok {
		return
	}
	if err := wizard.Submit(r.Context()); err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			h.fail(w, r, err)
			return
		}
		h.checkoutFail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizard.Snapshot())
}

func (h *Handler) checkoutRetry(w http.ResponseWriter, r *http.Request) {
	wizard, ok := h.wizard(w, r)
	if !ok {
		return
	}
	if err := wizard.Retry(); err != nil {
		h.checkoutFail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizard.Snapshot())
}

func (h *Handler) checkoutFallbackCOD(w http.ResponseWriter, r *http.Request) {
	wizard, ok := h.wizard(w, r)
	if !ok {
		return
	}
	if err := wizard.FallbackToCOD(); err != nil {
		h.checkoutFail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizard.Snapshot())
}

// abandonCheckout discards the ephemeral form, as navigating away does. A
// payment attempt in flight keeps the wizard alive so its outcome can land.
func (h *Handler) abandonCheckout(w http.ResponseWriter, r *http.Request) {
	if err := h.Checkouts.Discard(sessionFrom(r).ID); err != nil {
		h.checkoutFail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkoutFail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrProcessing):
		writeError(w, http.StatusConflict, "Checkout is processing, please wait")
	case errors.Is(err, checkout.ErrWizardClosed):
		writeError(w, http.StatusConflict, "Checkout already finished")
	case errors.Is(err, checkout.ErrNotReview), errors.Is(err, checkout.ErrNotFailed):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
