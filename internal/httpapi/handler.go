package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/tabishkhalil463/FeastDash/internal/api"
	"github.com/tabishkhalil463/FeastDash/internal/cart"
	"github.com/tabishkhalil463/FeastDash/internal/checkout"
	"github.com/tabishkhalil463/FeastDash/internal/orders"
	"github.com/tabishkhalil463/FeastDash/internal/session"
)

const sessionCookie = "feastdash_session"

// Handler wires every per-session store behind the route table.
type Handler struct {
	Sessions  *session.Service
	Client    *api.Client
	Carts     *cart.Registry
	Checkouts *checkout.Registry
	Boards    *boardRegistry
	Drivers   *driverRegistry
	Search    *searchRegistry
	QR        orders.QRGenerator

	// Sleep is the simulated payment-gateway pause; tests inject a no-op.
	Sleep func(time.Duration)
}

func NewHandler(sessions *session.Service, client *api.Client, qr orders.QRGenerator) *Handler {
	tokens := func(id string) api.TokenStore { return sessions.Tokens(id) }
	return &Handler{
		Sessions:  sessions,
		Client:    client,
		Carts:     cart.NewRegistry(client, tokens),
		Checkouts: checkout.NewRegistry(),
		Boards:    newBoardRegistry(client, tokens),
		Drivers:   newDriverRegistry(client, tokens),
		Search:    newSearchRegistry(client),
		QR:        qr,
		Sleep:     time.Sleep,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// fail maps the error taxonomy to responses: an expired session tears the
// session down and points at login; API rejections pass through with their
// status and reason; anything else is a bad gateway.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, api.ErrSessionExpired) {
		if sess := sessionFrom(r); sess != nil {
			h.teardown(r, sess.ID)
			h.Sessions.Destroy(r.Context(), sess.ID)
		}
		clearSessionCookie(w)
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    "Session expired",
			"redirect": "/login",
		})
		return
	}
	if apiErr, ok := api.AsAPIError(err); ok {
		writeError(w, apiErr.StatusCode, apiErr.Message)
		return
	}
	log.Printf("ERROR: upstream call failed: %v", err)
	writeError(w, http.StatusBadGateway, "Upstream request failed")
}

// teardown drops everything owned by one session: stores, wizard, pollers.
func (h *Handler) teardown(r *http.Request, sessionID string) {
	h.Carts.Drop(sessionID)
	h.Checkouts.Drop(sessionID)
	h.Boards.Close(sessionID)
	h.Drivers.Close(sessionID)
	h.Search.Close(sessionID)
	_ = r
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "feastdash-gateway",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
