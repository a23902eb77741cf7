package httpapi

import (
	"context"
	"log"
	"net/http"

	"github.com/tabishkhalil463/FeastDash/internal/domain"
	"github.com/tabishkhalil463/FeastDash/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// Dashboards maps each user type to its landing route; a role-gate rejection
// points the caller there.
var Dashboards = map[domain.UserType]string{
	domain.UserCustomer:        "/",
	domain.UserRestaurantOwner: "/restaurant/dashboard",
	domain.UserDeliveryDriver:  "/driver/dashboard",
	domain.UserAdmin:           "/admin/dashboard",
}

func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionKey).(*session.Session)
	return sess
}

// requireAuth resolves the session cookie; without a live session the caller
// is sent to login.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":    "Authentication required",
				"redirect": "/login",
			})
			return
		}
		sess, err := h.Sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			clearSessionCookie(w)
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":    "Authentication required",
				"redirect": "/login",
			})
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next(w, r.WithContext(ctx))
	}
}

// requireRole gates a route by user type and redirects everyone else to
// their own dashboard.
func (h *Handler) requireRole(types ...domain.UserType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return h.requireAuth(func(w http.ResponseWriter, r *http.Request) {
			sess := sessionFrom(r)
			for _, t := range types {
				if sess.User.UserType == t {
					next(w, r)
					return
				}
			}
			redirect := Dashboards[sess.User.UserType]
			if redirect == "" {
				redirect = "/"
			}
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error":    "Not allowed for this account type",
				"redirect": redirect,
			})
		})
	}
}

// recover is the top-level error boundary: a panic in one handler becomes a
// generic recovery response instead of taking the process down.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("ERROR: panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "Something went wrong. Please try again.",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
