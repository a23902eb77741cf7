package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/tabishkhalil463/FeastDash/internal/api"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sess, err := h.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setSessionCookie(w, sess.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":     sess.User,
		"redirect": Dashboards[sess.User.UserType],
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sess, err := h.Sessions.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setSessionCookie(w, sess.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":     sess.User,
		"redirect": Dashboards[sess.User.UserType],
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	h.teardown(r, sess.ID)
	if err := h.Sessions.Logout(r.Context(), sess); err != nil {
		h.fail(w, r, err)
		return
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/login"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).User)
}

// updateProfile accepts JSON, or multipart form data when a profile image is
// attached.
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	if mediaType := r.Header.Get("Content-Type"); len(mediaType) >= 19 && mediaType[:19] == "multipart/form-data" {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "File too large")
			return
		}
		fields := map[string]string{}
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
		file, header, err := r.FormFile("profile_picture")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Error retrieving file")
			return
		}
		defer file.Close()
		user, err := h.Sessions.UpdateProfileWithImage(r.Context(), sess, fields, header.Filename, io.Reader(file))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
		return
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.Sessions.UpdateProfile(r.Context(), sess, fields)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
