package httpserver

import (
	"errors"
	"net/http"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var in app.UserInput
	h.limitBody(w, r)
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := h.Auth.Register(r.Context(), in)
	observability.ObserveAuth("register", authOutcome(err))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionView(s))
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in app.LoginInput
	h.limitBody(w, r)
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := h.Auth.Login(r.Context(), in)
	observability.ObserveAuth("login", authOutcome(err))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(s))
}

func (h *Handlers) refresh(w http.ResponseWriter, r *http.Request) {
	var in app.RefreshInput
	h.limitBody(w, r)
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := h.Auth.Refresh(r.Context(), in)
	observability.ObserveAuth("refresh", authOutcome(err))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": s.Token, "refresh": s.Refresh})
}

// logout keeps no server state; clients drop their tokens.
func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"detail": "logged out"})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsFrom(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	u, err := h.Auth.Me(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(u))
}

func authOutcome(err error) string {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized), errors.As(err, &verr):
		return "rejected"
	}
	return "error"
}
