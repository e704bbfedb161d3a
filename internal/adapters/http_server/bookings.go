package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/app"
)

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Bookings.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingView(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingView(b))
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var in app.BookingInput
	h.limitBody(w, r)
	if !decodeJSON(w, r, &in) {
		return
	}
	b, err := h.Bookings.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingView(b))
}

func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	var in app.BookingInput
	h.limitBody(w, r)
	if !decodeJSON(w, r, &in) {
		return
	}
	b, err := h.Bookings.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingView(b))
}

func (h *Handlers) deleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.Bookings.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
