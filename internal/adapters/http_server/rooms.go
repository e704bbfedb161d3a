package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/app"
)

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Rooms.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]roomView, 0, len(rooms))
	for _, m := range rooms {
		out = append(out, toRoomView(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	m, err := h.Rooms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomView(m))
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var in app.RoomInput
	h.limitBody(w, r)
	if !decodeJSON(w, r, &in) {
		return
	}
	m, err := h.Rooms.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomView(m))
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	var in app.RoomInput
	h.limitBody(w, r)
	if !decodeJSON(w, r, &in) {
		return
	}
	m, err := h.Rooms.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomView(m))
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.Rooms.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
