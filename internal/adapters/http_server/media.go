package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/adapters/media"
)

func (h *Handlers) serveMedia(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	f, fi, err := h.Media.Open(rel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", media.ContentType(rel))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}
