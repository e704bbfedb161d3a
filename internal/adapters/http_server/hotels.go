package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

const multipartMemory = 8 << 20

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Hotels.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]hotelView, 0, len(hotels))
	for _, m := range hotels {
		out = append(out, h.toHotelView(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	m, err := h.Hotels.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toHotelView(m))
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	in, image, ok := h.hotelPayload(w, r)
	if !ok {
		return
	}
	if image != nil {
		defer image.Close()
	}
	m, err := h.Hotels.Create(r.Context(), in, readerOrNil(image))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toHotelView(m))
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	in, image, ok := h.hotelPayload(w, r)
	if !ok {
		return
	}
	if image != nil {
		defer image.Close()
	}
	m, err := h.Hotels.Update(r.Context(), chi.URLParam(r, "id"), in, readerOrNil(image))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toHotelView(m))
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	if err := h.Hotels.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readerOrNil keeps a nil multipart.File from becoming a non-nil io.Reader.
func readerOrNil(f multipart.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}

// hotelPayload accepts either a JSON body or a multipart form carrying an
// optional "image" file. On failure the response has been written.
func (h *Handlers) hotelPayload(w http.ResponseWriter, r *http.Request) (app.HotelInput, multipart.File, bool) {
	var in app.HotelInput
	h.limitBody(w, r)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "multipart/form-data" {
		return in, nil, decodeJSON(w, r, &in)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "upload too large")
		} else {
			writeProblem(w, http.StatusBadRequest, "Malformed Form", err.Error())
		}
		return in, nil, false
	}
	field := func(k string) string { return strings.TrimSpace(r.FormValue(k)) }
	in = app.HotelInput{
		Name:          field("name"),
		Description:   r.FormValue("description"),
		Address:       field("address"),
		City:          field("city"),
		Country:       field("country"),
		Email:         field("email"),
		Phone:         field("phone"),
		Website:       field("website"),
		PricePerNight: json.Number(field("price_per_night")),
		Currency:      field("currency"),
		Rating:        json.Number(field("rating")),
	}
	if v := field("is_active"); v != "" {
		b, err := parseFormBool(v)
		if err != nil {
			// report the bad flag together with every other field problem
			verr := domain.FieldError("is_active", "Must be a valid boolean.")
			verr.Merge(app.Validate(in))
			writeError(w, r, verr)
			return in, nil, false
		}
		in.IsActive = &b
	}

	file, _, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, nil, true
	case err != nil:
		writeError(w, r, domain.FieldError("image", "Upload a valid image."))
		return in, nil, false
	}
	return in, file, true
}

func parseFormBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(v)
}
