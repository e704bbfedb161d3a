package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses. Anything it does
// not recognise is logged and answered with a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *domain.ValidationError
		dup  *domain.DuplicateKeyError
		ioe  *domain.IOError
	)
	switch {
	case errors.As(err, &verr):
		writeProblemBody(w, problem{
			Type: "about:blank", Title: "Validation Failed", Status: http.StatusBadRequest,
			Detail: "one or more fields are invalid", Errors: verr.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", domain.ErrUnauthorized.Error())
	case errors.Is(err, domain.ErrAllocationExhausted):
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("unique value allocation exhausted")
		writeProblem(w, http.StatusConflict, "Conflict", "could not allocate a unique value, retry with a different name")
	case errors.As(err, &dup):
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("duplicate key after retry")
		writeProblem(w, http.StatusConflict, "Conflict", "a concurrent request took the same value, retry")
	case errors.As(err, &ioe) && ioe.BadInput:
		writeProblem(w, http.StatusBadRequest, "Bad Request", "the uploaded file could not be read")
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// decodeJSON reads a request body into dst. Syntax errors become a 400
// "Malformed JSON"; values of the wrong type are reported per field along with
// whatever else the partly decoded dst fails to validate.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "request body too large")
			return false
		}
		writeProblem(w, http.StatusBadRequest, "Malformed JSON", "request body could not be read")
		return false
	}
	err = json.Unmarshal(body, dst)
	if err == nil {
		return true
	}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		writeProblem(w, http.StatusBadRequest, "Malformed JSON", syn.Error())
		return false
	}

	bad, ok := fieldDecodeErrors(body, dst)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Malformed JSON", "request body must be a JSON object")
		return false
	}
	verr := domain.NewValidationError()
	verr.Merge(app.Validate(dst))
	for field, msg := range bad {
		verr.Fields[field] = []string{msg}
	}
	writeError(w, r, verr)
	return false
}

// fieldDecodeErrors decodes body one member at a time so every mistyped
// field is found, not just the first. It reports false when body is not an
// object or no single member fails on its own.
func fieldDecodeErrors(body []byte, dst any) (map[string]string, bool) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil || members == nil {
		return nil, false
	}
	bad := map[string]string{}
	for k, v := range members {
		one, err := json.Marshal(map[string]json.RawMessage{k: v})
		if err != nil {
			return nil, false
		}
		if err := json.Unmarshal(one, dst); err != nil {
			bad[k] = decodeMessage(dst, k)
		}
	}
	return bad, len(bad) > 0
}

var (
	numberType = reflect.TypeOf(json.Number(""))
	timeType   = reflect.TypeOf(time.Time{})
)

// decodeMessage words the error by the Go type behind the JSON member name.
func decodeMessage(dst any, name string) string {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return "Invalid value."
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); !strings.EqualFold(tag, name) {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch {
		case ft == timeType:
			return "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
		case ft == numberType:
			return "A valid number is required."
		case ft.Kind() == reflect.Bool:
			return "Must be a valid boolean."
		case ft.Kind() == reflect.String:
			return "Not a valid string."
		}
	}
	return "Invalid value."
}
