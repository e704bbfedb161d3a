package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"hotel_booking/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		return decimalProblem(fl.Field().String(), fl.Param()) == ""
	})
	_ = v.RegisterValidation("bookingstatus", func(fl validator.FieldLevel) bool {
		return domain.BookingStatus(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks v's `validate` tags and returns every failing field, or
// nil when v is valid.
func Validate(v any) *domain.ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domain.FieldError("non_field_errors", err.Error())
	}
	out := domain.NewValidationError()
	for _, fe := range ves {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "decimal":
		return decimalProblem(fmt.Sprint(fe.Value()), fe.Param())
	case "bookingstatus":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	}
	return "Invalid value."
}

// decimalProblem checks s against a "digits:places" format, the same bounds as
// a SQL DECIMAL(digits, places) column. It returns "" when s fits.
func decimalProblem(s, format string) string {
	digits, places := 10, 2
	if d, p, ok := strings.Cut(format, ":"); ok {
		digits, _ = strconv.Atoi(d)
		places, _ = strconv.Atoi(p)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "A valid number is required."
	}
	norm := strconv.FormatFloat(math.Abs(f), 'f', -1, 64)
	intPart, frac, _ := strings.Cut(norm, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if len(frac) > places {
		return fmt.Sprintf("Ensure that there are no more than %d decimal places.", places)
	}
	if len(intPart) > digits-places {
		return fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", digits-places)
	}
	return ""
}

// decimalValue converts an already validated number; "" yields def.
func decimalValue(n json.Number, def float64) float64 {
	if n == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	if err != nil {
		return def
	}
	return f
}
