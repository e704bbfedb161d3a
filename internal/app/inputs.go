package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"hotel_booking/internal/domain"
)

// Text is a free-text field that also accepts a bare JSON number, so
// {"capacity": 2} and {"capacity": "2 adults"} both decode.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '"' && !bytes.Equal(b, []byte("null")) {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*t = Text(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

// Inputs are full-replace payloads: a field left out of an update takes its
// default again, exactly as on create.

type HotelInput struct {
	Name          string      `json:"name" validate:"required,max=200"`
	Description   string      `json:"description"`
	Address       string      `json:"address" validate:"required,max=500"`
	City          string      `json:"city" validate:"required,max=100"`
	Country       string      `json:"country" validate:"omitempty,max=100"`
	Email         string      `json:"email" validate:"required,email,max=254"`
	Phone         string      `json:"phone" validate:"omitempty,max=20"`
	Website       string      `json:"website" validate:"omitempty,max=200"`
	PricePerNight json.Number `json:"price_per_night" validate:"required,decimal=10:2"`
	Currency      string      `json:"currency" validate:"omitempty,max=3"`
	Rating        json.Number `json:"rating" validate:"omitempty,decimal=3:1"`
	IsActive      *bool       `json:"is_active"`
}

func (in HotelInput) apply(h *domain.Hotel) {
	h.Name = strings.TrimSpace(in.Name)
	h.Description = in.Description
	h.Address = in.Address
	h.City = in.City
	h.Country = orDefault(in.Country, domain.DefaultCountry)
	h.Email = strings.TrimSpace(in.Email)
	h.Phone = in.Phone
	h.Website = in.Website
	h.PricePerNight = decimalValue(in.PricePerNight, 0)
	h.Currency = orDefault(in.Currency, domain.DefaultCurrency)
	h.Rating = decimalValue(in.Rating, 0)
	h.IsActive = boolOr(in.IsActive, true)
}

type RoomInput struct {
	Hotel         string      `json:"hotel" validate:"required"`
	RoomNumber    Text        `json:"room_number" validate:"required,max=10"`
	RoomType      string      `json:"room_type" validate:"required,max=50"`
	Capacity      Text        `json:"capacity" validate:"required,max=50"`
	PricePerNight json.Number `json:"price_per_night" validate:"required,decimal=10:2"`
	IsAvailable   *bool       `json:"is_available"`
}

func (in RoomInput) apply(r *domain.Room) {
	r.HotelID = in.Hotel
	r.RoomNumber = strings.TrimSpace(string(in.RoomNumber))
	r.RoomType = in.RoomType
	r.Capacity = string(in.Capacity)
	r.PricePerNight = decimalValue(in.PricePerNight, 0)
	r.IsAvailable = boolOr(in.IsAvailable, true)
}

type BookingInput struct {
	Hotel      string      `json:"hotel" validate:"required"`
	User       string      `json:"user" validate:"required"`
	Room       string      `json:"room" validate:"required"`
	CheckIn    *time.Time  `json:"check_in" validate:"required"`
	CheckOut   *time.Time  `json:"check_out" validate:"required"`
	TotalPrice json.Number `json:"total_price" validate:"required,decimal=10:2"`
	Status     string      `json:"status" validate:"omitempty,bookingstatus"`
}

func (in BookingInput) apply(b *domain.Booking) {
	b.HotelID = in.Hotel
	b.UserID = in.User
	b.RoomID = in.Room
	if in.CheckIn != nil {
		b.CheckIn = in.CheckIn.UTC()
	}
	if in.CheckOut != nil {
		b.CheckOut = in.CheckOut.UTC()
	}
	b.TotalPrice = decimalValue(in.TotalPrice, 0)
	b.Status = domain.BookingStatus(orDefault(in.Status, string(domain.BookingPending)))
}

// UserInput serves registration, admin creation and profile replacement.
// Password is mandatory only on creation.
type UserInput struct {
	Username             string `json:"username" validate:"omitempty,max=150"`
	Email                string `json:"email" validate:"required,email,max=254"`
	FirstName            string `json:"first_name" validate:"omitempty,max=30"`
	LastName             string `json:"last_name" validate:"omitempty,max=30"`
	Password             string `json:"password" validate:"omitempty,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"omitempty,min=8,max=72"`
	IsActive             *bool  `json:"is_active"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshInput struct {
	Refresh string `json:"refresh" validate:"required"`
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
