package domain

import "time"

const (
	DefaultCountry  = "Sénégal"
	DefaultCurrency = "XOF"
)

type Hotel struct {
	ID            string
	Name          string
	Description   string
	Address       string
	City          string
	Country       string
	Email         string
	Phone         string
	Website       string
	PricePerNight float64 // 2 decimal places
	Currency      string
	Rating        float64 // 1 decimal place
	IsActive      bool
	Image         string // path relative to the media root, "" when none
	Slug          string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Rooms []Room // read side only; never written through the hotel
}

type Room struct {
	ID            string
	HotelID       string
	RoomNumber    string
	RoomType      string
	Capacity      string
	PricePerNight float64
	IsAvailable   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
