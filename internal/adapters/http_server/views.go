package httpserver

import (
	"strconv"
	"time"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

// Decimals go out as fixed-point strings ("100.00") so clients never see
// float noise.

type roomView struct {
	ID            string    `json:"id"`
	Hotel         string    `json:"hotel"`
	RoomNumber    string    `json:"room_number"`
	RoomType      string    `json:"room_type"`
	Capacity      string    `json:"capacity"`
	PricePerNight string    `json:"price_per_night"`
	IsAvailable   bool      `json:"is_available"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type hotelView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	Country       string     `json:"country"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Website       string     `json:"website"`
	PricePerNight string     `json:"price_per_night"`
	Currency      string     `json:"currency"`
	Rating        string     `json:"rating"`
	IsActive      bool       `json:"is_active"`
	Image         *string    `json:"image"`
	ImageURL      *string    `json:"image_url"`
	Rooms         []roomView `json:"rooms"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type bookingView struct {
	ID         string    `json:"id"`
	Hotel      string    `json:"hotel"`
	User       string    `json:"user"`
	Room       string    `json:"room"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	TotalPrice string    `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// userView never carries the password hash.
type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type sessionView struct {
	User    userView `json:"user"`
	Token   string   `json:"token"`
	Refresh string   `json:"refresh"`
}

func fixed(v float64, places int) string { return strconv.FormatFloat(v, 'f', places, 64) }

func toRoomView(r domain.Room) roomView {
	return roomView{
		ID: r.ID, Hotel: r.HotelID, RoomNumber: r.RoomNumber, RoomType: r.RoomType,
		Capacity: r.Capacity, PricePerNight: fixed(r.PricePerNight, 2), IsAvailable: r.IsAvailable,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (h *Handlers) toHotelView(m domain.Hotel) hotelView {
	v := hotelView{
		ID: m.ID, Name: m.Name, Slug: m.Slug, Description: m.Description, Address: m.Address,
		City: m.City, Country: m.Country, Email: m.Email, Phone: m.Phone, Website: m.Website,
		PricePerNight: fixed(m.PricePerNight, 2), Currency: m.Currency, Rating: fixed(m.Rating, 1),
		IsActive: m.IsActive, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
		Rooms: make([]roomView, 0, len(m.Rooms)),
	}
	if m.Image != "" {
		img, url := m.Image, h.BaseURL+"/api/media/"+m.Image
		v.Image, v.ImageURL = &img, &url
	}
	for _, r := range m.Rooms {
		v.Rooms = append(v.Rooms, toRoomView(r))
	}
	return v
}

func toBookingView(b domain.Booking) bookingView {
	return bookingView{
		ID: b.ID, Hotel: b.HotelID, User: b.UserID, Room: b.RoomID,
		CheckIn: b.CheckIn, CheckOut: b.CheckOut, TotalPrice: fixed(b.TotalPrice, 2),
		Status: string(b.Status), CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
	}
}

func toUserView(u domain.User) userView {
	return userView{
		ID: u.ID, Username: u.Username, Email: u.Email, FirstName: u.FirstName,
		LastName: u.LastName, IsActive: u.IsActive, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func toSessionView(s app.Session) sessionView {
	return sessionView{User: toUserView(s.User), Token: s.Token, Refresh: s.Refresh}
}
