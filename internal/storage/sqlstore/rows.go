package sqlstore

import (
	"time"

	"hotel_booking/internal/domain"
)

type hotelRow struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)"`
	Name          string    `gorm:"type:varchar(200);not null;index:idx_hotels_name_lookup"`
	Description   string    `gorm:"type:text"`
	Address       string    `gorm:"type:varchar(500);not null"`
	City          string    `gorm:"type:varchar(100);not null"`
	Country       string    `gorm:"type:varchar(100);not null"`
	Email         string    `gorm:"type:varchar(254);not null"`
	Phone         string    `gorm:"type:varchar(20)"`
	Website       string    `gorm:"type:varchar(200)"`
	PricePerNight float64   `gorm:"type:decimal(10,2);not null"`
	Currency      string    `gorm:"type:varchar(3);not null"`
	Rating        float64   `gorm:"type:decimal(3,1);not null;default:0"`
	IsActive      bool      `gorm:"not null"`
	Image         string    `gorm:"type:varchar(255)"`
	Slug          string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_hotels_slug"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

func (hotelRow) TableName() string { return "hotels" }

type roomRow struct {
	ID            string  `gorm:"primaryKey;type:varchar(36)"`
	HotelID       string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_rooms_hotel_number,priority:1"`
	RoomNumber    string  `gorm:"type:varchar(10);not null;uniqueIndex:idx_rooms_hotel_number,priority:2"`
	RoomType      string  `gorm:"type:varchar(50);not null"`
	Capacity      string  `gorm:"type:varchar(50);not null"`
	PricePerNight float64 `gorm:"type:decimal(10,2);not null"`
	IsAvailable   bool    `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// only declares the foreign key; never loaded or saved
	Hotel *hotelRow `gorm:"foreignKey:HotelID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (roomRow) TableName() string { return "rooms" }

type userRow struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex:idx_users_username"`
	Email        string `gorm:"type:varchar(254);not null;uniqueIndex:idx_users_email"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
	FirstName    string `gorm:"type:varchar(30)"`
	LastName     string `gorm:"type:varchar(30)"`
	IsActive     bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type bookingRow struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	HotelID    string    `gorm:"type:varchar(36);not null;index"`
	UserID     string    `gorm:"type:varchar(36);not null;index"`
	RoomID     string    `gorm:"type:varchar(36);not null;index"`
	CheckIn    time.Time `gorm:"not null"`
	CheckOut   time.Time `gorm:"not null"`
	TotalPrice float64   `gorm:"type:decimal(10,2);not null"`
	Status     string    `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time

	Hotel *hotelRow `gorm:"foreignKey:HotelID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User  *userRow  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Room  *roomRow  `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (bookingRow) TableName() string { return "bookings" }

/********** mappers **********/

func toHotelRow(h *domain.Hotel) hotelRow {
	return hotelRow{
		ID: h.ID, Name: h.Name, Description: h.Description, Address: h.Address,
		City: h.City, Country: h.Country, Email: h.Email, Phone: h.Phone,
		Website: h.Website, PricePerNight: h.PricePerNight, Currency: h.Currency,
		Rating: h.Rating, IsActive: h.IsActive, Image: h.Image, Slug: h.Slug,
		CreatedAt: h.CreatedAt, UpdatedAt: h.UpdatedAt,
	}
}

func (r hotelRow) toDomain() domain.Hotel {
	return domain.Hotel{
		ID: r.ID, Name: r.Name, Description: r.Description, Address: r.Address,
		City: r.City, Country: r.Country, Email: r.Email, Phone: r.Phone,
		Website: r.Website, PricePerNight: r.PricePerNight, Currency: r.Currency,
		Rating: r.Rating, IsActive: r.IsActive, Image: r.Image, Slug: r.Slug,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func toRoomRow(m *domain.Room) roomRow {
	return roomRow{
		ID: m.ID, HotelID: m.HotelID, RoomNumber: m.RoomNumber, RoomType: m.RoomType,
		Capacity: m.Capacity, PricePerNight: m.PricePerNight, IsAvailable: m.IsAvailable,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func (r roomRow) toDomain() domain.Room {
	return domain.Room{
		ID: r.ID, HotelID: r.HotelID, RoomNumber: r.RoomNumber, RoomType: r.RoomType,
		Capacity: r.Capacity, PricePerNight: r.PricePerNight, IsAvailable: r.IsAvailable,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func toUserRow(u *domain.User) userRow {
	return userRow{
		ID: u.ID, Username: u.Username, Email: u.Email, PasswordHash: u.PasswordHash,
		FirstName: u.FirstName, LastName: u.LastName, IsActive: u.IsActive,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID: r.ID, Username: r.Username, Email: r.Email, PasswordHash: r.PasswordHash,
		FirstName: r.FirstName, LastName: r.LastName, IsActive: r.IsActive,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func toBookingRow(b *domain.Booking) bookingRow {
	return bookingRow{
		ID: b.ID, HotelID: b.HotelID, UserID: b.UserID, RoomID: b.RoomID,
		CheckIn: b.CheckIn.UTC(), CheckOut: b.CheckOut.UTC(), TotalPrice: b.TotalPrice,
		Status: string(b.Status), CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
	}
}

func (r bookingRow) toDomain() domain.Booking {
	return domain.Booking{
		ID: r.ID, HotelID: r.HotelID, UserID: r.UserID, RoomID: r.RoomID,
		CheckIn: r.CheckIn, CheckOut: r.CheckOut, TotalPrice: r.TotalPrice,
		Status: domain.BookingStatus(r.Status), CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}
