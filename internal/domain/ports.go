package domain

import (
	"context"
	"io"
)

type HotelRepository interface {
	CreateHotel(ctx context.Context, h *Hotel) error
	UpdateHotel(ctx context.Context, h *Hotel) error
	// DeleteHotel removes the hotel, its rooms and every booking that
	// references either, in one transaction.
	DeleteHotel(ctx context.Context, id string) error
	GetHotel(ctx context.Context, id string) (Hotel, error)
	ListHotels(ctx context.Context) ([]Hotel, error)
	HotelNameTaken(ctx context.Context, name, exceptID string) (bool, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type RoomRepository interface {
	CreateRoom(ctx context.Context, r *Room) error
	UpdateRoom(ctx context.Context, r *Room) error
	DeleteRoom(ctx context.Context, id string) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, b *Booking) error
	UpdateBooking(ctx context.Context, b *Booking) error
	DeleteBooking(ctx context.Context, id string) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context) ([]Booking, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *User) error
	UpdateUser(ctx context.Context, u *User) error
	// DeleteUser also removes the user's bookings.
	DeleteUser(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
}

// Repository is the whole persistence port; sqlstore.Repo implements it.
type Repository interface {
	HotelRepository
	RoomRepository
	BookingRepository
	UserRepository
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ImageStore keeps uploaded images outside the database; entities only
// record the returned relative path.
type ImageStore interface {
	Save(ctx context.Context, prefix, id string, r io.Reader) (string, error)
	Remove(rel string) error
}
