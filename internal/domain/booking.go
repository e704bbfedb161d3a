package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

type Booking struct {
	ID         string
	HotelID    string
	UserID     string
	RoomID     string
	CheckIn    time.Time
	CheckOut   time.Time
	TotalPrice float64
	Status     BookingStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
