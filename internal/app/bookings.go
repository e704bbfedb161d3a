package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"hotel_booking/internal/domain"
)

type BookingService struct {
	repo domain.Repository
}

func NewBookingService(r domain.Repository) *BookingService {
	return &BookingService{repo: r}
}

func (s *BookingService) Create(ctx context.Context, in BookingInput) (domain.Booking, error) {
	if err := s.validate(ctx, in); err != nil {
		return domain.Booking{}, err
	}
	b := domain.Booking{ID: uuid.NewString()}
	in.apply(&b)
	if err := s.repo.CreateBooking(ctx, &b); err != nil {
		return domain.Booking{}, danglingBooking(err)
	}
	return b, nil
}

func (s *BookingService) Update(ctx context.Context, id string, in BookingInput) (domain.Booking, error) {
	cur, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := s.validate(ctx, in); err != nil {
		return domain.Booking{}, err
	}
	b := domain.Booking{ID: cur.ID, CreatedAt: cur.CreatedAt}
	in.apply(&b)
	if err := s.repo.UpdateBooking(ctx, &b); err != nil {
		return domain.Booking{}, danglingBooking(err)
	}
	return b, nil
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteBooking(ctx, id)
}

func (s *BookingService) Get(ctx context.Context, id string) (domain.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) List(ctx context.Context) ([]domain.Booking, error) {
	return s.repo.ListBookings(ctx)
}

// danglingBooking reports a reference that vanished between validate and the
// write. Storage does not say which one, so it is a non-field error.
func danglingBooking(err error) error {
	if errors.Is(err, domain.ErrDanglingReference) {
		return domain.FieldError("non_field_errors", "The selected hotel, room or user no longer exists.")
	}
	return err
}

// validate runs the field checks, then the references and the stay window,
// reporting all problems together.
func (s *BookingService) validate(ctx context.Context, in BookingInput) error {
	verr := Validate(in)

	if in.CheckIn != nil && in.CheckOut != nil && !in.CheckOut.After(*in.CheckIn) {
		addField(&verr, "check_out", "Check-out must be after check-in.")
	}

	if in.Hotel != "" {
		if _, err := s.repo.GetHotel(ctx, in.Hotel); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			addField(&verr, "hotel", "Invalid hotel id - object does not exist.")
		}
	}
	if in.User != "" {
		if _, err := s.repo.GetUser(ctx, in.User); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			addField(&verr, "user", "Invalid user id - object does not exist.")
		}
	}
	if in.Room != "" {
		room, err := s.repo.GetRoom(ctx, in.Room)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			addField(&verr, "room", "Invalid room id - object does not exist.")
		case err != nil:
			return err
		case in.Hotel != "" && room.HotelID != in.Hotel:
			addField(&verr, "room", "Room does not belong to the selected hotel.")
		}
	}
	return verr.OrNil()
}
