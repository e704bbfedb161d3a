package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"hotel_booking/internal/domain"
)

type RoomService struct {
	repo   domain.Repository
	hotels *HotelService
}

func NewRoomService(r domain.Repository, hotels *HotelService) *RoomService {
	return &RoomService{repo: r, hotels: hotels}
}

func (s *RoomService) Create(ctx context.Context, in RoomInput) (domain.Room, error) {
	verr := Validate(in)
	if err := s.checkHotel(ctx, in.Hotel, &verr); err != nil {
		return domain.Room{}, err
	}
	if !verr.Empty() {
		return domain.Room{}, verr
	}
	r := domain.Room{ID: uuid.NewString()}
	in.apply(&r)
	if err := s.repo.CreateRoom(ctx, &r); err != nil {
		return domain.Room{}, roomConflict(err)
	}
	s.hotels.Invalidate(ctx, r.HotelID)
	return r, nil
}

func (s *RoomService) Update(ctx context.Context, id string, in RoomInput) (domain.Room, error) {
	cur, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	verr := Validate(in)
	if err := s.checkHotel(ctx, in.Hotel, &verr); err != nil {
		return domain.Room{}, err
	}
	if !verr.Empty() {
		return domain.Room{}, verr
	}
	r := domain.Room{ID: cur.ID, CreatedAt: cur.CreatedAt}
	in.apply(&r)
	if err := s.repo.UpdateRoom(ctx, &r); err != nil {
		return domain.Room{}, roomConflict(err)
	}
	s.hotels.Invalidate(ctx, cur.HotelID)
	if r.HotelID != cur.HotelID {
		s.hotels.Invalidate(ctx, r.HotelID)
	}
	return r, nil
}

// Delete removes the room and the bookings made on it.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	cur, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRoom(ctx, id); err != nil {
		return err
	}
	s.hotels.Invalidate(ctx, cur.HotelID)
	return nil
}

func (s *RoomService) Get(ctx context.Context, id string) (domain.Room, error) {
	return s.repo.GetRoom(ctx, id)
}

func (s *RoomService) List(ctx context.Context) ([]domain.Room, error) {
	return s.repo.ListRooms(ctx)
}

func (s *RoomService) checkHotel(ctx context.Context, hotelID string, verr **domain.ValidationError) error {
	if hotelID == "" {
		return nil
	}
	if _, err := s.repo.GetHotel(ctx, hotelID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		addField(verr, "hotel", "Invalid hotel id - object does not exist.")
	}
	return nil
}

func roomConflict(err error) error {
	var dup *domain.DuplicateKeyError
	switch {
	case errors.As(err, &dup) && dup.Field == "room_number":
		return domain.TakenFieldError("room_number", "This hotel already has a room with this number.")
	case errors.Is(err, domain.ErrDanglingReference):
		// the hotel was deleted after checkHotel saw it
		return domain.FieldError("hotel", "Invalid hotel id - object does not exist.")
	}
	return err
}

func addField(verr **domain.ValidationError, field, msg string) {
	if *verr == nil {
		*verr = domain.NewValidationError()
	}
	(*verr).Add(field, msg)
}

// addTaken is addField for a value another record already holds.
func addTaken(verr **domain.ValidationError, field, msg string) {
	if *verr == nil {
		*verr = domain.NewValidationError()
	}
	(*verr).AddTaken(field, msg)
}
