package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

// SeedFile is the JSON document the seeder loads.
type SeedFile struct {
	Hotels []SeedHotel `json:"hotels"`
	Users  []UserInput `json:"users"`
}

// SeedHotel is a hotel plus the rooms to create under it; the rooms' hotel
// reference is filled in once the hotel exists.
type SeedHotel struct {
	HotelInput
	Rooms []RoomInput `json:"rooms"`
}

func ParseSeedFile(b []byte) (SeedFile, error) {
	var f SeedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

// SeedService loads sample data through the regular use cases so every
// validation and allocation rule applies. Records that already exist are
// skipped, which makes a second run a no-op.
type SeedService struct {
	hotels *HotelService
	rooms  *RoomService
	users  *UserService
}

func NewSeedService(h *HotelService, r *RoomService, u *UserService) *SeedService {
	return &SeedService{hotels: h, rooms: r, users: u}
}

// SeedHotel creates the hotel and its rooms. It returns the number of rooms
// created.
func (s *SeedService) SeedHotel(ctx context.Context, in SeedHotel) (int, error) {
	h, err := s.hotels.Create(ctx, in.HotelInput, nil)
	if alreadyExists(err, "name") {
		log.Info().Str("name", in.Name).Msg("hotel already seeded, skipping")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("hotel %q: %w", in.Name, err)
	}

	created := 0
	for _, rin := range in.Rooms {
		rin.Hotel = h.ID
		if _, err := s.rooms.Create(ctx, rin); err != nil {
			if alreadyExists(err, "room_number") {
				continue
			}
			return created, fmt.Errorf("hotel %q room %q: %w", in.Name, rin.RoomNumber, err)
		}
		created++
	}
	return created, nil
}

func (s *SeedService) SeedUser(ctx context.Context, in UserInput) (domain.User, bool, error) {
	u, err := s.users.Create(ctx, in)
	if alreadyExists(err, "email") {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("user %q: %w", in.Email, err)
	}
	return u, true, nil
}

// alreadyExists is true only when err says field's value is taken and
// nothing else is wrong with the record.
func alreadyExists(err error, field string) bool {
	var verr *domain.ValidationError
	return errors.As(err, &verr) && verr.OnlyTaken(field)
}
