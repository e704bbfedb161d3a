package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"hotel_booking/internal/domain"
)

type HotelService struct {
	repo     domain.HotelRepository
	images   domain.ImageStore
	cache    domain.Cache
	cacheTTL time.Duration
	sf       singleflight.Group

	// gen counts invalidations per cache key so a fill that raced a write
	// can tell its value is already stale.
	genMu sync.Mutex
	gen   map[string]uint64
}

// NewHotelService wires the hotel use cases. cache may be nil.
func NewHotelService(r domain.HotelRepository, images domain.ImageStore, c domain.Cache, ttl time.Duration) *HotelService {
	return &HotelService{repo: r, images: images, cache: c, cacheTTL: ttl, gen: map[string]uint64{}}
}

func hotelKey(id string) string { return fmt.Sprintf("hotel:%s", id) }

// Create validates in, stores the optional image under the new hotel's id and
// persists the hotel with a freshly allocated slug.
func (s *HotelService) Create(ctx context.Context, in HotelInput, image io.Reader) (domain.Hotel, error) {
	verr := Validate(in)
	if err := s.checkName(ctx, in.Name, "", &verr); err != nil {
		return domain.Hotel{}, err
	}
	if !verr.Empty() {
		return domain.Hotel{}, verr
	}

	h := domain.Hotel{ID: uuid.NewString()}
	in.apply(&h)

	if image != nil {
		rel, err := s.images.Save(ctx, "hotel", h.ID, image)
		if err != nil {
			return domain.Hotel{}, err
		}
		h.Image = rel
	}

	err := insertAllocated(ctx, "slug",
		func(ctx context.Context) error {
			slug, err := Allocate(ctx, Slugify(h.Name), "-", s.repo.SlugExists, MaxAllocationAttempts)
			h.Slug = slug
			return err
		},
		func(ctx context.Context) error { return s.repo.CreateHotel(ctx, &h) },
	)
	if err != nil {
		s.discardImage(h.Image)
		return domain.Hotel{}, err
	}
	h.Rooms = []domain.Room{}
	log.Info().Str("hotel_id", h.ID).Str("slug", h.Slug).Msg("hotel created")
	return h, nil
}

// Update replaces every mutable field. The slug is kept; the image is kept
// unless a new one is supplied.
func (s *HotelService) Update(ctx context.Context, id string, in HotelInput, image io.Reader) (domain.Hotel, error) {
	cur, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	verr := Validate(in)
	if err := s.checkName(ctx, in.Name, id, &verr); err != nil {
		return domain.Hotel{}, err
	}
	if !verr.Empty() {
		return domain.Hotel{}, verr
	}

	h := domain.Hotel{ID: cur.ID, Slug: cur.Slug, Image: cur.Image, CreatedAt: cur.CreatedAt}
	in.apply(&h)
	if image != nil {
		rel, err := s.images.Save(ctx, "hotel", h.ID, image)
		if err != nil {
			return domain.Hotel{}, err
		}
		h.Image = rel
	}
	if err := s.repo.UpdateHotel(ctx, &h); err != nil {
		if h.Image != cur.Image {
			s.discardImage(h.Image)
		}
		return domain.Hotel{}, err
	}
	if h.Image != cur.Image {
		s.discardImage(cur.Image)
	}
	s.Invalidate(ctx, id)
	h.Rooms = cur.Rooms
	return h, nil
}

func (s *HotelService) Delete(ctx context.Context, id string) error {
	cur, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteHotel(ctx, id); err != nil {
		return err
	}
	s.discardImage(cur.Image)
	s.Invalidate(ctx, id)
	log.Info().Str("hotel_id", id).Int("rooms", len(cur.Rooms)).Msg("hotel deleted")
	return nil
}

// Get is read-through cached; concurrent misses for one id share a single
// repository call.
func (s *HotelService) Get(ctx context.Context, id string) (domain.Hotel, error) {
	key := hotelKey(id)
	if s.cache != nil {
		var h domain.Hotel
		if ok, err := s.cache.Get(ctx, key, &h); err == nil && ok {
			return h, nil
		} else if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		// the flight is shared, so one caller going away must not fail the rest
		ctx := context.WithoutCancel(ctx)
		before := s.generation(key)
		h, err := s.repo.GetHotel(ctx, id)
		if err != nil {
			return domain.Hotel{}, err
		}
		s.fill(ctx, key, h, before)
		return h, nil
	})
	if err != nil {
		return domain.Hotel{}, err
	}
	return v.(domain.Hotel), nil
}

// fill caches h unless the key was invalidated since the read started. A
// write that lands between the check and the Set is caught by the re-check.
func (s *HotelService) fill(ctx context.Context, key string, h domain.Hotel, before uint64) {
	if s.cache == nil || s.generation(key) != before {
		return
	}
	if err := s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		return
	}
	if s.generation(key) != before {
		if err := s.cache.Del(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
		}
	}
}

func (s *HotelService) generation(key string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gen[key]
}

func (s *HotelService) List(ctx context.Context) ([]domain.Hotel, error) {
	return s.repo.ListHotels(ctx)
}

// Invalidate drops the cached view of a hotel; room writes call it too since
// the view embeds rooms.
func (s *HotelService) Invalidate(ctx context.Context, id string) {
	if s.cache == nil || id == "" {
		return
	}
	key := hotelKey(id)
	s.genMu.Lock()
	s.gen[key]++
	s.genMu.Unlock()
	s.sf.Forget(key)
	if err := s.cache.Del(ctx, key); err != nil {
		log.Warn().Err(err).Str("hotel_id", id).Msg("cache invalidation failed")
	}
}

// checkName adds a field error when another hotel already uses name. It
// runs even when other fields failed so the caller sees every problem.
func (s *HotelService) checkName(ctx context.Context, name, exceptID string, verr **domain.ValidationError) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	taken, err := s.repo.HotelNameTaken(ctx, name, exceptID)
	if err != nil {
		return err
	}
	if taken {
		addTaken(verr, "name", fmt.Sprintf("A hotel named %q already exists.", name))
	}
	return nil
}

func (s *HotelService) discardImage(rel string) {
	if rel == "" || s.images == nil {
		return
	}
	if err := s.images.Remove(rel); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Warn().Err(err).Str("image", rel).Msg("image cleanup failed")
	}
}
