package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCacheRoundTripAndTTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	h := domain.Hotel{ID: "h1", Name: "Terrou-Bi", Slug: "terrou-bi", Rooms: []domain.Room{{ID: "r1", RoomNumber: "101"}}}
	if err := c.Set(ctx, "hotel:h1", h, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got domain.Hotel
	ok, err := c.Get(ctx, "hotel:h1", &got)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Slug != "terrou-bi" || len(got.Rooms) != 1 || got.Rooms[0].RoomNumber != "101" {
		t.Fatalf("unexpected value: %+v", got)
	}

	mr.FastForward(61 * time.Second)
	ok, err = c.Get(ctx, "hotel:h1", &got)
	if err != nil || ok {
		t.Fatalf("expected expiry, ok=%v err=%v", ok, err)
	}
}

func TestCacheDelAndMiss(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "hotel:h2", domain.Hotel{ID: "h2"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("hotel_booking:hotel:h2") {
		t.Fatalf("expected prefixed key in redis, keys=%v", mr.Keys())
	}
	if err := c.Del(ctx, "hotel:h2"); err != nil {
		t.Fatalf("del: %v", err)
	}
	var h domain.Hotel
	if ok, err := c.Get(ctx, "hotel:h2", &h); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
}

func TestCacheCorruptValueIsMiss(t *testing.T) {
	c, mr := newCache(t)
	_ = mr.Set("hotel_booking:hotel:h3", "not json")
	var h domain.Hotel
	if ok, err := c.Get(context.Background(), "hotel:h3", &h); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
}
