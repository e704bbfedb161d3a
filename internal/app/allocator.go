package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

// MaxAllocationAttempts bounds the candidate loop in Allocate.
const MaxAllocationAttempts = 100

// Allocate returns the first of base, base+sep+"1", base+sep+"2", ... for
// which exists reports false. The result is only free at the moment it was
// checked; the unique index in storage is what actually guarantees it.
func Allocate(ctx context.Context, base, sep string, exists func(context.Context, string) (bool, error), maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = MaxAllocationAttempts
	}
	candidate := base
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			candidate = base + sep + strconv.Itoa(i)
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q after %d attempts", domain.ErrAllocationExhausted, base, maxAttempts)
}

// insertAllocated runs allocate then insert. A unique violation on field
// means another writer took the value between check and insert; that is
// retried once with a fresh allocation, then surfaced.
func insertAllocated(ctx context.Context, field string, allocate func(context.Context) error, insert func(context.Context) error) error {
	for attempt := 0; ; attempt++ {
		if err := allocate(ctx); err != nil {
			return err
		}
		err := insert(ctx)
		var dup *domain.DuplicateKeyError
		if errors.As(err, &dup) && field != "" && dup.Field == field && attempt == 0 {
			observability.ObserveAllocatorRetry(field)
			log.Warn().Str("field", field).Msg("allocated value taken concurrently, retrying")
			continue
		}
		return err
	}
}
