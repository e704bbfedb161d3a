package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hotel_booking/internal/domain"
)

type UserService struct {
	repo domain.UserRepository
	cost int
}

// NewUserService hashes passwords with the given bcrypt cost; 0 means
// bcrypt.DefaultCost.
func NewUserService(r domain.UserRepository, cost int) *UserService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{repo: r, cost: cost}
}

// Create registers a user. Without an explicit username one is derived from
// the email's local part: "awa", "awa1", "awa2", ...
func (s *UserService) Create(ctx context.Context, in UserInput) (domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	verr := Validate(in)
	if in.Password == "" {
		addField(&verr, "password", "This field is required.")
	}
	if in.PasswordConfirmation == "" {
		addField(&verr, "password_confirmation", "This field is required.")
	} else if in.Password != "" && in.Password != in.PasswordConfirmation {
		addField(&verr, "password_confirmation", "Passwords do not match.")
	}
	if err := s.checkUnique(ctx, in, domain.User{}, &verr); err != nil {
		return domain.User{}, err
	}
	if !verr.Empty() {
		return domain.User{}, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     boolOr(in.IsActive, true),
	}

	allocated := ""
	if in.Username == "" {
		allocated = "username"
	}
	err = insertAllocated(ctx, allocated,
		func(ctx context.Context) error {
			if in.Username != "" {
				u.Username = in.Username
				return nil
			}
			name, err := Allocate(ctx, usernameBase(in.Email), "", s.repo.UsernameExists, MaxAllocationAttempts)
			u.Username = name
			return err
		},
		func(ctx context.Context) error { return s.repo.CreateUser(ctx, &u) },
	)
	if err != nil {
		return domain.User{}, userConflict(err, in.Username != "")
	}
	return u, nil
}

// Update replaces the profile. An empty username keeps the current one and
// an empty password keeps the current hash.
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (domain.User, error) {
	cur, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	verr := Validate(in)
	if in.Password != "" && in.Password != in.PasswordConfirmation {
		addField(&verr, "password_confirmation", "Passwords do not match.")
	}
	if err := s.checkUnique(ctx, in, cur, &verr); err != nil {
		return domain.User{}, err
	}
	if !verr.Empty() {
		return domain.User{}, verr
	}

	u := domain.User{
		ID:           cur.ID,
		Username:     cur.Username,
		Email:        in.Email,
		PasswordHash: cur.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     boolOr(in.IsActive, true),
		CreatedAt:    cur.CreatedAt,
	}
	if in.Username != "" {
		u.Username = in.Username
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if err := s.repo.UpdateUser(ctx, &u); err != nil {
		return domain.User{}, userConflict(err, true)
	}
	return u, nil
}

// Delete removes the user together with their bookings.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// checkUnique checks email and explicit username; cur is the zero User on
// creation.
func (s *UserService) checkUnique(ctx context.Context, in UserInput, cur domain.User, verr **domain.ValidationError) error {
	if in.Email != "" {
		taken, err := s.repo.EmailTaken(ctx, in.Email, cur.ID)
		if err != nil {
			return err
		}
		if taken {
			addTaken(verr, "email", fmt.Sprintf("The email %s is already in use.", in.Email))
		}
	}
	if in.Username != "" && in.Username != cur.Username {
		taken, err := s.repo.UsernameExists(ctx, in.Username)
		if err != nil {
			return err
		}
		if taken {
			addTaken(verr, "username", "A user with that username already exists.")
		}
	}
	return nil
}

// userConflict turns a unique violation on a caller-chosen value into a
// field error; a violation on a derived username stays a DuplicateKeyError.
func userConflict(err error, explicitUsername bool) error {
	var dup *domain.DuplicateKeyError
	if !errors.As(err, &dup) {
		return err
	}
	switch {
	case dup.Field == "email":
		return domain.TakenFieldError("email", "The email is already in use.")
	case dup.Field == "username" && explicitUsername:
		return domain.TakenFieldError("username", "A user with that username already exists.")
	}
	return err
}
