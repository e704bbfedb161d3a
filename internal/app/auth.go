package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"hotel_booking/internal/domain"
)

// Session is what register, login and refresh hand back to the client.
type Session struct {
	User    domain.User
	Token   string
	Refresh string
}

type AuthService struct {
	users  *UserService
	repo   domain.UserRepository
	tokens *TokenIssuer
	// compared against when the email is unknown so both failure paths cost
	// one bcrypt comparison
	dummyHash []byte
}

func NewAuthService(users *UserService, r domain.UserRepository, tokens *TokenIssuer) *AuthService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("no-such-user-password"), users.cost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt setup failed")
	}
	return &AuthService{users: users, repo: r, tokens: tokens, dummyHash: dummy}
}

func (s *AuthService) Register(ctx context.Context, in UserInput) (Session, error) {
	u, err := s.users.Create(ctx, in)
	if err != nil {
		return Session{}, err
	}
	log.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("user registered")
	return s.session(u)
}

// Login fails with ErrInvalidCredentials for an unknown email, a wrong
// password and an inactive account alike.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (Session, error) {
	if verr := Validate(in); !verr.Empty() {
		return Session{}, verr
	}
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, domain.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil || !u.IsActive {
		return Session{}, domain.ErrInvalidCredentials
	}
	return s.session(u)
}

// Refresh trades a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (Session, error) {
	if verr := Validate(in); !verr.Empty() {
		return Session{}, verr
	}
	c, err := s.tokens.ParseRefresh(in.Refresh)
	if err != nil {
		return Session{}, err
	}
	u, err := s.repo.GetUser(ctx, c.UserID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !u.IsActive) {
		return Session{}, domain.ErrUnauthorized
	}
	if err != nil {
		return Session{}, err
	}
	return s.session(u)
}

// Authenticate verifies a bearer access token.
func (s *AuthService) Authenticate(token string) (*Claims, error) {
	return s.tokens.ParseAccess(token)
}

func (s *AuthService) Me(ctx context.Context, c *Claims) (domain.User, error) {
	u, err := s.repo.GetUser(ctx, c.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrUnauthorized
	}
	return u, err
}

func (s *AuthService) session(u domain.User) (Session, error) {
	access, err := s.tokens.Access(u)
	if err != nil {
		return Session{}, err
	}
	refresh, err := s.tokens.Refresh(u)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: access, Refresh: refresh}, nil
}
