package session

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	domain "cockpityara/internal/domain/profile"
	"cockpityara/internal/pkg/jwt"
)

var ErrInvalidPassword = errors.New("invalid password")

// ProfileReader reads the operator profile for login checks
type ProfileReader interface {
	Get(ctx context.Context) (*domain.CarpenterProfile, error)
}

// Service issues operator sessions. A device without a configured password
// bootstraps anonymously; once a password is set it is required.
type Service struct {
	profiles ProfileReader
	jwt      *jwt.Service
}

func NewService(profiles ProfileReader, jwtService *jwt.Service) *Service {
	return &Service{profiles: profiles, jwt: jwtService}
}

// Login validates the password against the profile and returns a token plus
// the profile for the cockpit header.
func (s *Service) Login(ctx context.Context, password string) (string, *domain.CarpenterProfile, error) {
	p, err := s.profiles.Get(ctx)
	if err != nil {
		return "", nil, err
	}

	if p.HasPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
			return "", nil, ErrInvalidPassword
		}
	}

	token, err := s.jwt.GenerateToken(p.DisplayName(), p.Workshop)
	if err != nil {
		return "", nil, err
	}
	return token, p, nil
}
