package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	domain "cockpityara/internal/domain/profile"
	"cockpityara/internal/pkg/jwt"
)

type stubProfiles struct {
	profile *domain.CarpenterProfile
	err     error
}

func (s *stubProfiles) Get(context.Context) (*domain.CarpenterProfile, error) {
	return s.profile, s.err
}

func newJWT() *jwt.Service {
	return jwt.New("test-secret", time.Hour)
}

func TestLoginAnonymousWhenNoPasswordSet(t *testing.T) {
	svc := NewService(&stubProfiles{profile: &domain.CarpenterProfile{ID: domain.OwnerKey}}, newJWT())

	token, p, err := svc.Login(context.Background(), "")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if p.ID != domain.OwnerKey {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestLoginChecksPasswordWhenSet(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("oficina123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	profiles := &stubProfiles{profile: &domain.CarpenterProfile{
		ID:           domain.OwnerKey,
		Name:         "Seu Arlindo",
		Workshop:     "Bom Corte",
		PasswordHash: string(hash),
	}}
	svc := NewService(profiles, newJWT())

	if _, _, err := svc.Login(context.Background(), "errada"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}

	token, _, err := svc.Login(context.Background(), "oficina123")
	if err != nil {
		t.Fatalf("Login with correct password returned error: %v", err)
	}

	claims, err := newJWT().ValidateToken(token)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if claims.Operator != "Seu Arlindo" || claims.Workshop != "Bom Corte" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
