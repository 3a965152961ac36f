package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrEmailImmutable     = errors.New("email cannot be changed")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the request against the password policy and creates an
// active, non-staff user. No row is written when any check fails.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	v := validation.Errors{}
	email := normalizeEmail(in.Email)
	if email == "" {
		v.Add("email", "this field is required")
	}
	ValidatePassword(v, "password", in.Password, "password2", in.Password2)
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash error: %w", err)
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the active user owning email when password matches.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth error: %w", err)
	}
	if !u.IsActive || !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns the user only while the account is active.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileRequest) (*User, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil && normalizeEmail(*in.Email) != cur.Email {
		return nil, validation.Field("email", ErrEmailImmutable.Error())
	}

	first, last := cur.FirstName, cur.LastName
	if in.FirstName != nil {
		first = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		last = strings.TrimSpace(*in.LastName)
	}
	if err := s.repo.UpdateProfile(ctx, id, first, last); err != nil {
		return nil, err
	}
	cur.FirstName, cur.LastName = first, last
	return cur, nil
}

func (s *Service) ChangePassword(ctx context.Context, id string, in ChangePasswordRequest) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	v := validation.Errors{}
	if !CheckPassword(cur.PasswordHash, in.OldPassword) {
		v.Add("old_password", "old password is not correct")
	}
	ValidatePassword(v, "new_password", in.NewPassword, "new_password2", in.NewPassword2)
	if err := v.Err(); err != nil {
		return err
	}

	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash error: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}
