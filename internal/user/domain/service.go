package domain

import (
	"context"
	"errors"
	"time"
)

type CreateUserRequest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	BirthDate time.Time
	Password  string
}

// UpdateUserRequest replaces only the provided fields. The password does
// not change through update.
type UpdateUserRequest struct {
	ID        string
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	BirthDate *time.Time
}

// LoginRequest validates credentials by email or phone. No session or
// token is issued; login returns the profile only.
type LoginRequest struct {
	Email    string
	Phone    string
	Password string
}

type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (Profile, error)
	GetByID(ctx context.Context, id string) (Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Update(ctx context.Context, req UpdateUserRequest) (Profile, error)
	Delete(ctx context.Context, id string) (Profile, error)
	Login(ctx context.Context, req LoginRequest) (Profile, error)
}

var (
	ErrInvalidID          = errors.New("invalid_user_id")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidSurname     = errors.New("invalid_surname")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPhone       = errors.New("invalid_phone")
	ErrInvalidBirthDate   = errors.New("invalid_birth_date")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrAlreadyExists      = errors.New("user_already_exists")
	ErrNotFound           = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)
