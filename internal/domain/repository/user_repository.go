// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"passport/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
// A single-row lookup that matches nothing must return it, never a nil user.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateKey is returned when an insert or update violates a unique
// constraint on the users table (email or user_name).
var ErrDuplicateKey = errors.New("duplicate key")

// UniqueField names a unique-constrained attribute of the users table.
type UniqueField string

const (
	FieldEmail    UniqueField = "email"
	FieldUserName UniqueField = "user_name"
)

// UserRepository defines the standard operations for user persistence.
// The application layer depends on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByUnique retrieves a single user by one of the unique-constrained
	// fields. Returns ErrUserNotFound when no row matches.
	FindByUnique(ctx context.Context, field UniqueField, value string) (*entity.User, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error

	// Note: no Delete. Accounts are only ever mutated in place.
}
