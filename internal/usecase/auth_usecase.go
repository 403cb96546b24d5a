// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"passport/internal/domain/entity"
	"passport/internal/domain/service"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	UserName string `json:"user_name" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetPasswordInput defines the data required for an authenticated password change.
// OldPassword and ConfirmOldPassword must match exactly; this is a client-input
// consistency check, separate from credential verification.
type SetPasswordInput struct {
	UserID             uuid.UUID `json:"-"`
	OldPassword        string    `json:"old_password" validate:"required"`
	ConfirmOldPassword string    `json:"confirm_old_password" validate:"required"`
	NewPassword        string    `json:"new_password" validate:"required,min=8"`
}

// ResetPasswordInput defines the data required for a password reset. Identity
// is established outside this flow, so no old password is involved.
type ResetPasswordInput struct {
	UserID      uuid.UUID `json:"-"`
	NewPassword string    `json:"new_password" validate:"required,min=8"`
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account's public projection.
type RegisterOutput struct {
	User *entity.Projection `json:"user"`
}

// LoginOutput returns the issued token pair after a successful login.
// When the account has not completed activation, UserInfoRequired is set and
// the projection is omitted; credentials are always verified first either way.
type LoginOutput struct {
	Token            *service.TokenPair `json:"token"`
	User             *entity.Projection `json:"user,omitempty"`
	UserInfoRequired bool               `json:"user_info_required,omitempty"`
}

// AuthUsecase defines the interface for account authentication operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	SetPassword(ctx context.Context, input *SetPasswordInput) (*entity.Projection, error)
	ResetPassword(ctx context.Context, input *ResetPasswordInput) (*entity.Projection, error)
}
