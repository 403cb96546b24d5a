// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"
	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// validateUnique confirms no existing account holds the candidate value for
// the given unique field. Not-found is the success path; any other lookup
// failure is an internal error, not a conflict.
func (srv *authService) validateUnique(ctx context.Context, userRepo repository.UserRepository, field repository.UniqueField, value string) error {
	_, err := userRepo.FindByUnique(ctx, field, value)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		srv.logger.Error("Uniqueness lookup failed", slog.String("field", string(field)), slog.Any("error", err))

		return domainerrors.ErrInternal.WrapMessage("uniqueness check failed")
	}

	switch field {
	case repository.FieldUserName:
		return errors.WithStack(domainerrors.ErrUserNameExists)
	default:
		return errors.WithStack(domainerrors.ErrEmailExists)
	}
}

// Register creates a new, inactive account after validating that both the
// email and the user name are unused. Email is checked first so duplicate
// errors are deterministic.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.logger.Info("Starting registration", slog.String("email", input.Email))

	var registered *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if err := srv.validateUnique(ctx, userRepo, repository.FieldEmail, input.Email); err != nil {
			return err
		}
		if err := srv.validateUnique(ctx, userRepo, repository.FieldUserName, input.UserName); err != nil {
			return err
		}

		hashedPassword, err := srv.hasher.Hash(input.Password)
		if err != nil {
			srv.logger.Error("Failed to hash password during registration", slog.Any("error", err))

			return domainerrors.ErrInternal.WrapMessage("failed to hash password")
		}

		// One timestamp for both fields, so created_at == updated_at on a
		// fresh account.
		now := entity.Now()
		newUser := &entity.User{
			Email:        input.Email,
			UserName:     input.UserName,
			PasswordHash: hashedPassword,
			IsActive:     false,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := userRepo.Create(ctx, newUser); err != nil {
			// Two concurrent registrations can pass the uniqueness check and
			// race to commit; the constraint catches the loser here.
			if errors.Is(err, repository.ErrDuplicateKey) {
				return domainerrors.ErrEmailExists.WrapMessage("duplicate account detected at commit")
			}

			return errors.Wrap(err, "failed to create user during registration")
		}

		registered = newUser

		return nil
	})
	if err != nil {
		srv.logger.Warn("Registration failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.logger.Debug("Registration completed", slog.Any("userID", registered.ID))

	return &usecase.RegisterOutput{User: registered.Project()}, nil
}

// Login verifies the credentials and issues an access/refresh token pair.
// Credential verification always happens before any success response is
// produced; accounts still pending activation get the token pair with
// user_info_required instead of the full projection.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.logger.Debug("Starting login", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByUnique(ctx, repository.FieldEmail, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.logger.Warn("Login for unknown email", slog.String("email", input.Email))

			return nil, errors.WithStack(domainerrors.ErrUserNotFound)
		}
		srv.logger.Error("Failed to load user for login", slog.String("email", input.Email), slog.Any("error", err))

		return nil, domainerrors.ErrInternal.WrapMessage("failed to load user for login")
	}

	// bcrypt is CPU-bound; the check runs outside any transaction.
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.logger.Warn("Login with invalid password", slog.Any("userID", user.ID))

		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}

	tokenPair, err := srv.tokenService.IssueTokens(user.ID)
	if err != nil {
		srv.logger.Error("Failed to issue tokens", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, domainerrors.ErrInternal.WrapMessage("failed to issue tokens")
	}

	srv.logger.Debug("Login succeeded", slog.Any("userID", user.ID))

	if !user.IsActive {
		return &usecase.LoginOutput{Token: tokenPair, UserInfoRequired: true}, nil
	}

	return &usecase.LoginOutput{Token: tokenPair, User: user.Project()}, nil
}

// SetPassword replaces the stored hash after verifying the old password.
func (srv *authService) SetPassword(ctx context.Context, input *usecase.SetPasswordInput) (*entity.Projection, error) {
	srv.logger.Info("Starting password change", slog.Any("userID", input.UserID))

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := srv.fetchUser(ctx, userRepo, input.UserID)
		if err != nil {
			return err
		}

		// Client-input consistency check, not a credential check.
		if input.OldPassword != input.ConfirmOldPassword {
			return errors.WithStack(domainerrors.ErrPasswordMismatch)
		}

		if !srv.hasher.Check(input.OldPassword, user.PasswordHash) {
			return errors.WithStack(domainerrors.ErrInvalidCredentials)
		}

		if err := srv.replacePassword(ctx, userRepo, user, input.NewPassword); err != nil {
			return err
		}

		updated = user

		return nil
	})
	if err != nil {
		srv.logger.Warn("Password change failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, err
	}

	srv.logger.Info("Password changed", slog.Any("userID", updated.ID))

	return updated.Project(), nil
}

// ResetPassword replaces the stored hash without old-password verification.
// Identity has been established by another mechanism before this is called.
func (srv *authService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) (*entity.Projection, error) {
	srv.logger.Info("Starting password reset", slog.Any("userID", input.UserID))

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := srv.fetchUser(ctx, userRepo, input.UserID)
		if err != nil {
			return err
		}

		if err := srv.replacePassword(ctx, userRepo, user, input.NewPassword); err != nil {
			return err
		}

		updated = user

		return nil
	})
	if err != nil {
		srv.logger.Warn("Password reset failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, err
	}

	srv.logger.Info("Password reset", slog.Any("userID", updated.ID))

	return updated.Project(), nil
}

// fetchUser performs a real single-row fetch that reports absence explicitly.
func (srv *authService) fetchUser(ctx context.Context, userRepo repository.UserRepository, userID uuid.UUID) (*entity.User, error) {
	user, err := userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.WithStack(domainerrors.ErrUserNotFound)
		}

		return nil, domainerrors.ErrInternal.WrapMessage("failed to load user")
	}

	return user, nil
}

// replacePassword hashes the new password, swaps the stored hash and bumps
// updated_at. Persistence failures are classified: integrity violations are
// client-visible 422s, everything else is internal.
func (srv *authService) replacePassword(ctx context.Context, userRepo repository.UserRepository, user *entity.User, newPassword string) error {
	hashedPassword, err := srv.hasher.Hash(newPassword)
	if err != nil {
		srv.logger.Error("Failed to hash password during update", slog.Any("userID", user.ID), slog.Any("error", err))

		return domainerrors.ErrInternal.WrapMessage("failed to hash password")
	}

	user.PasswordHash = hashedPassword
	user.UpdatedAt = entity.Now()

	if err := userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return domainerrors.ErrIntegrityViolation.WrapMessage("integrity error occurred during update")
		}

		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return err
		}

		return domainerrors.ErrInternal.WrapMessage("unexpected error occurred during update")
	}

	return nil
}
