package impl

import (
	"context"
	"testing"
	"time"

	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"
	infraauth "passport/internal/infra/auth"
	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authServiceFixtures struct {
	service usecase.AuthUsecase
	repo    *fakeUserRepo
	hasher  service.PasswordHasher
	tokens  *stubTokenService
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	t.Helper()

	repo := newFakeUserRepo()
	hasher := infraauth.NewBcryptHasherWithCost(bcrypt.MinCost)
	tokens := &stubTokenService{pair: &service.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "bearer",
	}}

	svc := NewAuthService(AuthServiceParams{
		TxManager:    &fakeTxManager{repo: repo},
		UserRepo:     repo,
		Hasher:       hasher,
		TokenService: tokens,
		Logger:       newDiscardLogger(),
	})

	return authServiceFixtures{service: svc, repo: repo, hasher: hasher, tokens: tokens}
}

func (fx authServiceFixtures) register(t *testing.T, email, userName, password string) *usecase.RegisterOutput {
	t.Helper()

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Email:    email,
		UserName: userName,
		Password: password,
	})
	require.NoError(t, err)
	require.NotNil(t, output)

	return output
}

func TestAuthService_Register_Success(t *testing.T) {
	fx := createTestAuthService(t)

	output := fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")

	assert.Equal(t, "neo@example.com", output.User.Email)
	assert.Equal(t, "neo", output.User.UserName)
	assert.False(t, output.User.IsActive)
	assert.True(t, output.User.CreatedAt.Equal(output.User.UpdatedAt))
	assert.NotEqual(t, uuid.Nil, output.User.ID)

	stored := fx.repo.get(output.User.ID)
	require.NotNil(t, stored)
	assert.NotEqual(t, "Sup3rS3cret!", stored.PasswordHash)
	assert.True(t, fx.hasher.Check("Sup3rS3cret!", stored.PasswordHash))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	fx := createTestAuthService(t)
	fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Email:    "neo@example.com",
		UserName: "different-name",
		Password: "An0therS3cret!",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailExists))
	assert.Nil(t, output)
	assert.Len(t, fx.repo.users, 1)
}

func TestAuthService_Register_DuplicateUserName(t *testing.T) {
	fx := createTestAuthService(t)
	fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Email:    "other@example.com",
		UserName: "neo",
		Password: "An0therS3cret!",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNameExists))
	assert.Len(t, fx.repo.users, 1)
}

func TestAuthService_Register_RaceCaughtAtCommit(t *testing.T) {
	fx := createTestAuthService(t)
	// Both registrations pass the uniqueness check; the constraint catches
	// the second at insert time.
	fx.repo.createErr = repository.ErrDuplicateKey

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Email:    "neo@example.com",
		UserName: "neo",
		Password: "Sup3rS3cret!",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailExists))
	assert.Empty(t, fx.repo.users)
}

func TestAuthService_Register_LookupFailure(t *testing.T) {
	fx := createTestAuthService(t)
	fx.repo.findErr = errors.New("connection refused")

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Email:    "neo@example.com",
		UserName: "neo",
		Password: "Sup3rS3cret!",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInternal))
}

func TestAuthService_Login_Success(t *testing.T) {
	fx := createTestAuthService(t)
	registered := fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")
	fx.activate(t, registered.User.ID)

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "neo@example.com",
		Password: "Sup3rS3cret!",
	})

	require.NoError(t, err)
	require.NotNil(t, output.Token)
	assert.Equal(t, "access-token", output.Token.AccessToken)
	assert.Equal(t, "refresh-token", output.Token.RefreshToken)
	require.NotNil(t, output.User)
	assert.Equal(t, "neo@example.com", output.User.Email)
	assert.False(t, output.UserInfoRequired)
}

func TestAuthService_Login_PendingActivation(t *testing.T) {
	fx := createTestAuthService(t)
	fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "neo@example.com",
		Password: "Sup3rS3cret!",
	})

	require.NoError(t, err)
	require.NotNil(t, output.Token)
	assert.True(t, output.UserInfoRequired)
	assert.Nil(t, output.User)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	fx := createTestAuthService(t)
	fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "neo@example.com",
		Password: "wrong-password",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	assert.Nil(t, output)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	fx := createTestAuthService(t)

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
	assert.Nil(t, output)
}

func TestAuthService_Login_TokenIssueFailure(t *testing.T) {
	fx := createTestAuthService(t)
	fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")
	fx.tokens.err = errors.New("signing key unavailable")

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "neo@example.com",
		Password: "Sup3rS3cret!",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInternal))
}

func TestAuthService_SetPassword_Success(t *testing.T) {
	fx := createTestAuthService(t)
	registered := fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")
	before := fx.repo.get(registered.User.ID).UpdatedAt

	time.Sleep(5 * time.Millisecond)

	updated, err := fx.service.SetPassword(context.Background(), &usecase.SetPasswordInput{
		UserID:             registered.User.ID,
		OldPassword:        "Sup3rS3cret!",
		ConfirmOldPassword: "Sup3rS3cret!",
		NewPassword:        "Brand-New-S3cret",
	})

	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(before))

	stored := fx.repo.get(registered.User.ID)
	assert.False(t, fx.hasher.Check("Sup3rS3cret!", stored.PasswordHash))
	assert.True(t, fx.hasher.Check("Brand-New-S3cret", stored.PasswordHash))
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt))
}

func TestAuthService_SetPassword_ConfirmMismatch(t *testing.T) {
	fx := createTestAuthService(t)
	registered := fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")
	storedBefore := *fx.repo.get(registered.User.ID)

	_, err := fx.service.SetPassword(context.Background(), &usecase.SetPasswordInput{
		UserID:             registered.User.ID,
		OldPassword:        "Sup3rS3cret!",
		ConfirmOldPassword: "sup3rs3cret!",
		NewPassword:        "Brand-New-S3cret",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordMismatch))

	storedAfter := fx.repo.get(registered.User.ID)
	assert.Equal(t, storedBefore.PasswordHash, storedAfter.PasswordHash)
	assert.True(t, storedBefore.UpdatedAt.Equal(storedAfter.UpdatedAt))
}

func TestAuthService_SetPassword_WrongOldPassword(t *testing.T) {
	fx := createTestAuthService(t)
	registered := fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")

	_, err := fx.service.SetPassword(context.Background(), &usecase.SetPasswordInput{
		UserID:             registered.User.ID,
		OldPassword:        "wrong-old",
		ConfirmOldPassword: "wrong-old",
		NewPassword:        "Brand-New-S3cret",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	assert.True(t, fx.hasher.Check("Sup3rS3cret!", fx.repo.get(registered.User.ID).PasswordHash))
}

func TestAuthService_SetPassword_UnknownUser(t *testing.T) {
	fx := createTestAuthService(t)

	_, err := fx.service.SetPassword(context.Background(), &usecase.SetPasswordInput{
		UserID:             uuid.New(),
		OldPassword:        "whatever",
		ConfirmOldPassword: "whatever",
		NewPassword:        "Brand-New-S3cret",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestAuthService_SetPassword_IntegrityViolationRollsBack(t *testing.T) {
	fx := createTestAuthService(t)
	registered := fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")
	storedBefore := *fx.repo.get(registered.User.ID)

	fx.repo.updateErr = repository.ErrDuplicateKey

	_, err := fx.service.SetPassword(context.Background(), &usecase.SetPasswordInput{
		UserID:             registered.User.ID,
		OldPassword:        "Sup3rS3cret!",
		ConfirmOldPassword: "Sup3rS3cret!",
		NewPassword:        "Brand-New-S3cret",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrIntegrityViolation))

	storedAfter := fx.repo.get(registered.User.ID)
	assert.Equal(t, storedBefore.PasswordHash, storedAfter.PasswordHash)
	assert.True(t, storedBefore.UpdatedAt.Equal(storedAfter.UpdatedAt))
}

func TestAuthService_SetPassword_StoreFailureRollsBack(t *testing.T) {
	fx := createTestAuthService(t)
	registered := fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")
	storedBefore := *fx.repo.get(registered.User.ID)

	fx.repo.updateErr = errors.New("connection reset")

	_, err := fx.service.SetPassword(context.Background(), &usecase.SetPasswordInput{
		UserID:             registered.User.ID,
		OldPassword:        "Sup3rS3cret!",
		ConfirmOldPassword: "Sup3rS3cret!",
		NewPassword:        "Brand-New-S3cret",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInternal))

	storedAfter := fx.repo.get(registered.User.ID)
	assert.Equal(t, storedBefore.PasswordHash, storedAfter.PasswordHash)
}

func TestAuthService_ResetPassword_Success(t *testing.T) {
	fx := createTestAuthService(t)
	registered := fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")
	before := fx.repo.get(registered.User.ID).UpdatedAt

	time.Sleep(5 * time.Millisecond)

	// No old password involved; identity was established elsewhere.
	updated, err := fx.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		UserID:      registered.User.ID,
		NewPassword: "Reset-S3cret",
	})

	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(before))

	stored := fx.repo.get(registered.User.ID)
	assert.False(t, fx.hasher.Check("Sup3rS3cret!", stored.PasswordHash))
	assert.True(t, fx.hasher.Check("Reset-S3cret", stored.PasswordHash))
}

func TestAuthService_ResetPassword_UnknownUser(t *testing.T) {
	fx := createTestAuthService(t)

	_, err := fx.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		UserID:      uuid.New(),
		NewPassword: "Reset-S3cret",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestAuthService_ResetPassword_IntegrityViolationRollsBack(t *testing.T) {
	fx := createTestAuthService(t)
	registered := fx.register(t, "neo@example.com", "neo", "Sup3rS3cret!")
	storedBefore := *fx.repo.get(registered.User.ID)

	fx.repo.updateErr = repository.ErrDuplicateKey

	_, err := fx.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		UserID:      registered.User.ID,
		NewPassword: "Reset-S3cret",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrIntegrityViolation))
	assert.Equal(t, storedBefore.PasswordHash, fx.repo.get(registered.User.ID).PasswordHash)
}

// activate flips the account to active directly in the store, standing in for
// the out-of-scope activation process.
func (fx authServiceFixtures) activate(t *testing.T, id uuid.UUID) {
	t.Helper()

	user := fx.repo.get(id)
	require.NotNil(t, user)
	user.IsActive = true
}
