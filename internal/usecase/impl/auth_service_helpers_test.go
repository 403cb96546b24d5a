package impl

import (
	"context"
	"io"
	"log/slog"
	"maps"

	"passport/internal/domain/entity"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory UserRepository with injectable failures. It
// stores copies so that transaction rollback semantics can be observed.
type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User

	findErr   error // forced failure on lookups
	createErr error // forced failure on Create
	updateErr error // forced failure on Update
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}

	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user

	return &clone, nil
}

func (f *fakeUserRepo) FindByUnique(_ context.Context, field repository.UniqueField, value string) (*entity.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}

	for _, user := range f.users {
		var match bool
		switch field {
		case repository.FieldEmail:
			match = user.Email == value
		case repository.FieldUserName:
			match = user.UserName == value
		}
		if match {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if f.createErr != nil {
		return f.createErr
	}

	for _, existing := range f.users {
		if existing.Email == user.Email || existing.UserName == user.UserName {
			return repository.ErrDuplicateKey
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	f.users[user.ID] = &clone

	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	if _, ok := f.users[user.ID]; !ok {
		return errors.New("update of unknown user")
	}
	clone := *user
	f.users[user.ID] = &clone

	return nil
}

func (f *fakeUserRepo) get(id uuid.UUID) *entity.User {
	return f.users[id]
}

// fakeTxManager snapshots the repo before running the callback and restores
// the snapshot when the callback fails, mimicking a real rollback.
type fakeTxManager struct {
	repo *fakeUserRepo
}

type fakeRepoFactory struct {
	repo *fakeUserRepo
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository {
	return f.repo
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	snapshot := make(map[uuid.UUID]*entity.User, len(m.repo.users))
	for id, user := range m.repo.users {
		clone := *user
		snapshot[id] = &clone
	}

	if err := fn(&fakeRepoFactory{repo: m.repo}); err != nil {
		m.repo.users = make(map[uuid.UUID]*entity.User, len(snapshot))
		maps.Copy(m.repo.users, snapshot)

		return err
	}

	return nil
}

// stubTokenService issues a fixed pair.
type stubTokenService struct {
	pair *service.TokenPair
	err  error
}

func (s *stubTokenService) IssueTokens(uuid.UUID) (*service.TokenPair, error) {
	if s.err != nil {
		return nil, s.err
	}

	return s.pair, nil
}

func (s *stubTokenService) ValidateToken(string) (*service.Claims, error) {
	return nil, errors.New("not implemented in stub")
}
