package auth

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, username, email, passwordHash, displayName string) (User, error) {
	args := m.Called(ctx, username, email, passwordHash, displayName)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindUserByID(ctx context.Context, id int64) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindUserByUsername(ctx context.Context, username string) (User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, id int64, displayName, bio, avatarURL *string) (User, error) {
	args := m.Called(ctx, id, displayName, bio, avatarURL)
	return args.Get(0).(User), args.Error(1)
}
