package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mkuznetsov/user-service/internal/dispatch"
	"github.com/mkuznetsov/user-service/internal/user"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, name, email string) (*user.User, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id int64, name, email string) (*user.User, error) {
	args := m.Called(ctx, id, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(t *testing.T, repo user.Repository) user.Service {
	t.Helper()

	pool := dispatch.NewPool(2, 8, zerolog.Nop())
	pool.Start()
	t.Cleanup(pool.Close)

	return user.NewService(repo, pool)
}

func TestUserService_CreateUser_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(t, mockRepo)

	expectedUser := user.User{
		ID:        1,
		Name:      "John Doe",
		Email:     "johndoe@example.com",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	mockRepo.On("Create", mock.Anything, "John Doe", "johndoe@example.com").
		Return(&expectedUser, nil).
		Once()

	createdUser, err := userService.CreateUser(context.Background(), "John Doe", "johndoe@example.com")

	require.NoError(t, err)
	require.NotNil(t, createdUser)
	diff := cmp.Diff(expectedUser, *createdUser)
	require.Empty(t, diff)
	mockRepo.AssertExpectations(t)
}

func TestUserService_CreateUser_EmailExists(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(t, mockRepo)

	mockRepo.On("Create", mock.Anything, "John Doe", "duplicate@example.com").
		Return(nil, user.ErrEmailExists).
		Once()

	createdUser, err := userService.CreateUser(context.Background(), "John Doe", "duplicate@example.com")

	require.Error(t, err)
	require.ErrorIs(t, err, user.ErrEmailExists)
	require.Nil(t, createdUser)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByID_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(t, mockRepo)

	expectedUser := user.User{
		ID:        42,
		Name:      "Test User",
		Email:     "getbyid@example.com",
		CreatedAt: time.Now().UTC().Add(-time.Hour).Truncate(time.Second),
	}

	mockRepo.On("GetByID", mock.Anything, int64(42)).
		Return(&expectedUser, nil).
		Once()

	foundUser, err := userService.GetUserByID(context.Background(), 42)

	require.NoError(t, err)
	require.NotNil(t, foundUser)
	diff := cmp.Diff(expectedUser, *foundUser)
	require.Empty(t, diff)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByID_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(t, mockRepo)

	mockRepo.On("GetByID", mock.Anything, int64(999)).
		Return(nil, user.ErrNotFound).
		Once()

	foundUser, err := userService.GetUserByID(context.Background(), 999)

	require.Error(t, err)
	require.ErrorIs(t, err, user.ErrNotFound)
	require.Nil(t, foundUser)
	mockRepo.AssertExpectations(t)
}

func TestUserService_ListUsers_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(t, mockRepo)

	expectedUsers := []user.User{
		{ID: 1, Name: "First", Email: "first@example.com"},
		{ID: 2, Name: "Second", Email: "second@example.com"},
		{ID: 3, Name: "Third", Email: "third@example.com"},
	}

	mockRepo.On("List", mock.Anything).
		Return(expectedUsers, nil).
		Once()

	users, err := userService.ListUsers(context.Background())

	require.NoError(t, err)
	diff := cmp.Diff(expectedUsers, users)
	require.Empty(t, diff)
	mockRepo.AssertExpectations(t)
}

func TestUserService_ListUsers_RepositoryError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(t, mockRepo)

	errRepo := errors.New("connection refused")

	mockRepo.On("List", mock.Anything).
		Return(nil, errRepo).
		Once()

	users, err := userService.ListUsers(context.Background())

	require.Error(t, err)
	require.ErrorIs(t, err, errRepo)
	require.Nil(t, users)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(t, mockRepo)

	expectedUser := user.User{
		ID:        1,
		Name:      "John Updated",
		Email:     "johnupdated@example.com",
		CreatedAt: time.Now().UTC().Add(-time.Hour).Truncate(time.Second),
	}

	mockRepo.On("Update", mock.Anything, int64(1), "John Updated", "johnupdated@example.com").
		Return(&expectedUser, nil).
		Once()

	updatedUser, err := userService.UpdateUser(context.Background(), 1, "John Updated", "johnupdated@example.com")

	require.NoError(t, err)
	require.NotNil(t, updatedUser)
	diff := cmp.Diff(expectedUser, *updatedUser)
	require.Empty(t, diff)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(t, mockRepo)

	mockRepo.On("Update", mock.Anything, int64(999), "Name", "name@example.com").
		Return(nil, user.ErrNotFound).
		Once()

	updatedUser, err := userService.UpdateUser(context.Background(), 999, "Name", "name@example.com")

	require.Error(t, err)
	require.ErrorIs(t, err, user.ErrNotFound)
	require.Nil(t, updatedUser)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_EmailExists(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(t, mockRepo)

	mockRepo.On("Update", mock.Anything, int64(1), "Name", "taken@example.com").
		Return(nil, user.ErrEmailExists).
		Once()

	updatedUser, err := userService.UpdateUser(context.Background(), 1, "Name", "taken@example.com")

	require.Error(t, err)
	require.ErrorIs(t, err, user.ErrEmailExists)
	require.Nil(t, updatedUser)
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeleteUser_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(t, mockRepo)

	mockRepo.On("Delete", mock.Anything, int64(1)).
		Return(nil).
		Once()

	err := userService.DeleteUser(context.Background(), 1)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeleteUser_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := newTestService(t, mockRepo)

	mockRepo.On("Delete", mock.Anything, int64(999)).
		Return(user.ErrNotFound).
		Once()

	err := userService.DeleteUser(context.Background(), 999)

	require.Error(t, err)
	require.ErrorIs(t, err, user.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
