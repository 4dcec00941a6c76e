package service

import (
	"testing"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/db"
	"github.com/storerate/storerate-backend/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserServiceTest(t *testing.T) (*gorm.DB, UserService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewUserService(repository.NewUserRepository(testDB))
}

func TestUserService_CreateUser(t *testing.T) {
	_, userService := setupUserServiceTest(t)

	tests := []struct {
		name     string
		input    CreateUserInput
		wantRole model.UserRole
		wantErr  error
	}{
		{
			name:     "defaults to user role",
			input:    CreateUserInput{Name: "Default Role Person Name", Email: "default@example.com", Password: "Password1!"},
			wantRole: model.RoleUser,
		},
		{
			name:     "explicit store owner",
			input:    CreateUserInput{Name: "Store Owner Person Name", Email: "owner@example.com", Password: "Password1!", Role: "store_owner"},
			wantRole: model.RoleStoreOwner,
		},
		{
			name:     "explicit admin",
			input:    CreateUserInput{Name: "Administrator Person Name", Email: "admin@example.com", Password: "Password1!", Role: "admin"},
			wantRole: model.RoleAdmin,
		},
		{
			name:    "duplicate email",
			input:   CreateUserInput{Name: "Duplicate Email Person", Email: "DEFAULT@example.com", Password: "Password1!"},
			wantErr: ErrEmailAlreadyExists,
		},
		{
			name:    "unknown role",
			input:   CreateUserInput{Name: "Unknown Role Person Name", Email: "role@example.com", Password: "Password1!", Role: "root"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "password too long",
			input:   CreateUserInput{Name: "Long Password Person Name", Email: "long@example.com", Password: "Abcdefghijklmnop!"},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := userService.CreateUser(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, user.Role)
		})
	}
}

func TestUserService_GetUser(t *testing.T) {
	_, userService := setupUserServiceTest(t)

	created, err := userService.CreateUser(CreateUserInput{Name: "Lookup Target Person", Email: "lookup@example.com", Password: "Password1!"})
	require.NoError(t, err)

	user, err := userService.GetUser(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "lookup@example.com", user.Email)
	assert.Nil(t, user.Rating)

	_, err = userService.GetUser(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	testDB, userService := setupUserServiceTest(t)

	created, err := userService.CreateUser(CreateUserInput{Name: "Short Lived Person Name", Email: "gone@example.com", Password: "Password1!"})
	require.NoError(t, err)

	require.NoError(t, userService.DeleteUser(created.ID))

	var count int64
	testDB.Model(&model.User{}).Count(&count)
	assert.Zero(t, count)

	t.Run("missing user has no side effects", func(t *testing.T) {
		_, err := userService.CreateUser(CreateUserInput{Name: "Survivor Person Full Name", Email: "stay@example.com", Password: "Password1!"})
		require.NoError(t, err)

		assert.ErrorIs(t, userService.DeleteUser(9999), ErrUserNotFound)

		testDB.Model(&model.User{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	_, userService := setupUserServiceTest(t)

	users, err := userService.ListUsers(query.Params{})
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	_, err = userService.CreateUser(CreateUserInput{Name: "Zed Zimmerman Lastname", Email: "zed@example.com", Password: "Password1!"})
	require.NoError(t, err)
	_, err = userService.CreateUser(CreateUserInput{Name: "Amy Adams Firstperson", Email: "amy@example.com", Password: "Password1!", Role: "admin"})
	require.NoError(t, err)

	users, err = userService.ListUsers(query.Params{})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amy@example.com", users[0].Email)

	users, err = userService.ListUsers(query.Params{Values: map[string]string{"role": "admin"}})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, model.RoleAdmin, users[0].Role)
}
