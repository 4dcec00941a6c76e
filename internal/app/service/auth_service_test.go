package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/db"
	"github.com/storerate/storerate-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret"

type fakeRevoker struct {
	tokenID string
	ttl     time.Duration
	err     error
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.tokenID = tokenID
	f.ttl = ttl
	return f.err
}

func setupAuthServiceTest(t *testing.T, revoker TokenRevoker) (*gorm.DB, AuthService, repository.UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	return testDB, NewAuthService(userRepo, revoker, testJWTSecret, time.Hour), userRepo
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Name:     "Registered Person Full Name",
		Email:    "Person@Example.com",
		Password: "Password1!",
		Address:  "  12 Example Road  ",
	}
}

func TestAuthService_Register(t *testing.T) {
	_, authService, _ := setupAuthServiceTest(t, nil)

	user, err := authService.Register(validRegistration())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "person@example.com", user.Email)
	assert.Equal(t, "12 Example Road", user.Address)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "Password1!", user.PasswordHash)

	t.Run("duplicate email ignores case", func(t *testing.T) {
		input := validRegistration()
		input.Email = "PERSON@example.com"
		_, err := authService.Register(input)
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})
}

func TestAuthService_Register_Validation(t *testing.T) {
	_, authService, _ := setupAuthServiceTest(t, nil)

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"short name", func(in *RegisterInput) { in.Name = "Too Short" }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"weak password", func(in *RegisterInput) { in.Password = "password" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegistration()
			tt.mutate(&input)
			_, err := authService.Register(input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	_, authService, _ := setupAuthServiceTest(t, nil)

	registered, err := authService.Register(validRegistration())
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", "person@example.com", "Password1!", nil},
		{"email is normalized", " PERSON@example.com ", "Password1!", nil},
		{"wrong password", "person@example.com", "Password2!", ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", "Password1!", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := authService.Login(tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)

			claims, err := util.ValidateToken(token, testJWTSecret)
			require.NoError(t, err)
			assert.Equal(t, registered.ID, claims.UserID)
			assert.Equal(t, "user", claims.Role)
		})
	}
}

func TestAuthService_LoginCarriesAdminRole(t *testing.T) {
	testDB, authService, _ := setupAuthServiceTest(t, nil)

	hash, err := util.HashPassword("Password1!")
	require.NoError(t, err)
	require.NoError(t, testDB.Create(&model.User{
		Name: "Administrator Full Name", Email: "admin@example.com", PasswordHash: hash, Role: model.RoleAdmin,
	}).Error)

	_, token, err := authService.Login("admin@example.com", "Password1!")
	require.NoError(t, err)

	claims, err := util.ValidateToken(token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestAuthService_UpdatePassword(t *testing.T) {
	_, authService, _ := setupAuthServiceTest(t, nil)

	user, err := authService.Register(validRegistration())
	require.NoError(t, err)

	require.NoError(t, authService.UpdatePassword(user.ID, UpdatePasswordInput{Password: "NewPass99#"}))

	_, _, err = authService.Login("person@example.com", "Password1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = authService.Login("person@example.com", "NewPass99#")
	assert.NoError(t, err)

	assert.ErrorIs(t, authService.UpdatePassword(user.ID, UpdatePasswordInput{Password: "weak"}), ErrInvalidInput)
	assert.ErrorIs(t, authService.UpdatePassword(9999, UpdatePasswordInput{Password: "NewPass99#"}), ErrUserNotFound)
}

func TestAuthService_GetProfile(t *testing.T) {
	_, authService, _ := setupAuthServiceTest(t, nil)

	user, err := authService.Register(validRegistration())
	require.NoError(t, err)

	profile, err := authService.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, profile.Email)

	_, err = authService.GetProfile(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("revokes for remaining lifetime", func(t *testing.T) {
		revoker := &fakeRevoker{}
		_, authService, _ := setupAuthServiceTest(t, revoker)

		err := authService.Logout(context.Background(), "jti-1", time.Now().Add(30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, "jti-1", revoker.tokenID)
		assert.InDelta(t, (30 * time.Minute).Seconds(), revoker.ttl.Seconds(), 5)
	})

	t.Run("no revoker is a no-op", func(t *testing.T) {
		_, authService, _ := setupAuthServiceTest(t, nil)
		assert.NoError(t, authService.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)))
	})

	t.Run("revoker failure is returned", func(t *testing.T) {
		_, authService, _ := setupAuthServiceTest(t, &fakeRevoker{err: errors.New("redis down")})
		assert.Error(t, authService.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)))
	})
}
