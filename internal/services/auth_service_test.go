package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yusuke24eugene/laravel12-rest-api/internal/mocks"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/models"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/repository"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/services"
)

const testJWTSecret = "test-secret-key"

func setupAuthService(t *testing.T) (services.AuthService, *mocks.UserRepository, *mocks.CredentialRepository) {
	t.Helper()
	userRepo := mocks.NewUserRepository(t)
	credRepo := mocks.NewCredentialRepository(t)
	svc := services.NewAuthService(userRepo, credRepo, testJWTSecret)
	return svc, userRepo, credRepo
}

// parseTestToken разбирает выданный сервисом JWT и возвращает его claims.
func parseTestToken(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	return claims
}

func validRegisterRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Name:                 "alice",
		Email:                "alice@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Успешная регистрация", func(t *testing.T) {
		svc, userRepo, credRepo := setupAuthService(t)
		req := validRegisterRequest()
		created := &models.User{ID: 1, Name: req.Name, Email: req.Email, PasswordHash: "hash"}

		userRepo.EXPECT().CreateUser(ctx, mock.AnythingOfType("*models.User")).Return(int64(1), nil).Once()
		userRepo.EXPECT().GetUserByID(ctx, int64(1)).Return(created, nil).Once()
		credRepo.EXPECT().CreateCredential(ctx, mock.AnythingOfType("*models.Credential")).Return(nil).Once()

		user, token, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, created, user)

		claims := parseTestToken(t, token)
		assert.Equal(t, float64(1), claims["user_id"])
		assert.NotEmpty(t, claims["jti"])
	})

	t.Run("Пароль хешируется перед сохранением", func(t *testing.T) {
		svc, userRepo, credRepo := setupAuthService(t)
		req := validRegisterRequest()
		created := &models.User{ID: 2, Name: req.Name, Email: req.Email}

		userRepo.EXPECT().CreateUser(ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.PasswordHash != req.Password && u.PasswordHash != ""
		})).Return(int64(2), nil).Once()
		userRepo.EXPECT().GetUserByID(ctx, int64(2)).Return(created, nil).Once()
		credRepo.EXPECT().CreateCredential(ctx, mock.Anything).Return(nil).Once()

		_, _, err := svc.Register(ctx, req)
		require.NoError(t, err)
	})

	t.Run("Ошибки валидации собираются по всем полям", func(t *testing.T) {
		svc, _, _ := setupAuthService(t)

		_, _, err := svc.Register(ctx, models.RegisterRequest{
			Name:                 "",
			Email:                "not-an-email",
			Password:             "123",
			PasswordConfirmation: "456",
		})
		require.Error(t, err)

		var ve models.ValidationErrors
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve["name"], "The name field is required.")
		assert.Contains(t, ve["email"], "The email field must be a valid email address.")
		assert.Contains(t, ve["password"], "The password field must be at least 6 characters.")
		assert.Contains(t, ve["password"], "The password field confirmation does not match.")
	})

	t.Run("Имя занято", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService(t)

		userRepo.EXPECT().CreateUser(ctx, mock.Anything).Return(int64(0), repository.ErrNameTaken).Once()

		_, _, err := svc.Register(ctx, validRegisterRequest())
		var ve models.ValidationErrors
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []string{"The name has already been taken."}, ve["name"])
	})

	t.Run("Email занят", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService(t)

		userRepo.EXPECT().CreateUser(ctx, mock.Anything).Return(int64(0), repository.ErrEmailTaken).Once()

		_, _, err := svc.Register(ctx, validRegisterRequest())
		var ve models.ValidationErrors
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []string{"The email has already been taken."}, ve["email"])
	})

	t.Run("Ошибка сохранения токена", func(t *testing.T) {
		svc, userRepo, credRepo := setupAuthService(t)
		created := &models.User{ID: 3, Name: "alice"}

		userRepo.EXPECT().CreateUser(ctx, mock.Anything).Return(int64(3), nil).Once()
		userRepo.EXPECT().GetUserByID(ctx, int64(3)).Return(created, nil).Once()
		credRepo.EXPECT().CreateCredential(ctx, mock.Anything).Return(errors.New("database error")).Once()

		_, _, err := svc.Register(ctx, validRegisterRequest())
		require.Error(t, err)
		var ve models.ValidationErrors
		assert.False(t, errors.As(err, &ve))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	// Хеш пароля "password123", сгенерированный заранее
	const passwordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMye.IjPeGvGzjDVXjvkTz1S3tW5GsNKQ2u"

	t.Run("Успешный вход", func(t *testing.T) {
		svc, userRepo, credRepo := setupAuthService(t)

		// Хеш генерируем на лету, чтобы не зависеть от версии bcrypt
		reg := validRegisterRequest()
		var storedHash string
		userRepo.EXPECT().CreateUser(ctx, mock.MatchedBy(func(u *models.User) bool {
			storedHash = u.PasswordHash
			return true
		})).Return(int64(1), nil).Once()
		userRepo.EXPECT().GetUserByID(ctx, int64(1)).
			Return(&models.User{ID: 1, Name: reg.Name}, nil).Once()
		credRepo.EXPECT().CreateCredential(ctx, mock.Anything).Return(nil).Twice()
		_, _, err := svc.Register(ctx, reg)
		require.NoError(t, err)

		user := &models.User{ID: 1, Name: reg.Name, PasswordHash: storedHash}
		userRepo.EXPECT().GetUserByName(ctx, reg.Name).Return(user, nil).Once()

		got, token, err := svc.Login(ctx, models.LoginRequest{Name: reg.Name, Password: reg.Password})
		require.NoError(t, err)
		assert.Equal(t, user, got)

		claims := parseTestToken(t, token)
		assert.Equal(t, float64(1), claims["user_id"])
	})

	t.Run("Пользователь не существует", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService(t)

		userRepo.EXPECT().GetUserByName(ctx, "ghost").
			Return(nil, repository.ErrUserNotFound).Once()

		_, _, err := svc.Login(ctx, models.LoginRequest{Name: "ghost", Password: "whatever"})
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("Неверный пароль", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService(t)
		user := &models.User{ID: 1, Name: "alice", PasswordHash: passwordHash}

		userRepo.EXPECT().GetUserByName(ctx, "alice").Return(user, nil).Once()

		_, _, err := svc.Login(ctx, models.LoginRequest{Name: "alice", Password: "wrongpass"})
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("Ошибка репозитория", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService(t)

		userRepo.EXPECT().GetUserByName(ctx, "alice").
			Return(nil, errors.New("database error")).Once()

		_, _, err := svc.Login(ctx, models.LoginRequest{Name: "alice", Password: "password123"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("Успешный выход", func(t *testing.T) {
		svc, _, credRepo := setupAuthService(t)

		credRepo.EXPECT().DeleteCredential(ctx, "token-id").Return(nil).Once()

		require.NoError(t, svc.Logout(ctx, "token-id"))
	})

	t.Run("Токен уже отозван", func(t *testing.T) {
		svc, _, credRepo := setupAuthService(t)

		credRepo.EXPECT().DeleteCredential(ctx, "token-id").
			Return(repository.ErrCredentialNotFound).Once()

		err := svc.Logout(ctx, "token-id")
		assert.ErrorIs(t, err, services.ErrUnauthenticated)
	})
}

func TestAuthService_CurrentUser(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Живой токен разрешается во владельца", func(t *testing.T) {
		svc, userRepo, credRepo := setupAuthService(t)
		cred := &models.Credential{ID: "token-id", UserID: 42, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
		user := &models.User{ID: 42, Name: "alice"}

		credRepo.EXPECT().GetCredentialByID(ctx, "token-id").Return(cred, nil).Once()
		userRepo.EXPECT().GetUserByID(ctx, int64(42)).Return(user, nil).Once()

		got, err := svc.CurrentUser(ctx, "token-id")
		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("Токен отозван", func(t *testing.T) {
		svc, _, credRepo := setupAuthService(t)

		credRepo.EXPECT().GetCredentialByID(ctx, "token-id").
			Return(nil, repository.ErrCredentialNotFound).Once()

		_, err := svc.CurrentUser(ctx, "token-id")
		assert.ErrorIs(t, err, services.ErrUnauthenticated)
	})

	t.Run("Истекший токен удаляется лениво", func(t *testing.T) {
		svc, _, credRepo := setupAuthService(t)
		cred := &models.Credential{
			ID: "token-id", UserID: 42,
			IssuedAt:  now.Add(-25 * time.Hour),
			ExpiresAt: now.Add(-time.Hour),
		}

		credRepo.EXPECT().GetCredentialByID(ctx, "token-id").Return(cred, nil).Once()
		credRepo.EXPECT().DeleteCredential(ctx, "token-id").Return(nil).Once()

		_, err := svc.CurrentUser(ctx, "token-id")
		assert.ErrorIs(t, err, services.ErrUnauthenticated)
	})

	t.Run("Владелец токена удален", func(t *testing.T) {
		svc, userRepo, credRepo := setupAuthService(t)
		cred := &models.Credential{ID: "token-id", UserID: 42, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

		credRepo.EXPECT().GetCredentialByID(ctx, "token-id").Return(cred, nil).Once()
		userRepo.EXPECT().GetUserByID(ctx, int64(42)).Return(nil, repository.ErrUserNotFound).Once()

		_, err := svc.CurrentUser(ctx, "token-id")
		assert.ErrorIs(t, err, services.ErrUnauthenticated)
	})
}

func TestAuthService_VerifyCredential(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Живой токен проходит проверку", func(t *testing.T) {
		svc, _, credRepo := setupAuthService(t)
		cred := &models.Credential{ID: "token-id", UserID: 42, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

		credRepo.EXPECT().GetCredentialByID(ctx, "token-id").Return(cred, nil).Once()

		require.NoError(t, svc.VerifyCredential(ctx, "token-id"))
	})

	t.Run("Неизвестный токен отклоняется", func(t *testing.T) {
		svc, _, credRepo := setupAuthService(t)

		credRepo.EXPECT().GetCredentialByID(ctx, "token-id").
			Return(nil, repository.ErrCredentialNotFound).Once()

		err := svc.VerifyCredential(ctx, "token-id")
		assert.ErrorIs(t, err, services.ErrUnauthenticated)
	})
}
