package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yusuke24eugene/laravel12-rest-api/internal/models"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/repository"
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error)
	Logout(ctx context.Context, tokenID string) error
	CurrentUser(ctx context.Context, tokenID string) (*models.User, error)
	VerifyCredential(ctx context.Context, tokenID string) error
}

// Правила валидации регистрации.
const (
	maxNameLength     = 255 // В code points, не байтах
	minPasswordLength = 6
	tokenTTL          = time.Hour * 24 // Время жизни токена - 24 часа
	tokenIssuer       = "shop-api"
)

// Структура для пользовательских данных в JWT (claims).
// RegisteredClaims.ID (jti) совпадает с ID строки в таблице credentials.
type jwtClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo  repository.UserRepository
	credRepo  repository.CredentialRepository
	jwtSecret []byte
	// Хеш заведомо неверного пароля: login по несуществующему имени
	// всё равно выполняет одну bcrypt-проверку, чтобы не отличаться
	// по времени от login с неверным паролем.
	dummyHash []byte
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(
	userRepo repository.UserRepository,
	credRepo repository.CredentialRepository,
	jwtSecret string,
) AuthService {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt с дефолтной стоимостью не падает на валидном входе
		log.Printf("[AuthService] Ошибка генерации заглушечного хеша: %v", err)
	}
	return &authService{
		userRepo:  userRepo,
		credRepo:  credRepo,
		jwtSecret: []byte(jwtSecret),
		dummyHash: dummyHash,
	}
}

// validateRegister собирает ошибки валидации всех полей запроса сразу.
func validateRegister(req models.RegisterRequest) models.ValidationErrors {
	ve := models.ValidationErrors{}

	if req.Name == "" {
		ve.Add("name", "The name field is required.")
	} else if utf8.RuneCountInString(req.Name) > maxNameLength {
		ve.Add("name", "The name field must not be greater than 255 characters.")
	}

	if req.Email == "" {
		ve.Add("email", "The email field is required.")
	} else if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		ve.Add("email", "The email field must be a valid email address.")
	}

	if req.Password == "" {
		ve.Add("password", "The password field is required.")
	} else if utf8.RuneCountInString(req.Password) < minPasswordLength {
		ve.Add("password", "The password field must be at least 6 characters.")
	}
	if req.Password != req.PasswordConfirmation {
		ve.Add("password", "The password field confirmation does not match.")
	}

	return ve
}

// Register регистрирует нового пользователя и сразу выдает ему токен.
func (s *authService) Register(
	ctx context.Context,
	req models.RegisterRequest,
) (*models.User, string, error) {
	if ve := validateRegister(req); !ve.Empty() {
		log.Printf("[AuthService] Ошибки валидации при регистрации '%s': %v", req.Name, ve)
		return nil, "", ve
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[AuthService] Ошибка хеширования пароля для '%s': %v", req.Name, err)
		return nil, "", errors.New("внутренняя ошибка сервера при хешировании пароля")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}

	userID, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		// Нарушения уникальности поднимаем в той же форме, что и
		// остальные ошибки валидации: клиент чинит поле и повторяет.
		if errors.Is(err, repository.ErrNameTaken) {
			ve := models.ValidationErrors{}
			ve.Add("name", "The name has already been taken.")
			return nil, "", ve
		}
		if errors.Is(err, repository.ErrEmailTaken) {
			ve := models.ValidationErrors{}
			ve.Add("email", "The email has already been taken.")
			return nil, "", ve
		}
		log.Printf("[AuthService] Непредвиденная ошибка репозитория при регистрации '%s': %v", req.Name, err)
		return nil, "", errors.New("внутренняя ошибка сервера при создании пользователя")
	}

	created, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		log.Printf("[AuthService] Ошибка чтения созданного пользователя ID %d: %v", userID, err)
		return nil, "", errors.New("внутренняя ошибка сервера при создании пользователя")
	}

	token, err := s.issueCredential(ctx, userID)
	if err != nil {
		log.Printf("[AuthService] Ошибка выдачи токена для '%s': %v", req.Name, err)
		return nil, "", errors.New("внутренняя ошибка сервера при генерации токена")
	}

	log.Printf("[AuthService] Пользователь '%s' успешно зарегистрирован (ID %d)", req.Name, userID)
	return created, token, nil
}

// Login аутентифицирует пользователя и выдает новый токен.
// Для несуществующего имени и неверного пароля возвращается одна и та же
// ошибка ErrInvalidCredentials, без различимой формы ответа.
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	user, err := s.userRepo.GetUserByName(ctx, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Сравнение с заглушечным хешем выравнивает время ответа
			// с веткой "пользователь есть, пароль неверный".
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			log.Printf("[AuthService] Попытка входа несуществующего пользователя: %s", req.Name)
			return nil, "", ErrInvalidCredentials
		}
		log.Printf("[AuthService] Ошибка репозитория при поиске '%s': %v", req.Name, err)
		return nil, "", errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Printf("[AuthService] Неверный пароль для пользователя: %s", req.Name)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueCredential(ctx, user.ID)
	if err != nil {
		log.Printf("[AuthService] Ошибка выдачи токена для '%s': %v", req.Name, err)
		return nil, "", errors.New("внутренняя ошибка сервера при генерации токена")
	}

	log.Printf("[AuthService] Пользователь '%s' успешно аутентифицирован", req.Name)
	return user, token, nil
}

// Logout отзывает токен на сервере: строка удаляется из credentials,
// и любое последующее использование токена завершается 401.
func (s *authService) Logout(ctx context.Context, tokenID string) error {
	err := s.credRepo.DeleteCredential(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			log.Printf("[AuthService] Попытка выхода с уже отозванным токеном '%s'", tokenID)
			return ErrUnauthenticated
		}
		log.Printf("[AuthService] Ошибка репозитория при отзыве токена '%s': %v", tokenID, err)
		return errors.New("внутренняя ошибка сервера при отзыве токена")
	}

	log.Printf("[AuthService] Токен '%s' отозван", tokenID)
	return nil
}

// CurrentUser разрешает живой токен в его владельца.
func (s *authService) CurrentUser(ctx context.Context, tokenID string) (*models.User, error) {
	cred, err := s.liveCredential(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, cred.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Пользователь удален, а токен каскадом еще не зачищен
			return nil, ErrUnauthenticated
		}
		log.Printf("[AuthService] Ошибка репозитория при поиске владельца токена '%s': %v", tokenID, err)
		return nil, errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	return user, nil
}

// VerifyCredential проверяет, что токен жив (существует и не истек).
func (s *authService) VerifyCredential(ctx context.Context, tokenID string) error {
	_, err := s.liveCredential(ctx, tokenID)
	return err
}

// liveCredential возвращает запись о токене, если она существует и не истекла.
// Истекшая запись удаляется лениво, прямо при обнаружении: фонового
// чистильщика в сервисе нет.
func (s *authService) liveCredential(ctx context.Context, tokenID string) (*models.Credential, error) {
	cred, err := s.credRepo.GetCredentialByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, ErrUnauthenticated
		}
		log.Printf("[AuthService] Ошибка репозитория при проверке токена '%s': %v", tokenID, err)
		return nil, errors.New("внутренняя ошибка сервера при проверке токена")
	}

	if time.Now().After(cred.ExpiresAt) {
		log.Printf("[AuthService] Токен '%s' истек, удаляем запись", tokenID)
		if delErr := s.credRepo.DeleteCredential(ctx, tokenID); delErr != nil &&
			!errors.Is(delErr, repository.ErrCredentialNotFound) {
			log.Printf("[AuthService] Ошибка удаления истекшего токена '%s': %v", tokenID, delErr)
		}
		return nil, ErrUnauthenticated
	}

	return cred, nil
}

// issueCredential создает запись о токене в БД и подписывает JWT с тем же jti.
func (s *authService) issueCredential(ctx context.Context, userID int64) (string, error) {
	now := time.Now()
	cred := &models.Credential{
		ID:        uuid.NewString(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(tokenTTL),
	}

	if err := s.credRepo.CreateCredential(ctx, cred); err != nil {
		return "", fmt.Errorf("ошибка сохранения токена: %w", err)
	}

	claims := jwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        cred.ID,
			ExpiresAt: jwt.NewNumericDate(cred.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}

	return signedToken, nil
}

// Кастомные ошибки сервиса.
var (
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrUnauthenticated    = errors.New("требуется аутентификация")
)
