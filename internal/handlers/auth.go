package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/yusuke24eugene/laravel12-rest-api/internal/middleware"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/models"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/services"
)

// AuthService определяет интерфейс для сервиса аутентификации.
// Это позволит нам легко подменять реализацию (например, для тестов).
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error)
	Logout(ctx context.Context, tokenID string) error
	CurrentUser(ctx context.Context, tokenID string) (*models.User, error)
}

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией.
type AuthHandler struct {
	service AuthService // Зависимость от интерфейса, а не конкретной реализации
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[AuthHandler] Ошибка декодирования запроса регистрации: %v", err)
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	log.Printf("[AuthHandler] Попытка регистрации пользователя: %s", req.Name)

	user, token, err := h.service.Register(r.Context(), req)
	if err != nil {
		var ve models.ValidationErrors
		if errors.As(err, &ve) {
			writeValidationErrors(w, ve)
			return
		}
		log.Printf("[AuthHandler] Внутренняя ошибка при регистрации '%s': %v", req.Name, err)
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusCreated, models.AuthResponse{
		Message: "User registered successfully.",
		User:    user,
		Token:   token,
	})
	log.Printf("[AuthHandler] Успешная регистрация пользователя '%s'", req.Name)
}

// Login обрабатывает запрос на вход пользователя.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[AuthHandler] Ошибка декодирования запроса входа: %v", err)
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	log.Printf("[AuthHandler] Попытка входа пользователя: %s", req.Name)

	user, token, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// Единый ответ и для неизвестного имени, и для неверного пароля
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("[AuthHandler] Внутренняя ошибка при входе '%s': %v", req.Name, err)
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{
		Message: "Login successful.",
		User:    user,
		Token:   token,
	})
	log.Printf("[AuthHandler] Успешный вход пользователя '%s'", req.Name)
}

// Logout обрабатывает запрос на выход: отзывает предъявленный токен.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		log.Printf("[AuthHandler:Logout] Не удалось получить tokenID из контекста")
		writeServerError(w)
		return
	}

	if err := h.service.Logout(r.Context(), tokenID); err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		log.Printf("[AuthHandler:Logout] Внутренняя ошибка при отзыве токена '%s': %v", tokenID, err)
		writeServerError(w)
		return
	}

	writeMessage(w, http.StatusOK, "Logged out")
	log.Printf("[AuthHandler:Logout] Токен '%s' отозван", tokenID)
}

// CurrentUser возвращает владельца предъявленного токена.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		log.Printf("[AuthHandler:CurrentUser] Не удалось получить tokenID из контекста")
		writeServerError(w)
		return
	}

	user, err := h.service.CurrentUser(r.Context(), tokenID)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		log.Printf("[AuthHandler:CurrentUser] Внутренняя ошибка для токена '%s': %v", tokenID, err)
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
