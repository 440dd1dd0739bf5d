package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Тип для ключа контекста.
type contextKey string

// Ключи для хранения данных аутентификации в контексте запроса.
const (
	UserIDKey  contextKey = "userID"
	TokenIDKey contextKey = "tokenID"
)

// Структура для пользовательских данных в JWT (claims) - должна совпадать с той, что в services.
type jwtClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// CredentialVerifier проверяет, что токен жив на сервере.
// Подпись JWT — необходимое, но не достаточное условие: после logout
// запись удалена, и токен с валидной подписью всё равно отклоняется.
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context, tokenID string) error
}

// Authenticator проверяет bearer-токены входящих запросов.
type Authenticator struct {
	jwtSecret []byte
	verifier  CredentialVerifier
}

// NewAuthenticator создает новый экземпляр Authenticator.
func NewAuthenticator(jwtSecret string, verifier CredentialVerifier) *Authenticator {
	return &Authenticator{jwtSecret: []byte(jwtSecret), verifier: verifier}
}

// Middleware возвращает chi-совместимый middleware аутентификации.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Получаем заголовок Authorization
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Println("[AuthMiddleware] Заголовок Authorization отсутствует")
			writeUnauthenticated(w)
			return
		}

		// Проверяем формат "Bearer token"
		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" || headerParts[1] == "" {
			log.Printf("[AuthMiddleware] Неверный формат заголовка Authorization")
			writeUnauthenticated(w)
			return
		}

		tokenString := headerParts[1]

		// Парсим и валидируем токен
		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			// Убеждаемся, что метод подписи - HS256
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
			}
			return a.jwtSecret, nil
		})
		if err != nil {
			log.Printf("[AuthMiddleware] Ошибка парсинга/валидации токена: %v", err)
			writeUnauthenticated(w)
			return
		}
		if !token.Valid || claims.ID == "" {
			log.Println("[AuthMiddleware] Предоставлен невалидный токен")
			writeUnauthenticated(w)
			return
		}

		// Проверяем, что токен не отозван на сервере (logout удаляет запись)
		if err = a.verifier.VerifyCredential(r.Context(), claims.ID); err != nil {
			log.Printf("[AuthMiddleware] Токен '%s' не прошел серверную проверку: %v", claims.ID, err)
			writeUnauthenticated(w)
			return
		}

		// Добавляем данные аутентификации в контекст запроса
		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, TokenIDKey, claims.ID)

		log.Printf("[AuthMiddleware] Пользователь %d успешно аутентифицирован", claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext извлекает ID пользователя из контекста запроса.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetTokenIDFromContext извлекает ID токена (jti) из контекста запроса.
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

// writeUnauthenticated отправляет единый JSON-ответ 401.
// Форма одна для всех причин отказа, чтобы не подсказывать,
// чего именно не хватило токену.
func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": "Unauthenticated."}); err != nil {
		log.Printf("[AuthMiddleware] Ошибка кодирования ответа 401: %v", err)
	}
}
