package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/yusuke24eugene/laravel12-rest-api/internal/models"
)

// CredentialRepository определяет методы для работы с выданными токенами.
// Строка в таблице credentials — серверная половина bearer-токена:
// logout удаляет строку, и токен перестает действовать независимо от
// срока жизни самого JWT.
type CredentialRepository interface {
	CreateCredential(ctx context.Context, cred *models.Credential) error
	GetCredentialByID(ctx context.Context, id string) (*models.Credential, error)
	DeleteCredential(ctx context.Context, id string) error
}

// postgresCredentialRepository реализует CredentialRepository для PostgreSQL.
type postgresCredentialRepository struct {
	db *sqlx.DB
}

// NewPostgresCredentialRepository создает новый экземпляр репозитория токенов.
func NewPostgresCredentialRepository(db *sqlx.DB) CredentialRepository {
	return &postgresCredentialRepository{db: db}
}

// CreateCredential сохраняет запись о выданном токене.
func (r *postgresCredentialRepository) CreateCredential(ctx context.Context, cred *models.Credential) error {
	query := `INSERT INTO credentials (id, user_id, issued_at, expires_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, cred.ID, cred.UserID, cred.IssuedAt, cred.ExpiresAt)
	if err != nil {
		log.Printf("[CredRepo] Ошибка при сохранении токена '%s' пользователя %d: %v", cred.ID, cred.UserID, err)
		return fmt.Errorf("ошибка выполнения запроса на создание токена: %w", err)
	}

	log.Printf("[CredRepo] Токен '%s' сохранен для пользователя %d", cred.ID, cred.UserID)
	return nil
}

// GetCredentialByID находит запись о токене по его идентификатору (jti).
func (r *postgresCredentialRepository) GetCredentialByID(ctx context.Context, id string) (*models.Credential, error) {
	query := `SELECT id, user_id, issued_at, expires_at FROM credentials WHERE id=$1`
	var cred models.Credential

	err := r.db.GetContext(ctx, &cred, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[CredRepo] Токен '%s' не найден (отозван или не выдавался)", id)
			return nil, ErrCredentialNotFound
		}
		log.Printf("[CredRepo] Ошибка при поиске токена '%s': %v", id, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение токена: %w", err)
	}

	return &cred, nil
}

// DeleteCredential удаляет запись о токене (отзыв).
// Повторное удаление возвращает ErrCredentialNotFound.
func (r *postgresCredentialRepository) DeleteCredential(ctx context.Context, id string) error {
	query := `DELETE FROM credentials WHERE id=$1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Printf("[CredRepo] Ошибка при удалении токена '%s': %v", id, err)
		return fmt.Errorf("ошибка выполнения запроса на удаление токена: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества удаленных строк: %w", err)
	}
	if rows == 0 {
		log.Printf("[CredRepo] Токен '%s' не найден при удалении", id)
		return ErrCredentialNotFound
	}

	log.Printf("[CredRepo] Токен '%s' отозван", id)
	return nil
}

// Кастомные ошибки репозитория токенов.
var (
	ErrCredentialNotFound = errors.New("токен не найден")
)
