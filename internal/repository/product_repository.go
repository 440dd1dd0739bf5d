package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/yusuke24eugene/laravel12-rest-api/internal/models"
)

// Белый список колонок сортировки: значение из фильтра никогда не
// попадает в SQL напрямую.
var sortColumns = map[string]string{
	"id":    "id",
	"name":  "name",
	"price": "price",
}

// ProductRepository определяет методы для работы с товарами в хранилище.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) (int64, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	CountProducts(ctx context.Context, filter models.ProductFilter) (int64, error)
	SetImageKey(ctx context.Context, id int64, imageKey string) error
}

// postgresProductRepository реализует ProductRepository для PostgreSQL.
type postgresProductRepository struct {
	db *sqlx.DB
}

// NewPostgresProductRepository создает новый экземпляр репозитория товаров.
func NewPostgresProductRepository(db *sqlx.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

// buildWhereClause переводит фильтр в WHERE-часть запроса и аргументы.
// Каждое необязательное условие добавляется только если соответствующее
// поле фильтра задано. Поисковая группа (name OR description) берется в
// скобки и целиком объединяется по AND с границами цены.
func buildWhereClause(filter models.ProductFilter) (string, []interface{}) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// buildOrderClause собирает ORDER BY из проверенных по белому списку поля
// и направления. Тай-брейк по id делает пагинацию детерминированной:
// при равных значениях поля сортировки порядок строк стабилен между страницами.
func buildOrderClause(filter models.ProductFilter) string {
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "id"
	}
	direction := "ASC"
	if strings.EqualFold(filter.SortDir, "desc") {
		direction = "DESC"
	}
	if column == "id" {
		return fmt.Sprintf(" ORDER BY id %s", direction)
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", column, direction)
}

// CreateProduct создает товар и возвращает присвоенный ID.
func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *models.Product) (int64, error) {
	query := `INSERT INTO products (name, description, price, barcode) VALUES ($1, $2, $3, $4) RETURNING id`
	var productID int64

	err := r.db.QueryRowxContext(ctx, query,
		product.Name, product.Description, product.Price, product.Barcode,
	).Scan(&productID)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Printf("[ProductRepo] Ошибка создания товара: штрихкод уже занят")
			return 0, ErrBarcodeTaken
		}
		log.Printf("[ProductRepo] Непредвиденная ошибка при создании товара '%s': %v", product.Name, err)
		return 0, fmt.Errorf("ошибка выполнения запроса на создание товара: %w", err)
	}

	log.Printf("[ProductRepo] Товар '%s' успешно создан с ID %d", product.Name, productID)
	return productID, nil
}

// GetProductByID находит товар по идентификатору.
func (r *postgresProductRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT id, name, description, price, barcode, image_key, created_at, updated_at
	          FROM products WHERE id=$1`
	var product models.Product

	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[ProductRepo] Товар с ID %d не найден", id)
			return nil, ErrProductNotFound
		}
		log.Printf("[ProductRepo] Ошибка при поиске товара ID %d: %v", id, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение товара: %w", err)
	}

	return &product, nil
}

// UpdateProduct перезаписывает изменяемые поля товара.
// Обновление собственного штрихкода той же строкой ограничение не нарушает.
func (r *postgresProductRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `UPDATE products SET name=$1, description=$2, price=$3, barcode=$4, updated_at=now() WHERE id=$5`

	res, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Price, product.Barcode, product.ID,
	)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Printf("[ProductRepo] Ошибка обновления товара ID %d: штрихкод уже занят", product.ID)
			return ErrBarcodeTaken
		}
		log.Printf("[ProductRepo] Непредвиденная ошибка при обновлении товара ID %d: %v", product.ID, err)
		return fmt.Errorf("ошибка выполнения запроса на обновление товара: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества обновленных строк: %w", err)
	}
	if rows == 0 {
		log.Printf("[ProductRepo] Товар с ID %d не найден при обновлении", product.ID)
		return ErrProductNotFound
	}

	log.Printf("[ProductRepo] Товар ID %d успешно обновлен", product.ID)
	return nil
}

// DeleteProduct удаляет товар. Повторное удаление возвращает ErrProductNotFound,
// чтобы вызывающая сторона могла обнаружить двойную отправку.
func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id=$1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Printf("[ProductRepo] Ошибка при удалении товара ID %d: %v", id, err)
		return fmt.Errorf("ошибка выполнения запроса на удаление товара: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества удаленных строк: %w", err)
	}
	if rows == 0 {
		log.Printf("[ProductRepo] Товар с ID %d не найден при удалении", id)
		return ErrProductNotFound
	}

	log.Printf("[ProductRepo] Товар ID %d удален", id)
	return nil
}

// ListProducts возвращает страницу товаров по фильтру.
func (r *postgresProductRepository) ListProducts(
	ctx context.Context,
	filter models.ProductFilter,
) ([]models.Product, error) {
	where, args := buildWhereClause(filter)

	args = append(args, filter.PerPage)
	limitArg := len(args)
	args = append(args, filter.Offset())
	offsetArg := len(args)

	query := `SELECT id, name, description, price, barcode, image_key, created_at, updated_at FROM products` +
		where + buildOrderClause(filter) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", limitArg, offsetArg)

	products := make([]models.Product, 0, filter.PerPage)
	err := r.db.SelectContext(ctx, &products, query, args...)
	if err != nil {
		log.Printf("[ProductRepo] Ошибка при получении списка товаров: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка товаров: %w", err)
	}

	log.Printf("[ProductRepo] Получено %d товаров (page=%d, per_page=%d)", len(products), filter.Page, filter.PerPage)
	return products, nil
}

// CountProducts возвращает общее количество товаров, подходящих под фильтр.
// WHERE-часть строится тем же buildWhereClause, что и в ListProducts,
// поэтому total всегда согласован со страницами.
func (r *postgresProductRepository) CountProducts(
	ctx context.Context,
	filter models.ProductFilter,
) (int64, error) {
	where, args := buildWhereClause(filter)
	query := `SELECT COUNT(*) FROM products` + where

	var total int64
	err := r.db.GetContext(ctx, &total, query, args...)
	if err != nil {
		log.Printf("[ProductRepo] Ошибка при подсчете товаров: %v", err)
		return 0, fmt.Errorf("ошибка выполнения запроса на подсчет товаров: %w", err)
	}

	return total, nil
}

// SetImageKey записывает ключ картинки товара в объектном хранилище.
func (r *postgresProductRepository) SetImageKey(ctx context.Context, id int64, imageKey string) error {
	query := `UPDATE products SET image_key=$1, updated_at=now() WHERE id=$2`

	res, err := r.db.ExecContext(ctx, query, imageKey, id)
	if err != nil {
		log.Printf("[ProductRepo] Ошибка при сохранении ключа картинки для товара ID %d: %v", id, err)
		return fmt.Errorf("ошибка выполнения запроса на сохранение ключа картинки: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества обновленных строк: %w", err)
	}
	if rows == 0 {
		return ErrProductNotFound
	}

	log.Printf("[ProductRepo] Ключ картинки '%s' сохранен для товара ID %d", imageKey, id)
	return nil
}

// Кастомные ошибки репозитория товаров.
var (
	ErrProductNotFound = errors.New("товар не найден")
	ErrBarcodeTaken    = errors.New("штрихкод уже занят")
)
