package services

import (
	"context"
	"errors"
	"io"
	"log"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yusuke24eugene/laravel12-rest-api/internal/models"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/repository"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/storage"
)

// ProductService определяет интерфейс для сервиса работы с товарами.
type ProductService interface {
	List(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, input models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, input models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, id int64, reader io.Reader, size int64, contentType string) error
	DownloadImage(ctx context.Context, id int64) (io.ReadCloser, *models.Product, error)
}

// Правила валидации товара.
const (
	maxProductNameLength = 255 // В code points
	maxBarcodeLength     = 13  // EAN-13
	maxPerPage           = 100
)

// Допустимые значения сортировки. Неизвестное значение — ошибка валидации,
// а не молчаливый откат к умолчанию: иначе опечатка клиента маскируется.
var (
	allowedSortFields = map[string]struct{}{"id": {}, "name": {}, "price": {}}
	allowedSortDirs   = map[string]struct{}{"asc": {}, "desc": {}}
)

// Убедимся, что productService удовлетворяет интерфейсу ProductService.
var _ ProductService = (*productService)(nil)

type productService struct {
	productRepo repository.ProductRepository
	fileStorage storage.FileStorage
}

// NewProductService создает новый экземпляр сервиса товаров.
func NewProductService(productRepo repository.ProductRepository, fileStorage storage.FileStorage) ProductService {
	return &productService{productRepo: productRepo, fileStorage: fileStorage}
}

// validateFilter проверяет параметры списка. Значения по умолчанию сюда
// не попадают — их проставляет конструктор фильтра для отсутствующих
// параметров; проверяется только то, что клиент прислал явно.
func validateFilter(filter models.ProductFilter) models.ValidationErrors {
	ve := models.ValidationErrors{}

	if _, ok := allowedSortFields[filter.SortBy]; !ok {
		ve.Add("sort_by", "The selected sort by is invalid.")
	}
	if _, ok := allowedSortDirs[filter.SortDir]; !ok {
		ve.Add("sort_dir", "The selected sort dir is invalid.")
	}
	if filter.PerPage < 1 || filter.PerPage > maxPerPage {
		ve.Add("per_page", "The per page field must be between 1 and 100.")
	}
	if filter.Page < 1 {
		ve.Add("page", "The page field must be at least 1.")
	}
	if filter.MinPrice != nil && *filter.MinPrice < 0 {
		ve.Add("min_price", "The min price field must be at least 0.")
	}
	if filter.MaxPrice != nil && *filter.MaxPrice < 0 {
		ve.Add("max_price", "The max price field must be at least 0.")
	}

	return ve
}

// validateProductInput собирает ошибки валидации полей товара.
// При partial=false (создание) отсутствующие поля — ошибки;
// при partial=true (обновление) проверяются только переданные поля.
func validateProductInput(input models.ProductInput, partial bool) models.ValidationErrors {
	ve := models.ValidationErrors{}

	switch {
	case input.Name == nil:
		if !partial {
			ve.Add("name", "The name field is required.")
		}
	case *input.Name == "":
		ve.Add("name", "The name field is required.")
	case utf8.RuneCountInString(*input.Name) > maxProductNameLength:
		ve.Add("name", "The name field must not be greater than 255 characters.")
	}

	switch {
	case input.Description == nil:
		if !partial {
			ve.Add("description", "The description field is required.")
		}
	case *input.Description == "":
		ve.Add("description", "The description field is required.")
	}

	switch {
	case input.Price == nil:
		if !partial {
			ve.Add("price", "The price field is required.")
		}
	case *input.Price < 0:
		ve.Add("price", "The price field must be at least 0.")
	}

	if input.Barcode != nil && utf8.RuneCountInString(*input.Barcode) > maxBarcodeLength {
		ve.Add("barcode", "The barcode field must not be greater than 13 characters.")
	}

	return ve
}

// barcodeTakenErrors возвращает форму ошибки для занятого штрихкода.
// Гонка двух операций на одном штрихкоде разрешается ограничением БД,
// и проигравшая сторона получает тот же ответ, что и при обычной проверке.
func barcodeTakenErrors() models.ValidationErrors {
	ve := models.ValidationErrors{}
	ve.Add("barcode", "The barcode has already been taken.")
	return ve
}

// List возвращает страницу товаров по фильтру.
func (s *productService) List(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error) {
	if ve := validateFilter(filter); !ve.Empty() {
		log.Printf("[ProductService] Ошибки валидации фильтра: %v", ve)
		return nil, ve
	}

	total, err := s.productRepo.CountProducts(ctx, filter)
	if err != nil {
		log.Printf("[ProductService] Ошибка подсчета товаров: %v", err)
		return nil, errors.New("внутренняя ошибка сервера при получении списка товаров")
	}

	products, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		log.Printf("[ProductService] Ошибка получения списка товаров: %v", err)
		return nil, errors.New("внутренняя ошибка сервера при получении списка товаров")
	}

	lastPage := int((total + int64(filter.PerPage) - 1) / int64(filter.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	return &models.ProductPage{
		Data:        products,
		Total:       total,
		PerPage:     filter.PerPage,
		CurrentPage: filter.Page,
		LastPage:    lastPage,
	}, nil
}

// GetByID возвращает товар по идентификатору.
func (s *productService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Printf("[ProductService] Ошибка получения товара ID %d: %v", id, err)
		return nil, errors.New("внутренняя ошибка сервера при получении товара")
	}
	return product, nil
}

// Create валидирует вход и создает товар.
func (s *productService) Create(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if ve := validateProductInput(input, false); !ve.Empty() {
		log.Printf("[ProductService] Ошибки валидации при создании товара: %v", ve)
		return nil, ve
	}

	product := &models.Product{
		Name:        *input.Name,
		Description: *input.Description,
		Price:       *input.Price,
		Barcode:     input.Barcode,
	}

	productID, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		if errors.Is(err, repository.ErrBarcodeTaken) {
			return nil, barcodeTakenErrors()
		}
		log.Printf("[ProductService] Непредвиденная ошибка при создании товара: %v", err)
		return nil, errors.New("внутренняя ошибка сервера при создании товара")
	}

	created, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		log.Printf("[ProductService] Ошибка чтения созданного товара ID %d: %v", productID, err)
		return nil, errors.New("внутренняя ошибка сервера при создании товара")
	}

	log.Printf("[ProductService] Товар '%s' создан с ID %d", created.Name, created.ID)
	return created, nil
}

// Update применяет частичное обновление: переданные поля валидируются и
// перезаписывают текущие, отсутствующие не трогаются. Сохранение прежнего
// штрихкода конфликтом не считается — строка обновляет сама себя.
func (s *productService) Update(
	ctx context.Context,
	id int64,
	input models.ProductInput,
) (*models.Product, error) {
	if ve := validateProductInput(input, true); !ve.Empty() {
		log.Printf("[ProductService] Ошибки валидации при обновлении товара ID %d: %v", id, ve)
		return nil, ve
	}

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Printf("[ProductService] Ошибка получения товара ID %d для обновления: %v", id, err)
		return nil, errors.New("внутренняя ошибка сервера при обновлении товара")
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Barcode != nil {
		product.Barcode = input.Barcode
	}

	if err = s.productRepo.UpdateProduct(ctx, product); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			// Товар удалили между чтением и обновлением
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrBarcodeTaken):
			return nil, barcodeTakenErrors()
		}
		log.Printf("[ProductService] Непредвиденная ошибка при обновлении товара ID %d: %v", id, err)
		return nil, errors.New("внутренняя ошибка сервера при обновлении товара")
	}

	updated, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		log.Printf("[ProductService] Ошибка чтения обновленного товара ID %d: %v", id, err)
		return nil, errors.New("внутренняя ошибка сервера при обновлении товара")
	}

	log.Printf("[ProductService] Товар ID %d обновлен", id)
	return updated, nil
}

// Delete удаляет товар. Повторное удаление возвращает ErrProductNotFound.
func (s *productService) Delete(ctx context.Context, id int64) error {
	err := s.productRepo.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		log.Printf("[ProductService] Непредвиденная ошибка при удалении товара ID %d: %v", id, err)
		return errors.New("внутренняя ошибка сервера при удалении товара")
	}

	log.Printf("[ProductService] Товар ID %d удален", id)
	return nil
}

// UploadImage загружает картинку товара в объектное хранилище и
// привязывает ключ к товару. Старая картинка удаляется по возможности.
func (s *productService) UploadImage(
	ctx context.Context,
	id int64,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		log.Printf("[ProductService] Ошибка получения товара ID %d для загрузки картинки: %v", id, err)
		return errors.New("внутренняя ошибка сервера при загрузке картинки")
	}

	objectKey := "products/" + uuid.NewString()
	if err = s.fileStorage.UploadFile(ctx, objectKey, reader, size, contentType); err != nil {
		log.Printf("[ProductService] Ошибка загрузки картинки товара ID %d: %v", id, err)
		return errors.New("внутренняя ошибка сервера при загрузке картинки")
	}

	if err = s.productRepo.SetImageKey(ctx, id, objectKey); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		log.Printf("[ProductService] Ошибка сохранения ключа картинки товара ID %d: %v", id, err)
		return errors.New("внутренняя ошибка сервера при загрузке картинки")
	}

	// Старый объект больше не на что не ссылается
	if product.ImageKey != nil && *product.ImageKey != objectKey {
		if delErr := s.fileStorage.DeleteFile(ctx, *product.ImageKey); delErr != nil {
			log.Printf("[ProductService] Не удалось удалить старую картинку '%s': %v", *product.ImageKey, delErr)
		}
	}

	log.Printf("[ProductService] Картинка '%s' привязана к товару ID %d", objectKey, id)
	return nil
}

// DownloadImage отдает поток картинки товара и сам товар (для заголовков ответа).
func (s *productService) DownloadImage(
	ctx context.Context,
	id int64,
) (io.ReadCloser, *models.Product, error) {
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, nil, ErrProductNotFound
		}
		log.Printf("[ProductService] Ошибка получения товара ID %d для скачивания картинки: %v", id, err)
		return nil, nil, errors.New("внутренняя ошибка сервера при скачивании картинки")
	}

	if product.ImageKey == nil {
		return nil, nil, ErrImageNotFound
	}

	reader, err := s.fileStorage.DownloadFile(ctx, *product.ImageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			log.Printf("[ProductService] Картинка '%s' товара ID %d отсутствует в хранилище", *product.ImageKey, id)
			return nil, nil, ErrImageNotFound
		}
		log.Printf("[ProductService] Ошибка скачивания картинки товара ID %d: %v", id, err)
		return nil, nil, errors.New("внутренняя ошибка сервера при скачивании картинки")
	}

	return reader, product, nil
}

// Кастомные ошибки сервиса товаров.
var (
	ErrProductNotFound = errors.New("товар не найден")
	ErrImageNotFound   = errors.New("картинка товара не найдена")
)
