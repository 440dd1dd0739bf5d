package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yusuke24eugene/laravel12-rest-api/internal/models"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/services"
)

// ProductService определяет интерфейс для сервиса товаров.
type ProductService interface {
	List(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, input models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, input models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, id int64, reader io.Reader, size int64, contentType string) error
	DownloadImage(ctx context.Context, id int64) (io.ReadCloser, *models.Product, error)
}

// ProductHandler обрабатывает HTTP-запросы, связанные с товарами.
type ProductHandler struct {
	service ProductService
}

// NewProductHandler создает новый экземпляр ProductHandler.
func NewProductHandler(s ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// parseProductFilter разбирает query-параметры списка товаров.
// Отсутствующий параметр получает значение по умолчанию, а вот
// присланный, но нечисловой — ошибку валидации: молчаливый откат
// к умолчанию маскировал бы баг клиента.
func parseProductFilter(r *http.Request) (models.ProductFilter, models.ValidationErrors) {
	filter := models.NewProductFilter()
	ve := models.ValidationErrors{}
	q := r.URL.Query()

	filter.Search = q.Get("search")

	if raw := q.Get("min_price"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			ve.Add("min_price", "The min price field must be a number.")
		} else {
			filter.MinPrice = &value
		}
	}
	if raw := q.Get("max_price"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			ve.Add("max_price", "The max price field must be a number.")
		} else {
			filter.MaxPrice = &value
		}
	}
	if raw := q.Get("sort_by"); raw != "" {
		filter.SortBy = raw
	}
	if raw := q.Get("sort_dir"); raw != "" {
		filter.SortDir = raw
	}
	if raw := q.Get("per_page"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			ve.Add("per_page", "The per page field must be an integer.")
		} else {
			filter.PerPage = value
		}
	}
	if raw := q.Get("page"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			ve.Add("page", "The page field must be an integer.")
		} else {
			filter.Page = value
		}
	}

	return filter, ve
}

// productID извлекает идентификатор товара из URL.
func productID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// List обрабатывает GET запрос списка товаров с фильтрацией и пагинацией.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ve := parseProductFilter(r)
	if !ve.Empty() {
		log.Printf("[ProductHandler:List] Ошибки разбора параметров: %v", ve)
		writeValidationErrors(w, ve)
		return
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		if errors.As(err, &ve) {
			writeValidationErrors(w, ve)
			return
		}
		log.Printf("[ProductHandler:List] Внутренняя ошибка: %v", err)
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Get обрабатывает GET запрос одного товара.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("[ProductHandler:Get] Внутренняя ошибка для товара ID %d: %v", id, err)
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create обрабатывает POST запрос на создание товара.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("[ProductHandler:Create] Ошибка декодирования запроса: %v", err)
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		var ve models.ValidationErrors
		if errors.As(err, &ve) {
			writeValidationErrors(w, ve)
			return
		}
		log.Printf("[ProductHandler:Create] Внутренняя ошибка: %v", err)
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusCreated, product)
	log.Printf("[ProductHandler:Create] Товар ID %d создан", product.ID)
}

// Update обрабатывает PUT запрос на частичное обновление товара.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}

	var input models.ProductInput
	if err = json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("[ProductHandler:Update] Ошибка декодирования запроса: %v", err)
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		var ve models.ValidationErrors
		switch {
		case errors.As(err, &ve):
			writeValidationErrors(w, ve)
		case errors.Is(err, services.ErrProductNotFound):
			writeMessage(w, http.StatusNotFound, "Product not found")
		default:
			log.Printf("[ProductHandler:Update] Внутренняя ошибка для товара ID %d: %v", id, err)
			writeServerError(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, product)
	log.Printf("[ProductHandler:Update] Товар ID %d обновлен", id)
}

// Delete обрабатывает DELETE запрос. Повторное удаление возвращает 404,
// чтобы клиент мог обнаружить двойную отправку.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}

	if err = h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("[ProductHandler:Delete] Внутренняя ошибка для товара ID %d: %v", id, err)
		writeServerError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	log.Printf("[ProductHandler:Delete] Товар ID %d удален", id)
}

// UploadImage обрабатывает POST запрос на загрузку картинки товара.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}

	// Получаем размер файла из заголовка Content-Length
	size, err := strconv.ParseInt(r.Header.Get("Content-Length"), 10, 64)
	if err != nil || size <= 0 {
		log.Printf("[ProductHandler:UploadImage] Неверный или отсутствующий заголовок Content-Length")
		writeMessage(w, http.StatusBadRequest, "Content-Length header is required")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		// По умолчанию считаем бинарным потоком
		contentType = "application/octet-stream"
	}

	if err = h.service.UploadImage(r.Context(), id, r.Body, size, contentType); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("[ProductHandler:UploadImage] Внутренняя ошибка для товара ID %d: %v", id, err)
		writeServerError(w)
		return
	}

	writeMessage(w, http.StatusOK, "Image uploaded")
	log.Printf("[ProductHandler:UploadImage] Картинка товара ID %d загружена", id)
}

// DownloadImage обрабатывает GET запрос на скачивание картинки товара.
func (h *ProductHandler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}

	reader, product, err := h.service.DownloadImage(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			writeMessage(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, services.ErrImageNotFound):
			writeMessage(w, http.StatusNotFound, "Product image not found")
		default:
			log.Printf("[ProductHandler:DownloadImage] Внутренняя ошибка для товара ID %d: %v", id, err)
			writeServerError(w)
		}
		return
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			log.Printf("[ProductHandler:DownloadImage] Ошибка закрытия reader: %v", closeErr)
		}
	}()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err = io.Copy(w, reader); err != nil {
		log.Printf("[ProductHandler:DownloadImage] Ошибка отправки картинки товара ID %d: %v", product.ID, err)
		return
	}

	log.Printf("[ProductHandler:DownloadImage] Картинка товара ID %d отправлена", product.ID)
}
