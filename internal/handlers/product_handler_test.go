package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yusuke24eugene/laravel12-rest-api/internal/handlers"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/models"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/services"
)

// MockProductService - мок сервиса товаров для тестов хендлеров.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error) {
	args := m.Called(ctx, filter)
	page, _ := args.Get(0).(*models.ProductPage)
	return page, args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, input)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id int64, input models.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, id, input)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductService) UploadImage(
	ctx context.Context,
	id int64,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	args := m.Called(ctx, id, reader, size, contentType)
	return args.Error(0)
}

func (m *MockProductService) DownloadImage(ctx context.Context, id int64) (io.ReadCloser, *models.Product, error) {
	args := m.Called(ctx, id)
	reader, _ := args.Get(0).(io.ReadCloser)
	product, _ := args.Get(1).(*models.Product)
	return reader, product, args.Error(2)
}

// setupProductRouter собирает chi-роутер с маршрутами товаров,
// чтобы chi.URLParam работал как в боевом сервере.
func setupProductRouter(mockService *MockProductService) *chi.Mux {
	handler := handlers.NewProductHandler(mockService)
	r := chi.NewRouter()
	r.Get("/api/products", handler.List)
	r.Post("/api/products", handler.Create)
	r.Get("/api/products/{id}", handler.Get)
	r.Put("/api/products/{id}", handler.Update)
	r.Delete("/api/products/{id}", handler.Delete)
	r.Post("/api/products/{id}/image", handler.UploadImage)
	r.Get("/api/products/{id}/image", handler.DownloadImage)
	return r
}

func TestProductHandler_List(t *testing.T) {
	t.Run("Параметры по умолчанию", func(t *testing.T) {
		mockService := new(MockProductService)
		page := &models.ProductPage{
			Data:        []models.Product{{ID: 1, Name: "Молоко"}},
			Total:       1,
			PerPage:     15,
			CurrentPage: 1,
			LastPage:    1,
		}
		mockService.On("List", mock.Anything, models.NewProductFilter()).Return(page, nil)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got models.ProductPage
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, int64(1), got.Total)
		assert.Equal(t, 15, got.PerPage)
		mockService.AssertExpectations(t)
	})

	t.Run("Все параметры фильтра пробрасываются в сервис", func(t *testing.T) {
		mockService := new(MockProductService)
		minPrice, maxPrice := 10.0, 100.0
		expected := models.ProductFilter{
			Search:   "молоко",
			MinPrice: &minPrice,
			MaxPrice: &maxPrice,
			SortBy:   "price",
			SortDir:  "desc",
			PerPage:  20,
			Page:     2,
		}
		mockService.On("List", mock.Anything, expected).
			Return(&models.ProductPage{Data: []models.Product{}, PerPage: 20, CurrentPage: 2, LastPage: 1}, nil)
		router := setupProductRouter(mockService)

		url := "/api/products?search=молоко&min_price=10&max_price=100" +
			"&sort_by=price&sort_dir=desc&per_page=20&page=2"
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Нечисловой min_price отклоняется на разборе", func(t *testing.T) {
		mockService := new(MockProductService)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/products?min_price=abc", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decodeBody(t, rr)
		assert.Contains(t, body, "min_price")
		mockService.AssertExpectations(t)
	})

	t.Run("Нечисловой per_page отклоняется на разборе", func(t *testing.T) {
		mockService := new(MockProductService)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/products?per_page=many", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decodeBody(t, rr)
		assert.Contains(t, body, "per_page")
		mockService.AssertExpectations(t)
	})

	t.Run("Ошибки валидации сервиса возвращаются как 422", func(t *testing.T) {
		mockService := new(MockProductService)
		ve := models.ValidationErrors{}
		ve.Add("sort_by", "The selected sort by is invalid.")
		mockService.On("List", mock.Anything, mock.Anything).Return(nil, ve)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/products?sort_by=barcode", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decodeBody(t, rr)
		assert.Contains(t, body, "sort_by")
		mockService.AssertExpectations(t)
	})
}

func TestProductHandler_Get(t *testing.T) {
	t.Run("Товар найден", func(t *testing.T) {
		mockService := new(MockProductService)
		product := &models.Product{ID: 5, Name: "Молоко", Price: 79.90}
		mockService.On("GetByID", mock.Anything, int64(5)).Return(product, nil)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/products/5", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got models.Product
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, int64(5), got.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("Товар не найден", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("GetByID", mock.Anything, int64(404)).
			Return(nil, services.ErrProductNotFound)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/products/404", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Product not found", decodeBody(t, rr)["message"])
		mockService.AssertExpectations(t)
	})

	t.Run("Нечисловой идентификатор", func(t *testing.T) {
		mockService := new(MockProductService)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/products/abc", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Product not found", decodeBody(t, rr)["message"])
		mockService.AssertExpectations(t)
	})
}

func TestProductHandler_Create(t *testing.T) {
	t.Run("Успешное создание", func(t *testing.T) {
		mockService := new(MockProductService)
		created := &models.Product{ID: 10, Name: "Молоко", Description: "1 литр", Price: 79.90}
		mockService.On("Create", mock.Anything, mock.MatchedBy(func(input models.ProductInput) bool {
			return input.Name != nil && *input.Name == "Молоко"
		})).Return(created, nil)
		router := setupProductRouter(mockService)

		body := `{"name":"Молоко","description":"1 литр","price":79.90}`
		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got models.Product
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, int64(10), got.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("Некорректный JSON", func(t *testing.T) {
		mockService := new(MockProductService)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name"`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request body", decodeBody(t, rr)["message"])
		mockService.AssertExpectations(t)
	})

	t.Run("Ошибки валидации", func(t *testing.T) {
		mockService := new(MockProductService)
		ve := models.ValidationErrors{}
		ve.Add("name", "The name field is required.")
		ve.Add("price", "The price field is required.")
		mockService.On("Create", mock.Anything, mock.Anything).Return(nil, ve)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decodeBody(t, rr)
		assert.Contains(t, body, "name")
		assert.Contains(t, body, "price")
		mockService.AssertExpectations(t)
	})
}

func TestProductHandler_Update(t *testing.T) {
	t.Run("Успешное обновление", func(t *testing.T) {
		mockService := new(MockProductService)
		updated := &models.Product{ID: 5, Name: "Молоко", Price: 85.0}
		mockService.On("Update", mock.Anything, int64(5), mock.MatchedBy(func(input models.ProductInput) bool {
			return input.Price != nil && *input.Price == 85.0 && input.Name == nil
		})).Return(updated, nil)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodPut, "/api/products/5", strings.NewReader(`{"price":85.0}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got models.Product
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, 85.0, got.Price)
		mockService.AssertExpectations(t)
	})

	t.Run("Товар не найден", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("Update", mock.Anything, int64(404), mock.Anything).
			Return(nil, services.ErrProductNotFound)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodPut, "/api/products/404", strings.NewReader(`{"price":85.0}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Занятый штрихкод — 422", func(t *testing.T) {
		mockService := new(MockProductService)
		ve := models.ValidationErrors{}
		ve.Add("barcode", "The barcode has already been taken.")
		mockService.On("Update", mock.Anything, int64(5), mock.Anything).Return(nil, ve)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodPut, "/api/products/5",
			strings.NewReader(`{"barcode":"4912345678901"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, decodeBody(t, rr), "barcode")
		mockService.AssertExpectations(t)
	})
}

func TestProductHandler_Delete(t *testing.T) {
	t.Run("Успешное удаление", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("Delete", mock.Anything, int64(5)).Return(nil)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/api/products/5", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.Bytes())
		mockService.AssertExpectations(t)
	})

	t.Run("Повторное удаление", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("Delete", mock.Anything, int64(5)).Return(services.ErrProductNotFound)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/api/products/5", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestProductHandler_UploadImage(t *testing.T) {
	t.Run("Успешная загрузка", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("UploadImage", mock.Anything, int64(5), mock.Anything, int64(11), "image/png").
			Return(nil)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodPost, "/api/products/5/image",
			bytes.NewBufferString("image-bytes"))
		req.Header.Set("Content-Length", "11")
		req.Header.Set("Content-Type", "image/png")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Image uploaded", decodeBody(t, rr)["message"])
		mockService.AssertExpectations(t)
	})

	t.Run("Нет Content-Length", func(t *testing.T) {
		mockService := new(MockProductService)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodPost, "/api/products/5/image", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Content-Length header is required", decodeBody(t, rr)["message"])
		mockService.AssertExpectations(t)
	})

	t.Run("Товар не найден", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("UploadImage", mock.Anything, int64(404), mock.Anything, int64(11), "image/png").
			Return(services.ErrProductNotFound)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodPost, "/api/products/404/image",
			bytes.NewBufferString("image-bytes"))
		req.Header.Set("Content-Length", "11")
		req.Header.Set("Content-Type", "image/png")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestProductHandler_DownloadImage(t *testing.T) {
	t.Run("Картинка отдается потоком", func(t *testing.T) {
		mockService := new(MockProductService)
		product := &models.Product{ID: 5, Name: "Молоко"}
		content := io.NopCloser(bytes.NewBufferString("image-bytes"))
		mockService.On("DownloadImage", mock.Anything, int64(5)).Return(content, product, nil)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/products/5/image", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/octet-stream", rr.Header().Get("Content-Type"))
		assert.Equal(t, "image-bytes", rr.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("У товара нет картинки", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("DownloadImage", mock.Anything, int64(5)).
			Return(nil, nil, services.ErrImageNotFound)
		router := setupProductRouter(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/products/5/image", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Product image not found", decodeBody(t, rr)["message"])
		mockService.AssertExpectations(t)
	})
}
