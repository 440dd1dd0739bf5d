package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Драйвер PostgreSQL
	"github.com/pressly/goose/v3"

	"github.com/yusuke24eugene/laravel12-rest-api/internal/handlers"
	appmiddleware "github.com/yusuke24eugene/laravel12-rest-api/internal/middleware"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/repository"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/services"
	"github.com/yusuke24eugene/laravel12-rest-api/internal/storage"
	"github.com/yusuke24eugene/laravel12-rest-api/migrations"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 30 * time.Second

	minioUseSSL = false // Для локальной разработки
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db             *sqlx.DB
	authHandler    *handlers.AuthHandler
	productHandler *handlers.ProductHandler
	authenticator  *appmiddleware.Authenticator
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера магазина...")

	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	deps, err := setupDependencies(cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	// Отложенное закрытие соединения с БД
	defer func() {
		if deps.db != nil {
			if closeErr := deps.db.Close(); closeErr != nil {
				log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
			}
		}
	}()

	r := setupRouter(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	// При наличии сертификата и ключа запускаемся по HTTPS,
	// иначе — обычный HTTP для локальной разработки.
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		log.Printf("Запуск HTTPS-сервера на порту %s...", cfg.Port)
		err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
	} else {
		log.Printf("Запуск HTTP-сервера на порту %s...", cfg.Port)
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	}
	return nil
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(cfg *config) (*dependencies, error) {
	deps := &dependencies{}
	var err error

	// 1. Подключение к БД
	deps.db, err = repository.NewPostgresDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}

	// 2. Применение миграций схемы
	if err = runMigrations(deps.db); err != nil {
		closeDB(deps.db)
		return nil, fmt.Errorf("ошибка применения миграций: %w", err)
	}

	// 3. Инициализация клиента MinIO для картинок товаров
	minioCfg := storage.MinioConfig{
		Endpoint:        cfg.MinioEndpoint,
		AccessKeyID:     cfg.MinioUser,
		SecretAccessKey: cfg.MinioPassword,
		UseSSL:          minioUseSSL,
		BucketName:      cfg.MinioBucket,
	}
	fileStorage, err := storage.NewMinioClient(minioCfg)
	if err != nil {
		closeDB(deps.db)
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	// 4. Создание репозиториев
	userRepo := repository.NewPostgresUserRepository(deps.db)
	credRepo := repository.NewPostgresCredentialRepository(deps.db)
	productRepo := repository.NewPostgresProductRepository(deps.db)

	// 5. Создание сервисов
	authService := services.NewAuthService(userRepo, credRepo, cfg.JWTSecret)
	productService := services.NewProductService(productRepo, fileStorage)

	// 6. Создание обработчиков и middleware
	deps.authHandler = handlers.NewAuthHandler(authService)
	deps.productHandler = handlers.NewProductHandler(productService)
	deps.authenticator = appmiddleware.NewAuthenticator(cfg.JWTSecret, authService)

	return deps, nil
}

// runMigrations применяет встроенные goose-миграции.
func runMigrations(db *sqlx.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("ошибка выбора диалекта goose: %w", err)
	}
	if err := goose.Up(db.DB, "."); err != nil {
		return fmt.Errorf("ошибка применения миграций goose: %w", err)
	}
	log.Println("Миграции схемы успешно применены.")
	return nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	r.Route("/api", func(r chi.Router) {
		// Публичные маршруты
		r.Post("/register", deps.authHandler.Register)
		r.Post("/login", deps.authHandler.Login)
		r.Get("/products", deps.productHandler.List)
		r.Get("/products/{id}", deps.productHandler.Get)
		r.Get("/products/{id}/image", deps.productHandler.DownloadImage)

		// Приватные маршруты (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(deps.authenticator.Middleware)

			r.Post("/logout", deps.authHandler.Logout)
			r.Get("/user", deps.authHandler.CurrentUser)

			r.Post("/products", deps.productHandler.Create)
			r.Put("/products/{id}", deps.productHandler.Update)
			r.Delete("/products/{id}", deps.productHandler.Delete)
			r.Post("/products/{id}/image", deps.productHandler.UploadImage)
		})
	})
	return r
}

// closeDB закрывает соединение с БД, логируя ошибку.
func closeDB(db *sqlx.DB) {
	if closeErr := db.Close(); closeErr != nil {
		log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
	}
}
