package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

const (
	// Порт по умолчанию (непривилегированный).
	defaultServerPort = "8080"

	// Значения по умолчанию для MinIO (из docker-compose).
	defaultMinioEndpoint = "localhost:9000"
	defaultMinioUser     = "minioadmin"
	defaultMinioPassword = "minioadmin"
	defaultMinioBucket   = "product-images"

	// Переменные окружения.
	envServerPort    = "SERVER_PORT"
	envTLSCertFile   = "TLS_CERT_FILE"
	envTLSKeyFile    = "TLS_KEY_FILE"
	envDatabaseDSN   = "DATABASE_DSN"
	envJWTSecret     = "JWT_SECRET" //nolint:gosec // Имя переменной окружения, не секрет
	envMinioEndpoint = "MINIO_ENDPOINT"
	envMinioUser     = "MINIO_USER"
	envMinioPassword = "MINIO_PASSWORD"
	envMinioBucket   = "MINIO_BUCKET"
)

// config хранит конфигурацию сервера.
type config struct {
	Port          string
	CertFile      string
	KeyFile       string
	DatabaseDSN   string
	JWTSecret     string
	MinioEndpoint string
	MinioUser     string
	MinioPassword string
	MinioBucket   string
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
// Флаг имеет приоритет над переменной окружения, переменная — над умолчанием.
func parseFlags() (*config, error) {
	cfg := &config{}

	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт для запуска сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.CertFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата, опционально (env: %s)", envTLSCertFile))
	flag.StringVar(&cfg.KeyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа, опционально (env: %s)", envTLSKeyFile))
	flag.StringVar(&cfg.DatabaseDSN, "database-dsn", "",
		fmt.Sprintf("Строка подключения к базе данных (env: %s)", envDatabaseDSN))
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", "",
		fmt.Sprintf("Секретный ключ для подписи JWT (env: %s)", envJWTSecret))
	flag.StringVar(&cfg.MinioEndpoint, "minio-endpoint", "",
		fmt.Sprintf("Адрес MinIO (env: %s, default: %s)", envMinioEndpoint, defaultMinioEndpoint))
	flag.StringVar(&cfg.MinioUser, "minio-user", "",
		fmt.Sprintf("Логин MinIO (env: %s, default: %s)", envMinioUser, defaultMinioUser))
	flag.StringVar(&cfg.MinioPassword, "minio-password", "",
		fmt.Sprintf("Пароль MinIO (env: %s, default: %s)", envMinioPassword, defaultMinioPassword))
	flag.StringVar(&cfg.MinioBucket, "minio-bucket", "",
		fmt.Sprintf("Имя бакета MinIO (env: %s, default: %s)", envMinioBucket, defaultMinioBucket))

	flag.Parse()

	// Применяем переменные окружения и значения по умолчанию, если флаги не заданы
	applyFallback(&cfg.Port, envServerPort, defaultServerPort)
	applyFallback(&cfg.CertFile, envTLSCertFile, "")
	applyFallback(&cfg.KeyFile, envTLSKeyFile, "")
	applyFallback(&cfg.DatabaseDSN, envDatabaseDSN, "")
	applyFallback(&cfg.JWTSecret, envJWTSecret, "")
	applyFallback(&cfg.MinioEndpoint, envMinioEndpoint, defaultMinioEndpoint)
	applyFallback(&cfg.MinioUser, envMinioUser, defaultMinioUser)
	applyFallback(&cfg.MinioPassword, envMinioPassword, defaultMinioPassword)
	applyFallback(&cfg.MinioBucket, envMinioBucket, defaultMinioBucket)

	// Проверяем обязательные параметры
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("не указана строка подключения к БД (--database-dsn или " + envDatabaseDSN + ")")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("не указан секретный ключ JWT (--jwt-secret или " + envJWTSecret + ")")
	}
	// Сертификат и ключ либо указаны вместе, либо не указаны вовсе
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return nil, errors.New("для TLS нужны оба параметра: --cert-file и --key-file")
	}

	return cfg, nil
}

// applyFallback подставляет переменную окружения либо значение по умолчанию,
// если значение еще не задано флагом.
func applyFallback(target *string, envKey, fallback string) {
	if *target != "" {
		return
	}
	if value, ok := os.LookupEnv(envKey); ok {
		*target = value
		return
	}
	*target = fallback
}
