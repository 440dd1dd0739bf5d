package models

import "time"

// Product представляет товар каталога.
// Barcode может быть NULL, уникальность действует только среди непустых значений.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Barcode     *string   `db:"barcode" json:"barcode"`
	ImageKey    *string   `db:"image_key" json:"-"` // Ключ файла картинки в S3/MinIO
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProductInput представляет тело запроса на создание или частичное обновление товара.
// Все поля — указатели: nil означает "поле не передано".
type ProductInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Barcode     *string  `json:"barcode"`
}

// ProductPage представляет страницу выдачи списка товаров с метаданными пагинации.
type ProductPage struct {
	Data        []Product `json:"data"`
	Total       int64     `json:"total"`
	PerPage     int       `json:"per_page"`
	CurrentPage int       `json:"current_page"`
	LastPage    int       `json:"last_page"`
}
