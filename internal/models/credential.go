package models

import "time"

// Credential представляет серверную запись о выданном bearer-токене.
// ID совпадает с claim `jti` внутри JWT: пока строка существует в БД,
// токен считается живым; удаление строки отзывает токен до истечения срока.
type Credential struct {
	ID        string    `db:"id" json:"id"` // UUID, он же jti
	UserID    int64     `db:"user_id" json:"user_id"`
	IssuedAt  time.Time `db:"issued_at" json:"issued_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}
