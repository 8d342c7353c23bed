// Package models содержит доменные структуры приложения: пользователь,
// запись потребления и производные структуры аналитики.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
//
// Пользователь является арендатором (tenant): все записи потребления
// принадлежат ровно одному пользователю и видны только ему.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная, хранится в нижнем регистре)
	Username     string    // Имя пользователя (уникальное, хранится в нижнем регистре)
	PasswordHash string    // bcrypt-хэш пароля
	IsActive     bool      // Флаг активности учётной записи
	CreatedAt    time.Time // Дата создания учётной записи
	UpdatedAt    time.Time // Дата последнего обновления
}

// UserSummary — безопасное представление пользователя для ответов API,
// без хэша пароля.
type UserSummary struct {
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary возвращает представление пользователя без чувствительных полей.
func (u *User) Summary() UserSummary {
	return UserSummary{
		UID:       u.UID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
