// Package repository реализует хранилище данных на основе PostgreSQL
// для управления пользователями и записями потребления.
//
// Каждый запрос к таблице consumption параметризован идентификатором
// пользователя (user_uid): в пакете нет пути кода, способного прочитать
// или изменить записи без этого фильтра.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища. Сервисы различают их через errors.Is.
var (
	// ErrEmailExists — пользователь с таким email уже зарегистрирован.
	ErrEmailExists = errors.New("email already exists")
	// ErrUsernameExists — имя пользователя уже занято.
	ErrUsernameExists = errors.New("username already taken")
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями и записями потребления.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'consumption'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table consumption missing or query error: %w", err)
	}
	return nil
}
