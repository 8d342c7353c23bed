// Package client реализует HTTP-клиент сервиса учёта потребления
// с хранением сессии и автоматическим обновлением access токена.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/magabrotheeeer/consumption-tracker/internal/models"
)

// Session — сохранённая сессия пользователя: пара токенов и его данные.
type Session struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         models.UserSummary `json:"user"`
}

// SessionStore описывает хранилище сессии между запусками клиента.
type SessionStore interface {
	// Load возвращает сохранённую сессию или nil, если её нет.
	Load() (*Session, error)
	// Save сохраняет сессию.
	Save(s *Session) error
	// Clear удаляет сохранённую сессию.
	Clear() error
}

// FileStore хранит сессию в JSON-файле с правами 0600.
type FileStore struct {
	path string
}

// NewFileStore создает хранилище сессии в файле path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load читает сессию из файла. Отсутствие файла — не ошибка.
func (f *FileStore) Load() (*Session, error) {
	const op = "client.FileStore.Load"

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

// Save записывает сессию в файл, создавая каталог при необходимости.
func (f *FileStore) Save(s *Session) error {
	const op = "client.FileStore.Save"

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear удаляет файл сессии. Отсутствие файла — не ошибка.
func (f *FileStore) Clear() error {
	const op = "client.FileStore.Clear"

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MemoryStore хранит сессию в памяти процесса. Используется в тестах
// и сценариях без персистентности.
type MemoryStore struct {
	mu      sync.Mutex
	session *Session
}

// NewMemoryStore создает пустое хранилище сессии в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load возвращает копию сохранённой сессии или nil.
func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	s := *m.session
	return &s, nil
}

// Save сохраняет копию сессии.
func (m *MemoryStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.session = &copied
	return nil
}

// Clear удаляет сессию.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
