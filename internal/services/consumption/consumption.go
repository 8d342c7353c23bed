// Package services содержит бизнес-логику учёта потребления:
// создание записей, пагинированные списки и аналитические сводки.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/magabrotheeeer/consumption-tracker/internal/models"
)

// Пределы пагинации.
const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

const dashboardCacheTTL = 5 * time.Minute

// Ошибки валидации бизнес-уровня. Транспорт отображает их в детали полей.
var (
	// ErrInvalidDate — дату не удалось разобрать ни в одном из принимаемых форматов.
	ErrInvalidDate = errors.New("invalid date format")
	// ErrFutureDate — дата потребления в будущем.
	ErrFutureDate = errors.New("date cannot be in the future")
	// ErrInvalidType — тип вне закрытого набора electricity, water, gas.
	ErrInvalidType = errors.New("invalid consumption type")
	// ErrInvalidValue — значение потребления не положительно.
	ErrInvalidValue = errors.New("value must be positive")
	// ErrNotesTooLong — заметка длиннее допустимого.
	ErrNotesTooLong = errors.New("notes too long")
	// ErrInvalidPage — номер страницы меньше 1.
	ErrInvalidPage = errors.New("page must be a positive integer")
	// ErrInvalidPerPage — размер страницы вне диапазона 1..100.
	ErrInvalidPerPage = errors.New("per_page must be between 1 and 100")
)

// ConsumptionRepository определяет методы для работы с записями потребления в хранилище.
// Каждый метод принимает userUID: записи никогда не читаются без фильтра по владельцу.
type ConsumptionRepository interface {
	// CreateConsumption добавляет новую запись и возвращает её с серверными полями.
	CreateConsumption(ctx context.Context, entry models.Consumption) (*models.Consumption, error)
	// ListConsumption возвращает страницу записей пользователя.
	ListConsumption(ctx context.Context, userUID string, limit, offset int) ([]*models.Consumption, error)
	// CountConsumption возвращает общее количество записей пользователя.
	CountConsumption(ctx context.Context, userUID string) (int, error)
	// ListAllConsumptionByUser возвращает все записи пользователя для аналитики.
	ListAllConsumptionByUser(ctx context.Context, userUID string) ([]*models.Consumption, error)
}

// UserReader возвращает данные пользователя для сводки дашборда.
type UserReader interface {
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// ListResult — страница записей вместе с метаданными пагинации.
type ListResult struct {
	Items []*models.Consumption `json:"items"`
	Meta  models.Pagination     `json:"pagination"`
}

// DashboardData — сводка для дашборда: пользователь и его аналитика.
type DashboardData struct {
	User      models.UserSummary      `json:"user"`
	Analytics models.AnalyticsSummary `json:"analytics"`
}

// ConsumptionService реализует бизнес-логику учёта потребления.
//
// Аналитическая сводка пересчитывается по полному набору записей на каждый
// запрос и не кешируется. Кеш используется только для дашборда.
type ConsumptionService struct {
	repo  ConsumptionRepository
	users UserReader
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// Option настраивает ConsumptionService при создании.
type Option func(*ConsumptionService)

// WithClock подменяет источник времени. Нужен тестам,
// проверяющим поведение на границах месяца.
func WithClock(now func() time.Time) Option {
	return func(s *ConsumptionService) {
		s.now = now
	}
}

// NewConsumptionService создает новый экземпляр ConsumptionService.
func NewConsumptionService(repo ConsumptionRepository, users UserReader, cache Cache, log *slog.Logger, opts ...Option) *ConsumptionService {
	s := &ConsumptionService{
		repo:  repo,
		users: users,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create валидирует и сохраняет новую запись потребления.
// Владелец записи — userUID из токена; тело запроса поле владельца не содержит.
func (s *ConsumptionService) Create(ctx context.Context, userUID string, req models.DummyConsumption) (*models.Consumption, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if date.After(s.now().UTC().Truncate(24 * time.Hour)) {
		return nil, ErrFutureDate
	}
	if req.Value <= 0 {
		return nil, ErrInvalidValue
	}
	consumptionType := strings.ToLower(strings.TrimSpace(req.Type))
	if !models.IsValidConsumptionType(consumptionType) {
		return nil, ErrInvalidType
	}
	if utf8.RuneCountInString(req.Notes) > models.MaxNotesLength {
		return nil, ErrNotesTooLong
	}

	entry := models.Consumption{
		UserUID: userUID,
		Date:    date,
		Value:   req.Value,
		Type:    consumptionType,
	}
	if req.Notes != "" {
		notes := req.Notes
		entry.Notes = &notes
	}

	created, err := s.repo.CreateConsumption(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new consumption entry",
		slog.Int64("id", created.ID), slog.String("type", created.Type))

	if err := s.cache.Invalidate(ctx, dashboardCacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate dashboard cache", slog.Any("err", err))
	}

	return created, nil
}

// List возвращает страницу записей пользователя с метаданными пагинации.
// Страница за пределами данных — ошибка, а не пустой список или подмена номера.
func (s *ConsumptionService) List(ctx context.Context, userUID string, page, perPage int) (*ListResult, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if perPage < 1 || perPage > MaxPerPage {
		return nil, ErrInvalidPerPage
	}

	total, err := s.repo.CountConsumption(ctx, userUID)
	if err != nil {
		return nil, err
	}
	totalPages := (total + perPage - 1) / perPage
	if total > 0 && page > totalPages {
		return nil, fmt.Errorf("%w: page %d of %d", ErrInvalidPage, page, totalPages)
	}

	items, err := s.repo.ListConsumption(ctx, userUID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Consumption{}
	}

	return &ListResult{
		Items: items,
		Meta: models.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: total,
			TotalPages: totalPages,
			HasPrev:    page > 1,
			HasNext:    page < totalPages,
		},
	}, nil
}

// Summarize пересчитывает аналитическую сводку по всем записям пользователя.
// Пустой набор записей даёт сводку из нулей, а не ошибку.
func (s *ConsumptionService) Summarize(ctx context.Context, userUID string) (*models.AnalyticsSummary, error) {
	items, err := s.repo.ListAllConsumptionByUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	summary := &models.AnalyticsSummary{
		MonthlyData: []models.MonthlyConsumption{},
		ConsumptionByType: map[string]float64{
			models.TypeElectricity: 0,
			models.TypeWater:       0,
			models.TypeGas:         0,
		},
		MonthOverMonth: models.MonthChange{Direction: models.ChangeNone},
	}

	now := s.now().UTC()
	currentMonth := now.Format("2006-01")
	// Предыдущий месяц считается от первого числа текущего: AddDate на
	// самой дате нормализует переполнение дня (31 марта минус месяц
	// дал бы 3 марта, то есть снова текущий месяц).
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := monthStart.AddDate(0, -1, 0).Format("2006-01")

	buckets := make(map[string]*models.MonthlyConsumption)
	for _, item := range items {
		summary.TotalRecords++
		summary.TotalConsumption += item.Value
		summary.ConsumptionByType[item.Type] += item.Value

		month := item.Date.Format("2006-01")
		bucket, ok := buckets[month]
		if !ok {
			bucket = &models.MonthlyConsumption{Month: month}
			buckets[month] = bucket
		}
		bucket.Total += item.Value
		switch item.Type {
		case models.TypeElectricity:
			bucket.Electricity += item.Value
		case models.TypeWater:
			bucket.Water += item.Value
		case models.TypeGas:
			bucket.Gas += item.Value
		}

		switch month {
		case currentMonth:
			summary.CurrentMonthTotal += item.Value
		case lastMonth:
			summary.LastMonthTotal += item.Value
		}
	}

	months := make([]string, 0, len(buckets))
	for month := range buckets {
		months = append(months, month)
	}
	sort.Strings(months)
	for _, month := range months {
		summary.MonthlyData = append(summary.MonthlyData, *buckets[month])
	}

	monthCount := len(buckets)
	if monthCount < 1 {
		monthCount = 1
	}
	summary.AverageMonthly = summary.TotalConsumption / float64(monthCount)

	summary.MonthOverMonth = MonthOverMonth(summary.CurrentMonthTotal, summary.LastMonthTotal)

	return summary, nil
}

// Dashboard собирает сводку для дашборда: данные пользователя и аналитику.
// Результат кешируется на 5 минут и инвалидируется при создании записи.
func (s *ConsumptionService) Dashboard(ctx context.Context, userUID string) (*DashboardData, error) {
	cacheKey := dashboardCacheKey(userUID)

	var cached DashboardData
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read dashboard cache", slog.Any("err", err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summarize(ctx, userUID)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		User:      user.Summary(),
		Analytics: *summary,
	}
	if err := s.cache.Set(ctx, cacheKey, data, dashboardCacheTTL); err != nil {
		s.log.Warn("failed to cache dashboard", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return data, nil
}

// MonthOverMonth вычисляет изменение потребления месяц к месяцу.
//
// Конвенция нулей асимметрична: 0 -> 0 — нет изменения, 0 -> x — рост на 100%.
func MonthOverMonth(current, previous float64) models.MonthChange {
	switch {
	case previous == 0 && current == 0:
		return models.MonthChange{Direction: models.ChangeNone, Percent: 0}
	case previous == 0:
		return models.MonthChange{Direction: models.ChangeIncrease, Percent: 100}
	}

	percent := (current - previous) / previous * 100
	switch {
	case percent > 0:
		return models.MonthChange{Direction: models.ChangeIncrease, Percent: percent}
	case percent < 0:
		return models.MonthChange{Direction: models.ChangeDecrease, Percent: percent}
	default:
		return models.MonthChange{Direction: models.ChangeNone, Percent: 0}
	}
}

// parseDate принимает дату в RFC3339 или в коротком формате YYYY-MM-DD.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func dashboardCacheKey(userUID string) string {
	return "dashboard:" + userUID
}
