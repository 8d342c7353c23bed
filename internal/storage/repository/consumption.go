package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/consumption-tracker/internal/models"
)

// CreateConsumption вставляет новую запись потребления одним атомарным INSERT
// и возвращает её с заполненными сервером полями.
//
// Владелец записи берётся из entry.UserUID, который сервисный слой
// устанавливает исключительно из контекста арендатора.
func (s *Storage) CreateConsumption(ctx context.Context, entry models.Consumption) (*models.Consumption, error) {
	const op = "storage.CreateConsumption"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO consumption (user_uid, date, value, type, notes)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, created_at, updated_at`
	result := entry
	err := s.DB.QueryRowContext(ctx, query,
		entry.UserUID, entry.Date, entry.Value, entry.Type, entry.Notes).
		Scan(&result.ID, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListConsumption возвращает страницу записей пользователя.
// Сортировка: сначала самая свежая дата потребления, при равенстве —
// самая свежая дата создания, чтобы пагинация была детерминированной.
func (s *Storage) ListConsumption(ctx context.Context, userUID string, limit, offset int) ([]*models.Consumption, error) {
	const op = "storage.ListConsumption"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, date, value, type, notes, created_at, updated_at
			  FROM consumption
			  WHERE user_uid = $1
			  ORDER BY date DESC, created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Consumption
	for rows.Next() {
		var item models.Consumption
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Date, &item.Value,
			&item.Type, &item.Notes, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountConsumption возвращает общее количество записей пользователя.
// Единственный авторитетный источник для метаданных пагинации.
func (s *Storage) CountConsumption(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountConsumption"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM consumption WHERE user_uid = $1`
	var total int
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// ListAllConsumptionByUser возвращает все записи пользователя без пагинации.
// Используется агрегатором аналитики, который пересчитывает сводку
// по полному набору записей на каждый запрос.
func (s *Storage) ListAllConsumptionByUser(ctx context.Context, userUID string) ([]*models.Consumption, error) {
	const op = "storage.ListAllConsumptionByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, date, value, type, notes, created_at, updated_at
			  FROM consumption
			  WHERE user_uid = $1
			  ORDER BY date`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Consumption
	for rows.Next() {
		var item models.Consumption
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Date, &item.Value,
			&item.Type, &item.Notes, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
