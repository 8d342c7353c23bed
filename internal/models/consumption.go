package models

import "time"

// Фиксированный закрытый набор типов потребления.
const (
	TypeElectricity = "electricity"
	TypeWater       = "water"
	TypeGas         = "gas"
)

// MaxNotesLength — максимальная длина заметки к записи потребления.
const MaxNotesLength = 500

// ConsumptionTypes перечисляет все допустимые типы потребления.
var ConsumptionTypes = []string{TypeElectricity, TypeWater, TypeGas}

// IsValidConsumptionType сообщает, входит ли тип в закрытый набор.
func IsValidConsumptionType(t string) bool {
	for _, known := range ConsumptionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Consumption представляет собой одну запись потребления,
// используемую в бизнес-логике и хранилище.
//
// UserUID неизменяем после создания: операции передачи владения не существует.
type Consumption struct {
	ID        int64     `json:"id"`
	UserUID   string    `json:"user_uid"`
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	Type      string    `json:"type"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DummyConsumption используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Consumption.
// Дата приходит в виде строки, чтобы её можно было валидировать и парсить вручную.
// Поля владельца здесь нет намеренно: владелец всегда берётся из контекста запроса.
type DummyConsumption struct {
	Date  string  `json:"date" validate:"required"`                // Дата потребления в ISO-8601
	Value float64 `json:"value" validate:"required,gt=0"`          // Значение (>0)
	Type  string  `json:"type" validate:"required"`                // Тип: electricity, water или gas
	Notes string  `json:"notes,omitempty" validate:"omitempty,max=500"` // Необязательная заметка
}
