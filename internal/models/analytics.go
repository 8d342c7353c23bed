package models

// Направления изменения потребления месяц к месяцу.
const (
	ChangeIncrease = "increase"
	ChangeDecrease = "decrease"
	ChangeNone     = "no_change"
)

// MonthlyConsumption — агрегат потребления за один календарный месяц.
// Отсутствующие в месяце типы дают 0, а не отсутствие поля.
type MonthlyConsumption struct {
	Month       string  `json:"month"` // Месяц в формате YYYY-MM
	Total       float64 `json:"total"`
	Electricity float64 `json:"electricity"`
	Water       float64 `json:"water"`
	Gas         float64 `json:"gas"`
}

// MonthChange описывает изменение потребления текущего месяца
// относительно предыдущего.
//
// Конвенция обработки нулей асимметрична и сохраняется намеренно:
// 0 -> 0 — отсутствие изменения, 0 -> x — рост на 100%.
type MonthChange struct {
	Direction string  `json:"direction"` // increase, decrease или no_change
	Percent   float64 `json:"percent"`
}

// AnalyticsSummary — производная сводка по всем записям одного пользователя.
// Не персистится и пересчитывается на каждый запрос аналитики.
type AnalyticsSummary struct {
	TotalConsumption  float64              `json:"total_consumption"`
	AverageMonthly    float64              `json:"average_monthly"`
	CurrentMonthTotal float64              `json:"current_month_total"`
	LastMonthTotal    float64              `json:"last_month_total"`
	MonthlyData       []MonthlyConsumption `json:"monthly_data"`
	TotalRecords      int                  `json:"total_records"`
	ConsumptionByType map[string]float64   `json:"consumption_by_type"`
	MonthOverMonth    MonthChange          `json:"month_over_month"`
}

// Pagination — метаданные пагинации, вычисляемые на сервере
// из одного авторитетного запроса количества записей.
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}
