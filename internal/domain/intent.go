package domain

import "time"

// IntentKind перечисляет канонические формы вопроса.
type IntentKind string

const (
	// IntentUnresolved — вопрос не распознан, запрос не строится.
	IntentUnresolved IntentKind = "unresolved"
	// IntentTotalCount — количество всех видео.
	IntentTotalCount IntentKind = "total_count"
	// IntentTotalMetric — сумма метрики по всем видео.
	IntentTotalMetric IntentKind = "total_metric"
	// IntentCountByCreatorDateRange — количество видео креатора за период.
	IntentCountByCreatorDateRange IntentKind = "count_by_creator_date_range"
	// IntentCountByMetricThreshold — количество видео с метрикой выше порога,
	// опционально в разрезе креатора.
	IntentCountByMetricThreshold IntentKind = "count_by_metric_threshold"
	// IntentCountByCreatorDateThreshold — креатор + период + порог.
	IntentCountByCreatorDateThreshold IntentKind = "count_by_creator_date_threshold"
	// IntentSumByCreatorDateRange — сумма метрики по видео креатора за период.
	IntentSumByCreatorDateRange IntentKind = "sum_by_creator_date_range"
	// IntentSumByDateRange — сумма метрики по видео, вышедшим за период.
	IntentSumByDateRange IntentKind = "sum_by_date_range"
	// IntentCountByDateRange — количество видео, вышедших за период.
	IntentCountByDateRange IntentKind = "count_by_date_range"
	// IntentDeltaSumOnDate — суммарный прирост метрики за один день.
	IntentDeltaSumOnDate IntentKind = "delta_sum_on_date"
	// IntentDistinctDeltaOnDate — число разных видео с приростом за день.
	IntentDistinctDeltaOnDate IntentKind = "distinct_delta_on_date"
)

// DateRange — полуинтервал [From, To): начало включительно, конец нет.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Day возвращает суточный полуинтервал для указанной даты.
func Day(year int, month time.Month, day int) DateRange {
	from := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return DateRange{From: from, To: from.AddDate(0, 0, 1)}
}

// Month возвращает месячный полуинтервал: с первого числа по первое
// число следующего месяца (декабрь переходит в январь year+1).
func Month(year int, month time.Month) DateRange {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: from, To: from.AddDate(0, 1, 0)}
}

// Days возвращает полуинтервал [from, to+1) внутри одного месяца:
// последний день включается.
func Days(year int, month time.Month, fromDay, toDay int) DateRange {
	from := time.Date(year, month, fromDay, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, month, toDay, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return DateRange{From: from, To: to}
}

// Intent — канонический результат разбора вопроса. Строится один раз
// на сообщение, неизменяем, хранит только параметры, нужные его виду.
type Intent struct {
	Kind      IntentKind
	Metric    Metric
	CreatorID string
	Period    *DateRange
	Threshold *int64
}

// Unresolved возвращает терминальный нераспознанный интент.
func Unresolved() Intent {
	return Intent{Kind: IntentUnresolved}
}

// IsResolved сообщает, удалось ли распознать вопрос.
func (i Intent) IsResolved() bool {
	return i.Kind != "" && i.Kind != IntentUnresolved
}
