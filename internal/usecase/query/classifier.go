package query

import (
	"regexp"
	"strings"

	"video-stats-bot/internal/domain"
)

// question — результат работы лексических экстракторов над одним
// сообщением. Экстракторы независимы друг от друга, поэтому порядок
// их вызова не важен; правила классификатора читают готовые сигналы.
type question struct {
	text            string
	creatorID       string
	threshold       int64
	thresholdMetric domain.Metric
	hasThreshold    bool
	metric          domain.Metric
	hasMetric       bool
	singleDay       *domain.DateRange
	period          *domain.DateRange
}

func newQuestion(text string) question {
	q := question{text: strings.ToLower(strings.TrimSpace(text))}
	q.creatorID = extractCreatorID(q.text)
	q.threshold, q.thresholdMetric, q.hasThreshold = extractThreshold(q.text)
	q.metric, q.hasMetric = detectMetric(q.text)
	if r := extractExplicitRange(q.text); r != nil {
		q.period = r
	} else {
		// Одиночная дата — подвыражение явного диапазона ("по 5 ноября"),
		// поэтому она извлекается только когда диапазона нет.
		q.singleDay = extractSingleDate(q.text)
		q.period = extractMonthRange(q.text)
	}
	return q
}

var (
	growthRe      = regexp.MustCompile(`вырос|прирост|дельта`)
	distinctRe    = regexp.MustCompile(`сколько.*разн.*видео`)
	sumCueRe      = regexp.MustCompile(`суммарно|общее|сколько|дай`)
	totalCueRe    = regexp.MustCompile(`сколько|сумма|общее|дай|посчитай`)
	viewsGrowthRe = regexp.MustCompile(`вырос|на сколько`)
)

// thresholdScoped сообщает, допустима ли метрика в пороговом фильтре.
func thresholdScoped(m domain.Metric) bool {
	return m == domain.MetricViews || m == domain.MetricLikes
}

// rule — одно правило классификатора: имя для логов и тестов плюс
// предикат-строитель. Побеждает первое сработавшее правило.
type rule struct {
	name  string
	apply func(q question) (domain.Intent, bool)
}

// rules задаёт порядок разбора от самых специфичных комбинаций к общим:
// вопрос может одновременно содержать дату, идентификатор и порог, и без
// фиксированного приоритета комбинированный запрос тихо вырождался бы в
// простой.
var rules = []rule{
	{name: "delta_sum_on_date", apply: func(q question) (domain.Intent, bool) {
		if !growthRe.MatchString(q.text) || q.singleDay == nil || !q.hasMetric {
			return domain.Intent{}, false
		}
		return domain.Intent{Kind: domain.IntentDeltaSumOnDate, Metric: q.metric, Period: q.singleDay}, true
	}},
	{name: "distinct_delta_on_date", apply: func(q question) (domain.Intent, bool) {
		if !distinctRe.MatchString(q.text) || q.singleDay == nil || !q.hasMetric {
			return domain.Intent{}, false
		}
		return domain.Intent{Kind: domain.IntentDistinctDeltaOnDate, Metric: q.metric, Period: q.singleDay}, true
	}},
	{name: "creator_period_threshold", apply: func(q question) (domain.Intent, bool) {
		if q.creatorID == "" || q.period == nil || !q.hasThreshold || !thresholdScoped(q.thresholdMetric) {
			return domain.Intent{}, false
		}
		t := q.threshold
		return domain.Intent{
			Kind:      domain.IntentCountByCreatorDateThreshold,
			Metric:    q.thresholdMetric,
			CreatorID: q.creatorID,
			Period:    q.period,
			Threshold: &t,
		}, true
	}},
	{name: "creator_period_sum", apply: func(q question) (domain.Intent, bool) {
		if q.creatorID == "" || q.period == nil || !q.hasMetric {
			return domain.Intent{}, false
		}
		return domain.Intent{
			Kind:      domain.IntentSumByCreatorDateRange,
			Metric:    q.metric,
			CreatorID: q.creatorID,
			Period:    q.period,
		}, true
	}},
	{name: "creator_threshold", apply: func(q question) (domain.Intent, bool) {
		// Порог при указанном креаторе остаётся в разрезе креатора:
		// заявленный фильтр никогда не отбрасывается.
		if q.creatorID == "" || !q.hasThreshold || !thresholdScoped(q.thresholdMetric) {
			return domain.Intent{}, false
		}
		t := q.threshold
		return domain.Intent{
			Kind:      domain.IntentCountByMetricThreshold,
			Metric:    q.thresholdMetric,
			CreatorID: q.creatorID,
			Threshold: &t,
		}, true
	}},
	{name: "creator_period_count", apply: func(q question) (domain.Intent, bool) {
		if q.creatorID == "" || q.period == nil {
			return domain.Intent{}, false
		}
		return domain.Intent{
			Kind:      domain.IntentCountByCreatorDateRange,
			CreatorID: q.creatorID,
			Period:    q.period,
		}, true
	}},
	{name: "metric_threshold", apply: func(q question) (domain.Intent, bool) {
		if !q.hasThreshold || !thresholdScoped(q.thresholdMetric) {
			return domain.Intent{}, false
		}
		t := q.threshold
		return domain.Intent{Kind: domain.IntentCountByMetricThreshold, Metric: q.thresholdMetric, Threshold: &t}, true
	}},
	{name: "period_publication_count", apply: func(q question) (domain.Intent, bool) {
		if q.period == nil || q.hasMetric ||
			!strings.Contains(q.text, "сколько") || !strings.Contains(q.text, "видео") {
			return domain.Intent{}, false
		}
		return domain.Intent{Kind: domain.IntentCountByDateRange, Period: q.period}, true
	}},
	{name: "period_metric_sum", apply: func(q question) (domain.Intent, bool) {
		if q.period == nil || !q.hasMetric || !sumCueRe.MatchString(q.text) {
			return domain.Intent{}, false
		}
		return domain.Intent{Kind: domain.IntentSumByDateRange, Metric: q.metric, Period: q.period}, true
	}},
	{name: "total_count", apply: func(q question) (domain.Intent, bool) {
		if !strings.Contains(q.text, "сколько всего видео") {
			return domain.Intent{}, false
		}
		return domain.Intent{Kind: domain.IntentTotalCount}, true
	}},
	{name: "total_metric", apply: func(q question) (domain.Intent, bool) {
		if !q.hasMetric || !totalCueRe.MatchString(q.text) {
			return domain.Intent{}, false
		}
		// Вопрос о приросте просмотров не должен превращаться в общий
		// итог: формулировки роста исключаются явно.
		if q.metric == domain.MetricViews && viewsGrowthRe.MatchString(q.text) {
			return domain.Intent{}, false
		}
		return domain.Intent{Kind: domain.IntentTotalMetric, Metric: q.metric}, true
	}},
}

// Classify прогоняет сообщение по упорядоченному списку правил и
// возвращает интент первого сработавшего. Если ни одно правило не
// подошло — Unresolved; классификация никогда не возвращает ошибку.
func Classify(text string) domain.Intent {
	q := newQuestion(text)
	for _, r := range rules {
		if intent, ok := r.apply(q); ok {
			return intent
		}
	}
	return domain.Unresolved()
}

// classifyNamed дополнительно сообщает имя сработавшего правила.
func classifyNamed(text string) (domain.Intent, string) {
	q := newQuestion(text)
	for _, r := range rules {
		if intent, ok := r.apply(q); ok {
			return intent, r.name
		}
	}
	return domain.Unresolved(), ""
}
