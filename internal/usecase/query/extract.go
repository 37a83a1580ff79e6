package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"video-stats-bot/internal/domain"
)

// defaultYear подставляется в даты без явного года.
const defaultYear = 2025

// monthsRU сопоставляет русские названия месяцев (именительный,
// родительный и предложный падежи) с номером месяца.
var monthsRU = map[string]time.Month{
	"январь": time.January, "января": time.January, "январе": time.January,
	"февраль": time.February, "февраля": time.February, "феврале": time.February,
	"март": time.March, "марта": time.March, "марте": time.March,
	"апрель": time.April, "апреля": time.April, "апреле": time.April,
	"май": time.May, "мая": time.May, "мае": time.May,
	"июнь": time.June, "июня": time.June, "июне": time.June,
	"июль": time.July, "июля": time.July, "июле": time.July,
	"август": time.August, "августа": time.August, "августе": time.August,
	"сентябрь": time.September, "сентября": time.September, "сентябре": time.September,
	"октябрь": time.October, "октября": time.October, "октябре": time.October,
	"ноябрь": time.November, "ноября": time.November, "ноябре": time.November,
	"декабрь": time.December, "декабря": time.December, "декабре": time.December,
}

const (
	monthGenitive = `января|февраля|марта|апреля|мая|июня|июля|августа|сентября|октября|ноября|декабря`
	// Родительные и предложные формы стоят раньше именительных, чтобы
	// альтернация не обрезала совпадение на более короткой форме.
	monthAnyCase = `января|январе|январь|февраля|феврале|февраль|марта|марте|март|` +
		`апреля|апреле|апрель|мая|мае|май|июня|июне|июнь|июля|июле|июль|` +
		`августа|августе|август|сентября|сентябре|сентябрь|октября|октябре|октябрь|` +
		`ноября|ноябре|ноябрь|декабря|декабре|декабрь`
)

var (
	creatorCanonicalRe = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	creatorBareRe      = regexp.MustCompile(`(?i)\b[0-9a-f]{32}\b`)

	// Число считается порогом только рядом со сравнительным словом и
	// существительным метрики: одиночное число (в том числе год) порогом
	// не является.
	thresholdRe = regexp.MustCompile(`(?:больше|более)\s+([0-9][0-9\s]*?)\s*(просмотр|лайк|коммент|жалоб)`)

	// \w и \b в regexp работают только с ASCII, поэтому границы слов
	// заданы явно через пробельные классы, а хвосты слов — через [а-яё].
	singleDateRe    = regexp.MustCompile(`(\d{1,2})\s+(` + monthGenitive + `)(?:\s+(\d{4}))?`)
	monthRangeRe    = regexp.MustCompile(`(?:^|\s)(?:за|в|на|опубликован[а-яё]*|вышедш[а-яё]*)\s+(` + monthAnyCase + `)(?:\s+(\d{4}))?`)
	explicitRangeRe = regexp.MustCompile(`(?:^|\s)с\s+(\d{1,2})\s+по\s+(\d{1,2})\s+(` + monthAnyCase + `)(?:\s+(\d{4}))?`)
)

var creatorExactRe = regexp.MustCompile(`(?i)^(?:[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|[0-9a-f]{32})$`)

// IsCreatorID сообщает, является ли строка целиком идентификатором
// креатора в канонической или голой hex-форме.
func IsCreatorID(s string) bool {
	return creatorExactRe.MatchString(s)
}

// extractCreatorID возвращает первый идентификатор креатора: каноническую
// форму UUID 8-4-4-4-12 либо голые 32 hex-символа. Значение отдаётся как
// есть, без нормализации между формами.
func extractCreatorID(text string) string {
	if m := creatorCanonicalRe.FindString(text); m != "" {
		if _, err := uuid.Parse(m); err == nil {
			return m
		}
	}
	return creatorBareRe.FindString(text)
}

// extractThreshold ищет порог вида "больше 100 000 просмотров" и
// возвращает число вместе с метрикой, к которой оно относится.
// Пробелы внутри числа (разделители тысяч) схлопываются перед разбором.
func extractThreshold(text string) (int64, domain.Metric, bool) {
	m := thresholdRe.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	digits := strings.Join(strings.Fields(m[1]), "")
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || value < 0 {
		return 0, "", false
	}
	return value, metricByStem(m[2]), true
}

// extractSingleDate распознаёт "<день> <месяц> [<год>]" и возвращает
// суточный полуинтервал [дата, дата+1 день).
func extractSingleDate(text string) *domain.DateRange {
	m := singleDateRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return nil
	}
	month, ok := monthsRU[m[2]]
	if !ok {
		return nil
	}
	year := yearOrDefault(m[3])
	r := domain.Day(year, month, day)
	return &r
}

// extractMonthRange распознаёт месяц после предлога или глагола
// публикации ("за июнь", "в мае 2025", "опубликованные в ноябре") и
// возвращает полуинтервал с первого числа по первое число следующего
// месяца.
func extractMonthRange(text string) *domain.DateRange {
	m := monthRangeRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	month, ok := monthsRU[m[1]]
	if !ok {
		return nil
	}
	r := domain.Month(yearOrDefault(m[2]), month)
	return &r
}

// extractExplicitRange распознаёт "с <d1> по <d2> <месяц> [<год>]".
// Последний день включается, поэтому правая граница — d2+1.
func extractExplicitRange(text string) *domain.DateRange {
	m := explicitRangeRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	from, err1 := strconv.Atoi(m[1])
	to, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || from < 1 || to < from || to > 31 {
		return nil
	}
	month, ok := monthsRU[m[3]]
	if !ok {
		return nil
	}
	r := domain.Days(yearOrDefault(m[4]), month, from, to)
	return &r
}

// detectMetric возвращает первую метрику, основа которой встречается в
// тексте. Порядок проверки фиксирован: просмотры, лайки, комментарии,
// жалобы.
func detectMetric(text string) (domain.Metric, bool) {
	for _, stem := range [...]string{"просмотр", "лайк", "коммент", "жалоб"} {
		if strings.Contains(text, stem) {
			return metricByStem(stem), true
		}
	}
	return "", false
}

func metricByStem(stem string) domain.Metric {
	switch stem {
	case "просмотр":
		return domain.MetricViews
	case "лайк":
		return domain.MetricLikes
	case "коммент":
		return domain.MetricComments
	case "жалоб":
		return domain.MetricReports
	}
	return ""
}

func yearOrDefault(raw string) int {
	if raw == "" {
		return defaultYear
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return defaultYear
	}
	return year
}
