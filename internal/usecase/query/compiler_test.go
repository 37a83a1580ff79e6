package query

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"video-stats-bot/internal/domain"
)

func int64p(v int64) *int64 { return &v }

func june() *domain.DateRange {
	r := domain.Month(2025, time.June)
	return &r
}

func TestCompileTotalCount(t *testing.T) {
	q, err := Compile(domain.Intent{Kind: domain.IntentTotalCount})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if q.SQL != "SELECT COUNT(*) FROM videos" || len(q.Args) != 0 {
		t.Fatalf("неожиданный запрос: %q %v", q.SQL, q.Args)
	}
}

func TestCompileUnresolved(t *testing.T) {
	if _, err := Compile(domain.Unresolved()); !errors.Is(err, domain.ErrUnresolved) {
		t.Fatalf("ожидали ErrUnresolved, получили %v", err)
	}
}

func TestCompileDeltaSumOnDate(t *testing.T) {
	day := domain.Day(2025, time.November, 28)
	q, err := Compile(domain.Intent{Kind: domain.IntentDeltaSumOnDate, Metric: domain.MetricViews, Period: &day})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !strings.Contains(q.SQL, "COALESCE(SUM(delta_views_count), 0)") {
		t.Fatalf("сумма дельт должна быть защищена COALESCE: %q", q.SQL)
	}
	if !strings.Contains(q.SQL, "created_at >= $1 AND created_at < $2") {
		t.Fatalf("ожидали полуинтервал по created_at: %q", q.SQL)
	}
	if len(q.Args) != 2 {
		t.Fatalf("ожидали 2 аргумента, получили %d", len(q.Args))
	}
	from, to := q.Args[0].(time.Time), q.Args[1].(time.Time)
	if !from.Equal(time.Date(2025, time.November, 28, 0, 0, 0, 0, time.UTC)) ||
		!to.Equal(time.Date(2025, time.November, 29, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("ожидали сутки 28 ноября, получили %s — %s", from, to)
	}
}

func TestCompileThresholdWithAndWithoutCreator(t *testing.T) {
	unscoped, err := Compile(domain.Intent{Kind: domain.IntentCountByMetricThreshold, Metric: domain.MetricViews, Threshold: int64p(100000)})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if strings.Contains(unscoped.SQL, "creator_id") {
		t.Fatalf("без креатора фильтра по creator_id быть не должно: %q", unscoped.SQL)
	}

	scoped, err := Compile(domain.Intent{
		Kind: domain.IntentCountByMetricThreshold, Metric: domain.MetricLikes,
		CreatorID: testCreator, Threshold: int64p(1000),
	})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !strings.Contains(scoped.SQL, "creator_id = $1") || !strings.Contains(scoped.SQL, "likes_count > $2") {
		t.Fatalf("креаторский порог скомпилирован неверно: %q", scoped.SQL)
	}
}

func TestCompileDistinctDelta(t *testing.T) {
	day := domain.Day(2025, time.November, 27)
	q, err := Compile(domain.Intent{Kind: domain.IntentDistinctDeltaOnDate, Metric: domain.MetricLikes, Period: &day})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !strings.Contains(q.SQL, "COUNT(DISTINCT video_id)") || !strings.Contains(q.SQL, "delta_likes_count > 0") {
		t.Fatalf("неожиданный запрос: %q", q.SQL)
	}
}

func TestCompileMissingParams(t *testing.T) {
	bad := []domain.Intent{
		{Kind: domain.IntentCountByCreatorDateRange, Period: june()},
		{Kind: domain.IntentCountByCreatorDateRange, CreatorID: testCreator},
		{Kind: domain.IntentCountByMetricThreshold, Metric: domain.MetricViews},
		{Kind: domain.IntentSumByDateRange, Metric: domain.MetricViews},
		{Kind: domain.IntentTotalMetric, Metric: "downloads"},
	}
	for _, in := range bad {
		if _, err := Compile(in); err == nil {
			t.Fatalf("интент %s с неполными параметрами должен давать ошибку", in.Kind)
		}
	}
}

// Каждый объявленный плейсхолдер шаблона связывается ровно один раз.
func TestCompileBindsEveryPlaceholder(t *testing.T) {
	intents := []domain.Intent{
		{Kind: domain.IntentTotalCount},
		{Kind: domain.IntentTotalMetric, Metric: domain.MetricLikes},
		{Kind: domain.IntentCountByCreatorDateRange, CreatorID: testCreator, Period: june()},
		{Kind: domain.IntentCountByMetricThreshold, Metric: domain.MetricViews, Threshold: int64p(1)},
		{Kind: domain.IntentCountByMetricThreshold, Metric: domain.MetricViews, CreatorID: testCreator, Threshold: int64p(1)},
		{Kind: domain.IntentCountByCreatorDateThreshold, Metric: domain.MetricLikes, CreatorID: testCreator, Period: june(), Threshold: int64p(5)},
		{Kind: domain.IntentSumByCreatorDateRange, Metric: domain.MetricComments, CreatorID: testCreator, Period: june()},
		{Kind: domain.IntentSumByDateRange, Metric: domain.MetricViews, Period: june()},
		{Kind: domain.IntentCountByDateRange, Period: june()},
		{Kind: domain.IntentDeltaSumOnDate, Metric: domain.MetricReports, Period: june()},
		{Kind: domain.IntentDistinctDeltaOnDate, Metric: domain.MetricViews, Period: june()},
	}
	for _, in := range intents {
		q, err := Compile(in)
		if err != nil {
			t.Fatalf("%s: не ожидали ошибку: %v", in.Kind, err)
		}
		for n := 1; n <= len(q.Args); n++ {
			ph := "$" + strconv.Itoa(n)
			if strings.Count(q.SQL, ph) != 1 {
				t.Fatalf("%s: плейсхолдер %s должен встречаться ровно один раз в %q", in.Kind, ph, q.SQL)
			}
		}
		if strings.Contains(q.SQL, "$"+strconv.Itoa(len(q.Args)+1)) {
			t.Fatalf("%s: несвязанный плейсхолдер в %q", in.Kind, q.SQL)
		}
		if strings.Contains(q.SQL, "SUM(") && !strings.Contains(q.SQL, "COALESCE(SUM(") {
			t.Fatalf("%s: сумма без COALESCE в %q", in.Kind, q.SQL)
		}
	}
}
