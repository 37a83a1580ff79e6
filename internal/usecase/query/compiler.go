package query

import (
	"fmt"

	"video-stats-bot/internal/domain"
)

// Имена колонок берутся из закрытого набора метрик и подставляются в
// шаблон как идентификаторы; все значения передаются только через
// позиционные параметры.
func metricColumn(m domain.Metric) (string, error) {
	switch m {
	case domain.MetricViews:
		return "views_count", nil
	case domain.MetricLikes:
		return "likes_count", nil
	case domain.MetricComments:
		return "comments_count", nil
	case domain.MetricReports:
		return "reports_count", nil
	}
	return "", fmt.Errorf("неизвестная метрика %q", m)
}

func deltaColumn(m domain.Metric) (string, error) {
	col, err := metricColumn(m)
	if err != nil {
		return "", err
	}
	return "delta_" + col, nil
}

// Compile отображает канонический интент в параметризованный скалярный
// запрос к таблицам videos и video_snapshots. Все суммы обёрнуты в
// COALESCE(..., 0), все диапазоны дат — полуинтервалы >= AND <.
func Compile(in domain.Intent) (domain.Query, error) {
	switch in.Kind {
	case domain.IntentTotalCount:
		return domain.Query{SQL: "SELECT COUNT(*) FROM videos"}, nil

	case domain.IntentTotalMetric:
		col, err := metricColumn(in.Metric)
		if err != nil {
			return domain.Query{}, err
		}
		return domain.Query{SQL: fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) FROM videos", col)}, nil

	case domain.IntentCountByCreatorDateRange:
		if err := requireCreator(in); err != nil {
			return domain.Query{}, err
		}
		if err := requirePeriod(in); err != nil {
			return domain.Query{}, err
		}
		return domain.Query{
			SQL:  "SELECT COUNT(*) FROM videos WHERE creator_id = $1 AND video_created_at >= $2 AND video_created_at < $3",
			Args: []any{in.CreatorID, in.Period.From, in.Period.To},
		}, nil

	case domain.IntentCountByMetricThreshold:
		col, err := metricColumn(in.Metric)
		if err != nil {
			return domain.Query{}, err
		}
		if err := requireThreshold(in); err != nil {
			return domain.Query{}, err
		}
		if in.CreatorID != "" {
			return domain.Query{
				SQL:  fmt.Sprintf("SELECT COUNT(*) FROM videos WHERE creator_id = $1 AND %s > $2", col),
				Args: []any{in.CreatorID, *in.Threshold},
			}, nil
		}
		return domain.Query{
			SQL:  fmt.Sprintf("SELECT COUNT(*) FROM videos WHERE %s > $1", col),
			Args: []any{*in.Threshold},
		}, nil

	case domain.IntentCountByCreatorDateThreshold:
		col, err := metricColumn(in.Metric)
		if err != nil {
			return domain.Query{}, err
		}
		if err := requireCreator(in); err != nil {
			return domain.Query{}, err
		}
		if err := requirePeriod(in); err != nil {
			return domain.Query{}, err
		}
		if err := requireThreshold(in); err != nil {
			return domain.Query{}, err
		}
		return domain.Query{
			SQL: fmt.Sprintf("SELECT COUNT(*) FROM videos WHERE creator_id = $1 AND video_created_at >= $2 AND video_created_at < $3 AND %s > $4", col),
			Args: []any{in.CreatorID, in.Period.From, in.Period.To, *in.Threshold},
		}, nil

	case domain.IntentSumByCreatorDateRange:
		col, err := metricColumn(in.Metric)
		if err != nil {
			return domain.Query{}, err
		}
		if err := requireCreator(in); err != nil {
			return domain.Query{}, err
		}
		if err := requirePeriod(in); err != nil {
			return domain.Query{}, err
		}
		return domain.Query{
			SQL: fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) FROM videos WHERE creator_id = $1 AND video_created_at >= $2 AND video_created_at < $3", col),
			Args: []any{in.CreatorID, in.Period.From, in.Period.To},
		}, nil

	case domain.IntentSumByDateRange:
		col, err := metricColumn(in.Metric)
		if err != nil {
			return domain.Query{}, err
		}
		if err := requirePeriod(in); err != nil {
			return domain.Query{}, err
		}
		return domain.Query{
			SQL:  fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) FROM videos WHERE video_created_at >= $1 AND video_created_at < $2", col),
			Args: []any{in.Period.From, in.Period.To},
		}, nil

	case domain.IntentCountByDateRange:
		if err := requirePeriod(in); err != nil {
			return domain.Query{}, err
		}
		return domain.Query{
			SQL:  "SELECT COUNT(*) FROM videos WHERE video_created_at >= $1 AND video_created_at < $2",
			Args: []any{in.Period.From, in.Period.To},
		}, nil

	case domain.IntentDeltaSumOnDate:
		col, err := deltaColumn(in.Metric)
		if err != nil {
			return domain.Query{}, err
		}
		if err := requirePeriod(in); err != nil {
			return domain.Query{}, err
		}
		return domain.Query{
			SQL:  fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) FROM video_snapshots WHERE created_at >= $1 AND created_at < $2", col),
			Args: []any{in.Period.From, in.Period.To},
		}, nil

	case domain.IntentDistinctDeltaOnDate:
		col, err := deltaColumn(in.Metric)
		if err != nil {
			return domain.Query{}, err
		}
		if err := requirePeriod(in); err != nil {
			return domain.Query{}, err
		}
		return domain.Query{
			SQL:  fmt.Sprintf("SELECT COUNT(DISTINCT video_id) FROM video_snapshots WHERE created_at >= $1 AND created_at < $2 AND %s > 0", col),
			Args: []any{in.Period.From, in.Period.To},
		}, nil
	}
	return domain.Query{}, domain.ErrUnresolved
}

func requireCreator(in domain.Intent) error {
	if in.CreatorID == "" {
		return fmt.Errorf("интент %s без идентификатора креатора", in.Kind)
	}
	return nil
}

func requirePeriod(in domain.Intent) error {
	if in.Period == nil || !in.Period.From.Before(in.Period.To) {
		return fmt.Errorf("интент %s без корректного периода", in.Kind)
	}
	return nil
}

func requireThreshold(in domain.Intent) error {
	if in.Threshold == nil || *in.Threshold < 0 {
		return fmt.Errorf("интент %s без корректного порога", in.Kind)
	}
	return nil
}
