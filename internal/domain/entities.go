package domain

import "time"

// Video описывает финальную статистику одного видео.
type Video struct {
	ID            string
	CreatorID     string
	PublishedAt   time.Time
	ViewsCount    int64
	LikesCount    int64
	CommentsCount int64
	ReportsCount  int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// VideoSnapshot хранит почасовой срез метрик видео и приращения
// относительно предыдущего среза.
type VideoSnapshot struct {
	ID                 string
	VideoID            string
	ViewsCount         int64
	LikesCount         int64
	CommentsCount      int64
	ReportsCount       int64
	DeltaViewsCount    int64
	DeltaLikesCount    int64
	DeltaCommentsCount int64
	DeltaReportsCount  int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Metric перечисляет поддерживаемые метрики видео.
type Metric string

const (
	MetricViews    Metric = "views"
	MetricLikes    Metric = "likes"
	MetricComments Metric = "comments"
	MetricReports  Metric = "reports"
)

// Valid сообщает, входит ли метрика в закрытый набор.
func (m Metric) Valid() bool {
	switch m {
	case MetricViews, MetricLikes, MetricComments, MetricReports:
		return true
	}
	return false
}
