package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"video-stats-bot/internal/domain"
)

// Loader разбирает файл снапшотов и загружает его в хранилище.
type Loader struct {
	repo domain.StatsRepo
	log  zerolog.Logger
}

// New создаёт загрузчик.
func New(repo domain.StatsRepo, log zerolog.Logger) *Loader {
	return &Loader{repo: repo, log: log}
}

type snapshotRecord struct {
	ID                 string `json:"id"`
	VideoID            string `json:"video_id"`
	ViewsCount         int64  `json:"views_count"`
	LikesCount         int64  `json:"likes_count"`
	CommentsCount      int64  `json:"comments_count"`
	ReportsCount       int64  `json:"reports_count"`
	DeltaViewsCount    int64  `json:"delta_views_count"`
	DeltaLikesCount    int64  `json:"delta_likes_count"`
	DeltaCommentsCount int64  `json:"delta_comments_count"`
	DeltaReportsCount  int64  `json:"delta_reports_count"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type videoRecord struct {
	ID             string           `json:"id"`
	CreatorID      string           `json:"creator_id"`
	VideoCreatedAt string           `json:"video_created_at"`
	ViewsCount     int64            `json:"views_count"`
	LikesCount     int64            `json:"likes_count"`
	CommentsCount  int64            `json:"comments_count"`
	ReportsCount   int64            `json:"reports_count"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
	Snapshots      []snapshotRecord `json:"snapshots"`
}

type snapshotFile struct {
	Videos []videoRecord `json:"videos"`
}

// Run читает файл, разбирает записи и вставляет их одной транзакцией.
func (l *Loader) Run(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("чтение %s: %w", path, err)
	}
	var file snapshotFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("разбор %s: %w", path, err)
	}
	l.log.Info().Int("videos", len(file.Videos)).Msg("файл снапшотов прочитан")

	videos := make([]domain.Video, 0, len(file.Videos))
	var snapshots []domain.VideoSnapshot
	for i, rec := range file.Videos {
		video, vs, err := convertVideo(rec)
		if err != nil {
			return fmt.Errorf("видео #%d (%s): %w", i, rec.ID, err)
		}
		videos = append(videos, video)
		snapshots = append(snapshots, vs...)
		if (i+1)%50 == 0 {
			l.log.Info().Int("processed", i+1).Int("total", len(file.Videos)).Msg("разбор продолжается")
		}
	}

	if err := l.repo.InsertVideos(ctx, videos, snapshots); err != nil {
		return err
	}
	l.log.Info().Int("videos", len(videos)).Int("snapshots", len(snapshots)).Msg("загрузка завершена")
	return nil
}

func convertVideo(rec videoRecord) (domain.Video, []domain.VideoSnapshot, error) {
	publishedAt, err := parseTimestamp(rec.VideoCreatedAt)
	if err != nil {
		return domain.Video{}, nil, fmt.Errorf("video_created_at: %w", err)
	}
	createdAt, err := parseTimestamp(rec.CreatedAt)
	if err != nil {
		return domain.Video{}, nil, fmt.Errorf("created_at: %w", err)
	}
	updatedAt, err := parseTimestamp(rec.UpdatedAt)
	if err != nil {
		return domain.Video{}, nil, fmt.Errorf("updated_at: %w", err)
	}
	video := domain.Video{
		ID:            rec.ID,
		CreatorID:     rec.CreatorID,
		PublishedAt:   publishedAt,
		ViewsCount:    rec.ViewsCount,
		LikesCount:    rec.LikesCount,
		CommentsCount: rec.CommentsCount,
		ReportsCount:  rec.ReportsCount,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	snapshots := make([]domain.VideoSnapshot, 0, len(rec.Snapshots))
	for _, s := range rec.Snapshots {
		sCreated, err := parseTimestamp(s.CreatedAt)
		if err != nil {
			return domain.Video{}, nil, fmt.Errorf("снапшот %s created_at: %w", s.ID, err)
		}
		sUpdated, err := parseTimestamp(s.UpdatedAt)
		if err != nil {
			return domain.Video{}, nil, fmt.Errorf("снапшот %s updated_at: %w", s.ID, err)
		}
		snapshots = append(snapshots, domain.VideoSnapshot{
			ID:                 s.ID,
			VideoID:            s.VideoID,
			ViewsCount:         s.ViewsCount,
			LikesCount:         s.LikesCount,
			CommentsCount:      s.CommentsCount,
			ReportsCount:       s.ReportsCount,
			DeltaViewsCount:    s.DeltaViewsCount,
			DeltaLikesCount:    s.DeltaLikesCount,
			DeltaCommentsCount: s.DeltaCommentsCount,
			DeltaReportsCount:  s.DeltaReportsCount,
			CreatedAt:          sCreated,
			UpdatedAt:          sUpdated,
		})
	}
	return video, snapshots, nil
}

// parseTimestamp принимает варианты ISO 8601, встречающиеся в выгрузке:
// с дробными секундами и без, со смещением и без него.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("пустая метка времени")
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("нераспознанная метка времени %q", s)
}
