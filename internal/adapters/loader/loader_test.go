package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"video-stats-bot/internal/domain"
)

type stubRepo struct {
	videos    []domain.Video
	snapshots []domain.VideoSnapshot
}

func (s *stubRepo) QueryScalar(context.Context, domain.Query) (int64, error) { return 0, nil }
func (s *stubRepo) InsertVideos(_ context.Context, videos []domain.Video, snapshots []domain.VideoSnapshot) error {
	s.videos = videos
	s.snapshots = snapshots
	return nil
}

const sampleFile = `{
  "videos": [
    {
      "id": "0a53bd3c-8d56-4740-a6a1-c76d0cbd6bbf",
      "creator_id": "aca1061a-9d32-4ecf-8c3f-a2bb32d7be63",
      "video_created_at": "2025-11-20T10:00:00+00:00",
      "views_count": 100,
      "likes_count": 10,
      "comments_count": 1,
      "reports_count": 0,
      "created_at": "2025-11-20T10:00:00.123456+00:00",
      "updated_at": "2025-11-20T10:00:00",
      "snapshots": [
        {
          "id": "7e7a9e6e-1111-4c70-a9ad-60dcd5f86e5a",
          "video_id": "0a53bd3c-8d56-4740-a6a1-c76d0cbd6bbf",
          "views_count": 50,
          "likes_count": 5,
          "comments_count": 0,
          "reports_count": 0,
          "delta_views_count": 50,
          "delta_likes_count": 5,
          "delta_comments_count": 0,
          "delta_reports_count": 0,
          "created_at": "2025-11-20T11:00:00+00:00",
          "updated_at": "2025-11-20T11:00:00+00:00"
        }
      ]
    }
  ]
}`

func TestRunLoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videos.json")
	if err := os.WriteFile(path, []byte(sampleFile), 0o600); err != nil {
		t.Fatalf("запись временного файла: %v", err)
	}

	repo := &stubRepo{}
	l := New(repo, zerolog.Nop())
	if err := l.Run(context.Background(), path); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(repo.videos) != 1 || len(repo.snapshots) != 1 {
		t.Fatalf("ожидали 1 видео и 1 снапшот, получили %d и %d", len(repo.videos), len(repo.snapshots))
	}
	v := repo.videos[0]
	if v.ViewsCount != 100 || v.CreatorID != "aca1061a-9d32-4ecf-8c3f-a2bb32d7be63" {
		t.Fatalf("видео разобрано неверно: %+v", v)
	}
	want := time.Date(2025, time.November, 20, 10, 0, 0, 0, time.UTC)
	if !v.PublishedAt.Equal(want) {
		t.Fatalf("ожидали дату публикации %s, получили %s", want, v.PublishedAt)
	}
	if repo.snapshots[0].DeltaViewsCount != 50 {
		t.Fatalf("дельта снапшота потеряна: %+v", repo.snapshots[0])
	}
}

func TestRunMissingFile(t *testing.T) {
	l := New(&stubRepo{}, zerolog.Nop())
	if err := l.Run(context.Background(), "нет-такого-файла.json"); err == nil {
		t.Fatal("ожидали ошибку на отсутствующем файле")
	}
}

func TestParseTimestampVariants(t *testing.T) {
	want := time.Date(2025, time.November, 20, 10, 0, 0, 0, time.UTC)
	for _, s := range []string{
		"2025-11-20T10:00:00+00:00",
		"2025-11-20T10:00:00Z",
		"2025-11-20T10:00:00",
	} {
		got, err := parseTimestamp(s)
		if err != nil {
			t.Fatalf("%q: не ожидали ошибку: %v", s, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: ожидали %s, получили %s", s, want, got)
		}
	}
	if _, err := parseTimestamp("позавчера"); err == nil {
		t.Fatal("мусорная метка времени должна давать ошибку")
	}
}
