package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"video-stats-bot/internal/domain"
	"video-stats-bot/internal/infra/metrics"
)

// Postgres реализует domain.StatsRepo на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.StatsRepo = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 5*time.Second)
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// QueryScalar выполняет параметризованный запрос и возвращает одно
// целое. Шаблоны строятся компилятором так, что пустая выборка даёт 0,
// а не NULL, поэтому скан идёт сразу в int64.
func (p *Postgres) QueryScalar(ctx context.Context, q domain.Query) (int64, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	var result int64
	err := p.pool.QueryRow(ctx, q.SQL, q.Args...).Scan(&result)
	metrics.ScalarQuerySeconds.Observe(time.Since(start).Seconds())
	metrics.ObserveNetworkRequest("postgres", "scalar_query", queryTarget(q.SQL), start, err)
	if err != nil {
		return 0, fmt.Errorf("скалярный запрос: %w", err)
	}
	return result, nil
}

// queryTarget достаёт имя таблицы из шаблона для метрик.
func queryTarget(sql string) string {
	_, after, ok := strings.Cut(sql, " FROM ")
	if !ok {
		return ""
	}
	table, _, _ := strings.Cut(after, " ")
	return table
}

const videoInsert = `
INSERT INTO videos (id, creator_id, video_created_at, views_count, likes_count,
	comments_count, reports_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO NOTHING
`

const snapshotInsert = `
INSERT INTO video_snapshots (id, video_id, views_count, likes_count, comments_count,
	reports_count, delta_views_count, delta_likes_count, delta_comments_count,
	delta_reports_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING
`

// InsertVideos загружает видео и их снапшоты одной транзакцией.
// Повторная загрузка того же файла безопасна: конфликтующие строки
// пропускаются.
func (p *Postgres) InsertVideos(ctx context.Context, videos []domain.Video, snapshots []domain.VideoSnapshot) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, v := range videos {
		batch.Queue(videoInsert,
			v.ID, v.CreatorID, v.PublishedAt,
			v.ViewsCount, v.LikesCount, v.CommentsCount, v.ReportsCount,
			v.CreatedAt, v.UpdatedAt)
	}
	for _, s := range snapshots {
		batch.Queue(snapshotInsert,
			s.ID, s.VideoID,
			s.ViewsCount, s.LikesCount, s.CommentsCount, s.ReportsCount,
			s.DeltaViewsCount, s.DeltaLikesCount, s.DeltaCommentsCount, s.DeltaReportsCount,
			s.CreatedAt, s.UpdatedAt)
	}

	start := time.Now()
	err = tx.SendBatch(ctx, batch).Close()
	metrics.ObserveNetworkRequest("postgres", "bulk_insert", "videos", start, err)
	if err != nil {
		return fmt.Errorf("пакетная вставка: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("фиксация транзакции: %w", err)
	}
	metrics.LoaderVideosTotal.Add(float64(len(videos)))
	metrics.LoaderSnapshotsTotal.Add(float64(len(snapshots)))
	return nil
}
