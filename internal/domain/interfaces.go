package domain

import (
	"context"
	"errors"
	"time"
)

// ErrUnresolved возвращается компилятором для нераспознанного интента.
var ErrUnresolved = errors.New("вопрос не распознан")

// Query — параметризованный скалярный запрос к хранилищу.
type Query struct {
	SQL  string
	Args []any
}

// IntentResolver превращает текст вопроса в канонический интент.
// Ошибка означает мягкий отказ: вызывающая сторона переходит к
// детерминированному разбору, пользователю она не показывается.
type IntentResolver interface {
	Resolve(ctx context.Context, text string) (Intent, error)
}

// StatsRepo выполняет скалярные запросы и принимает загрузку снапшотов.
type StatsRepo interface {
	QueryScalar(ctx context.Context, q Query) (int64, error)
	InsertVideos(ctx context.Context, videos []Video, snapshots []VideoSnapshot) error
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}
