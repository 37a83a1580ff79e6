package main

import (
	"context"
	"flag"

	"video-stats-bot/internal/adapters/loader"
	"video-stats-bot/internal/adapters/repo"
	"video-stats-bot/internal/infra/config"
	"video-stats-bot/internal/infra/db"
	"video-stats-bot/internal/infra/log"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv, "loader")

	path := flag.String("file", cfg.LoaderFile, "путь к файлу снапшотов")
	flag.Parse()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	defer pool.Close()

	l := loader.New(repo.NewPostgres(pool), logger)
	if err := l.Run(context.Background(), *path); err != nil {
		logger.Fatal().Err(err).Msg("загрузка не удалась")
	}
}
