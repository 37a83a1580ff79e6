package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"video-stats-bot/internal/adapters/ai"
	"video-stats-bot/internal/adapters/bot"
	"video-stats-bot/internal/adapters/repo"
	"video-stats-bot/internal/domain"
	"video-stats-bot/internal/infra/cache"
	"video-stats-bot/internal/infra/config"
	"video-stats-bot/internal/infra/db"
	"video-stats-bot/internal/infra/log"
	"video-stats-bot/internal/infra/metrics"
	openai "video-stats-bot/internal/infra/openai"
	"video-stats-bot/internal/usecase/query"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv, "bot-gateway")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	defer pool.Close()
	statsRepo := repo.NewPostgres(pool)

	// AI-путь включается только наличием ключа; без него разбор
	// работает на одних правилах.
	var resolver domain.IntentResolver
	if cfg.DeepSeek.APIKey != "" {
		client := openai.NewClient(cfg.DeepSeek.APIKey, cfg.DeepSeek.BaseURL, time.Duration(cfg.DeepSeek.TimeoutSeconds)*time.Second)
		resolver = ai.NewDeepSeek(client, cfg.DeepSeek.Model, time.Duration(cfg.DeepSeek.TimeoutSeconds)*time.Second)
		logger.Info().Str("model", cfg.DeepSeek.Model).Msg("AI-разбор включён")
	} else {
		logger.Info().Msg("AI-разбор выключен, работают только правила")
	}
	resolution := query.NewService(resolver, logger)

	var answers domain.Cache
	if cfg.RedisAddr != "" {
		answers = cache.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}

	h := bot.NewHandler(botAPI, logger, resolution, statsRepo, answers, time.Duration(cfg.Cache.AnswerTTLSeconds)*time.Second)

	rootCtx, stopNotify := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stopNotify()

	metrics.StartServer(rootCtx, logger, cfg.MetricsAddr)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/bot/webhook", func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.HandleUpdate(r.Context(), update)
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: r}
	go func() {
		logger.Info().Int("port", cfg.Port).Msg("бот-гейтвей запущен")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("остановка бота")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

var _ domain.StatsRepo = (*repo.Postgres)(nil)
