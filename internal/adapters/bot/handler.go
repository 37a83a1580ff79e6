package bot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"video-stats-bot/internal/domain"
	"video-stats-bot/internal/infra/metrics"
	"video-stats-bot/internal/usecase/query"
)

// Тексты ответов: справка для нераспознанных вопросов отличается от
// сообщения об ошибке выполнения, чтобы "не понял" и "не смог" были
// различимы для пользователя.
const (
	greetingText = `Привет! Я бот для статистики видео 🎬

Задайте вопрос, я отвечу числом.

Примеры:
• Сколько всего видео?
• Какое общее количество лайков?
• Сколько видео набрало больше 100000 просмотров?`

	helpText = `Не понял вопрос. Попробуйте спросить по-другому.

Примеры:
• Сколько всего видео?
• Какое общее количество лайков?
• Сколько видео набрало больше 100000 просмотров?
• Сколько видео появилось за май 2025?`

	execErrorText = "Ошибка выполнения запроса: "
)

// Handler обслуживает апдейты бота: команды и вопросы о статистике.
type Handler struct {
	bot       *tgbotapi.BotAPI
	log       zerolog.Logger
	resolver  *query.Service
	stats     domain.StatsRepo
	answers   domain.Cache // nil — кэш отключён
	answerTTL time.Duration
}

// NewHandler создаёт обработчик.
func NewHandler(bot *tgbotapi.BotAPI, log zerolog.Logger, resolver *query.Service, stats domain.StatsRepo, answers domain.Cache, answerTTL time.Duration) *Handler {
	return &Handler{
		bot:       bot,
		log:       log,
		resolver:  resolver,
		stats:     stats,
		answers:   answers,
		answerTTL: answerTTL,
	}
}

// HandleUpdate обрабатывает входящий апдейт.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	h.handleMessage(ctx, upd.Message)
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		h.reply(msg.Chat.ID, greetingText)
	case strings.HasPrefix(text, "/"):
		h.reply(msg.Chat.ID, helpText)
	default:
		h.answer(ctx, msg.Chat.ID, text)
	}
}

func (h *Handler) answer(ctx context.Context, chatID int64, text string) {
	log := h.log.With().Int64("chat_id", chatID).Logger()
	log.Info().Str("question", text).Msg("получен вопрос")

	cacheKey := answerKey(text)
	if h.answers != nil {
		if cached, err := h.answers.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			h.reply(chatID, string(cached))
			return
		}
	}

	intent, source := h.resolver.Resolve(ctx, text)
	if !intent.IsResolved() {
		metrics.ObserveResolution(string(source), "unresolved")
		h.reply(chatID, helpText)
		return
	}
	metrics.ObserveResolution(string(source), string(intent.Kind))

	q, err := query.Compile(intent)
	if err != nil {
		log.Error().Err(err).Str("kind", string(intent.Kind)).Msg("интент не скомпилировался")
		h.reply(chatID, execErrorText+err.Error())
		return
	}

	result, err := h.stats.QueryScalar(ctx, q)
	if err != nil {
		log.Error().Err(err).Str("sql", q.SQL).Msg("ошибка выполнения запроса")
		h.reply(chatID, execErrorText+err.Error())
		return
	}

	answer := strconv.FormatInt(result, 10)
	log.Info().Str("kind", string(intent.Kind)).Str("answer", answer).Msg("вопрос отвечен")
	if h.answers != nil {
		if err := h.answers.Set(ctx, cacheKey, []byte(answer), h.answerTTL); err != nil {
			log.Debug().Err(err).Msg("кэш ответа недоступен")
		}
	}
	h.reply(chatID, answer)
}

func (h *Handler) reply(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		metrics.BotSendErrors.Inc()
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("не удалось отправить сообщение")
	}
}

func answerKey(text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return "answer:" + hex.EncodeToString(sum[:8])
}
