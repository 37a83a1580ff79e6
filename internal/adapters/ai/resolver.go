package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"video-stats-bot/internal/domain"
	openai "video-stats-bot/internal/infra/openai"
	"video-stats-bot/internal/usecase/query"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// DeepSeek разбирает вопрос через внешнюю модель. Ответ модели —
// структурированный интент, а не готовый SQL: единственным местом,
// которое строит SQL, остаётся компилятор, поэтому ответ модели
// нечему выполнять дословно.
type DeepSeek struct {
	client  chatClient
	model   string
	timeout time.Duration
}

// NewDeepSeek создаёт AI-резолвер.
func NewDeepSeek(client chatClient, model string, timeout time.Duration) *DeepSeek {
	if model == "" {
		model = "deepseek-chat"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &DeepSeek{client: client, model: model, timeout: timeout}
}

const systemPrompt = `You classify Russian questions about video statistics into a closed set of intents.

=== DATABASE (context only, do NOT write SQL) ===

videos: final stats per video — id, creator_id, video_created_at, views_count, likes_count, comments_count, reports_count.
video_snapshots: hourly observations — video_id, created_at, the four metric columns and their per-hour deltas.

=== OUTPUT CONTRACT ===

Respond with exactly one JSON object and nothing else:
{"intent": "<name>", "metric": "...", "creator_id": "...", "from": "YYYY-MM-DD", "to": "YYYY-MM-DD", "date": "YYYY-MM-DD", "threshold": N}

Omit fields the intent does not need. If the question maps to no intent, respond {"intent": "UNKNOWN"}.

Intents:
- total_count — count of all videos.
- total_metric — sum of one metric over all videos (needs metric).
- count_by_creator_date_range — needs creator_id, from, to.
- count_by_metric_threshold — needs metric (views or likes), threshold; creator_id optional.
- count_by_creator_date_threshold — needs creator_id, from, to, metric, threshold.
- sum_by_creator_date_range — needs creator_id, from, to, metric.
- sum_by_date_range — sum of metric over videos published in [from, to).
- count_by_date_range — count of videos published in [from, to).
- delta_sum_on_date — sum of hourly deltas for one day (needs date, metric).
- distinct_delta_on_date — count of distinct videos with positive delta that day (needs date, metric).

Rules:
- metric is one of: views, likes, comments, reports.
- All ranges are half-open [from, to): a month is the 1st to the 1st of the next month, a single day is date to date+1.
- Default year is 2025 when the question omits it.
- creator_id is passed through exactly as written in the question.
- "вырос", "прирост", "дельта" mean delta intents, never totals.
- "больше N"/"более N" is a threshold; a bare number (including a year) is not.

Examples:
Q: "Сколько всего видео?" → {"intent": "total_count"}
Q: "Какое общее количество лайков?" → {"intent": "total_metric", "metric": "likes"}
Q: "Сколько видео набрало больше 100000 просмотров?" → {"intent": "count_by_metric_threshold", "metric": "views", "threshold": 100000}
Q: "На сколько просмотров выросли все видео 28 ноября 2025?" → {"intent": "delta_sum_on_date", "metric": "views", "date": "2025-11-28"}
Q: "Сколько видео у креатора aca1061a9d324ecf8c3fa2bb32d7be63 за июнь набрали больше 50000 просмотров?" → {"intent": "count_by_creator_date_threshold", "creator_id": "aca1061a9d324ecf8c3fa2bb32d7be63", "from": "2025-06-01", "to": "2025-07-01", "metric": "views", "threshold": 50000}
Q: "Сколько разных видео получили новые просмотры 27 ноября?" → {"intent": "distinct_delta_on_date", "metric": "views", "date": "2025-11-27"}
Q: "Расскажи анекдот" → {"intent": "UNKNOWN"}`

type intentPayload struct {
	Intent    string `json:"intent"`
	Metric    string `json:"metric,omitempty"`
	CreatorID string `json:"creator_id,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Date      string `json:"date,omitempty"`
	Threshold *int64 `json:"threshold,omitempty"`
	SQL       string `json:"sql,omitempty"`
}

// Resolve реализует domain.IntentResolver. Любая ошибка здесь — мягкий
// отказ: оркестратор уходит в детерминированный разбор, пользователь
// ошибки не видит.
func (d *DeepSeek) Resolve(ctx context.Context, text string) (domain.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       d.model,
		Temperature: 0.05,
		MaxTokens:   300,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: systemPrompt},
			{Role: openai.RoleUser, Content: "Classify this Russian question: " + text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ResponseFormatTypeJSONObject},
	}

	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.Intent{}, fmt.Errorf("deepseek completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Intent{}, fmt.Errorf("deepseek completion: пустой ответ")
	}
	return parseReply(resp.Choices[0].Message.Content)
}

func parseReply(content string) (domain.Intent, error) {
	raw, ok := firstJSONObject(content)
	if !ok {
		return domain.Intent{}, fmt.Errorf("в ответе модели нет JSON-объекта")
	}
	var payload intentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.Intent{}, fmt.Errorf("распаковка ответа модели: %w", err)
	}
	if payload.Intent == "" && payload.SQL != "" {
		// Сырой SQL от модели не параметризуется безопасно, поэтому
		// отклоняется наравне с мусорным ответом.
		return domain.Intent{}, fmt.Errorf("модель вернула сырой SQL вместо интента")
	}
	if payload.Intent == "" || strings.EqualFold(payload.Intent, "UNKNOWN") {
		return domain.Intent{}, fmt.Errorf("модель не распознала вопрос")
	}
	return toIntent(payload)
}

// toIntent проверяет каждый параметр против закрытых наборов: незнакомый
// интент, метрика вне списка, кривой идентификатор или дата делают весь
// ответ недействительным.
func toIntent(p intentPayload) (domain.Intent, error) {
	kind := domain.IntentKind(p.Intent)
	intent := domain.Intent{Kind: kind}

	needMetric := false
	needCreator := false
	needPeriod := false
	needDate := false
	needThreshold := false

	switch kind {
	case domain.IntentTotalCount:
	case domain.IntentTotalMetric:
		needMetric = true
	case domain.IntentCountByCreatorDateRange:
		needCreator, needPeriod = true, true
	case domain.IntentCountByMetricThreshold:
		needMetric, needThreshold = true, true
	case domain.IntentCountByCreatorDateThreshold:
		needCreator, needPeriod, needMetric, needThreshold = true, true, true, true
	case domain.IntentSumByCreatorDateRange:
		needCreator, needPeriod, needMetric = true, true, true
	case domain.IntentSumByDateRange:
		needPeriod, needMetric = true, true
	case domain.IntentCountByDateRange:
		needPeriod = true
	case domain.IntentDeltaSumOnDate, domain.IntentDistinctDeltaOnDate:
		needDate, needMetric = true, true
	default:
		return domain.Intent{}, fmt.Errorf("неизвестный интент %q", p.Intent)
	}

	if needMetric {
		m := domain.Metric(p.Metric)
		if !m.Valid() {
			return domain.Intent{}, fmt.Errorf("метрика %q вне набора", p.Metric)
		}
		if kind == domain.IntentCountByMetricThreshold || kind == domain.IntentCountByCreatorDateThreshold {
			if m != domain.MetricViews && m != domain.MetricLikes {
				return domain.Intent{}, fmt.Errorf("порог по метрике %q не поддерживается", p.Metric)
			}
		}
		intent.Metric = m
	}
	if needCreator || (kind == domain.IntentCountByMetricThreshold && p.CreatorID != "") {
		if !query.IsCreatorID(p.CreatorID) {
			return domain.Intent{}, fmt.Errorf("идентификатор креатора %q не распознан", p.CreatorID)
		}
		intent.CreatorID = p.CreatorID
	}
	if needPeriod {
		from, err := parseDate(p.From)
		if err != nil {
			return domain.Intent{}, fmt.Errorf("граница from: %w", err)
		}
		to, err := parseDate(p.To)
		if err != nil {
			return domain.Intent{}, fmt.Errorf("граница to: %w", err)
		}
		if !from.Before(to) {
			return domain.Intent{}, fmt.Errorf("период [%s, %s) пуст", p.From, p.To)
		}
		intent.Period = &domain.DateRange{From: from, To: to}
	}
	if needDate {
		day, err := parseDate(p.Date)
		if err != nil {
			return domain.Intent{}, fmt.Errorf("дата: %w", err)
		}
		r := domain.Day(day.Year(), day.Month(), day.Day())
		intent.Period = &r
	}
	if needThreshold {
		if p.Threshold == nil || *p.Threshold < 0 {
			return domain.Intent{}, fmt.Errorf("порог отсутствует или отрицателен")
		}
		intent.Threshold = p.Threshold
	}
	return intent, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("пустая дата")
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// firstJSONObject выделяет первый сбалансированный объект JSON: модель
// может обернуть ответ прозой несмотря на контракт.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
