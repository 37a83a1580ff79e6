package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"video-stats-bot/internal/domain"
	openai "video-stats-bot/internal/infra/openai"
)

type stubChat struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatMessage{Content: s.content}}},
	}, nil
}

func TestResolveStructuredIntent(t *testing.T) {
	chat := &stubChat{content: `{"intent": "count_by_metric_threshold", "metric": "views", "threshold": 100000}`}
	r := NewDeepSeek(chat, "deepseek-chat", time.Second)
	intent, err := r.Resolve(context.Background(), "Сколько видео набрало больше 100000 просмотров?")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if intent.Kind != domain.IntentCountByMetricThreshold || *intent.Threshold != 100000 {
		t.Fatalf("неожиданный интент: %+v", intent)
	}
	if chat.lastReq.Temperature != 0.05 || chat.lastReq.MaxTokens != 300 {
		t.Fatalf("параметры запроса разошлись: %+v", chat.lastReq)
	}
}

func TestResolveJSONWrappedInProse(t *testing.T) {
	chat := &stubChat{content: "Вот разбор:\n```json\n{\"intent\": \"total_count\"}\n```\nГотово."}
	r := NewDeepSeek(chat, "", 0)
	intent, err := r.Resolve(context.Background(), "Сколько всего видео?")
	if err != nil {
		t.Fatalf("JSON в прозе должен извлекаться: %v", err)
	}
	if intent.Kind != domain.IntentTotalCount {
		t.Fatalf("ожидали total_count, получили %s", intent.Kind)
	}
}

func TestResolveUnknownSentinel(t *testing.T) {
	chat := &stubChat{content: `{"intent": "UNKNOWN"}`}
	r := NewDeepSeek(chat, "", 0)
	if _, err := r.Resolve(context.Background(), "Расскажи анекдот"); err == nil {
		t.Fatal("UNKNOWN должен давать мягкий отказ")
	}
}

func TestResolveNetworkFailure(t *testing.T) {
	chat := &stubChat{err: errors.New("connection refused")}
	r := NewDeepSeek(chat, "", 0)
	if _, err := r.Resolve(context.Background(), "Сколько всего видео?"); err == nil {
		t.Fatal("сетевая ошибка должна возвращаться как ошибка")
	}
}

func TestResolveRejectsRawSQL(t *testing.T) {
	chat := &stubChat{content: `{"sql": "SELECT COUNT(*) FROM videos; DROP TABLE videos"}`}
	r := NewDeepSeek(chat, "", 0)
	if _, err := r.Resolve(context.Background(), "Сколько всего видео?"); err == nil {
		t.Fatal("сырой SQL от модели должен отклоняться")
	}
}

func TestResolveValidatesFields(t *testing.T) {
	bad := []string{
		`{"intent": "drop_everything"}`,
		`{"intent": "total_metric", "metric": "downloads"}`,
		`{"intent": "count_by_metric_threshold", "metric": "comments", "threshold": 5}`,
		`{"intent": "count_by_metric_threshold", "metric": "views"}`,
		`{"intent": "count_by_creator_date_range", "creator_id": "abc", "from": "2025-06-01", "to": "2025-07-01"}`,
		`{"intent": "count_by_creator_date_range", "creator_id": "aca1061a9d324ecf8c3fa2bb32d7be63", "from": "2025-07-01", "to": "2025-06-01"}`,
		`{"intent": "delta_sum_on_date", "metric": "views", "date": "вчера"}`,
		`это вообще не JSON`,
	}
	for _, content := range bad {
		r := NewDeepSeek(&stubChat{content: content}, "", 0)
		if _, err := r.Resolve(context.Background(), "вопрос"); err == nil {
			t.Fatalf("ответ %q должен отклоняться", content)
		}
	}
}

func TestResolveDateBecomesDayRange(t *testing.T) {
	chat := &stubChat{content: `{"intent": "delta_sum_on_date", "metric": "likes", "date": "2025-11-28"}`}
	r := NewDeepSeek(chat, "", 0)
	intent, err := r.Resolve(context.Background(), "На сколько лайков выросли видео 28 ноября?")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if intent.Period == nil {
		t.Fatal("суточный период не построен")
	}
	if !intent.Period.To.Equal(intent.Period.From.AddDate(0, 0, 1)) {
		t.Fatalf("ожидали сутки, получили [%s, %s)", intent.Period.From, intent.Period.To)
	}
}

func TestFirstJSONObjectNested(t *testing.T) {
	raw, ok := firstJSONObject(`прелюдия {"a": {"b": "скобка }"}, "c": 1} хвост`)
	if !ok {
		t.Fatal("вложенный объект не найден")
	}
	if raw != `{"a": {"b": "скобка }"}, "c": 1}` {
		t.Fatalf("границы объекта определены неверно: %q", raw)
	}
}
