package query

import (
	"context"

	"github.com/rs/zerolog"

	"video-stats-bot/internal/domain"
)

// Source указывает, какой путь разбора дал итоговый интент.
type Source string

const (
	// SourceAI — интент получен от внешней модели.
	SourceAI Source = "ai"
	// SourcePatterns — интент получен детерминированным классификатором.
	SourcePatterns Source = "patterns"
)

// Service — оркестратор разбора: сперва необязательная модель, затем
// всегда завершающийся детерминированный классификатор. Состояние между
// сообщениями не переносится, повторных попыток нет.
type Service struct {
	resolver domain.IntentResolver
	log      zerolog.Logger
}

// NewService создаёт оркестратор. resolver == nil отключает AI-путь.
func NewService(resolver domain.IntentResolver, log zerolog.Logger) *Service {
	return &Service{resolver: resolver, log: log}
}

// Resolve возвращает ровно один канонический интент на сообщение.
// Любой сбой AI-пути (сеть, таймаут, мусорный ответ, UNKNOWN) — мягкий:
// он логируется и разбор продолжается по правилам.
func (s *Service) Resolve(ctx context.Context, text string) (domain.Intent, Source) {
	if s.resolver != nil {
		intent, err := s.resolver.Resolve(ctx, text)
		switch {
		case err != nil:
			s.log.Debug().Err(err).Msg("AI-разбор не удался, переходим к правилам")
		case intent.IsResolved():
			return intent, SourceAI
		}
	}
	intent, rule := classifyNamed(text)
	if rule != "" {
		s.log.Debug().Str("rule", rule).Str("kind", string(intent.Kind)).Msg("интент распознан правилом")
	}
	return intent, SourcePatterns
}
