package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов. Загружается один раз при
// старте процесса и дальше передаётся явно, глобально не читается.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Telegram struct {
		Token      string `envconfig:"TG_BOT_TOKEN"`
		WebhookURL string `envconfig:"TG_WEBHOOK_URL"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	// DeepSeek включается наличием ключа; пустой ключ означает, что
	// разбор идёт только детерминированными правилами.
	DeepSeek struct {
		APIKey         string `envconfig:"DEEPSEEK_API_KEY"`
		BaseURL        string `envconfig:"DEEPSEEK_BASE_URL" default:"https://api.deepseek.com"`
		Model          string `envconfig:"DEEPSEEK_MODEL" default:"deepseek-chat"`
		TimeoutSeconds int    `envconfig:"DEEPSEEK_TIMEOUT_SECONDS" default:"15"`
	} `envconfig:""`

	Cache struct {
		AnswerTTLSeconds int `envconfig:"ANSWER_CACHE_TTL_SECONDS" default:"60"`
	} `envconfig:""`

	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	LoaderFile string `envconfig:"LOADER_FILE" default:"videos.json"`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
