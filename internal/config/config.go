package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	CORS       CORSConfig       `yaml:"cors"`
	AI         AIConfig         `yaml:"ai"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Audio      AudioConfig      `yaml:"audio"`
	Session    SessionConfig    `yaml:"session"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Worker     WorkerConfig     `yaml:"worker"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// AIConfig selects and configures the generative-AI backends.
// Credentials are optional: a missing key surfaces as failed requests.
type AIConfig struct {
	Provider        string        `yaml:"provider"          env:"AI_PROVIDER"        env-default:"gemini"`
	APIKey          string        `yaml:"api_key"           env:"API_KEY"`
	GeminiBaseURL   string        `yaml:"gemini_base_url"   env:"GEMINI_BASE_URL"    env-default:"https://generativelanguage.googleapis.com/"`
	TextModel       string        `yaml:"text_model"        env:"AI_TEXT_MODEL"      env-default:"gemini-2.5-flash"`
	SpeechModel     string        `yaml:"speech_model"      env:"AI_SPEECH_MODEL"    env-default:"gemini-2.5-flash-preview-tts"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string        `yaml:"anthropic_model"   env:"ANTHROPIC_MODEL"    env-default:"claude-sonnet-4-5"`
	Timeout         time.Duration `yaml:"timeout"           env:"AI_TIMEOUT"         env-default:"60s"`
}

// VocabularyConfig holds word-list generation settings.
type VocabularyConfig struct {
	WordCount int `yaml:"word_count" env:"VOCAB_WORD_COUNT" env-default:"6"`
}

// AudioConfig holds pronunciation settings.
type AudioConfig struct {
	Voice       string        `yaml:"voice"        env:"TTS_VOICE"          env-default:"Kore"`
	PlayTimeout time.Duration `yaml:"play_timeout" env:"AUDIO_PLAY_TIMEOUT" env-default:"30s"`
	CacheDir    string        `yaml:"cache_dir"    env:"AUDIO_CACHE_DIR"    env-default:".cache/clips"`
	CacheTTL    time.Duration `yaml:"cache_ttl"    env:"AUDIO_CACHE_TTL"    env-default:"168h"`
	StreamQueue int           `yaml:"stream_queue" env:"AUDIO_STREAM_QUEUE" env-default:"8"`
}

// SessionConfig holds learner session settings.
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"            env:"SESSION_TTL"            env-default:"2h"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" env-default:"5m"`
	MaxSessions   int           `yaml:"max_sessions"   env:"SESSION_MAX"            env-default:"10000"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"  env:"SESSION_FETCH_TIMEOUT"  env-default:"90s"`
}

// DatabaseConfig holds PostgreSQL connection settings. An empty DSN keeps
// quiz history in memory.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB" env-default:"0"`
}

// WorkerConfig holds pronunciation pre-warm settings.
type WorkerConfig struct {
	PrewarmEnabled bool          `yaml:"prewarm_enabled" env:"WORKER_PREWARM_ENABLED" env-default:"false"`
	Concurrency    int           `yaml:"concurrency"     env:"WORKER_CONCURRENCY"     env-default:"4"`
	Queue          string        `yaml:"queue"           env:"WORKER_QUEUE"           env-default:"prewarm"`
	TaskTimeout    time.Duration `yaml:"task_timeout"    env:"WORKER_TASK_TIMEOUT"    env-default:"60s"`
	MaxRetry       int           `yaml:"max_retry"       env:"WORKER_MAX_RETRY"       env-default:"2"`
}

// RateLimitConfig holds per-IP limits for endpoints that call the AI service.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"          env:"RATE_LIMIT_ENABLED"          env-default:"true"`
	PerMinute       int           `yaml:"per_minute"       env:"RATE_LIMIT_PER_MINUTE"       env-default:"30"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"5m"`
}

// Address returns host:port for the HTTP listener.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// Enabled reports whether a database DSN is configured.
func (d DatabaseConfig) Enabled() bool { return d.DSN != "" }
