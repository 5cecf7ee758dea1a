package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Exam      ExamConfig      `mapstructure:"exam"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ExamConfig 测验策略项，支持热更新（见 pkg/configwatcher）
type ExamConfig struct {
	SampleSize          int `mapstructure:"sample_size"`           // 每次抽题数
	DefaultPassingScore int `mapstructure:"default_passing_score"` // 百分制及格线
	AttemptLimit        int `mapstructure:"attempt_limit"`         // 0 表示不限次数
	CooldownSeconds     int `mapstructure:"cooldown_seconds"`
	DurationMinutes     int `mapstructure:"duration_minutes"`
	EventChannel        string `mapstructure:"event_channel"` // 进度事件的 Redis 频道
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func (c *RateLimitConfig) Window() time.Duration {
	if c.WindowMinutes <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowMinutes) * time.Minute
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("COURSE_EXAM")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Exam.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults 补齐未配置的测验策略项（与原有线上行为一致）
func (e *ExamConfig) ApplyDefaults() {
	if e.SampleSize <= 0 {
		e.SampleSize = 10
	}
	if e.DefaultPassingScore <= 0 {
		e.DefaultPassingScore = 70
	}
	if e.AttemptLimit < 0 {
		e.AttemptLimit = 0
	}
	if e.CooldownSeconds < 0 {
		e.CooldownSeconds = 0
	}
	if e.DurationMinutes <= 0 {
		e.DurationMinutes = 20
	}
	if e.EventChannel == "" {
		e.EventChannel = "progress.events"
	}
}

func (e *ExamConfig) Cooldown() time.Duration {
	return time.Duration(e.CooldownSeconds) * time.Second
}

func (e *ExamConfig) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}
