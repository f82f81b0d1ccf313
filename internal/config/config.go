package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Bot        BotConfig        `yaml:"bot"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Audio      AudioConfig      `yaml:"audio"`
	Dispatch   DispatchConfig   `yaml:"dispatch"`
	Log        LogConfig        `yaml:"log"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// RedisConfig holds settings for the ephemeral session-state store.
type RedisConfig struct {
	Addr        string        `yaml:"addr"         env:"REDIS_ADDR"         env-default:"localhost:6379"`
	DB          int           `yaml:"db"           env:"REDIS_DB"           env-default:"0"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
}

// BotConfig holds chat transport settings.
type BotConfig struct {
	Token      string `yaml:"token"        env:"BOT_TOKEN" env-required:"true"`
	AdminID    int64  `yaml:"admin_id"     env:"BOT_ADMIN_ID"`
	TempChatID int64  `yaml:"temp_chat_id" env:"BOT_TEMP_CHAT_ID"`
}

// DictionaryConfig holds dictionary lookup settings.
type DictionaryConfig struct {
	BaseURL      string        `yaml:"base_url"      env:"DICT_BASE_URL"      env-default:"https://dictionary.yandex.net/dicservice.json"`
	Timeout      time.Duration `yaml:"timeout"       env:"DICT_TIMEOUT"       env-default:"10s"`
	RetryBackoff time.Duration `yaml:"retry_backoff" env:"DICT_RETRY_BACKOFF" env-default:"500ms"`
}

// AudioConfig holds audio synthesis settings.
type AudioConfig struct {
	Command     string        `yaml:"command"      env:"AUDIO_COMMAND"      env-default:"gtts-cli"`
	TempDir     string        `yaml:"temp_dir"     env:"AUDIO_TEMP_DIR"     env-default:"./temp"`
	Timeout     time.Duration `yaml:"timeout"      env:"AUDIO_TIMEOUT"      env-default:"5s"`
	MaxAttempts int           `yaml:"max_attempts" env:"AUDIO_MAX_ATTEMPTS" env-default:"3"`
	MinSpacing  time.Duration `yaml:"min_spacing"  env:"AUDIO_MIN_SPACING"  env-default:"3s"`
}

// DispatchConfig holds settings for the per-user dispatcher and the
// deferred task scheduler.
type DispatchConfig struct {
	QueueSize   int           `yaml:"queue_size"   env:"DISPATCH_QUEUE_SIZE"   env-default:"64"`
	WorkerSweep time.Duration `yaml:"worker_sweep" env:"DISPATCH_WORKER_SWEEP" env-default:"1m"`
	TaskSweep   time.Duration `yaml:"task_sweep"   env:"DISPATCH_TASK_SWEEP"   env-default:"1m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if c.Dispatch.QueueSize <= 0 {
		return fmt.Errorf("dispatch.queue_size must be > 0 (got %d)", c.Dispatch.QueueSize)
	}
	if c.Dispatch.WorkerSweep <= 0 || c.Dispatch.TaskSweep <= 0 {
		return fmt.Errorf("dispatch sweep intervals must be > 0")
	}
	if c.Audio.MaxAttempts <= 0 {
		return fmt.Errorf("audio.max_attempts must be > 0 (got %d)", c.Audio.MaxAttempts)
	}
	if c.Dictionary.Timeout <= 0 {
		return fmt.Errorf("dictionary.timeout must be > 0")
	}
	return nil
}
