package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: "postgres://localhost:5432/words"},
		Bot:      BotConfig{Token: "token"},
		Dictionary: DictionaryConfig{
			BaseURL: "https://dictionary.example.net",
			Timeout: 10 * time.Second,
		},
		Audio: AudioConfig{MaxAttempts: 3},
		Dispatch: DispatchConfig{
			QueueSize:   64,
			WorkerSweep: time.Minute,
			TaskSweep:   time.Minute,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "zero queue size",
			mutate:  func(c *Config) { c.Dispatch.QueueSize = 0 },
			wantErr: true,
		},
		{
			name:    "zero worker sweep",
			mutate:  func(c *Config) { c.Dispatch.WorkerSweep = 0 },
			wantErr: true,
		},
		{
			name:    "zero task sweep",
			mutate:  func(c *Config) { c.Dispatch.TaskSweep = 0 },
			wantErr: true,
		},
		{
			name:    "zero audio attempts",
			mutate:  func(c *Config) { c.Audio.MaxAttempts = 0 },
			wantErr: true,
		},
		{
			name:    "zero dictionary timeout",
			mutate:  func(c *Config) { c.Dictionary.Timeout = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
