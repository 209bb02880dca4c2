package config

import "time"

// Config основной конфиг
type Config struct {
	Environment string         `yaml:"environment"`
	HTTP        HTTPConfig     `yaml:"http"`
	Database    DatabaseConfig `yaml:"database"`
	Bot         BotConfig      `yaml:"bot"`
	Log         LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Port           string        `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// BotConfig drives the Telegram notifier. An empty token disables it.
type BotConfig struct {
	Token    string  `yaml:"token"`
	Debug    bool    `yaml:"debug"`
	AdminIDs []int64 `yaml:"admin_ids"` // chats that receive generation reports
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
