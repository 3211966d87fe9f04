package gifthouse

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/ellavondegurechaff/gogift/gifthouse/database"
)

// LoadConfig reads the TOML config file, then lets environment variables
// (prefix GOGIFT_) override individual fields for container deployments.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	if err = envconfig.Process("gogift", &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}
	return &cfg, nil
}

type Config struct {
	Log      LogConfig         `toml:"log"`
	DB       database.DBConfig `toml:"db"`
	Web      WebConfig         `toml:"web"`
	Telegram TelegramConfig    `toml:"telegram"`
	Spaces   SpacesConfig      `toml:"spaces"`
	Bots     BotsConfig        `toml:"bots"`
	Mongo    MongoConfig       `toml:"mongo"`
}

type LogConfig struct {
	Level  slog.Level `toml:"level" envconfig:"LOG_LEVEL"`
	Prefix string     `toml:"prefix" envconfig:"LOG_PREFIX"`
}

type WebConfig struct {
	Addr        string   `toml:"addr" envconfig:"WEB_ADDR"`
	CORSOrigins []string `toml:"cors_origins" envconfig:"WEB_CORS_ORIGINS"`
}

type TelegramConfig struct {
	Enabled   bool   `toml:"enabled" envconfig:"TELEGRAM_ENABLED"`
	Token     string `toml:"token" envconfig:"TELEGRAM_TOKEN"`
	ChannelID int64  `toml:"channel_id" envconfig:"TELEGRAM_CHANNEL_ID"`
}

type SpacesConfig struct {
	Key      string `toml:"key" envconfig:"SPACES_KEY"`
	Secret   string `toml:"secret" envconfig:"SPACES_SECRET"`
	Region   string `toml:"region" envconfig:"SPACES_REGION"`
	Bucket   string `toml:"bucket" envconfig:"SPACES_BUCKET"`
	GiftRoot string `toml:"gift_root" envconfig:"SPACES_GIFT_ROOT"`
}

type BotsConfig struct {
	Count      int   `toml:"count" envconfig:"BOTS_COUNT"`
	Balance    int64 `toml:"balance" envconfig:"BOTS_BALANCE"`
	IntervalMs int   `toml:"interval_ms" envconfig:"BOTS_INTERVAL_MS"`
}

type MongoConfig struct {
	URI      string `toml:"uri" envconfig:"MONGO_URI"`
	Database string `toml:"database" envconfig:"MONGO_DATABASE"`
}
