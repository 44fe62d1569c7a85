package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"spyfall/internal/core"
)

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	StaticPath string `mapstructure:"static_path"`
	ReadLimit  int64  `mapstructure:"read_limit"`
	Secret     string `mapstructure:"secret"`

	MinPlayers int           `mapstructure:"min_players"`
	MaxRounds  int           `mapstructure:"max_rounds"`
	IntroTurn  time.Duration `mapstructure:"intro_turn"`
	Discussion time.Duration `mapstructure:"discussion"`
	Locations  []string      `mapstructure:"locations"`
	Topic      string        `mapstructure:"topic"`

	MessageRateLimit  int           `mapstructure:"message_rate_limit"`
	MessageRateWindow time.Duration `mapstructure:"message_rate_window"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 5000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("min_players", 3)
	v.SetDefault("max_rounds", 3)
	v.SetDefault("intro_turn", "120s")
	v.SetDefault("discussion", "120s")
	v.SetDefault("locations", []string{"Airport", "Restaurant", "School", "Museum"})
	v.SetDefault("topic", "Travel")
	v.SetDefault("message_rate_limit", 30)
	v.SetDefault("message_rate_window", "10s")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// RoomConfig projects the process config onto the room engine's knobs.
func (c *Config) RoomConfig() core.Config {
	return core.Config{
		MinPlayers:         c.MinPlayers,
		MaxRounds:          c.MaxRounds,
		IntroTurnDuration:  c.IntroTurn,
		DiscussionDuration: c.Discussion,
		Locations:          c.Locations,
		Topic:              c.Topic,
	}
}
