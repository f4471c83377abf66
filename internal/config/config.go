package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	ModeDebug   = "debug"
	ModeRelease = "release"
	ModeTest    = "test"
)

// DevOrigins are accepted outside release mode when no origins are configured.
var DevOrigins = []string{"http://localhost:5500", "http://127.0.0.1:5500"}

type Config struct {
	Mode           string        `mapstructure:"mode" validate:"oneof=debug release test"`
	Port           int           `mapstructure:"port" validate:"min=1,max=65535"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit" validate:"min=1"`
	PingPeriod     time.Duration `mapstructure:"ping_period" validate:"gt=0"`
	PongWait       time.Duration `mapstructure:"pong_wait" validate:"gtfield=PingPeriod"`
	WriteWait      time.Duration `mapstructure:"write_wait" validate:"gt=0"`
	SendBuffer     int           `mapstructure:"send_buffer" validate:"min=1"`
	Secret         string        `mapstructure:"secret" validate:"required"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	TimeZone       string        `mapstructure:"time_zone" validate:"required"`
	LogLevel       string        `mapstructure:"log_level" validate:"required"`
}

// Load reads config/config.<CONFIG_ENV>.yaml when present, overlays
// ROOMCHAT_* environment variables and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	v.SetDefault("mode", ModeRelease)
	v.SetDefault("port", 3500)
	v.SetDefault("static_path", "./public")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 256)
	v.SetDefault("secret", "roomchat-dev-secret")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("time_zone", "Local")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("ROOMCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.AllowedOrigins) == 0 && cfg.Mode != ModeRelease {
		cfg.AllowedOrigins = append([]string(nil), DevOrigins...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("static", cfg.StaticPath).Strs("origins", cfg.AllowedOrigins).Msg("config ready")
	return &cfg, nil
}

// Validate checks struct constraints plus the values validator cannot parse.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Location is the time zone message times are rendered in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time_zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
