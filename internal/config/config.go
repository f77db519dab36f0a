package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/auxroom/server/internal/domain"
)

type WebSocket struct {
	ReadLimit    int64         `mapstructure:"read_limit"`
	PongWait     time.Duration `mapstructure:"pong_wait"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	SendBuffer   int           `mapstructure:"send_buffer"`
}

type Store struct {
	// Backend is "redis" or "memory". Memory is for tests and
	// standalone demos; real deployments share redis with the room
	// directory service.
	Backend       string `mapstructure:"backend"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

type Auth struct {
	Secret string `mapstructure:"secret"`
}

type CatalogSong struct {
	Title  string `mapstructure:"title"`
	Artist string `mapstructure:"artist"`
	URL    string `mapstructure:"url"`
}

// Demo seeds the memory store with one joinable room so the server is
// usable without the directory service running.
type Demo struct {
	Enabled  bool   `mapstructure:"enabled"`
	RoomCode string `mapstructure:"room_code"`
	RoomName string `mapstructure:"room_name"`
	HostID   string `mapstructure:"host_id"`
	HostName string `mapstructure:"host_name"`
}

type Config struct {
	Mode    string        `mapstructure:"mode"`
	Port    int           `mapstructure:"port"`
	WS      WebSocket     `mapstructure:"ws"`
	Store   Store         `mapstructure:"store"`
	Auth    Auth          `mapstructure:"auth"`
	Catalog []CatalogSong `mapstructure:"catalog"`
	Demo    Demo          `mapstructure:"demo"`
}

// CatalogSongs converts the configured catalog into domain songs.
func (c *Config) CatalogSongs() []domain.Song {
	out := make([]domain.Song, 0, len(c.Catalog))
	for _, s := range c.Catalog {
		out = append(out, domain.Song{Title: s.Title, Artist: s.Artist, URL: s.URL})
	}
	return out
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
	v.SetDefault("port", 8080)
	v.SetDefault("ws.read_limit", 32768)
	v.SetDefault("ws.pong_wait", "60s")
	v.SetDefault("ws.ping_interval", "54s")
	v.SetDefault("ws.write_wait", "5s")
	v.SetDefault("ws.send_buffer", 256)
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("auth.secret", "dev-secret")
	v.SetDefault("demo.enabled", true)
	v.SetDefault("demo.room_code", "ABCDEF")
	v.SetDefault("demo.room_name", "Demo Room")
	v.SetDefault("demo.host_id", "host")
	v.SetDefault("demo.host_name", "Host")

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
