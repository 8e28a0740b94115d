package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverConsul = "consul"

	DefaultEndpoint       = "https://chintai.r6.ur-net.go.jp/chintai/api/bukken/search/bukken_main/"
	DefaultNameLookupHost = "www.ur-net.go.jp"
)

// Config holds the application settings
type Config struct {
	Host string
	Port int

	StoreDriver   string
	DatabasePath  string
	ConsulAddress string
	ConsulPrefix  string

	PollSchedule        string
	Endpoint            string
	HTTPTimeout         time.Duration
	ResolvePropertyName bool
	NameLookupHosts     []string

	TelegramBotToken string
	TelegramChatID   int64

	LogLevel string
}

// SetDefaults registers the default value of every setting on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("store_driver", DriverSQLite)
	v.SetDefault("database_path", "./urly.db")
	v.SetDefault("consul_address", "")
	v.SetDefault("consul_prefix", "urly/")
	v.SetDefault("poll_schedule", "*/10 * * * *")
	v.SetDefault("ur_api_endpoint", DefaultEndpoint)
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("resolve_property_name", true)
	v.SetDefault("name_lookup_hosts", DefaultNameLookupHost)
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("telegram_chat_id", 0)
	v.SetDefault("log_level", "info")
}

// New returns a viper instance reading settings from the environment.
// A .env file in the working directory is loaded first when present.
func New() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, using system environment")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads the configuration from v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Host:                v.GetString("host"),
		Port:                v.GetInt("port"),
		StoreDriver:         strings.ToLower(strings.TrimSpace(v.GetString("store_driver"))),
		DatabasePath:        v.GetString("database_path"),
		ConsulAddress:       v.GetString("consul_address"),
		ConsulPrefix:        v.GetString("consul_prefix"),
		PollSchedule:        strings.TrimSpace(v.GetString("poll_schedule")),
		Endpoint:            v.GetString("ur_api_endpoint"),
		ResolvePropertyName: v.GetBool("resolve_property_name"),
		NameLookupHosts:     splitList(v.GetString("name_lookup_hosts")),
		TelegramBotToken:    v.GetString("telegram_bot_token"),
		TelegramChatID:      v.GetInt64("telegram_chat_id"),
		LogLevel:            v.GetString("log_level"),
	}

	switch cfg.StoreDriver {
	case DriverSQLite:
		if cfg.DatabasePath == "" {
			return nil, fmt.Errorf("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverConsul:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}

	timeout := v.GetInt("http_timeout_seconds")
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS %d", timeout)
	}
	cfg.HTTPTimeout = time.Duration(timeout) * time.Second

	if cfg.ResolvePropertyName && len(cfg.NameLookupHosts) == 0 {
		return nil, fmt.Errorf("NAME_LOOKUP_HOSTS is empty, set RESOLVE_PROPERTY_NAME=false to disable name lookups")
	}

	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}

	return cfg, nil
}

// splitList splits a comma separated setting, dropping blank items
func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
