package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseType   string `env:"DATABASE_TYPE" toml:"database_type"`
	DatabaseDSN    string `env:"DATABASE_URI" toml:"database_uri"`
	AuthSecret     string `env:"AUTH_SECRET" toml:"auth_secret"`
	AuthTTLMinutes int    `env:"AUTH_TTL_MINUTES" toml:"auth_ttl_minutes"`
	AdminPassword  string `env:"ADMIN_PASSWORD" toml:"admin_password"`
	FixturesDir    string `env:"FIXTURES_DIR" toml:"fixtures_dir"` // пусто — встроенные фикстуры
	LogLevel       string `env:"LOG_LEVEL" toml:"log_level"`
	BcryptCost     int    `env:"BCRYPT_COST" toml:"bcrypt_cost"`

	// Shared settings
	BaseURL     string `env:"BASE_URL" toml:"base_url"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS" toml:"enable_https"`

	// Client-side settings
	ServerURL string `env:"-" toml:"-"`
	TokenFile string `env:"TOKEN_FILE" toml:"token_file"`
	Version   bool   `env:"-" toml:"-"` // show client version and exit (flag only)

	ConfigFile string `env:"CONFIG_FILE" toml:"-"`
}

// NewConfig собирает конфигурацию. Приоритет (от низшего): TOML-файл из CONFIG_FILE,
// переменные окружения (.env тоже), флаги, значения по умолчанию для пустых полей.
func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
		}
	}
	_ = env.Parse(cfg)

	// Server flags
	flag.StringVar(&cfg.DatabaseType, "db-type", cfg.DatabaseType, "тип БД: sqlite, postgres, mysql, sqlserver")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.IntVar(&cfg.AuthTTLMinutes, "auth-ttl", cfg.AuthTTLMinutes, "срок жизни токена, минут")
	flag.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "пароль пользователя admin при первом запуске")
	flag.StringVar(&cfg.FixturesDir, "fixtures", cfg.FixturesDir, "каталог с фикстурами настроек и стартовых документов")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "уровень логирования: debug, info, warn, error")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the Sidekick server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode config file failed: %w", err)
	}
	return nil
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func (cfg *Config) applyDefaults() {
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = "sqlite"
	}
	if cfg.DatabaseDSN == "" && cfg.DatabaseType == "sqlite" {
		cfg.DatabaseDSN = "sidekick.db"
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.AuthTTLMinutes <= 0 {
		cfg.AuthTTLMinutes = 24 * 60
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "changemenow"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	if cfg.TokenFile == "" {
		home, _ := os.UserHomeDir()
		cfg.TokenFile = filepath.Join(home, ".sidekick_token")
	}
}
