package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort        int    `yaml:"http_port"`
	RedisURL        string `yaml:"redis_url"`
	CacheBackend    string `yaml:"cache_backend"`
	NewsURL         string `yaml:"news_url"`
	NewsPollSecs    int    `yaml:"news_poll_secs"`
	HistoryWarmSecs int    `yaml:"history_warm_secs"`
	DefaultTicker   string `yaml:"default_ticker"`
	APIKey          string `yaml:"api_key"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
	OpenAIAPIKey     string `yaml:"openai_api_key"`
	OpenAIModel      string `yaml:"openai_model"`

	SSHPort                   int    `yaml:"ssh_port"`
	SSHHostKeyPath            string `yaml:"ssh_host_key_path"`
	SSHAuthorizedFingerprints string `yaml:"ssh_authorized_fingerprints"`
}

func Load() *Config {
	cfg := &Config{}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warning: could not read config file %s: %v", path, err)
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Printf("Warning: could not parse config file %s: %v", path, err)
		}
	}

	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.TelegramBotToken = v
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, Telegram bot will be disabled")
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	if v := strings.TrimSpace(os.Getenv("CACHE_BACKEND")); v != "" {
		cfg.CacheBackend = v
	}
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "memory"
	}
	if cfg.CacheBackend != "memory" && cfg.CacheBackend != "redis" {
		log.Printf("Warning: unsupported CACHE_BACKEND=%q, defaulting to memory", cfg.CacheBackend)
		cfg.CacheBackend = "memory"
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = 8080
	}

	if v := strings.TrimSpace(os.Getenv("NEWS_URL")); v != "" {
		cfg.NewsURL = v
	}
	if cfg.NewsURL == "" {
		cfg.NewsURL = "https://economictimes.indiatimes.com/markets/stocks/news"
	}

	if v := strings.TrimSpace(os.Getenv("NEWS_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NewsPollSecs = n
		}
	}
	if cfg.NewsPollSecs <= 0 {
		cfg.NewsPollSecs = 3600
	}

	if v := strings.TrimSpace(os.Getenv("HISTORY_WARM_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryWarmSecs = n
		}
	}
	if cfg.HistoryWarmSecs <= 0 {
		cfg.HistoryWarmSecs = 3600
	}

	if v := strings.TrimSpace(os.Getenv("DEFAULT_TICKER")); v != "" {
		cfg.DefaultTicker = v
	}
	if cfg.DefaultTicker == "" {
		cfg.DefaultTicker = "RELIANCE.NS"
	}
	cfg.DefaultTicker = strings.ToUpper(cfg.DefaultTicker)

	if v := os.Getenv("API_KEY"); v != "" {
		cfg.APIKey = v
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, insight service will be disabled")
	}

	if v := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); v != "" {
		cfg.OpenAIModel = v
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}
	if cfg.SSHPort == 0 {
		cfg.SSHPort = 2323
	}

	if v := strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH")); v != "" {
		cfg.SSHHostKeyPath = v
	}
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/tickerlens_ed25519"
	}

	if v := strings.TrimSpace(os.Getenv("SSH_AUTHORIZED_FINGERPRINTS")); v != "" {
		cfg.SSHAuthorizedFingerprints = v
	}

	return cfg
}
