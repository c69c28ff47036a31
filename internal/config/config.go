package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	AccountsFile   string `mapstructure:"accounts_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	ScrapeAPIBaseURL       string        `mapstructure:"scrape_api_base_url"`
	ScrapeAPIToken         string        `mapstructure:"scrape_api_token"`
	ScrapeMinIntervalMs    int64         `mapstructure:"scrape_min_interval_ms"`
	ScrapeRetryAttempts    int           `mapstructure:"scrape_retry_attempts"`
	ScrapeRetryBaseMs      int64         `mapstructure:"scrape_retry_base_ms"`
	ScrapePollSeconds      int64         `mapstructure:"scrape_poll_interval_seconds"`
	ScrapeMaxWaitSeconds   int64         `mapstructure:"scrape_max_wait_seconds"`
	ScrapeRequestTimeoutMs int64         `mapstructure:"scrape_request_timeout_ms"`
	ScrapeMinInterval      time.Duration `mapstructure:"-"`
	ScrapeRetryBase        time.Duration `mapstructure:"-"`
	ScrapePollInterval     time.Duration `mapstructure:"-"`
	ScrapeMaxWait          time.Duration `mapstructure:"-"`
	ScrapeRequestTimeout   time.Duration `mapstructure:"-"`

	MaxPosts        int `mapstructure:"scraping_max_posts"`
	MaxComments     int `mapstructure:"scraping_max_comments"`
	DefaultDaysBack int `mapstructure:"scraping_default_days_back"`

	TwitterActorID   string `mapstructure:"twitter_actor_id"`
	InstagramActorID string `mapstructure:"instagram_actor_id"`
	FacebookActorID  string `mapstructure:"facebook_actor_id"`
	TikTokActorID    string `mapstructure:"tiktok_actor_id"`
	TikTokPostActor  string `mapstructure:"tiktok_post_actor_id"`
	TikTokCmtActor   string `mapstructure:"tiktok_comment_actor_id"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`

	WorkerCount         int           `mapstructure:"worker_count"`
	CollectIntervalSecs int64         `mapstructure:"collect_interval_seconds"`
	SweepIntervalSecs   int64         `mapstructure:"task_sweep_interval_seconds"`
	TaskMaxAgeHours     int64         `mapstructure:"task_max_age_hours"`
	CollectInterval     time.Duration `mapstructure:"-"`
	SweepInterval       time.Duration `mapstructure:"-"`
	TaskMaxAge          time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-social-ingestor")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("accounts_file", "./configs/accounts.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")

	v.SetDefault("scrape_api_base_url", "https://api.apify.com/v2")
	v.SetDefault("scrape_api_token", "")
	v.SetDefault("scrape_min_interval_ms", 1000)
	v.SetDefault("scrape_retry_attempts", 3)
	v.SetDefault("scrape_retry_base_ms", 2000)
	v.SetDefault("scrape_poll_interval_seconds", 5)
	v.SetDefault("scrape_max_wait_seconds", 600)
	v.SetDefault("scrape_request_timeout_ms", 30000)

	v.SetDefault("scraping_max_posts", 100)
	v.SetDefault("scraping_max_comments", 50)
	v.SetDefault("scraping_default_days_back", 7)

	v.SetDefault("twitter_actor_id", "61RPP7dywgiy0JPD0")
	v.SetDefault("instagram_actor_id", "shu8hvrXbJbY3Eb9W")
	v.SetDefault("facebook_actor_id", "KoJrdxJCTtpon81KY")
	v.SetDefault("tiktok_actor_id", "rH3CGsQVKPj35ePsK")
	v.SetDefault("tiktok_post_actor_id", "ZxHXJ2dyhbpx8TQyx")
	v.SetDefault("tiktok_comment_actor_id", "sJqYjqDcTKvF9TYrK")

	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/ingest.db")

	v.SetDefault("worker_count", 4)
	v.SetDefault("collect_interval_seconds", 3600)
	v.SetDefault("task_sweep_interval_seconds", int64((1*time.Hour)/time.Second))
	v.SetDefault("task_max_age_hours", 24)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.ScrapeMinIntervalMs <= 0 {
		return nil, fmt.Errorf("invalid scrape_min_interval_ms (must be positive milliseconds)")
	}
	if cfg.ScrapeRetryAttempts <= 0 {
		return nil, fmt.Errorf("invalid scrape_retry_attempts (must be positive)")
	}
	if cfg.ScrapePollSeconds <= 0 || cfg.ScrapeMaxWaitSeconds <= 0 {
		return nil, fmt.Errorf("invalid scrape poll/max-wait settings (must be positive seconds)")
	}
	if cfg.MaxPosts <= 0 || cfg.MaxComments <= 0 {
		return nil, fmt.Errorf("invalid scraping_max_posts/scraping_max_comments (must be positive)")
	}
	if cfg.WorkerCount <= 0 {
		return nil, fmt.Errorf("invalid worker_count (must be positive)")
	}
	if cfg.CollectIntervalSecs <= 0 {
		return nil, fmt.Errorf("invalid collect_interval_seconds (must be positive seconds)")
	}
	if cfg.SweepIntervalSecs <= 0 || cfg.TaskMaxAgeHours <= 0 {
		return nil, fmt.Errorf("invalid task sweep settings (must be positive)")
	}

	cfg.ScrapeMinInterval = time.Duration(cfg.ScrapeMinIntervalMs) * time.Millisecond
	cfg.ScrapeRetryBase = time.Duration(cfg.ScrapeRetryBaseMs) * time.Millisecond
	cfg.ScrapePollInterval = time.Duration(cfg.ScrapePollSeconds) * time.Second
	cfg.ScrapeMaxWait = time.Duration(cfg.ScrapeMaxWaitSeconds) * time.Second
	cfg.ScrapeRequestTimeout = time.Duration(cfg.ScrapeRequestTimeoutMs) * time.Millisecond
	cfg.CollectInterval = time.Duration(cfg.CollectIntervalSecs) * time.Second
	cfg.SweepInterval = time.Duration(cfg.SweepIntervalSecs) * time.Second
	cfg.TaskMaxAge = time.Duration(cfg.TaskMaxAgeHours) * time.Hour

	return &cfg, nil
}
