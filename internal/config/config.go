package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "NEWSHARVEST_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Fetcher       FetcherConfig      `yaml:"fetcher"`
	Discovery     DiscoveryConfig    `yaml:"discovery"`
	Harvest       HarvestConfig      `yaml:"harvest"`
	Bias          BiasConfig         `yaml:"bias"`
	Sources       []SourceConfig     `yaml:"sources"`
	Extraction    ExtractionConfig   `yaml:"extraction"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FetcherConfig controls outbound page requests.
type FetcherConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	MinDelay      time.Duration `yaml:"minDelay"`
	MaxDelay      time.Duration `yaml:"maxDelay"`
	DisableDelay  bool          `yaml:"disableDelay"`
	UserAgent     string        `yaml:"userAgent"`
	MaxBodyBytes  int64         `yaml:"maxBodyBytes"`
	RespectRobots bool          `yaml:"respectRobots"`
}

// DiscoveryConfig tunes homepage link discovery.
type DiscoveryConfig struct {
	MaxCandidates   int      `yaml:"maxCandidates"`
	IncludeFeeds    bool     `yaml:"includeFeeds"`
	IncludePatterns []string `yaml:"includePatterns"`
	ExcludePatterns []string `yaml:"excludePatterns"`
}

// HarvestConfig holds per-run defaults and limits.
type HarvestConfig struct {
	MaxArticles      int     `yaml:"maxArticles"`
	QualityThreshold float64 `yaml:"qualityThreshold"`
	MaxArticlesLimit int     `yaml:"maxArticlesLimit"`
}

// BiasConfig overrides the keyword table. DemographicConcerns defaults to true.
type BiasConfig struct {
	Keywords            map[string][]string `yaml:"keywords"`
	DemographicConcerns *bool               `yaml:"demographicConcerns"`
}

// DemographicConcernsEnabled reports the effective demographic concern toggle.
func (b BiasConfig) DemographicConcernsEnabled() bool {
	return b.DemographicConcerns == nil || *b.DemographicConcerns
}

// SourceConfig maps a host fragment to a source label.
type SourceConfig struct {
	Match string `yaml:"match"`
	Label string `yaml:"label"`
}

// ExtractionConfig lists site-specific selector profiles.
type ExtractionConfig struct {
	Profiles []ProfileConfig `yaml:"profiles"`
}

// ProfileConfig adds selectors for pages whose host contains one of Hosts.
type ProfileConfig struct {
	Name        string   `yaml:"name"`
	Hosts       []string `yaml:"hosts"`
	Title       []string `yaml:"title"`
	Content     []string `yaml:"content"`
	Author      []string `yaml:"author"`
	PublishDate []string `yaml:"publishDate"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN disables the archive.
type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIURL   string `yaml:"apiUrl"`
}

// Enabled reports whether both token and chat are configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// SchedulerConfig defines when recurring harvests run and against which homepages.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	Targets        []TargetConfig `yaml:"targets"`
	location       *time.Location `yaml:"-"`
}

// TargetConfig is one scheduled homepage. Zero values take the harvest defaults.
type TargetConfig struct {
	URL              string  `yaml:"url"`
	MaxArticles      int     `yaml:"maxArticles"`
	QualityThreshold float64 `yaml:"qualityThreshold"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Fetcher.Timeout > 0 {
		base.Fetcher.Timeout = override.Fetcher.Timeout
	}
	if override.Fetcher.MinDelay > 0 {
		base.Fetcher.MinDelay = override.Fetcher.MinDelay
	}
	if override.Fetcher.MaxDelay > 0 {
		base.Fetcher.MaxDelay = override.Fetcher.MaxDelay
	}
	if override.Fetcher.DisableDelay {
		base.Fetcher.DisableDelay = true
	}
	if override.Fetcher.UserAgent != "" {
		base.Fetcher.UserAgent = override.Fetcher.UserAgent
	}
	if override.Fetcher.MaxBodyBytes > 0 {
		base.Fetcher.MaxBodyBytes = override.Fetcher.MaxBodyBytes
	}
	if override.Fetcher.RespectRobots {
		base.Fetcher.RespectRobots = true
	}

	if override.Discovery.MaxCandidates > 0 {
		base.Discovery.MaxCandidates = override.Discovery.MaxCandidates
	}
	if override.Discovery.IncludeFeeds {
		base.Discovery.IncludeFeeds = true
	}
	if len(override.Discovery.IncludePatterns) > 0 {
		base.Discovery.IncludePatterns = override.Discovery.IncludePatterns
	}
	if len(override.Discovery.ExcludePatterns) > 0 {
		base.Discovery.ExcludePatterns = override.Discovery.ExcludePatterns
	}

	if override.Harvest.MaxArticles > 0 {
		base.Harvest.MaxArticles = override.Harvest.MaxArticles
	}
	if override.Harvest.QualityThreshold > 0 {
		base.Harvest.QualityThreshold = override.Harvest.QualityThreshold
	}
	if override.Harvest.MaxArticlesLimit > 0 {
		base.Harvest.MaxArticlesLimit = override.Harvest.MaxArticlesLimit
	}

	if len(override.Bias.Keywords) > 0 {
		base.Bias.Keywords = override.Bias.Keywords
	}
	if override.Bias.DemographicConcerns != nil {
		base.Bias.DemographicConcerns = override.Bias.DemographicConcerns
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	if len(override.Extraction.Profiles) > 0 {
		base.Extraction.Profiles = override.Extraction.Profiles
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Table != "" {
		base.Database.Table = override.Database.Table
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.APIURL != "" {
		base.Notifications.Telegram.APIURL = override.Notifications.Telegram.APIURL
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if len(override.Scheduler.Targets) > 0 {
		base.Scheduler.Targets = override.Scheduler.Targets
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Fetcher: FetcherConfig{
			Timeout:      10 * time.Second,
			MinDelay:     time.Second,
			MaxDelay:     2 * time.Second,
			MaxBodyBytes: 5 << 20,
		},
		Discovery: DiscoveryConfig{MaxCandidates: 40},
		Harvest: HarvestConfig{
			MaxArticles:      10,
			QualityThreshold: 0.6,
			MaxArticlesLimit: 50,
		},
		Database: DatabaseConfig{Table: "harvested_articles"},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{APIURL: "https://api.telegram.org"},
		},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
	}
}
