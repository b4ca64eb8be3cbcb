// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SyncSecret is the pre-shared bearer credential required by the
	// sync trigger endpoint. Empty disables the trigger.
	SyncSecret string `koanf:"sync_secret"`

	// BatchSize partitions approved submissions during metrics refresh.
	BatchSize int `koanf:"batch_size"`

	// BatchDelayMS is the unconditional pacing delay between batches.
	BatchDelayMS int `koanf:"batch_delay_ms"`

	// VerifyConcurrency bounds the verification fan-out.
	VerifyConcurrency int `koanf:"verify_concurrency"`

	// YouTubeAPIKey authenticates provider calls.
	YouTubeAPIKey string `koanf:"youtube_api_key"`

	// YouTubeTimeoutMS bounds every provider call.
	YouTubeTimeoutMS int `koanf:"youtube_timeout_ms"`

	// DatabaseURL selects the Postgres store when set; the in-memory
	// store is used otherwise.
	DatabaseURL string `koanf:"database_url"`

	// RedisAddr enables the rankings cache when set.
	RedisAddr string `koanf:"redis_addr"`

	// RankingsCacheTTLMS bounds staleness of cached rankings.
	RankingsCacheTTLMS int `koanf:"rankings_cache_ttl_ms"`

	// MaxRankingsLimit caps the leaderboard length returned to readers.
	MaxRankingsLimit int `koanf:"max_rankings_limit"`

	// MonthlySubmissionLimit caps submissions per user per calendar month.
	MonthlySubmissionLimit int `koanf:"monthly_submission_limit"`
}

// Default configuration values.
const (
	defaultBatchSize              = 50
	defaultBatchDelayMS           = 2000
	defaultVerifyConcurrency      = 8
	defaultYouTubeTimeoutMS       = 10_000
	defaultRankingsCacheTTLMS     = 30_000
	defaultMaxRankingsLimit       = 50
	defaultMonthlySubmissionLimit = 3
)

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		BatchSize:              defaultBatchSize,
		BatchDelayMS:           defaultBatchDelayMS,
		VerifyConcurrency:      defaultVerifyConcurrency,
		YouTubeTimeoutMS:       defaultYouTubeTimeoutMS,
		RankingsCacheTTLMS:     defaultRankingsCacheTTLMS,
		MaxRankingsLimit:       defaultMaxRankingsLimit,
		MonthlySubmissionLimit: defaultMonthlySubmissionLimit,
	}
	return c
}
