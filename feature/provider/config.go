package provider

// Config holds configuration for the upstream fixture feed client.
type Config struct {
	// FeedURL is the provider endpoint returning the fixture feed.
	FeedURL string `mapstructure:"feed_url" default:""`
	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxRetries caps retry attempts for transient fetch failures.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
}
