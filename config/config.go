// Package config loads server settings from flags, environment and an
// optional config file through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys
const (
	KeyPort              = "port"
	KeyFrontendURL       = "frontend_url"
	KeyLogLevel          = "log_level"
	KeyLogPretty         = "log_pretty"
	KeyProvider          = "provider.name"
	KeyFetchTimeout      = "provider.fetch_timeout"
	KeyOpenTimeout       = "provider.open_timeout"
	KeyYTDLPPath         = "provider.ytdlp_path"
	KeyChunkSize         = "download.chunk_size"
	KeyMaxConcurrent     = "download.max_concurrent"
	KeyContentTypePolicy = "download.content_type_policy"
	KeyRateRequests      = "ratelimit.requests"
	KeyRateWindow        = "ratelimit.window"
	KeyShutdownTimeout   = "server.shutdown_timeout"
	KeyTrustedProxies    = "server.trusted_proxies"
	KeyProviderRate      = "provider.requests_per_second"
	KeyProviderBurst     = "provider.burst"
)

const (
	ProviderYouTube = "youtube"
	ProviderYTDLP   = "ytdlp"
)

type Config struct {
	Port              int
	FrontendURL       string
	LogLevel          string
	LogPretty         bool
	Provider          string
	FetchTimeout      time.Duration
	OpenTimeout       time.Duration
	YTDLPPath         string
	ChunkSize         int
	MaxConcurrent     int
	ContentTypePolicy string
	RateRequests      int
	RateWindow        time.Duration
	ShutdownTimeout   time.Duration
	TrustedProxies    []string
	ProviderRate      float64
	ProviderBurst     int
}

// SetDefaults registers every default and the environment bindings.
// PORT, FRONTEND_URL and LOG_LEVEL keep their conventional names; nested keys
// map to e.g. PROVIDER_FETCH_TIMEOUT.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, 5000)
	v.SetDefault(KeyFrontendURL, "http://localhost:5173")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogPretty, false)
	v.SetDefault(KeyProvider, ProviderYouTube)
	v.SetDefault(KeyFetchTimeout, 30*time.Second)
	v.SetDefault(KeyOpenTimeout, 15*time.Second)
	v.SetDefault(KeyYTDLPPath, "yt-dlp")
	v.SetDefault(KeyChunkSize, 64*1024)
	v.SetDefault(KeyMaxConcurrent, 25)
	v.SetDefault(KeyContentTypePolicy, "legacy")
	v.SetDefault(KeyRateRequests, 100)
	v.SetDefault(KeyRateWindow, 15*time.Minute)
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
	v.SetDefault(KeyTrustedProxies, []string{})
	v.SetDefault(KeyProviderRate, 5.0)
	v.SetDefault(KeyProviderBurst, 10)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyProvider, "YTDL_PROVIDER", "PROVIDER_NAME")
}

// Load reads v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:              v.GetInt(KeyPort),
		FrontendURL:       strings.TrimRight(strings.TrimSpace(v.GetString(KeyFrontendURL)), "/"),
		LogLevel:          v.GetString(KeyLogLevel),
		LogPretty:         v.GetBool(KeyLogPretty),
		Provider:          strings.ToLower(strings.TrimSpace(v.GetString(KeyProvider))),
		FetchTimeout:      v.GetDuration(KeyFetchTimeout),
		OpenTimeout:       v.GetDuration(KeyOpenTimeout),
		YTDLPPath:         v.GetString(KeyYTDLPPath),
		ChunkSize:         v.GetInt(KeyChunkSize),
		MaxConcurrent:     v.GetInt(KeyMaxConcurrent),
		ContentTypePolicy: strings.ToLower(strings.TrimSpace(v.GetString(KeyContentTypePolicy))),
		RateRequests:      v.GetInt(KeyRateRequests),
		RateWindow:        v.GetDuration(KeyRateWindow),
		ShutdownTimeout:   v.GetDuration(KeyShutdownTimeout),
		TrustedProxies:    v.GetStringSlice(KeyTrustedProxies),
		ProviderRate:      v.GetFloat64(KeyProviderRate),
		ProviderBurst:     v.GetInt(KeyProviderBurst),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.FrontendURL == "" {
		return fmt.Errorf("%s must not be empty", KeyFrontendURL)
	}
	switch c.Provider {
	case ProviderYouTube, ProviderYTDLP:
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderYouTube, ProviderYTDLP)
	}
	switch c.ContentTypePolicy {
	case "legacy", "container":
	default:
		return fmt.Errorf("unknown content type policy %q (want legacy or container)", c.ContentTypePolicy)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyChunkSize, c.ChunkSize)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyMaxConcurrent, c.MaxConcurrent)
	}
	if c.RateRequests <= 0 || c.RateWindow <= 0 {
		return fmt.Errorf("rate limit needs positive requests and window, got %d per %s", c.RateRequests, c.RateWindow)
	}
	if c.ProviderRate < 0 || (c.ProviderRate > 0 && c.ProviderBurst <= 0) {
		return fmt.Errorf("provider throttle needs a non-negative rate and a positive burst, got %g/s burst %d", c.ProviderRate, c.ProviderBurst)
	}
	if c.FetchTimeout < 0 || c.OpenTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
