// Package config resolves tool server configuration from the environment.
//
// Load reads a .env file from the working directory when one exists, then
// the process environment. Values are read once at start-up; the resulting
// Config is never modified afterwards.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when a variable is unset.
const (
	DefaultToolTimeout   = 5 * time.Minute
	DefaultMaxFileSize   = 10 * 1024 * 1024
	DefaultImageBaseURL  = "https://api.openai.com/v1"
	DefaultImageModel    = "dall-e-3"
	DefaultTavilyBaseURL = "https://api.tavily.com"
	DefaultPandocPath    = "pandoc"
	DefaultFFprobePath   = "ffprobe"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"

	DefaultSearchMaxResults   = 5
	DefaultWebTimeout         = 30 * time.Second
	DefaultWebMaxResponseSize = 5 * 1024 * 1024
)

// Environment variable names.
const (
	imageKeyVar         = "IMAGE_GEN_API_KEY"
	imageKeyFallbackVar = "OPENAI_API_KEY"
	imageBaseURLVar     = "IMAGE_GEN_BASE_URL"
	imageModelVar       = "IMAGE_GEN_MODEL"
	tavilyKeyVar        = "TAVILY_API_KEY"
	tavilyBaseURLVar    = "TAVILY_BASE_URL"
	toolTimeoutVar      = "TAO_TOOL_TIMEOUT"
	maxFileSizeVar      = "TAO_FS_MAX_FILE_SIZE"
	fsRootVar           = "TAO_FS_ROOT"
	logLevelVar         = "TAO_LOG_LEVEL"
	logFormatVar        = "TAO_LOG_FORMAT"
	metricsAddrVar      = "TAO_METRICS_ADDR"
	pandocPathVar       = "TAO_PANDOC_PATH"
	ffprobePathVar      = "TAO_FFPROBE_PATH"
	webAllowedHostsVar  = "TAO_WEB_ALLOWED_HOSTS"
	webBlockedHostsVar  = "TAO_WEB_BLOCKED_HOSTS"
	webTimeoutVar       = "TAO_WEB_TIMEOUT"
	webMaxSizeVar       = "TAO_WEB_MAX_RESPONSE_SIZE"
	searchMaxVar        = "TAO_SEARCH_MAX_RESULTS"
)

// Config holds the resolved configuration of one tool server process.
type Config struct {
	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text, json

	// Dispatch
	ToolTimeout time.Duration // zero disables the per-invocation deadline
	MetricsAddr string        // empty disables the metrics endpoint

	// Filesystem
	FSRoot      string
	MaxFileSize int64

	// External binaries
	PandocPath  string
	FFprobePath string

	// Image generation
	ImageAPIKey  string
	ImageBaseURL string
	ImageModel   string

	// Search
	TavilyAPIKey  string
	TavilyBaseURL    string
	SearchMaxResults int

	// Web fetching; hosts match by suffix
	WebAllowedHosts    []string
	WebBlockedHosts    []string
	WebTimeout         time.Duration
	WebMaxResponseSize int64
}

// Load loads configuration from a .env file (if present) and the environment.
// Variables already set in the environment take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional
	return FromEnv()
}

// FromEnv builds a Config from the current environment without reading .env.
func FromEnv() (*Config, error) {
	timeout, err := getEnvDurationOrDefault(toolTimeoutVar, DefaultToolTimeout)
	if err != nil {
		return nil, err
	}
	maxSize, err := getEnvSizeOrDefault(maxFileSizeVar, DefaultMaxFileSize)
	if err != nil {
		return nil, err
	}
	webTimeout, err := getEnvDurationOrDefault(webTimeoutVar, DefaultWebTimeout)
	if err != nil {
		return nil, err
	}
	webMaxSize, err := getEnvSizeOrDefault(webMaxSizeVar, DefaultWebMaxResponseSize)
	if err != nil {
		return nil, err
	}
	searchMax, err := getEnvSizeOrDefault(searchMaxVar, DefaultSearchMaxResults)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:      strings.ToLower(getEnvOrDefault(logLevelVar, DefaultLogLevel)),
		LogFormat:     strings.ToLower(getEnvOrDefault(logFormatVar, DefaultLogFormat)),
		ToolTimeout:   timeout,
		MetricsAddr:   os.Getenv(metricsAddrVar),
		FSRoot:        os.Getenv(fsRootVar),
		MaxFileSize:   maxSize,
		PandocPath:    getEnvOrDefault(pandocPathVar, DefaultPandocPath),
		FFprobePath:   getEnvOrDefault(ffprobePathVar, DefaultFFprobePath),
		ImageAPIKey:   firstEnv(imageKeyVar, imageKeyFallbackVar),
		ImageBaseURL:  getEnvOrDefault(imageBaseURLVar, DefaultImageBaseURL),
		ImageModel:    getEnvOrDefault(imageModelVar, DefaultImageModel),
		TavilyAPIKey:  os.Getenv(tavilyKeyVar),
		TavilyBaseURL: getEnvOrDefault(tavilyBaseURLVar, DefaultTavilyBaseURL),

		SearchMaxResults:   int(searchMax),
		WebAllowedHosts:    getEnvList(webAllowedHostsVar),
		WebBlockedHosts:    getEnvList(webBlockedHostsVar),
		WebTimeout:         webTimeout,
		WebMaxResponseSize: webMaxSize,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be checked while parsing.
// Missing credentials are not an error here: the affected tools report them per call.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s must be text or json, got %q", logFormatVar, c.LogFormat)
	}
	if c.ToolTimeout < 0 {
		return fmt.Errorf("%s must not be negative", toolTimeoutVar)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("%s must be positive", maxFileSizeVar)
	}
	if c.SearchMaxResults < 1 {
		return fmt.Errorf("%s must be at least 1", searchMaxVar)
	}
	if c.WebTimeout <= 0 {
		return fmt.Errorf("%s must be positive", webTimeoutVar)
	}
	if c.WebMaxResponseSize <= 0 {
		return fmt.Errorf("%s must be positive", webMaxSizeVar)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%s must be debug, info, warn, or error, got %q", logLevelVar, name)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvDurationOrDefault accepts Go durations ("90s") and bare seconds ("90").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}

func getEnvSizeOrDefault(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid size %q", key, value)
	}
	return n, nil
}
