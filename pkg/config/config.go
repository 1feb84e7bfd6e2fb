// Package config loads the storefront configuration from an optional YAML
// file, then applies ACRIQUE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/uploadstore"
	"gopkg.in/yaml.v3"
)

// Config is the storefront configuration.
type Config struct {
	LogLevel        string `yaml:"log_level"`
	HTTPPort        string `yaml:"http_port"`
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	ServiceName     string `yaml:"service_name"`

	API          apiclient.Config   `yaml:"api"`
	Query        query.Config       `yaml:"query"`
	Redis        query.RedisConfig  `yaml:"redis"`
	Invalidation InvalidationConfig `yaml:"invalidation"`
	Uploads      uploadstore.Config `yaml:"uploads"`
	Sessions     SessionConfig      `yaml:"sessions"`

	// MetricsNamespace prefixes every exported Prometheus metric.
	MetricsNamespace string `yaml:"metrics_namespace"`
}

// InvalidationConfig enables cross-instance invalidation when TopicID is set.
//
// Pub/Sub delivers each message to one subscriber of a subscription, so every
// replica needs its own subscription on the topic. SubscriptionID may contain
// "{origin}", which SubscriptionFor replaces with the replica's origin.
type InvalidationConfig struct {
	TopicID        string `yaml:"topic_id"`
	SubscriptionID string `yaml:"subscription_id"`
	Origin         string `yaml:"origin"`
}

// OriginPlaceholder in SubscriptionID is replaced with the replica's origin.
const OriginPlaceholder = "{origin}"

// SubscriptionFor returns the subscription the replica named origin reads.
func (c InvalidationConfig) SubscriptionFor(origin string) string {
	return strings.ReplaceAll(c.SubscriptionID, OriginPlaceholder, origin)
}

// Enabled reports whether invalidations are published and consumed.
func (c InvalidationConfig) Enabled() bool {
	return c.TopicID != "" && c.SubscriptionID != ""
}

// SessionConfig bounds the per-browser query caches.
type SessionConfig struct {
	CookieName  string        `yaml:"cookie_name"`
	MaxSessions int           `yaml:"max_sessions"`
	CookieTTL   time.Duration `yaml:"cookie_ttl"`
	Secure      bool          `yaml:"secure"`
}

// Default returns the configuration used when no file or override sets a value.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		HTTPPort:    ":8080",
		ServiceName: "acrique-storefront",
		API: apiclient.Config{
			UserAgent: "acrique-storefront",
		},
		Query: *query.DefaultConfig(),
		Redis: query.RedisConfig{
			TTL:       24 * time.Hour,
			Namespace: "acrique:query",
		},
		Uploads: uploadstore.Config{
			ObjectPrefix: "designs",
		},
		Sessions: SessionConfig{
			CookieName:  "acrique_sid",
			MaxSessions: 10000,
			CookieTTL:   30 * 24 * time.Hour,
		},
		MetricsNamespace: "acrique",
	}
}

// Load reads path, if not empty, over the defaults and then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the storefront cannot start without.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.HTTPPort == "" {
		return errors.New("http_port is required")
	}
	if c.Sessions.CookieName == "" {
		return errors.New("sessions.cookie_name is required")
	}
	if c.Sessions.MaxSessions <= 0 {
		return errors.New("sessions.max_sessions must be positive")
	}
	if c.Invalidation.Enabled() && c.ProjectID == "" {
		return errors.New("project_id is required for invalidation")
	}
	if c.Uploads.BucketName != "" && c.ProjectID == "" {
		return errors.New("project_id is required for uploads")
	}
	return nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"ACRIQUE_LOG_LEVEL":                 &c.LogLevel,
		"ACRIQUE_HTTP_PORT":                 &c.HTTPPort,
		"ACRIQUE_PROJECT_ID":                &c.ProjectID,
		"ACRIQUE_CREDENTIALS_FILE":          &c.CredentialsFile,
		"ACRIQUE_API_BASE_URL":              &c.API.BaseURL,
		"ACRIQUE_REDIS_ADDR":                &c.Redis.Addr,
		"ACRIQUE_REDIS_PASSWORD":            &c.Redis.Password,
		"ACRIQUE_INVALIDATION_TOPIC":        &c.Invalidation.TopicID,
		"ACRIQUE_INVALIDATION_SUBSCRIPTION": &c.Invalidation.SubscriptionID,
		"ACRIQUE_INVALIDATION_ORIGIN":       &c.Invalidation.Origin,
		"ACRIQUE_UPLOAD_BUCKET":             &c.Uploads.BucketName,
		"ACRIQUE_SESSION_COOKIE":            &c.Sessions.CookieName,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACRIQUE_QUERY_STALE_TIME": &c.Query.StaleTime,
		"ACRIQUE_QUERY_GC_TIME":    &c.Query.GCTime,
		"ACRIQUE_REDIS_TTL":        &c.Redis.TTL,
	}
	for name, dst := range durations {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"ACRIQUE_QUERY_MAX_ENTRIES": &c.Query.MaxEntries,
		"ACRIQUE_REDIS_DB":          &c.Redis.DB,
		"ACRIQUE_MAX_SESSIONS":      &c.Sessions.MaxSessions,
	}
	for name, dst := range ints {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("ACRIQUE_SESSION_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ACRIQUE_SESSION_SECURE: %w", err)
		}
		c.Sessions.Secure = secure
	}
	return nil
}
