/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/shiftsheet/internal/events"
	"github.com/friendsincode/shiftsheet/internal/roster"
)

// Output formats.
const (
	FormatDocx = "docx"
	FormatICal = "ics"
	FormatHTML = "html"
)

// Notification backends.
const (
	NotifyNone    = "none"
	NotifyNATS    = "nats"
	NotifyRedis   = "redis"
	NotifyWebhook = "webhook"
)

// Config covers process level configuration. Values come from built-in
// defaults, then the optional YAML file named by SHIFTSHEET_CONFIG_PATH, then
// environment variables. Command-line flags override the result.
type Config struct {
	Environment string `yaml:"environment"`

	ObjectsFile  string `yaml:"objects_file"`
	TemplatePath string `yaml:"template"`
	OutputDir    string `yaml:"output_dir"`
	Format       string `yaml:"format"`
	StartHour    int    `yaml:"start_hour"`
	Timezone     string `yaml:"timezone"`

	IntervalMin      time.Duration `yaml:"interval_min"`
	IntervalMax      time.Duration `yaml:"interval_max"`
	IntervalStep     time.Duration `yaml:"interval_step"`
	FirstCrawlOffset time.Duration `yaml:"first_crawl_offset"`
	Seed             *uint64       `yaml:"seed"`

	// S3 object storage. Documents go to S3 instead of OutputDir when a
	// bucket is set.
	S3Bucket          string `yaml:"s3_bucket"`
	S3Prefix          string `yaml:"s3_prefix"`
	S3Region          string `yaml:"s3_region"`
	S3Endpoint        string `yaml:"s3_endpoint"` // MinIO, Spaces, etc.
	S3AccessKeyID     string `yaml:"s3_access_key_id"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key"`
	S3UsePathStyle    bool   `yaml:"s3_use_path_style"`
	S3PublicBaseURL   string `yaml:"s3_public_base_url"`

	// Run notifications
	Notify            string   `yaml:"notify"`
	NATSURL           string   `yaml:"nats_url"`
	NATSToken         string   `yaml:"nats_token"`
	NATSSubjectPrefix string   `yaml:"nats_subject_prefix"`
	RedisAddr         string   `yaml:"redis_addr"`
	RedisPassword     string   `yaml:"redis_password"`
	RedisDB           int      `yaml:"redis_db"`
	WebhookURL        string   `yaml:"webhook_url"`
	WebhookSecret     string   `yaml:"webhook_secret"`
	WebhookEvents     []string `yaml:"webhook_events"` // empty means every event

	MetricsTextfile string `yaml:"metrics_textfile"`

	TracingEnabled    bool    `yaml:"tracing_enabled"`
	OTLPEndpoint      string  `yaml:"otlp_endpoint"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate"`

	// Path of the YAML file that was applied, if any.
	File string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment:       "production",
		ObjectsFile:       roster.DefaultPath,
		TemplatePath:      "template.docx",
		OutputDir:         "output",
		Format:            FormatDocx,
		StartHour:         8,
		Timezone:          "Local",
		IntervalMin:       90 * time.Minute,
		IntervalMax:       120 * time.Minute,
		IntervalStep:      5 * time.Minute,
		FirstCrawlOffset:  10 * time.Minute,
		S3Region:          "us-east-1",
		Notify:            NotifyNone,
		NATSURL:           "nats://127.0.0.1:4222",
		NATSSubjectPrefix: "shiftsheet.events",
		RedisAddr:         "localhost:6379",
		OTLPEndpoint:      "localhost:4317",
		TracingSampleRate: 1.0,
	}
}

// Load reads the config file and environment variables, applies defaults, and
// validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := getEnv("SHIFTSHEET_CONFIG_PATH", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
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

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found: %w", path, err)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.File = path
	return nil
}

func (c *Config) applyEnv() error {
	c.Environment = getEnvAny([]string{"SHIFTSHEET_ENV", "ENVIRONMENT"}, c.Environment)

	c.ObjectsFile = getEnv("SHIFTSHEET_OBJECTS_FILE", c.ObjectsFile)
	c.TemplatePath = getEnv("SHIFTSHEET_TEMPLATE", c.TemplatePath)
	c.OutputDir = getEnv("SHIFTSHEET_OUTPUT_DIR", c.OutputDir)
	c.Format = strings.ToLower(getEnv("SHIFTSHEET_FORMAT", c.Format))
	c.StartHour = getEnvInt("SHIFTSHEET_START_HOUR", c.StartHour)
	c.Timezone = getEnvAny([]string{"SHIFTSHEET_TIMEZONE", "TZ"}, c.Timezone)

	var err error
	if c.IntervalMin, err = getEnvDuration("SHIFTSHEET_INTERVAL_MIN", c.IntervalMin); err != nil {
		return err
	}
	if c.IntervalMax, err = getEnvDuration("SHIFTSHEET_INTERVAL_MAX", c.IntervalMax); err != nil {
		return err
	}
	if c.IntervalStep, err = getEnvDuration("SHIFTSHEET_INTERVAL_STEP", c.IntervalStep); err != nil {
		return err
	}
	if c.FirstCrawlOffset, err = getEnvDuration("SHIFTSHEET_FIRST_CRAWL_OFFSET", c.FirstCrawlOffset); err != nil {
		return err
	}
	if v := os.Getenv("SHIFTSHEET_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SHIFTSHEET_SEED: %w", err)
		}
		c.Seed = &seed
	}

	c.S3Bucket = getEnvAny([]string{"SHIFTSHEET_S3_BUCKET", "S3_BUCKET"}, c.S3Bucket)
	c.S3Prefix = getEnv("SHIFTSHEET_S3_PREFIX", c.S3Prefix)
	c.S3Region = getEnvAny([]string{"SHIFTSHEET_S3_REGION", "AWS_REGION"}, c.S3Region)
	c.S3Endpoint = getEnvAny([]string{"SHIFTSHEET_S3_ENDPOINT", "S3_ENDPOINT"}, c.S3Endpoint)
	c.S3AccessKeyID = getEnvAny([]string{"SHIFTSHEET_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, c.S3AccessKeyID)
	c.S3SecretAccessKey = getEnvAny([]string{"SHIFTSHEET_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, c.S3SecretAccessKey)
	c.S3UsePathStyle = getEnvBoolAny([]string{"SHIFTSHEET_S3_USE_PATH_STYLE", "S3_USE_PATH_STYLE"}, c.S3UsePathStyle)
	c.S3PublicBaseURL = getEnv("SHIFTSHEET_S3_PUBLIC_BASE_URL", c.S3PublicBaseURL)

	c.Notify = strings.ToLower(getEnv("SHIFTSHEET_NOTIFY", c.Notify))
	c.NATSURL = getEnvAny([]string{"SHIFTSHEET_NATS_URL", "NATS_URL"}, c.NATSURL)
	c.NATSToken = getEnv("SHIFTSHEET_NATS_TOKEN", c.NATSToken)
	c.NATSSubjectPrefix = getEnv("SHIFTSHEET_NATS_SUBJECT_PREFIX", c.NATSSubjectPrefix)
	c.RedisAddr = getEnv("SHIFTSHEET_REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("SHIFTSHEET_REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("SHIFTSHEET_REDIS_DB", c.RedisDB)
	c.WebhookURL = getEnv("SHIFTSHEET_WEBHOOK_URL", c.WebhookURL)
	c.WebhookSecret = getEnv("SHIFTSHEET_WEBHOOK_SECRET", c.WebhookSecret)
	c.WebhookEvents = getEnvList("SHIFTSHEET_WEBHOOK_EVENTS", c.WebhookEvents)

	c.MetricsTextfile = getEnv("SHIFTSHEET_METRICS_TEXTFILE", c.MetricsTextfile)

	c.TracingEnabled = getEnvBoolAny([]string{"SHIFTSHEET_TRACING_ENABLED"}, c.TracingEnabled)
	c.OTLPEndpoint = getEnvAny([]string{"SHIFTSHEET_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"}, c.OTLPEndpoint)
	c.TracingSampleRate = getEnvFloatAny([]string{"SHIFTSHEET_TRACING_SAMPLE_RATE"}, c.TracingSampleRate)
	return nil
}

// Validate checks values that flags cannot fix later.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatDocx, FormatICal, FormatHTML:
	default:
		return fmt.Errorf("unsupported format %q (want docx, ics or html)", c.Format)
	}
	if c.StartHour < 0 || c.StartHour > 23 {
		return fmt.Errorf("start hour %d out of range 0-23", c.StartHour)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.IntervalMin <= 0 || c.IntervalStep <= 0 || c.IntervalMax < c.IntervalMin {
		return fmt.Errorf("invalid crawl intervals: min %s, max %s, step %s", c.IntervalMin, c.IntervalMax, c.IntervalStep)
	}
	if c.FirstCrawlOffset < 0 {
		return fmt.Errorf("first crawl offset must not be negative, got %s", c.FirstCrawlOffset)
	}
	switch c.Notify {
	case NotifyNone, NotifyNATS, NotifyRedis:
	case NotifyWebhook:
		if c.WebhookURL == "" {
			return fmt.Errorf("SHIFTSHEET_WEBHOOK_URL is required for webhook notifications")
		}
		for _, e := range c.WebhookEvents {
			switch events.EventType(e) {
			case events.EventShiftRendered, events.EventRunCompleted, events.EventRunFailed:
			default:
				return fmt.Errorf("unknown webhook event %q", e)
			}
		}
	default:
		return fmt.Errorf("unsupported notify backend %q (want none, nats, redis or webhook)", c.Notify)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("tracing sample rate %v out of range 0-1", c.TracingSampleRate)
	}
	if strings.EqualFold(c.Environment, "production") && c.S3AccessKeyID != "" && c.S3SecretAccessKey == "" {
		return fmt.Errorf("SHIFTSHEET_S3_SECRET_ACCESS_KEY is required when an access key id is set")
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// UseS3 reports whether documents are stored in S3.
func (c *Config) UseS3() bool {
	return c.S3Bucket != ""
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string, def []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// getEnvDuration parses a Go duration ("90m") or a bare number of minutes.
func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	if minutes, err := strconv.Atoi(val); err == nil {
		return time.Duration(minutes) * time.Minute, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
