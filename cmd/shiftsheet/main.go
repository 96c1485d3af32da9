/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/shiftsheet/internal/config"
	"github.com/friendsincode/shiftsheet/internal/crawl"
	"github.com/friendsincode/shiftsheet/internal/events"
	"github.com/friendsincode/shiftsheet/internal/eventbus"
	"github.com/friendsincode/shiftsheet/internal/logging"
	"github.com/friendsincode/shiftsheet/internal/roster"
	"github.com/friendsincode/shiftsheet/internal/runner"
	"github.com/friendsincode/shiftsheet/internal/storage"
	"github.com/friendsincode/shiftsheet/internal/telemetry"
	"github.com/friendsincode/shiftsheet/internal/version"
	"github.com/friendsincode/shiftsheet/internal/webhooks"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var (
	flagDate     string
	flagNum      int
	flagStart    int
	flagObjects  string
	flagTemplate string
	flagOutput   string
	flagFormat   string
	flagSeed     uint64
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "shiftsheet",
	Short: "Generate crawl schedule documents for day shifts",
	Long: `shiftsheet creates one document per 24-hour shift listing randomized crawl
times for every object in the roster.

Examples:
  # Tomorrow's shift starting at 08:00
  shiftsheet

  # Three shifts from 1 March, starting at 20:00
  shiftsheet -d 2024-03-01 -n 3 -s 20

  # Calendar files instead of Word documents
  shiftsheet --format ics
`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runGenerate,
}

func init() {
	defaults := config.Default()

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&flagDate, "date", "d", "", "First shift date as YYYY-MM-DD (default tomorrow)")
	flags.IntVarP(&flagNum, "num", "n", 1, "Number of shifts")
	flags.IntVarP(&flagStart, "start", "s", defaults.StartHour, "Shift start hour (0-23)")
	flags.StringVar(&flagObjects, "objects", defaults.ObjectsFile, "Object roster, one name per line")
	flags.StringVar(&flagTemplate, "template", defaults.TemplatePath, "Word template for docx output")
	flags.StringVar(&flagOutput, "output", defaults.OutputDir, "Existing directory for generated documents")
	flags.StringVar(&flagFormat, "format", defaults.Format, "Output format: docx, ics or html")
	flags.Uint64Var(&flagSeed, "seed", 0, "Seed for the random source (default time based)")
	flags.StringVar(&flagLogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and applies flags the user set explicitly.
func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		cfg.StartHour = flagStart
	}
	if flags.Changed("objects") {
		cfg.ObjectsFile = flagObjects
	}
	if flags.Changed("template") {
		cfg.TemplatePath = flagTemplate
	}
	if flags.Changed("output") {
		cfg.OutputDir = flagOutput
	}
	if flags.Changed("format") {
		cfg.Format = flagFormat
	}
	if flags.Changed("seed") {
		seed := flagSeed
		cfg.Seed = &seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger = logging.Setup(cfg.Environment)
	if logger, err = logging.ParseLevel(logger, flagLogLevel); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	if cfg.File != "" {
		logger.Debug().Str("path", cfg.File).Msg("config file applied")
	}
	return nil
}

// shiftParams resolves the first shift start from --date, --start and --num.
func shiftParams(now time.Time) (runner.Params, error) {
	if flagNum < 1 {
		return runner.Params{}, fmt.Errorf("--num must be at least 1, got %d", flagNum)
	}
	loc, err := cfg.Location()
	if err != nil {
		return runner.Params{}, err
	}

	day, err := parseDate(flagDate, now.In(loc), loc)
	if err != nil {
		return runner.Params{}, err
	}
	first := time.Date(day.Year(), day.Month(), day.Day(), cfg.StartHour, 0, 0, 0, loc)
	return runner.Params{First: first, Shifts: flagNum}, nil
}

// parseDate accepts YYYY-MM-DD or YYYY-MM-DDTHH:MM[:SS]; only the date is
// used. Empty means the day after now.
func parseDate(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return now.AddDate(0, 0, 1), nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", value)
}

func newGenerator() (*crawl.Generator, error) {
	intervals, err := crawl.Intervals(cfg.IntervalMin, cfg.IntervalMax, cfg.IntervalStep)
	if err != nil {
		return nil, err
	}

	var seed uint64
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		seed = uint64(time.Now().UnixNano())
	}
	logger.Debug().Uint64("seed", seed).Int("intervals", len(intervals)).Msg("crawl generator ready")

	return crawl.NewGenerator(intervals, crawl.NewRand(seed), crawl.WithFirstCrawlOffset(cfg.FirstCrawlOffset))
}

func loadRoster() (*roster.Roster, error) {
	r, err := roster.Load(cfg.ObjectsFile)
	if err != nil {
		return nil, err
	}
	if r.Skipped > 0 {
		logger.Warn().Int("blank_lines", r.Skipped).Str("path", cfg.ObjectsFile).Msg("skipped blank roster lines")
	}
	if len(r.Names) == 0 {
		logger.Warn().Str("path", cfg.ObjectsFile).Msg("roster is empty; documents will list no objects")
	}
	return r, nil
}

func newStore(ctx context.Context) (storage.ObjectStore, error) {
	if !cfg.UseS3() {
		return storage.NewFilesystemStore(cfg.OutputDir, logger), nil
	}
	return storage.NewS3Store(ctx, storage.S3Config{
		Bucket:          cfg.S3Bucket,
		Prefix:          cfg.S3Prefix,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		UsePathStyle:    cfg.S3UsePathStyle,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	}, logger)
}

func newPublisher() (events.Publisher, error) {
	switch cfg.Notify {
	case config.NotifyNATS:
		natsCfg := eventbus.DefaultNATSConfig()
		natsCfg.URL = cfg.NATSURL
		natsCfg.Token = cfg.NATSToken
		natsCfg.SubjectPrefix = cfg.NATSSubjectPrefix
		pub, err := eventbus.NewNATSPublisher(natsCfg, logger)
		if err != nil {
			return nil, err
		}
		return pub, nil
	case config.NotifyRedis:
		redisCfg := eventbus.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPassword
		redisCfg.DB = cfg.RedisDB
		return eventbus.NewRedisPublisher(redisCfg, logger), nil
	case config.NotifyWebhook:
		pub, err := webhooks.NewPublisher(webhooks.Config{
			URL:    cfg.WebhookURL,
			Secret: cfg.WebhookSecret,
			Events: cfg.WebhookEvents,
		}, logger)
		if err != nil {
			return nil, err
		}
		return pub, nil
	default:
		return nil, nil
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    "shiftsheet",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	params, err := shiftParams(time.Now())
	if err != nil {
		return err
	}

	// Every input is checked before the first document is written.
	objects, err := loadRoster()
	if err != nil {
		return err
	}
	params.Names = objects.Names

	gen, err := newGenerator()
	if err != nil {
		return err
	}

	store, err := newStore(ctx)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := store.CheckAccess(ctx); err != nil {
		return err
	}

	renderer, err := runner.NewRenderer(cfg.Format, cfg.TemplatePath)
	if err != nil {
		return err
	}

	publisher, err := newPublisher()
	if err != nil {
		return fmt.Errorf("initialize notifications: %w", err)
	}
	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close publisher")
			}
		}()
	}

	metrics := telemetry.NewMetrics()
	if cfg.MetricsTextfile != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
				logger.Warn().Err(err).Msg("failed to write metrics")
			}
		}()
	}

	r, err := runner.New(runner.Config{
		Generator: gen,
		Renderer:  renderer,
		Store:     store,
		Publisher: publisher,
		Metrics:   metrics,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	res, err := r.Run(ctx, params)
	if res != nil {
		for _, key := range res.Keys {
			fmt.Fprintln(cmd.OutOrStdout(), store.URL(key))
		}
	}
	return err
}
