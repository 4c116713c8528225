// Command fasteci measures how far a cheap inertial→Earth-fixed conversion
// drifts from the exact one. It computes the exact transform once per
// reference epoch, advances it to nearby times with a rigid polar-axis spin,
// and reports the position and velocity error of that shortcut against fully
// recomputed transforms, along with the wall-time saved.
//
// The report goes to stdout; logs go to stderr as JSON.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/greyskyy/fast-eci/internal/agg"
	"github.com/greyskyy/fast-eci/internal/eop"
	"github.com/greyskyy/fast-eci/internal/eval"
	"github.com/greyskyy/fast-eci/internal/frame"
	"github.com/greyskyy/fast-eci/internal/metrics"
	"github.com/greyskyy/fast-eci/internal/orbit"
	"github.com/greyskyy/fast-eci/internal/report"
	"github.com/greyskyy/fast-eci/internal/tle"
)

var (
	samplePoints   = pflag.IntP("sample-points", "s", 6, "number of reference epochs to evaluate")
	stepMinutes    = pflag.Float64("step", 15, "minutes between reference epochs")
	testsPerSample = pflag.IntP("tests-per-sample", "t", 10, "number of test offsets per reference epoch")
	testStep       = pflag.Float64("test-step", 10, "seconds between test offsets")
	inertialName   = pflag.StringP("inertial-frame", "i", "gcrf", "inertial frame to convert from (gcrf or j2000)")
	verbose        = pflag.BoolP("verbose", "v", false, "print per-point detail to stdout")
	catnr          = pflag.Int("catnr", 25544, "NORAD catalog number to evaluate")
	tleFile        = pflag.String("tle-file", "", "read TLE data from this file instead of fetching")
	dataDir        = pflag.String("data-dir", "data", "directory for downloaded data files")
	skipEOP        = pflag.Bool("skip-eop", false, "run without Earth-orientation corrections")
	metricsOut     = pflag.String("metrics-out", "", "write Prometheus text metrics to this file at exit")
	logLevel       = pflag.String("log-level", "info", "log level (debug, info, warn, error)")
)

func main() {
	pflag.Parse()

	logger := newLogger(*logLevel)

	if err := validateFlags(); err != nil {
		logger.Error("invalid flags", "error", err)
		pflag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg := loadDataConfig(logger)

	// Earth-orientation data refines the exact transforms with UT1 and polar
	// motion. Without it both paths still run, just against a coarser truth.
	var table *eop.Table
	if *skipEOP {
		logger.Info("earth-orientation corrections disabled")
	} else {
		dl := eop.NewDownloader(cfg.DataDir, cfg.HTTPTimeout, logger)
		path, err := dl.Fetch(ctx, cfg.EOPURL)
		if err != nil {
			return fmt.Errorf("acquiring earth-orientation data: %w", err)
		}
		table, err = eop.Load(path, logger)
		if err != nil {
			return err
		}
		first, last := table.Span()
		logger.Info("earth-orientation data loaded",
			"entries", table.Len(),
			"from", first.Format("2006-01-02"),
			"to", last.Format("2006-01-02"),
		)
	}

	engine := frame.NewEngine(table, logger)
	inertial, err := engine.Inertial(*inertialName)
	if err != nil {
		return err
	}

	entry, err := acquireTLE(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("TLE loaded",
		"norad_id", entry.NORADID,
		"name", entry.Name,
		"epoch", entry.Epoch.Format(time.RFC3339),
	)

	prop, err := orbit.NewSGP4(entry.Line1, entry.Line2, entry.NORADID)
	if err != nil {
		return err
	}
	provider := orbit.NewProvider(prop, engine)

	evalCfg := eval.Config{
		Inertial: inertial,
		Fixed:    engine.ITRF(),
		NumTests: *testsPerSample,
		TestStep: *testStep,
	}
	if *verbose {
		evalCfg.Verbose = os.Stdout
	}
	evaluator := eval.New(provider, engine, evalCfg, logger)

	// Reference epochs march forward from the TLE epoch. The propagator
	// takes whole seconds, so the start is truncated to one.
	start := entry.Epoch.UTC().Truncate(time.Second)
	collector := agg.NewCollector()
	var totals eval.Timings

	for i := 0; i < *samplePoints; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		epoch := start.Add(time.Duration(float64(i) * *stepMinutes * float64(time.Minute)))
		logger.Debug("evaluating reference epoch", "index", i, "epoch", epoch.Format(time.RFC3339))

		samples, timings, err := evaluator.CheckSample(epoch)
		if err != nil {
			return fmt.Errorf("evaluating epoch %s: %w", epoch.Format(time.RFC3339), err)
		}
		collector.AddAll(samples)
		totals.Add(timings)
		metrics.RecordEpoch()
	}

	if err := report.Write(os.Stdout, collector.Stats(), totals); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if *metricsOut != "" {
		if err := metrics.Dump(*metricsOut); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		logger.Info("metrics written", "path", *metricsOut)
	}

	return nil
}

// acquireTLE resolves the element set to evaluate: an explicit file when
// given, otherwise a fetch from the network with the on-disk cache as
// fallback.
func acquireTLE(ctx context.Context, cfg dataConfig, logger *slog.Logger) (tle.Entry, error) {
	if *tleFile != "" {
		data, err := os.ReadFile(*tleFile)
		if err != nil {
			return tle.Entry{}, fmt.Errorf("reading TLE file: %w", err)
		}
		return selectEntry(data, *catnr, logger)
	}

	cache := tle.NewCache(filepath.Join(cfg.DataDir, "tle"), 5)
	fetcher := tle.NewFetcher(cfg.TLEBaseURL, cfg.HTTPTimeout, logger)

	data, err := fetcher.FetchCatalog(ctx, *catnr)
	if err != nil {
		logger.Warn("TLE fetch failed, trying cache", "error", err)
		cached, ts, cerr := cache.LoadLatest(*catnr)
		if cerr != nil {
			return tle.Entry{}, fmt.Errorf("fetching TLE for catalog %d: %w", *catnr, err)
		}
		logger.Info("using cached TLE data", "cached_at", ts.Format(time.RFC3339))
		data = cached
	} else if werr := cache.Write(*catnr, data, time.Now()); werr != nil {
		logger.Warn("failed to cache TLE data", "error", werr)
	}

	return selectEntry(data, *catnr, logger)
}

func selectEntry(data []byte, catnr int, logger *slog.Logger) (tle.Entry, error) {
	entries, err := tle.Parse(bytes.NewReader(data), logger)
	if err != nil {
		return tle.Entry{}, err
	}
	for _, e := range entries {
		if e.NORADID == catnr {
			return e, nil
		}
	}
	return tle.Entry{}, fmt.Errorf("no TLE for catalog number %d in %d entries", catnr, len(entries))
}

type dataConfig struct {
	TLEBaseURL  string
	EOPURL      string
	DataDir     string
	HTTPTimeout time.Duration
}

func loadDataConfig(logger *slog.Logger) dataConfig {
	cfg := dataConfig{
		EOPURL:      "https://celestrak.org/SpaceData/EOP-All.txt",
		DataDir:     *dataDir,
		HTTPTimeout: 30 * time.Second,
	}

	if v := os.Getenv("FASTECI_TLE_URL"); v != "" {
		cfg.TLEBaseURL = v
	}

	if v := os.Getenv("FASTECI_EOP_URL"); v != "" {
		cfg.EOPURL = v
	}

	if v := os.Getenv("FASTECI_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("FASTECI_HTTP_TIMEOUT"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 1 {
			logger.Warn("invalid FASTECI_HTTP_TIMEOUT value, using default", "value", v, "default", 30)
		} else {
			cfg.HTTPTimeout = time.Duration(seconds) * time.Second
		}
	}

	logger.Debug("data config",
		"eop_url", cfg.EOPURL,
		"data_dir", cfg.DataDir,
		"timeout_seconds", cfg.HTTPTimeout.Seconds(),
	)

	return cfg
}

func validateFlags() error {
	if *samplePoints < 1 {
		return errors.New("--sample-points must be at least 1")
	}
	if *testsPerSample < 1 {
		return errors.New("--tests-per-sample must be at least 1")
	}
	if *stepMinutes <= 0 {
		return errors.New("--step must be positive")
	}
	if *testStep <= 0 {
		return errors.New("--test-step must be positive")
	}
	switch *inertialName {
	case "gcrf", "j2000":
	default:
		return fmt.Errorf("--inertial-frame must be gcrf or j2000, got %q", *inertialName)
	}
	return nil
}

// newLogger builds the JSON logger on stderr; stdout belongs to the report.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	var unknown bool
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
		unknown = true
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	if unknown {
		logger.Warn("unknown log level, using info", "value", level)
	}
	return logger
}
