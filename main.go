// Command edgerank measures latency, packet loss, and sustained download
// throughput from the local host to a large, user-supplied set of
// candidate IP addresses (nominally Cloudflare edge addresses), and ranks
// the best endpoints.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/ekobres/edgerank/control"
	"github.com/ekobres/edgerank/download"
	"github.com/ekobres/edgerank/emit"
	"github.com/ekobres/edgerank/ingest"
	"github.com/ekobres/edgerank/model"
	"github.com/ekobres/edgerank/probe"
)

var version = "dev"

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.showVersion {
		fmt.Println(version)
		return
	}

	log := newLogger()

	if err := run(context.Background(), log, cfg); err != nil {
		log.Error("edgerank failed", "error", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
}

// run wires C1 -> C2 -> C3 under a single deadline and emits the final
// ranked result. Probe failures, stage drops, and deadline expiry never
// produce an error here — only config/source validation failures and
// failures to create or write the CSV file do (spec §7).
func run(parent context.Context, log *slog.Logger, cfg cliConfig) error {
	plan, err := buildPlan(parent, cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(plan.Direct) == 0 && len(plan.Specs) == 0 {
		return fmt.Errorf("config: no IP sources provided (use -f, -ip, or -ipurl)")
	}

	ctx := parent
	var cancel context.CancelFunc
	if cfg.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, cfg.timeout)
		defer cancel()
	}

	deadline := &control.DeadlineFlag{}
	stopTimer := deadline.ArmTimer(ctx, cfg.timeout)
	defer stopTimer()

	var urlistBody string
	if cfg.urlList != "" {
		body, err := (ingest.URLSource{URL: cfg.urlList}).Load(ctx)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		urlistBody = body
	}
	shared := sharedURLs(urlistBody, cfg.urlSingle)

	buf := ingest.NewIpBuffer(cfg.concurrency * 3)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		ingest.Produce(gctx, buf, plan, rng, deadline.IsSet)
		return nil
	})

	probePolicy := cfg.probePolicy()
	probePolicy.URLsForHTTP = cfg.httpURLs(shared)
	if probePolicy.Mode == probe.ModeICMPEcho {
		if err := probe.PreflightICMP(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	success := &control.SuccessCounter{}
	engine := &probe.Engine{
		Policy:   probePolicy,
		Deadline: deadline,
		Success:  success,
		Progress: control.NoopSink{},
	}

	var delaySet *probe.DelaySet
	group.Go(func() error {
		delaySet = engine.Run(gctx, buf)
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	sorted := delaySet.SortedByDelay()
	log.Info("latency probe finished", "qualified", len(sorted))

	var finalRows []model.Measurement
	if cfg.skipDownload {
		finalRows = sorted
	} else {
		dlPolicy := cfg.downloadPolicy()
		dlPolicy.URLs = shared
		stage := &download.Stage{
			Policy:   dlPolicy,
			Deadline: deadline,
			Progress: control.NoopSink{},
		}
		speedSet := stage.Run(ctx, sorted)
		log.Info("download stage finished", "qualified", speedSet.Len())
		finalRows = speedSet.Sorted()
	}

	if cfg.printRows != 0 {
		emit.WriteTable(os.Stdout, finalRows, cfg.includePort, cfg.printRows)
	}

	if cfg.csvPath != "" {
		f, err := os.Create(cfg.csvPath)
		if err != nil {
			return fmt.Errorf("create CSV %s: %w", cfg.csvPath, err)
		}
		defer f.Close()
		if err := emit.WriteCSV(f, finalRows, cfg.includePort); err != nil {
			return fmt.Errorf("write CSV %s: %w", cfg.csvPath, err)
		}
	}

	return nil
}

func buildPlan(ctx context.Context, cfg cliConfig) (ingest.Plan, error) {
	var plan ingest.Plan
	plan.DefaultPort = cfg.portDefault
	plan.AllV4 = cfg.all4

	var sources []ingest.ByteSource
	if cfg.ipFile != "" {
		sources = append(sources, ingest.FileSource(cfg.ipFile))
	}
	if cfg.ipInline != "" {
		sources = append(sources, ingest.InlineSource(cfg.ipInline))
	}
	if cfg.ipURL != "" {
		sources = append(sources, ingest.URLSource{URL: cfg.ipURL})
	}

	for _, src := range sources {
		text, err := src.Load(ctx)
		if err != nil {
			return plan, err
		}
		res := ingest.ParseTokens(text, cfg.portDefault)
		plan.Direct = append(plan.Direct, res.Endpoints...)
		plan.Specs = append(plan.Specs, res.Specs...)
	}

	return plan, nil
}

// parseDeadline accepts either a bare number of seconds ("90") or a Go
// duration string ("1h3m"), per spec §6's "-timeout" flag.
func parseDeadline(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(n * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}
