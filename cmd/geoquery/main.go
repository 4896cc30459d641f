package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/signalsfoundry/geoquery/conflict"
	"github.com/signalsfoundry/geoquery/core"
	"github.com/signalsfoundry/geoquery/internal/logging"
	"github.com/signalsfoundry/geoquery/internal/observability"
	"github.com/signalsfoundry/geoquery/kb"
	"github.com/signalsfoundry/geoquery/timectrl"
)

type options struct {
	engine      core.Config
	scenario    string
	start       time.Time
	duration    time.Duration
	tick        time.Duration
	accelerated bool
	horizon     time.Duration
	workers     int
}

// report is what a run observed on its final tick.
type report struct {
	ticks       uint64
	conflicts   []conflict.Conflict
	predictions []conflict.Prediction
}

func main() {
	scenario := flag.String("scenario", "configs/scenario.json", "Path to a JSON file listing the shapes to track")
	duration := flag.Duration("duration", 60*time.Second, "total simulation duration (0 runs until interrupted)")
	tick := flag.Duration("tick", 1*time.Second, "tick interval")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	horizon := flag.Duration("horizon", 10*time.Minute, "look-ahead for predicted conflicts")
	workers := flag.Int("workers", 0, "pairs evaluated concurrently (0 uses GOMAXPROCS)")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics (empty disables)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engineCfg := core.ConfigFromEnv()
	tracingCfg := observability.TracingConfigFromEnv()
	tracingCfg.Attributes = observability.EngineAttributes(engineCfg.ApplyDefaults())
	shutdownTracing, err := observability.InitTracing(ctx, tracingCfg, log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewQueryCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	opts := options{
		engine:      engineCfg,
		scenario:    *scenario,
		start:       time.Now().UTC(),
		duration:    *duration,
		tick:        *tick,
		accelerated: *accelerated,
		horizon:     *horizon,
		workers:     *workers,
	}
	rep, err := run(ctx, opts, collector, log)
	if err != nil {
		log.Error(ctx, "run failed", logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "simulation complete",
		logging.Int("ticks", int(rep.ticks)),
		logging.Int("conflicts", len(rep.conflicts)),
		logging.Int("predicted_conflicts", len(rep.predictions)),
	)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

// run loads the scenario and, every tick, propagates shapes and scans the
// registry for current and predicted conflicts.
func run(ctx context.Context, opts options, collector *observability.QueryCollector, log logging.Logger) (report, error) {
	if opts.tick <= 0 {
		return report{}, errors.Newf("tick must be positive, got %s", opts.tick)
	}
	engine := core.NewEngine(opts.engine, core.WithRecorder(collector))
	store := kb.NewKnowledgeBase()

	f, err := os.Open(opts.scenario)
	if err != nil {
		return report{}, errors.Wrapf(err, "open scenario %q", opts.scenario)
	}
	sc, err := kb.LoadScenario(store, engine.Converter(), f)
	f.Close()
	if err != nil {
		return report{}, err
	}
	log.Info(ctx, "loaded scenario",
		logging.String("path", opts.scenario),
		logging.Int("shapes", len(sc.ShapeIDs)),
		logging.Int("orbital", len(sc.TLEs)),
		logging.String("approximations", engine.Config().Approximations.String()),
	)

	mode := timectrl.RealTime
	if opts.accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(opts.start, opts.tick, mode)

	prop := core.NewPropagator(
		core.WithPositionUpdater(store),
		core.WithTLEFetcher(sc.TLE),
		core.WithPropagatorLogger(log),
	)
	stopFollowing := prop.Follow(store, tc)
	defer stopFollowing()

	detector := conflict.NewDetector(engine, store,
		conflict.WithWorkers(opts.workers),
		conflict.WithLogger(log),
		conflict.WithMetrics(collector),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var rep report
	var tickErr error
	tc.AddListener(func(simTime time.Time, tick uint64) {
		rep.ticks = tick
		if err := prop.UpdatePositions(simTime); err != nil {
			log.Warn(runCtx, "propagation incomplete", logging.Err(err))
		}
		conflicts, err := detector.Scan(runCtx)
		if err != nil {
			tickErr = err
			cancel()
			return
		}
		predictions, err := detector.Predict(runCtx, opts.horizon.Seconds())
		if err != nil {
			tickErr = err
			cancel()
			return
		}
		rep.conflicts, rep.predictions = conflicts, predictions
		for _, c := range conflicts {
			log.Info(runCtx, "conflict",
				logging.String("sim_time", simTime.Format(time.RFC3339)),
				logging.String("a", c.A),
				logging.String("b", c.B),
				logging.String("tier", c.Tier.String()),
				logging.Float64("volume_km3", c.Volume.Value),
			)
		}
		for _, p := range predictions {
			log.Info(runCtx, "predicted conflict",
				logging.String("sim_time", simTime.Format(time.RFC3339)),
				logging.String("a", p.A),
				logging.String("b", p.B),
				logging.String("tier", p.Tier.String()),
				logging.Float64("horizon_s", p.Horizon),
			)
		}
	})

	log.Info(ctx, "starting simulation",
		logging.Duration("duration", opts.duration),
		logging.Duration("tick", opts.tick),
		logging.Bool("accelerated", opts.accelerated),
	)

	// The listener runs on the controller goroutine; rep and tickErr are
	// read only after it has finished.
	<-tc.Start(runCtx, opts.duration)
	if tickErr != nil && !errors.Is(tickErr, context.Canceled) {
		return rep, tickErr
	}
	return rep, nil
}

func serveMetrics(addr string, collector *observability.QueryCollector, log logging.Logger) *http.Server {
	if collector == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
