package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/signalsfoundry/geoquery/internal/logging"
	"github.com/signalsfoundry/geoquery/internal/observability"
)

const testScenario = `{
  "shapes": [
    {"id": "zone", "kind": "sphere", "position": {"x": 0, "y": 0, "z": 0}, "radius": 1},
    {"id": "drone", "kind": "point", "position": {"x": -5, "y": 0, "z": 0}, "velocity": {"x": 1, "y": 0, "z": 0}},
    {"id": "iss", "kind": "sphere", "radius": 0.1, "tle": [
      "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990",
      "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
    ]}
  ]
}`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

// TestIntegration_DroneEntersZone runs a tiny accelerated simulation: the
// drone is predicted to reach the zone first and is inside it by the end.
func TestIntegration_DroneEntersZone(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := observability.NewQueryCollector(reg)
	if err != nil {
		t.Fatalf("NewQueryCollector: %v", err)
	}
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: "info", Format: "json", Output: &buf})

	opts := options{
		scenario:    writeScenario(t, testScenario),
		start:       time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC),
		duration:    5 * time.Second,
		tick:        time.Second,
		accelerated: true,
		horizon:     10 * time.Second,
		workers:     2,
	}
	rep, err := run(context.Background(), opts, collector, log)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.ticks != 5 {
		t.Fatalf("ticks = %d, want 5", rep.ticks)
	}
	if len(rep.conflicts) != 1 || rep.conflicts[0].A != "drone" || rep.conflicts[0].B != "zone" {
		t.Fatalf("final conflicts = %+v, want drone/zone", rep.conflicts)
	}
	if len(rep.predictions) != 1 {
		t.Fatalf("final predictions = %+v, want drone/zone", rep.predictions)
	}
	if !strings.Contains(buf.String(), `"msg":"predicted conflict"`) {
		t.Fatalf("expected predicted conflict log lines:\n%s", buf.String())
	}
	if got := testutil.ToFloat64(collector.TrackedShapes); got != 3 {
		t.Fatalf("geoquery_tracked_shapes = %v, want 3", got)
	}
}

func TestRunRejectsMissingScenario(t *testing.T) {
	opts := options{scenario: filepath.Join(t.TempDir(), "missing.json"), tick: time.Second, duration: time.Second}
	if _, err := run(context.Background(), opts, nil, logging.Noop()); err == nil {
		t.Fatalf("expected missing scenario to fail")
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := options{
		scenario:    writeScenario(t, testScenario),
		start:       time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC),
		tick:        time.Second,
		accelerated: true,
	}
	rep, err := run(ctx, opts, nil, logging.Noop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.ticks != 0 {
		t.Fatalf("cancelled run ticked %d times", rep.ticks)
	}
}
