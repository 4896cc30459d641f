package core

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/geoquery/kb"
	"github.com/signalsfoundry/geoquery/model"
	"github.com/signalsfoundry/geoquery/timectrl"
)

const (
	issTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

type shapeState struct {
	pos, vel r3.Vector
}

type capturingUpdater struct {
	states map[string]shapeState
	calls  map[string]int
	fail   map[string]bool
}

func (c *capturingUpdater) UpdateShapeState(id string, pos, vel r3.Vector) error {
	if c.states == nil {
		c.states = make(map[string]shapeState)
		c.calls = make(map[string]int)
	}
	c.calls[id]++
	if c.fail[id] {
		return errors.Newf("store rejected %s", id)
	}
	c.states[id] = shapeState{pos: pos, vel: vel}
	return nil
}

func (c *capturingUpdater) snapshot(id string) (shapeState, int) {
	return c.states[id], c.calls[id]
}

func TestStaticMotionModel_NoChange(t *testing.T) {
	s := mustSphere(t, vec(1, 2, 3), 1)
	var m StaticMotionModel

	t1 := time.Now().UTC()
	pos, vel := m.StateAt(t1, s)
	if pos != vec(1, 2, 3) || vel != (r3.Vector{}) {
		t.Fatalf("static motion should keep position, got %v / %v", pos, vel)
	}
	if pos, _ = m.StateAt(t1.Add(time.Hour), s); pos != vec(1, 2, 3) {
		t.Fatalf("static motion should not change after an hour, got %v", pos)
	}
}

func TestConstantVelocityModel(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := ConstantVelocityModel{Epoch: epoch, Origin: vec(1, 0, 0), Velocity: vec(0, 2, 0)}

	pos, vel := m.StateAt(epoch.Add(3*time.Second), nil)
	if pos != vec(1, 6, 0) || vel != vec(0, 2, 0) {
		t.Fatalf("after 3s got %v / %v", pos, vel)
	}
}

// Exact orbital values belong to go-satellite; only check that the state
// moves and stays in low earth orbit.
func TestOrbitalSGP4MotionModel_ChangesOverTime(t *testing.T) {
	m := NewOrbitalModelFromTLE(issTLE1, issTLE2)

	t1 := time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
	first, vel := m.StateAt(t1, nil)
	second, _ := m.StateAt(t1.Add(5*time.Minute), nil)

	if first == second {
		t.Fatalf("expected orbital position to change over time, got %v at both times", first)
	}
	if r := first.Norm(); r < 6500 || r > 7000 {
		t.Fatalf("ISS radius %v km outside low earth orbit", r)
	}
	if speed := vel.Norm(); speed < 6 || speed > 9 {
		t.Fatalf("ISS ground-frame speed %v km/s implausible", speed)
	}
}

func TestPropagator_AddUpdateAndRemove(t *testing.T) {
	sat := point(vec(0, 0, 0))
	ground := mustSphere(t, vec(1, 2, 3), 0.5)
	drone := mustSphere(t, vec(0, 0, 0), 0.1).WithVelocity(vec(1, 0, 0))

	updater := &capturingUpdater{}
	p := NewPropagator(
		WithTLEFetcher(func(id string, _ model.Shape) (string, string) {
			if id == "sat1" {
				return issTLE1, issTLE2
			}
			return "", ""
		}),
		WithPositionUpdater(updater),
	)

	t0 := time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
	for id, s := range map[string]model.Shape{"sat1": sat, "ground1": ground, "drone1": drone} {
		if err := p.AddShape(id, s, t0); err != nil {
			t.Fatalf("AddShape %s: %v", id, err)
		}
	}
	if err := p.AddShape("sat1", sat, t0); err == nil {
		t.Fatalf("expected duplicate AddShape error")
	}
	if err := p.AddShape("nil", nil, t0); err == nil {
		t.Fatalf("expected nil shape error")
	}
	if p.Len() != 3 {
		t.Fatalf("Len = %d, want 3", p.Len())
	}

	if err := p.UpdatePositions(t0); err != nil {
		t.Fatalf("UpdatePositions first tick: %v", err)
	}
	firstSat, satCalls := updater.snapshot("sat1")
	firstGround, _ := updater.snapshot("ground1")

	t1 := t0.Add(5 * time.Minute)
	if err := p.UpdatePositions(t1); err != nil {
		t.Fatalf("UpdatePositions second tick: %v", err)
	}
	secondSat, satCalls2 := updater.snapshot("sat1")
	secondGround, groundCalls2 := updater.snapshot("ground1")
	droneState, _ := updater.snapshot("drone1")

	if satCalls2 <= satCalls {
		t.Fatalf("expected satellite to be updated again, got calls %d -> %d", satCalls, satCalls2)
	}
	if firstSat.pos == secondSat.pos {
		t.Fatalf("expected satellite position to change, got %v", secondSat.pos)
	}
	if firstGround != secondGround || secondGround.pos != vec(1, 2, 3) {
		t.Fatalf("static shape should stay put, got %+v", secondGround)
	}
	if droneState.pos != vec(300, 0, 0) || droneState.vel != vec(1, 0, 0) {
		t.Fatalf("moving shape after 300s = %+v, want (300,0,0)", droneState)
	}

	if err := p.RemoveShape("ground1"); err != nil {
		t.Fatalf("RemoveShape: %v", err)
	}
	if err := p.RemoveShape("ground1"); err == nil {
		t.Fatalf("expected error removing an untracked shape")
	}
	if err := p.UpdatePositions(t1.Add(time.Minute)); err != nil {
		t.Fatalf("UpdatePositions after removal: %v", err)
	}
	if _, calls := updater.snapshot("ground1"); calls != groundCalls2 {
		t.Fatalf("removed shape should not be updated, got calls %d -> %d", groundCalls2, calls)
	}
}

func TestPropagator_CollectsUpdaterErrors(t *testing.T) {
	updater := &capturingUpdater{fail: map[string]bool{"a": true}}
	p := NewPropagator(WithPositionUpdater(updater))
	now := time.Now()
	for _, id := range []string{"a", "b"} {
		if err := p.AddShape(id, point(vec(1, 1, 1)), now); err != nil {
			t.Fatalf("AddShape %s: %v", id, err)
		}
	}

	if err := p.UpdatePositions(now); err == nil {
		t.Fatalf("expected updater failure to be reported")
	}
	if _, calls := updater.snapshot("b"); calls != 1 {
		t.Fatalf("a failing shape must not stop the others, b calls = %d", calls)
	}
}

func TestPropagator_FollowTracksKnowledgeBase(t *testing.T) {
	start := time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
	clock := timectrl.NewTimeController(start, time.Minute, timectrl.Accelerated)
	store := kb.NewKnowledgeBase()
	if err := store.AddShape("ground", point(vec(1, 2, 3))); err != nil {
		t.Fatalf("AddShape: %v", err)
	}

	p := NewPropagator(WithPositionUpdater(store))
	stop := p.Follow(store, clock)
	defer stop()
	if p.Len() != 1 {
		t.Fatalf("Len() = %d after follow, want 1", p.Len())
	}

	// A shape added later moves from the clock time it was registered at.
	clock.SetTime(start.Add(time.Minute))
	drone := model.NewPoint(model.Moving(vec(0, 0, 0), vec(1, 0, 0)))
	if err := store.AddShape("drone", drone); err != nil {
		t.Fatalf("AddShape: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d after add, want 2", p.Len())
	}
	if err := p.UpdatePositions(start.Add(2 * time.Minute)); err != nil {
		t.Fatalf("UpdatePositions: %v", err)
	}
	got, err := store.GetShape("drone")
	if err != nil {
		t.Fatalf("GetShape: %v", err)
	}
	if want := vec(60, 0, 0); got.Position() != want {
		t.Fatalf("drone at %v, want %v", got.Position(), want)
	}

	if err := store.RemoveShape("ground"); err != nil {
		t.Fatalf("RemoveShape: %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d after remove, want 1", p.Len())
	}
	if err := p.UpdatePositions(start.Add(3 * time.Minute)); err != nil {
		t.Fatalf("removed shapes must not be pushed to the store: %v", err)
	}

	stop()
	if err := store.AddShape("late", point(vec(0, 0, 0))); err != nil {
		t.Fatalf("AddShape: %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d after stop, want 1", p.Len())
	}
}
