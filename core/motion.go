package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"
	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/geoquery/internal/logging"
	"github.com/signalsfoundry/geoquery/kb"
	"github.com/signalsfoundry/geoquery/model"
	"github.com/signalsfoundry/geoquery/timectrl"
)

// MotionModel reports where a tracked shape is at a given simulation time.
// Positions are ECEF kilometres and velocities kilometres per second.
type MotionModel interface {
	StateAt(simTime time.Time, s model.Shape) (position, velocity r3.Vector)
}

// StaticMotionModel keeps the shape where it is.
type StaticMotionModel struct{}

// StateAt returns the shape's current position and zero velocity.
func (StaticMotionModel) StateAt(_ time.Time, s model.Shape) (r3.Vector, r3.Vector) {
	return s.Position(), r3.Vector{}
}

// ConstantVelocityModel moves a shape in a straight line from Origin at
// Epoch.
type ConstantVelocityModel struct {
	Epoch    time.Time
	Origin   r3.Vector
	Velocity r3.Vector
}

// StateAt extrapolates linearly from the epoch.
func (m ConstantVelocityModel) StateAt(simTime time.Time, _ model.Shape) (r3.Vector, r3.Vector) {
	dt := simTime.Sub(m.Epoch).Seconds()
	return m.Origin.Add(m.Velocity.Mul(dt)), m.Velocity
}

// OrbitalSGP4MotionModel uses a TLE and SGP4 to place a shape in orbit.
type OrbitalSGP4MotionModel struct {
	sat satellite.Satellite
}

// NewOrbitalModelFromTLE constructs an orbital model from TLE lines.
func NewOrbitalModelFromTLE(line1, line2 string) *OrbitalSGP4MotionModel {
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &OrbitalSGP4MotionModel{sat: sat}
}

// StateAt propagates to simTime and returns the ECEF position. The ECEF
// velocity is the one-second forward difference, so it includes Earth
// rotation.
func (m *OrbitalSGP4MotionModel) StateAt(simTime time.Time, _ model.Shape) (r3.Vector, r3.Vector) {
	pos := m.ecef(simTime)
	next := m.ecef(simTime.Add(time.Second))
	return pos, next.Sub(pos)
}

func (m *OrbitalSGP4MotionModel) ecef(simTime time.Time) r3.Vector {
	simTime = simTime.UTC()
	year, month, day := simTime.Date()
	hour, min, sec := simTime.Clock()

	posECI, _ := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)
	return r3.Vector{X: posECEF.X, Y: posECEF.Y, Z: posECEF.Z}
}

// PositionUpdater receives propagated states, usually the shape registry.
type PositionUpdater interface {
	UpdateShapeState(id string, position, velocity r3.Vector) error
}

// TLEFetcher returns TLE lines for a shape, or empty strings when the shape
// is not an orbital object.
type TLEFetcher func(id string, s model.Shape) (line1, line2 string)

type trackedShape struct {
	shape model.Shape
	model MotionModel
}

// Propagator advances tracked shapes through simulation time and pushes
// their states to a PositionUpdater.
type Propagator struct {
	mu      sync.Mutex
	tracked map[string]*trackedShape
	updater PositionUpdater
	tle     TLEFetcher
	log     logging.Logger
}

// PropagatorOption configures a Propagator.
type PropagatorOption func(*Propagator)

// WithPositionUpdater sets where propagated states are written.
func WithPositionUpdater(u PositionUpdater) PropagatorOption {
	return func(p *Propagator) { p.updater = u }
}

// WithTLEFetcher enables SGP4 propagation for shapes with TLE data.
func WithTLEFetcher(f TLEFetcher) PropagatorOption {
	return func(p *Propagator) { p.tle = f }
}

// WithPropagatorLogger sets the logger used for per-tick diagnostics.
func WithPropagatorLogger(l logging.Logger) PropagatorOption {
	return func(p *Propagator) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPropagator returns an empty propagator.
func NewPropagator(opts ...PropagatorOption) *Propagator {
	p := &Propagator{
		tracked: make(map[string]*trackedShape),
		log:     logging.Noop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddShape starts tracking s. Shapes with TLE data follow SGP4, moving
// shapes keep their velocity from epoch, and the rest stay put.
func (p *Propagator) AddShape(id string, s model.Shape, epoch time.Time) error {
	if s == nil {
		return errors.Newf("shape %q is nil", id)
	}
	var m MotionModel = StaticMotionModel{}
	if p.tle != nil {
		if l1, l2 := p.tle(id, s); l1 != "" && l2 != "" {
			m = NewOrbitalModelFromTLE(l1, l2)
		}
	}
	if _, orbital := m.(*OrbitalSGP4MotionModel); !orbital && model.IsMoving(s) {
		m = ConstantVelocityModel{Epoch: epoch, Origin: s.Position(), Velocity: s.Velocity()}
	}
	return p.AddShapeWithModel(id, s, m)
}

// AddShapeWithModel starts tracking s with an explicit motion model.
func (p *Propagator) AddShapeWithModel(id string, s model.Shape, m MotionModel) error {
	if id == "" {
		return errors.New("shape ID is empty")
	}
	if s == nil || m == nil {
		return errors.Newf("shape %q needs a shape and a motion model", id)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.tracked[id]; exists {
		return errors.Newf("shape %q is already tracked", id)
	}
	p.tracked[id] = &trackedShape{shape: s, model: m}
	return nil
}

// RemoveShape stops tracking id.
func (p *Propagator) RemoveShape(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.tracked[id]; !ok {
		return errors.Newf("shape %q is not tracked", id)
	}
	delete(p.tracked, id)
	return nil
}

// Follow keeps the propagator in step with store: every registered shape is
// tracked from clock.Now(), shapes added later are tracked from the clock
// time at which they appear, and removed shapes are dropped. Update events
// are ignored, since the propagator produces them. The returned function
// stops following.
func (p *Propagator) Follow(store *kb.KnowledgeBase, clock timectrl.SimClock) (stop func()) {
	stop = store.Subscribe(func(ev kb.Event) {
		switch ev.Type {
		case kb.EventShapeAdded:
			p.track(ev.Record, clock.Now())
		case kb.EventShapeRemoved:
			if err := p.RemoveShape(ev.Record.ID); err != nil {
				p.log.Debug(context.Background(), "removed shape was not tracked",
					logging.String("shape_id", ev.Record.ID),
				)
			}
		}
	})
	for _, rec := range store.ListShapes() {
		p.track(rec, clock.Now())
	}
	return stop
}

func (p *Propagator) track(rec kb.Record, epoch time.Time) {
	p.mu.Lock()
	_, tracked := p.tracked[rec.ID]
	p.mu.Unlock()
	if tracked {
		return
	}
	if err := p.AddShape(rec.ID, rec.Shape, epoch); err != nil {
		p.log.Warn(context.Background(), "cannot track shape",
			logging.String("shape_id", rec.ID),
			logging.Err(err),
		)
	}
}

// Len returns the number of tracked shapes.
func (p *Propagator) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tracked)
}

// UpdatePositions propagates every tracked shape to simTime in ID order.
// Updater failures are collected and returned together after every shape
// has been visited.
func (p *Propagator) UpdatePositions(simTime time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]string, 0, len(p.tracked))
	for id := range p.tracked {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs error
	for _, id := range ids {
		t := p.tracked[id]
		pos, vel := t.model.StateAt(simTime, t.shape)
		t.shape = t.shape.WithPosition(pos).WithVelocity(vel)
		if p.updater == nil {
			continue
		}
		if err := p.updater.UpdateShapeState(id, pos, vel); err != nil {
			p.log.Warn(context.Background(), "position update failed",
				logging.String("shape_id", id),
				logging.Err(err),
			)
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "update %q", id))
		}
	}
	return errs
}
