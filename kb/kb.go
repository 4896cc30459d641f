// Package kb is the in-memory registry of tracked shapes that the conflict
// detector scans and the propagator keeps moving.
package kb

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/geoquery/model"
)

var (
	// ErrNotFound is returned when an ID is not registered.
	ErrNotFound = errors.New("shape not found")
	// ErrExists is returned when adding an ID that is already registered.
	ErrExists = errors.New("shape already exists")
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventShapeAdded EventType = iota
	EventShapeUpdated
	EventShapeRemoved
)

func (t EventType) String() string {
	switch t {
	case EventShapeAdded:
		return "added"
	case EventShapeUpdated:
		return "updated"
	case EventShapeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Record is a registered shape with its ID.
type Record struct {
	ID    string
	Shape model.Shape
}

// Event is emitted to subscribers after a change has been applied.
type Event struct {
	Type   EventType
	Record Record
}

type subscriber struct {
	id int
	fn func(Event)
}

// KnowledgeBase is an in-memory, thread-safe store of shapes. Shapes are
// immutable values, so callers can query a snapshot without holding a lock.
type KnowledgeBase struct {
	mu sync.RWMutex

	shapes map[string]model.Shape

	subs   []subscriber
	nextID int
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{shapes: make(map[string]model.Shape)}
}

// AddShape registers s under id.
func (kb *KnowledgeBase) AddShape(id string, s model.Shape) error {
	if id == "" {
		return errors.New("shape ID is empty")
	}
	if s == nil {
		return errors.Newf("shape %q is nil", id)
	}
	kb.mu.Lock()
	if _, exists := kb.shapes[id]; exists {
		kb.mu.Unlock()
		return errors.Wrapf(ErrExists, "shape %q", id)
	}
	kb.shapes[id] = s
	subs := kb.snapshotSubs()
	kb.mu.Unlock()

	notify(subs, Event{Type: EventShapeAdded, Record: Record{ID: id, Shape: s}})
	return nil
}

// GetShape returns the shape registered under id.
func (kb *KnowledgeBase) GetShape(id string) (model.Shape, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	s, ok := kb.shapes[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "shape %q", id)
	}
	return s, nil
}

// ListShapes returns a snapshot of every record sorted by ID.
func (kb *KnowledgeBase) ListShapes() []Record {
	kb.mu.RLock()
	res := make([]Record, 0, len(kb.shapes))
	for id, s := range kb.shapes {
		res = append(res, Record{ID: id, Shape: s})
	}
	kb.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Len returns the number of registered shapes.
func (kb *KnowledgeBase) Len() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.shapes)
}

// UpdateShapeState moves a shape to position with velocity and notifies
// subscribers. The stored value is replaced, never mutated.
func (kb *KnowledgeBase) UpdateShapeState(id string, position, velocity r3.Vector) error {
	return kb.update(id, func(s model.Shape) (model.Shape, error) {
		return s.WithPosition(position).WithVelocity(velocity), nil
	})
}

// ReplaceShape swaps the shape stored under id, for example after a resize.
func (kb *KnowledgeBase) ReplaceShape(id string, s model.Shape) error {
	if s == nil {
		return errors.Newf("shape %q is nil", id)
	}
	return kb.update(id, func(model.Shape) (model.Shape, error) { return s, nil })
}

func (kb *KnowledgeBase) update(id string, fn func(model.Shape) (model.Shape, error)) error {
	kb.mu.Lock()
	cur, ok := kb.shapes[id]
	if !ok {
		kb.mu.Unlock()
		return errors.Wrapf(ErrNotFound, "shape %q", id)
	}
	next, err := fn(cur)
	if err != nil {
		kb.mu.Unlock()
		return err
	}
	kb.shapes[id] = next
	subs := kb.snapshotSubs()
	kb.mu.Unlock()

	notify(subs, Event{Type: EventShapeUpdated, Record: Record{ID: id, Shape: next}})
	return nil
}

// RemoveShape unregisters id.
func (kb *KnowledgeBase) RemoveShape(id string) error {
	kb.mu.Lock()
	s, ok := kb.shapes[id]
	if !ok {
		kb.mu.Unlock()
		return errors.Wrapf(ErrNotFound, "shape %q", id)
	}
	delete(kb.shapes, id)
	subs := kb.snapshotSubs()
	kb.mu.Unlock()

	notify(subs, Event{Type: EventShapeRemoved, Record: Record{ID: id, Shape: s}})
	return nil
}

// Subscribe registers a callback for KB events. It returns an unsubscribe
// function that is safe to call more than once.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.nextID
	kb.nextID++
	kb.subs = append(kb.subs, subscriber{id: id, fn: fn})

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		for i, s := range kb.subs {
			if s.id == id {
				kb.subs = append(kb.subs[:i], kb.subs[i+1:]...)
				return
			}
		}
	}
}

// snapshotSubs must be called with kb.mu held.
func (kb *KnowledgeBase) snapshotSubs() []subscriber {
	return append([]subscriber(nil), kb.subs...)
}

// notify runs outside the lock so callbacks may call back into the KB.
func notify(subs []subscriber, e Event) {
	for _, s := range subs {
		s.fn(e)
	}
}
