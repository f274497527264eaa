package simmw

import (
	"fmt"
	"reflect"

	"github.com/loopwire/rclgo/internal/rclerrors"
)

// Subscription implements interfaces.Subscription over a Queue.
type Subscription struct{ q *Queue }

// EventFD implements waitset.Signaller.
func (s *Subscription) EventFD() int { return s.q.EventFD() }

// Take implements interfaces.Subscription. dst must be a non-nil
// pointer whose element type is assignable from the published value's
// type, exactly like encoding/json or database/sql's Scan convention.
func (s *Subscription) Take(dst interface{}) (bool, error) {
	v, ok := s.q.Take()
	if !ok {
		return false, nil
	}
	if err := assign(dst, v); err != nil {
		return false, err
	}
	return true, nil
}

// Publisher implements the producing side of a topic.
type Publisher struct{ q *Queue }

// Publish enqueues msg for the paired Subscription.
func (p *Publisher) Publish(msg interface{}) error { return p.q.Push(msg) }

// NewTopic builds a connected Publisher/Subscription pair over a queue
// of the given depth.
func NewTopic(depth int) (*Publisher, *Subscription, error) {
	q, err := NewQueue(depth)
	if err != nil {
		return nil, nil, err
	}
	return &Publisher{q: q}, &Subscription{q: q}, nil
}

// assign copies v into *dst via reflection (grounded on rosgo's own use
// of reflect.Value/reflect.Type to dispatch dynamically-typed ROS
// messages in actionlib's goal/cancel callback invocation).
func assign(dst interface{}, v interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("simmw: destination must be a non-nil pointer: %w", rclerrors.ErrInvalidArgument)
	}
	elem := rv.Elem()
	vv := reflect.ValueOf(v)
	if !vv.IsValid() {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	if !vv.Type().AssignableTo(elem.Type()) {
		return fmt.Errorf("simmw: cannot assign %T into %s: %w", v, elem.Type(), rclerrors.ErrInvalidArgument)
	}
	elem.Set(vv)
	return nil
}
