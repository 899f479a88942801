// Package resize delivers content-box size changes of a mount element to
// subscribers. The host calls Notify whenever layout may have changed;
// each subscription re-reads the box and is invoked once per distinct size.
//
// Callbacks run on the goroutine that calls Observe or Notify, serialized
// per Observer. A callback must not call back into the same Observer.
package resize

import (
	"context"
	"sync"

	"github.com/derickschaefer/chartline/internal/model"
)

// Element is a measurable mount. ContentBox reports false while the
// element is detached or has not been laid out. Elements are keyed by
// identity, so implementations should be pointer types.
type Element interface {
	ContentBox() (model.Viewport, bool)
}

// Recter is implemented by elements that can report a layout rectangle
// before their first content-box measurement.
type Recter interface {
	BoundingRect() model.Viewport
}

// Measure reads the element's size directly, for a first paint that has no
// observed size yet. It returns fallback when neither the content box nor a
// bounding rectangle is available.
func Measure(el Element, fallback model.Viewport) model.Viewport {
	if vp, ok := el.ContentBox(); ok {
		return vp
	}
	if r, ok := el.(Recter); ok {
		if vp := r.BoundingRect(); !vp.IsZero() {
			return vp
		}
	}
	return fallback
}

// ─── Observer ─────────────────────────────────────────────────────────────────

// Observer tracks subscriptions per element.
type Observer struct {
	mu   sync.Mutex // guards subs
	emit sync.Mutex // serializes callbacks
	subs map[Element][]*Subscription
}

// NewObserver returns an empty observer.
func NewObserver() *Observer {
	return &Observer{subs: make(map[Element][]*Subscription)}
}

// Subscription is one registered callback.
type Subscription struct {
	obs    *Observer
	el     Element
	fn     func(model.Viewport)
	last   model.Viewport
	seen   bool
	active bool
}

// Observe registers fn for el. If el is already measurable fn runs once
// before Observe returns; otherwise the first call happens on the first
// Notify after el becomes measurable.
func (o *Observer) Observe(el Element, fn func(model.Viewport)) *Subscription {
	s := &Subscription{obs: o, el: el, fn: fn, active: true}
	o.mu.Lock()
	o.subs[el] = append(o.subs[el], s)
	o.mu.Unlock()

	o.emit.Lock()
	defer o.emit.Unlock()
	s.deliver()
	return s
}

// Notify re-measures el and invokes every subscription whose last
// delivered size differs from the current one.
func (o *Observer) Notify(el Element) {
	o.mu.Lock()
	subs := append([]*Subscription(nil), o.subs[el]...)
	o.mu.Unlock()

	o.emit.Lock()
	defer o.emit.Unlock()
	for _, s := range subs {
		s.deliver()
	}
}

// Len returns the number of active subscriptions on el.
func (o *Observer) Len(el Element) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs[el])
}

// deliver must be called with emit held.
func (s *Subscription) deliver() {
	s.obs.mu.Lock()
	active := s.active
	s.obs.mu.Unlock()
	if !active {
		return
	}
	vp, ok := s.el.ContentBox()
	if !ok || (s.seen && vp == s.last) {
		return
	}
	s.last, s.seen = vp, true
	s.fn(vp)
}

// Unobserve removes the subscription. It is safe to call more than once.
// It waits for an in-flight callback, so no callback runs after it returns.
func (s *Subscription) Unobserve() {
	if s == nil {
		return
	}
	o := s.obs
	o.mu.Lock()
	if !s.active {
		o.mu.Unlock()
		return
	}
	s.active = false
	list := o.subs[s.el]
	for i, x := range list {
		if x == s {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(o.subs, s.el)
	} else {
		o.subs[s.el] = list
	}
	o.mu.Unlock()

	// Wait out an in-flight delivery.
	o.emit.Lock()
	o.emit.Unlock()
}

// ─── Stream ───────────────────────────────────────────────────────────────────

// Stream returns a channel of distinct sizes for el. The channel is
// unbounded: Notify never blocks on a slow reader. It is closed, and the
// subscription removed, once ctx is done. Calling Stream again starts a
// fresh stream whose first value is the current size.
func (o *Observer) Stream(ctx context.Context, el Element) <-chan model.Viewport {
	out := make(chan model.Viewport)
	var (
		mu      sync.Mutex
		pending []model.Viewport
		wake    = make(chan struct{}, 1)
	)
	push := func(vp model.Viewport) {
		mu.Lock()
		pending = append(pending, vp)
		mu.Unlock()
		select {
		case wake <- struct{}{}:
		default:
		}
	}
	sub := o.Observe(el, push)

	go func() {
		defer close(out)
		defer sub.Unobserve()
		for {
			mu.Lock()
			if len(pending) == 0 {
				mu.Unlock()
				select {
				case <-ctx.Done():
					return
				case <-wake:
					continue
				}
			}
			next := pending[0]
			pending = pending[1:]
			mu.Unlock()

			select {
			case <-ctx.Done():
				return
			case out <- next:
			}
		}
	}()
	return out
}
