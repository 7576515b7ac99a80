// Package viewstore provides the unidirectional state container shared by
// galley's screens: a view renders State and dispatches actions through Send.
package viewstore

import (
	"context"
	"sync"
)

// Store is the contract between a screen and its logic. Send blocks until
// the action has been fully handled.
type Store[S, A any] interface {
	State() S
	Send(ctx context.Context, action A)
}

// NoAction is the action type for stores that accept none.
type NoAction struct{}

// Core holds a state value and notifies subscribers on every transition.
// Concrete stores embed it and call Set from their action handlers.
type Core[S any] struct {
	notifyMu sync.Mutex // serialises Set so subscribers observe transitions in order

	mu     sync.RWMutex
	state  S
	nextID int
	subs   map[int]func(S)
	order  []int
	copyFn func(S) S
}

// NewCore returns a Core starting in initial. copyFn, when non-nil, is used
// to hand out independent copies of the state.
func NewCore[S any](initial S, copyFn func(S) S) *Core[S] {
	return &Core[S]{
		state:  initial,
		subs:   make(map[int]func(S)),
		copyFn: copyFn,
	}
}

// State returns the current state.
func (c *Core[S]) State() S {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clone(c.state)
}

// Set replaces the state and notifies subscribers in subscription order.
// Subscribers must not call Set.
func (c *Core[S]) Set(next S) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.state = next
	subs := make([]func(S), 0, len(c.order))
	for _, id := range c.order {
		subs = append(subs, c.subs[id])
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(c.clone(next))
	}
}

// Update publishes fn applied to a copy of the current state.
func (c *Core[S]) Update(fn func(S) S) {
	c.Set(fn(c.State()))
}

// Subscribe registers fn for state transitions. The returned function removes it.
func (c *Core[S]) Subscribe(fn func(S)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.order = append(c.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			for i, v := range c.order {
				if v == id {
					c.order = append(c.order[:i], c.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (c *Core[S]) clone(s S) S {
	if c.copyFn == nil {
		return s
	}
	return c.copyFn(s)
}
