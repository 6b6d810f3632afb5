// Package navigation holds the screen-routing state machine of the dashboard.
package navigation

import "sync"

// Context is the per-screen data carried across a transition.
type Context struct {
	PaymentID string `json:"payment_id,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

// State is what the UI renders: the visible screen and its context.
type State struct {
	Screen  Screen  `json:"screen"`
	Context Context `json:"context"`
}

// Controller is the single source of truth for the visible screen.
// Transitions are never validated; callers are trusted.
type Controller struct {
	mu     sync.Mutex
	state  State
	nextID int
	subs   map[int]func(State)
}

// NewController starts at the initial screen with an empty context.
func NewController() *Controller {
	return &Controller{
		state: State{Screen: InitialScreen},
		subs:  make(map[int]func(State)),
	}
}

// GoTo makes screen current. Identifiers missing from ctx are cleared.
func (c *Controller) GoTo(screen Screen, ctx Context) State {
	c.mu.Lock()
	c.state = State{Screen: screen, Context: ctx}
	st, subs := c.state, c.snapshotSubs()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
	return st
}

// Back follows the back edge of the current screen, dropping its context.
// On a root screen it is a no-op.
func (c *Controller) Back() State {
	cur := c.Current()
	back := transitions[cur.Screen].Back
	if back == "" {
		return cur
	}
	return c.GoTo(back, Context{})
}

// Current returns the visible screen and its context.
func (c *Controller) Current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for every future state. The returned func removes it.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) snapshotSubs() []func(State) {
	out := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}
