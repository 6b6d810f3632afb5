package navigation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_StartsOnDashboard(t *testing.T) {
	c := NewController()
	assert.Equal(t, State{Screen: Dashboard}, c.Current())
}

func TestController_GoToStoresAndClearsPaymentID(t *testing.T) {
	c := NewController()

	c.GoTo(PaymentDetail, Context{PaymentID: "pay_1"})
	assert.Equal(t, "pay_1", c.Current().Context.PaymentID)

	c.GoTo(History, Context{})
	assert.Equal(t, History, c.Current().Screen)
	assert.Empty(t, c.Current().Context.PaymentID)
}

func TestController_AcceptsAnyTransition(t *testing.T) {
	c := NewController()
	for _, from := range Screens() {
		for _, to := range Screens() {
			c.GoTo(from, Context{})
			st := c.GoTo(to, Context{})
			assert.Equal(t, to, st.Screen)
		}
	}
	// Detail without an id is still a valid controller state.
	st := c.GoTo(PaymentDetail, Context{})
	assert.Equal(t, PaymentDetail, st.Screen)
	assert.Empty(t, st.Context.PaymentID)
}

func TestController_Back(t *testing.T) {
	c := NewController()
	c.GoTo(PaymentDetail, Context{PaymentID: "pay_1"})

	st := c.Back()
	assert.Equal(t, History, st.Screen)
	assert.Empty(t, st.Context.PaymentID)

	assert.Equal(t, Dashboard, c.Back().Screen)
	assert.Equal(t, Dashboard, c.Back().Screen, "dashboard is a root screen")

	c.GoTo(AdminClientDetail, Context{AccountID: "acc_1"})
	assert.Equal(t, AdminClientList, c.Back().Screen)
	assert.Equal(t, AdminDashboard, c.Back().Screen)
	assert.Equal(t, Dashboard, c.Back().Screen)
}

func TestController_Subscribe(t *testing.T) {
	c := NewController()
	var seen []Screen
	unsubscribe := c.Subscribe(func(s State) { seen = append(seen, s.Screen) })

	c.GoTo(History, Context{})
	c.GoTo(Settings, Context{})
	unsubscribe()
	c.GoTo(Dashboard, Context{})

	assert.Equal(t, []Screen{History, Settings}, seen)
}

func TestTransitionTable(t *testing.T) {
	for _, s := range Screens() {
		require.True(t, s.Known(), s)
		e := EdgesOf(s)
		if e.Back != "" {
			assert.True(t, e.Back.Known(), "%s back edge", s)
		}
		for _, f := range e.Forward {
			assert.True(t, f.Known(), "%s forward edge", s)
		}
	}
	assert.False(t, Screen("nowhere").Known())

	// Edges are copies; the table cannot be mutated through them.
	e := EdgesOf(Dashboard)
	e.Forward[0] = "nowhere"
	assert.Equal(t, GenerateLink, EdgesOf(Dashboard).Forward[0])
}

func TestSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(time.Minute)
	s.now = func() time.Time { return now }

	a := s.Get("a")
	a.GoTo(History, Context{})
	assert.Same(t, a, s.Get("a"))
	assert.Equal(t, Dashboard, s.Get("b").Current().Screen)
	assert.Equal(t, 2, s.Len())

	now = now.Add(30 * time.Second)
	s.Get("a")
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, History, s.Get("a").Current().Screen)
}
