package views

import (
	"context"
	"strings"
	"sync"

	"rp-pay-dashboard/internal/core/domain"
)

const customerField = "customer_search"

// CustomerSearcher runs one customer lookup.
type CustomerSearcher interface {
	SearchCustomers(ctx context.Context, query string) ([]domain.CustomerRecord, error)
}

// CustomerSearchSnapshot is what the search box renders.
type CustomerSearchSnapshot struct {
	Query   string                  `json:"query"`
	State   State                   `json:"state"`
	Results []domain.CustomerRecord `json:"results"`
	Failure *Failure                `json:"failure,omitempty"`
}

// CustomerSearch is the type-ahead customer picker. Overlapping searches may
// complete in any order; only the most recently issued one is shown.
type CustomerSearch struct {
	searcher CustomerSearcher
	seq      *Sequencer

	mu   sync.Mutex
	snap CustomerSearchSnapshot
}

func NewCustomerSearch(searcher CustomerSearcher, seq *Sequencer) *CustomerSearch {
	return &CustomerSearch{
		searcher: searcher,
		seq:      seq,
		snap:     CustomerSearchSnapshot{State: StateIdle, Results: []domain.CustomerRecord{}},
	}
}

// Search looks query up and reports whether its outcome was applied.
// A blank query clears the results without a lookup.
func (c *CustomerSearch) Search(ctx context.Context, query string) bool {
	n := c.seq.Next(customerField)

	if strings.TrimSpace(query) == "" {
		c.mu.Lock()
		c.snap = CustomerSearchSnapshot{Query: query, State: StateIdle, Results: []domain.CustomerRecord{}}
		c.mu.Unlock()
		return true
	}

	c.mu.Lock()
	c.snap.Query = query
	c.snap.State = StateLoading
	c.snap.Failure = nil
	c.mu.Unlock()

	results, err := c.searcher.SearchCustomers(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seq.Accept(customerField, n) {
		return false
	}
	switch {
	case err != nil:
		c.snap.State = StateFailed
		c.snap.Failure = Classify(err)
		c.snap.Results = []domain.CustomerRecord{}
	case len(results) == 0:
		c.snap.State = StateEmpty
		c.snap.Results = []domain.CustomerRecord{}
	default:
		c.snap.State = StateReady
		c.snap.Results = results
	}
	return true
}

func (c *CustomerSearch) Snapshot() CustomerSearchSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.snap
	s.Results = make([]domain.CustomerRecord, len(c.snap.Results))
	copy(s.Results, c.snap.Results)
	return s
}
