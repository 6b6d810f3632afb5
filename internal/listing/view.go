package listing

import (
	"time"

	"rp-pay-dashboard/internal/core/domain"
)

// View is the filter and page state of one list screen visit.
// Any change to the criteria sends the user back to page one.
type View struct {
	criteria Criteria
	page     int
	pageSize int
}

// NewView starts a fresh visit with empty criteria.
func NewView(pageSize int) *View {
	return &View{page: 1, pageSize: pageSize, criteria: Criteria{Status: All, Method: All}}
}

func (v *View) Criteria() Criteria { return v.criteria }
func (v *View) Page() int          { return v.page }
func (v *View) PageSize() int      { return v.pageSize }

func (v *View) SetQuery(q string)  { v.criteria.Query = q; v.page = 1 }
func (v *View) SetStatus(s string) { v.criteria.Status = s; v.page = 1 }
func (v *View) SetMethod(m string) { v.criteria.Method = m; v.page = 1 }

// SetDateRange replaces both bounds; a zero time leaves that side open.
func (v *View) SetDateRange(from, to time.Time) {
	v.criteria.From, v.criteria.To = from, to
	v.page = 1
}

// SetCriteria replaces the whole filter state.
func (v *View) SetCriteria(c Criteria) { v.criteria = c; v.page = 1 }

// GoToPage moves to page p; values below one are ignored.
func (v *View) GoToPage(p int) {
	if p >= 1 {
		v.page = p
	}
}

// Project filters payments with the current criteria and slices the current page.
func (v *View) Project(payments []domain.PaymentRequest) Page[domain.PaymentRequest] {
	return Paginate(Apply(payments, v.criteria), v.page, v.pageSize)
}
