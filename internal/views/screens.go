package views

import (
	"context"
	"time"

	"rp-pay-dashboard/internal/app"
	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/listing"
)

// HistoryLoader is the part of the payment service the history screen needs.
type HistoryLoader interface {
	History(ctx context.Context, c listing.Criteria, page, pageSize int) (listing.Page[domain.PaymentRequest], error)
}

// HistoryScreen couples the filter view with loading. Any criteria change
// resets the page to one before the next load.
type HistoryScreen struct {
	*listing.View
	screen *Screen[listing.Page[domain.PaymentRequest]]
	loader HistoryLoader
}

func NewHistoryScreen(loader HistoryLoader, seq *Sequencer, pageSize int) *HistoryScreen {
	return &HistoryScreen{
		View: listing.NewView(pageSize),
		screen: NewScreen("history", seq, func(p listing.Page[domain.PaymentRequest]) bool {
			return p.TotalItems == 0
		}),
		loader: loader,
	}
}

func (h *HistoryScreen) Load(ctx context.Context) (Snapshot[listing.Page[domain.PaymentRequest]], bool) {
	criteria, page, size := h.Criteria(), h.Page(), h.PageSize()
	return h.screen.Load(ctx, func(ctx context.Context) (listing.Page[domain.PaymentRequest], error) {
		return h.loader.History(ctx, criteria, page, size)
	})
}

func (h *HistoryScreen) Snapshot() Snapshot[listing.Page[domain.PaymentRequest]] {
	return h.screen.Snapshot()
}

// DetailLoader fetches one payment.
type DetailLoader interface {
	Detail(ctx context.Context, id string) (*domain.PaymentDetail, error)
}

// DetailScreen shows one payment. Opening it without an id ends in not_found.
type DetailScreen struct {
	screen *Screen[*domain.PaymentDetail]
	loader DetailLoader
}

func NewDetailScreen(loader DetailLoader, seq *Sequencer) *DetailScreen {
	return &DetailScreen{screen: NewScreen[*domain.PaymentDetail]("detail", seq, nil), loader: loader}
}

func (d *DetailScreen) Load(ctx context.Context, id string) (Snapshot[*domain.PaymentDetail], bool) {
	return d.screen.Load(ctx, func(ctx context.Context) (*domain.PaymentDetail, error) {
		if id == "" {
			return nil, domain.ErrNotFound
		}
		return d.loader.Detail(ctx, id)
	})
}

// DashboardLoader builds the dashboard summary.
type DashboardLoader interface {
	Dashboard(ctx context.Context) (app.Dashboard, error)
}

type DashboardScreen struct {
	screen *Screen[app.Dashboard]
	loader DashboardLoader
}

func NewDashboardScreen(loader DashboardLoader, seq *Sequencer) *DashboardScreen {
	return &DashboardScreen{
		screen: NewScreen("dashboard", seq, func(d app.Dashboard) bool { return d.Total == 0 }),
		loader: loader,
	}
}

func (d *DashboardScreen) Load(ctx context.Context) (Snapshot[app.Dashboard], bool) {
	return d.screen.Load(ctx, d.loader.Dashboard)
}

// SettingsStore reads and writes account settings.
type SettingsStore interface {
	Settings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, s domain.Settings) error
}

// SettingsSnapshot adds the save outcome to the loaded settings.
type SettingsSnapshot struct {
	Snapshot[domain.Settings]
	SavedAt     *time.Time `json:"saved_at,omitempty"`
	SaveFailure *Failure   `json:"save_failure,omitempty"`
}

// SettingsScreen loads settings and saves edits, last write wins.
type SettingsScreen struct {
	screen *Screen[domain.Settings]
	store  SettingsStore
	now    func() time.Time
}

func NewSettingsScreen(store SettingsStore, seq *Sequencer) *SettingsScreen {
	return &SettingsScreen{screen: NewScreen[domain.Settings]("settings", seq, nil), store: store, now: time.Now}
}

func (s *SettingsScreen) Load(ctx context.Context) (SettingsSnapshot, bool) {
	snap, ok := s.screen.Load(ctx, s.store.Settings)
	return SettingsSnapshot{Snapshot: snap}, ok
}

// Save writes settings and reloads them on success. When a newer load
// supersedes the reload, the written settings are shown as saved.
func (s *SettingsScreen) Save(ctx context.Context, settings domain.Settings) (SettingsSnapshot, error) {
	if err := s.store.UpdateSettings(ctx, settings); err != nil {
		return SettingsSnapshot{Snapshot: s.screen.Snapshot(), SaveFailure: Classify(err)}, err
	}
	now := s.now()
	snap, ok := s.Load(ctx)
	if !ok {
		snap.Snapshot = Snapshot[domain.Settings]{State: StateReady, Data: settings}
	}
	snap.SavedAt = &now
	return snap, nil
}
