package domain

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	hexColor     = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Settings is the per-account configuration edited on the settings screen.
type Settings struct {
	TestMode           bool   `json:"test_mode"`
	DefaultCurrency    string `json:"default_currency,omitempty"`
	DefaultTagPaid     string `json:"default_tag_paid,omitempty"`
	MinAmount          string `json:"min_amount,omitempty"`
	PipelineID         string `json:"pipeline_id,omitempty"`
	StageID            string `json:"stage_id,omitempty"`
	NotifyClient       bool   `json:"notify_client"`
	NotifySeller       bool   `json:"notify_seller"`
	AlertErrors        bool   `json:"alert_errors"`
	BrandColor         string `json:"brand_color,omitempty"`
	LogoURL            string `json:"logo_url,omitempty"`
	CRMConnected       bool   `json:"ghl_connected"`
	ProcessorConnected bool   `json:"mp_connected"`
}

// DefaultSettings mirrors the values a fresh account starts with.
func DefaultSettings() Settings {
	return Settings{
		TestMode:           true,
		DefaultCurrency:    "USD",
		MinAmount:          "10.00",
		BrandColor:         "#0ea5e9",
		NotifyClient:       true,
		NotifySeller:       true,
		AlertErrors:        true,
		CRMConnected:       true,
		ProcessorConnected: true,
	}
}

// Validate checks the shape of the settings object only.
func (s Settings) Validate() error {
	if s.BrandColor != "" && !hexColor.MatchString(s.BrandColor) {
		return fmt.Errorf("%w: brand_color must look like #rrggbb", ErrInvalidSettings)
	}
	if s.DefaultCurrency != "" && !currencyCode.MatchString(s.DefaultCurrency) {
		return fmt.Errorf("%w: default_currency must be a 3-letter code", ErrInvalidSettings)
	}
	if s.MinAmount != "" {
		if _, err := s.MinimumAmount(); err != nil {
			return err
		}
	}
	return nil
}

// MinimumAmount parses MinAmount. Zero is returned when it is unset.
func (s Settings) MinimumAmount() (decimal.Decimal, error) {
	if s.MinAmount == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s.MinAmount)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: min_amount must be a non-negative decimal", ErrInvalidSettings)
	}
	return d, nil
}
