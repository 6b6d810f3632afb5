package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"rp-pay-dashboard/internal/core/domain"
)

// logRecorder stores system log entries.
type logRecorder interface {
	RecordLog(ctx context.Context, entry domain.SystemLog) error
}

// Alert is one entry of an Alertmanager webhook.
type Alert struct {
	Status string `json:"status"`
	Labels struct {
		Alertname string `json:"alertname"`
		Severity  string `json:"severity"`
		Tenant    string `json:"tenant"`
	} `json:"labels"`
	Annotations struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
	} `json:"annotations"`
	StartsAt time.Time `json:"startsAt"`
}

// AlertWebhook is the simplified Alertmanager webhook body.
type AlertWebhook struct {
	Alerts []Alert `json:"alerts"`
}

// SystemLog renders a as an operator-facing log entry; the ID is assigned on
// record. Firing critical
// alerts are errors, other firing alerts warnings, resolved alerts successes.
func (a Alert) SystemLog(now time.Time) domain.SystemLog {
	status := domain.LogSuccess
	if a.Status == "firing" {
		status = domain.LogWarning
		if a.Labels.Severity == "critical" {
			status = domain.LogError
		}
	}
	ts := a.StartsAt
	if ts.IsZero() || a.Status != "firing" {
		ts = now
	}
	client := a.Labels.Tenant
	if client == "" {
		client = "Alertmanager"
	}
	details, _ := json.Marshal(map[string]string{
		"alertname":   a.Labels.Alertname,
		"severity":    a.Labels.Severity,
		"status":      a.Status,
		"description": a.Annotations.Description,
	})
	return domain.SystemLog{
		Timestamp:   ts.UTC(),
		Client:      client,
		EventType:   domain.LogErrorEvent,
		Message:     a.Labels.Alertname + ": " + a.Annotations.Summary,
		Status:      status,
		DetailsJSON: string(details),
	}
}

// AlertHandler records incoming alerts in the system log.
type AlertHandler struct {
	logs   logRecorder
	logger *slog.Logger
	now    func() time.Time
}

func NewAlertHandler(logs logRecorder, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{logs: logs, logger: logger, now: time.Now}
}

func (h *AlertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var webhook AlertWebhook
	if err := json.NewDecoder(r.Body).Decode(&webhook); err != nil {
		h.logger.Error("Failed to decode webhook", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	failed := 0
	for _, alert := range webhook.Alerts {
		h.logger.Info("ALERT",
			"status", alert.Status,
			"alertname", alert.Labels.Alertname,
			"severity", alert.Labels.Severity,
			"summary", alert.Annotations.Summary,
		)
		if err := h.logs.RecordLog(r.Context(), alert.SystemLog(h.now())); err != nil {
			h.logger.Error("Failed to record alert", "alertname", alert.Labels.Alertname, "error", err)
			failed++
		}
	}
	if failed > 0 {
		// Alertmanager retries on 5xx.
		http.Error(w, "Failed to record alerts", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
