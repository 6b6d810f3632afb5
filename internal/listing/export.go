package listing

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"rp-pay-dashboard/internal/core/domain"
)

var csvHeader = []string{"ID", "Cliente", "Email", "Monto", "Moneda", "Estado", "Fecha", "Método"}

// WriteCSV writes payments in the history export layout.
func WriteCSV(w io.Writer, payments []domain.PaymentRequest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range payments {
		row := []string{
			p.ID,
			p.CustomerName,
			p.CustomerEmail,
			p.Amount.StringFixed(2),
			p.Currency,
			string(p.Status),
			p.CreatedAt.Format(time.RFC3339),
			string(p.Method),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename is the download name for an export made at t.
func ExportFilename(t time.Time) string {
	return "historial_pagos_" + t.Format("2006-01-02") + ".csv"
}
