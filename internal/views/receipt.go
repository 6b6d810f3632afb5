package views

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"rp-pay-dashboard/internal/core/domain"
)

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"date":  func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 UTC") },
	"upper": strings.ToUpper,
}).Parse(`RP PAY - PAYMENT RECEIPT
========================
Payment ID : {{.ID}}
Status     : {{upper (print .Status)}}
Customer   : {{.CustomerName}} <{{.CustomerEmail}}>
Concept    : {{.Description}}
Amount     : {{.Amount.StringFixed 2}} {{.Currency}}
Method     : {{.Method}}
Created    : {{date .CreatedAt}}
Link       : {{.PaymentLink}}
{{- if .Events}}

Timeline
--------
{{- range .Events}}
{{date .CreatedAt}}  {{.Type}}
{{- end}}
{{- end}}
`))

// Receipt renders a plain-text receipt for a payment.
func Receipt(d domain.PaymentDetail) (string, error) {
	var b strings.Builder
	if err := receiptTemplate.Execute(&b, d); err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return b.String(), nil
}

// ReceiptFilename names the receipt download for a payment.
func ReceiptFilename(d domain.PaymentDetail) string {
	return fmt.Sprintf("recibo_%s.txt", d.ID)
}
