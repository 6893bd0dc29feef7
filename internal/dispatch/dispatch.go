// Package dispatch holds the outbound collaborators invoked after an invoice
// is sent. Both are independently fallible and must never roll back the send.
// The default implementations log instead of talking to real renderers or
// SMTP; deployments swap in real ones behind the same interfaces.
package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"fieldops/internal/model"
)

// DocumentRenderer produces a printable invoice document.
type DocumentRenderer struct{}

func NewDocumentRenderer() *DocumentRenderer {
	return &DocumentRenderer{}
}

// RenderInvoice builds a plain-text stand-in for the PDF body.
func (r *DocumentRenderer) RenderInvoice(ctx context.Context, invoice *model.Invoice, customer *model.Customer) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Invoice %s\n", invoice.InvoiceNo)
	fmt.Fprintf(&buf, "Billed to: %s\n", customer.Name)
	fmt.Fprintf(&buf, "Invoice date: %s\n", invoice.InvoiceDate.Format("2006-01-02"))
	fmt.Fprintf(&buf, "Due date: %s\n", invoice.DueDate.Format("2006-01-02"))
	fmt.Fprintf(&buf, "Labor: %s\n", invoice.LaborAmount.StringFixed(2))
	fmt.Fprintf(&buf, "Materials: %s\n", invoice.MaterialCost.StringFixed(2))
	fmt.Fprintf(&buf, "Subtotal: %s\n", invoice.Subtotal.StringFixed(2))
	fmt.Fprintf(&buf, "Tax: %s\n", invoice.TaxAmount.StringFixed(2))
	fmt.Fprintf(&buf, "Total: %s\n", invoice.TotalAmount.StringFixed(2))
	return buf.Bytes(), nil
}

// LogMailer records deliveries to the process log instead of sending mail.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendInvoice(ctx context.Context, recipient string, invoice *model.Invoice, pdf []byte) error {
	log.Printf("dispatch: invoice %s (%s) to %s, attachment %d bytes",
		invoice.InvoiceNo, invoice.TotalAmount.StringFixed(2), recipient, len(pdf))
	return nil
}
