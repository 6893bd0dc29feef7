package billing

import (
	"time"

	"fieldops/internal/apperr"

	"github.com/shopspring/decimal"
)

// Status is the invoice lifecycle state. OVERDUE is a read-time projection
// and is never persisted; PAID is terminal.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusViewed   Status = "VIEWED"
	StatusAccepted Status = "ACCEPTED"
	StatusPaid     Status = "PAID"
	StatusOverdue  Status = "OVERDUE"
)

func (s Status) String() string { return string(s) }

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool { return s == StatusPaid }

// ValidateRecalculate permits financial edits only while the invoice is a
// draft; fields are frozen the moment it is sent.
func ValidateRecalculate(s Status) error {
	if s != StatusDraft {
		return apperr.StateConflict(s.String(), "cannot recalculate an invoice in status %s: financial fields are frozen once sent", s)
	}
	return nil
}

// ValidateSend permits the explicit send action. Zero-total invoices need an
// explicit override, since sending one is almost always a data-entry mistake.
func ValidateSend(s Status, total decimal.Decimal, allowZeroTotal bool) error {
	if s != StatusDraft {
		return apperr.StateConflict(s.String(), "cannot send an invoice in status %s", s)
	}
	if total.IsZero() && !allowZeroTotal {
		return apperr.StateConflict(s.String(), "cannot send an invoice with a zero total without an explicit override")
	}
	return nil
}

// ValidateMarkViewed permits recording that the customer opened the invoice.
func ValidateMarkViewed(s Status) error {
	if s != StatusSent {
		return apperr.StateConflict(s.String(), "cannot mark an invoice viewed in status %s", s)
	}
	return nil
}

// ValidateAccept permits customer approval of a quote-style invoice. The
// step is optional: an invoice can be paid without ever being accepted.
func ValidateAccept(s Status) error {
	if s != StatusSent && s != StatusViewed {
		return apperr.StateConflict(s.String(), "cannot accept an invoice in status %s", s)
	}
	return nil
}

// ValidatePayment permits recording a payment. Only PAID is closed: any
// open invoice, draft included, can take a payment and settles once paid in
// full.
func ValidatePayment(s Status) error {
	if s == StatusPaid {
		return apperr.StateConflict(s.String(), "invoice is already paid in full")
	}
	return nil
}

// Effective projects the stored status for reads: an issued invoice past its
// due date with an outstanding balance shows as OVERDUE. The projection is
// recomputed on every read, so it reverts on full payment or a due-date
// extension without any stored transition.
func Effective(s Status, dueDate time.Time, paid, total decimal.Decimal, now time.Time) Status {
	if s == StatusPaid {
		return StatusPaid
	}
	switch s {
	case StatusSent, StatusViewed, StatusAccepted:
		if now.After(dueDate) && paid.LessThan(total) {
			return StatusOverdue
		}
	}
	return s
}
