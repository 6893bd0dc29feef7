package billing

import (
	"testing"
	"time"

	"fieldops/internal/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateRecalculate(t *testing.T) {
	assert.NoError(t, ValidateRecalculate(StatusDraft))

	for _, s := range []Status{StatusSent, StatusViewed, StatusAccepted, StatusPaid} {
		err := ValidateRecalculate(s)
		assert.Error(t, err, "status %s", s)
		assert.True(t, apperr.Is(err, apperr.KindStateConflict))
	}
}

func TestValidateSend(t *testing.T) {
	total := dec("405.00")

	assert.NoError(t, ValidateSend(StatusDraft, total, false))

	for _, s := range []Status{StatusSent, StatusViewed, StatusAccepted, StatusPaid} {
		assert.Error(t, ValidateSend(s, total, false), "status %s", s)
	}
}

func TestValidateSendZeroTotal(t *testing.T) {
	err := ValidateSend(StatusDraft, decimal.Zero, false)
	assert.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))

	// Courtesy or warranty work can be sent with an explicit override.
	assert.NoError(t, ValidateSend(StatusDraft, decimal.Zero, true))
}

func TestValidateMarkViewed(t *testing.T) {
	assert.NoError(t, ValidateMarkViewed(StatusSent))

	for _, s := range []Status{StatusDraft, StatusViewed, StatusAccepted, StatusPaid} {
		assert.Error(t, ValidateMarkViewed(s), "status %s", s)
	}
}

func TestValidateAccept(t *testing.T) {
	assert.NoError(t, ValidateAccept(StatusSent))
	assert.NoError(t, ValidateAccept(StatusViewed))

	for _, s := range []Status{StatusDraft, StatusAccepted, StatusPaid} {
		assert.Error(t, ValidateAccept(s), "status %s", s)
	}
}

func TestValidatePayment(t *testing.T) {
	// Any open invoice can take a payment, draft included; only PAID is
	// closed.
	for _, s := range []Status{StatusDraft, StatusSent, StatusViewed, StatusAccepted} {
		assert.NoError(t, ValidatePayment(s), "status %s", s)
	}

	err := ValidatePayment(StatusPaid)
	assert.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))
}

func TestEffectiveOverdueProjection(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	pastDue := now.AddDate(0, 0, -3)
	futureDue := now.AddDate(0, 0, 3)
	total := dec("405.00")

	for _, s := range []Status{StatusSent, StatusViewed, StatusAccepted} {
		assert.Equal(t, StatusOverdue, Effective(s, pastDue, decimal.Zero, total, now), "status %s", s)
		assert.Equal(t, s, Effective(s, futureDue, decimal.Zero, total, now), "status %s", s)
	}
}

func TestEffectiveDraftNeverOverdue(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	pastDue := now.AddDate(0, 0, -30)

	assert.Equal(t, StatusDraft, Effective(StatusDraft, pastDue, decimal.Zero, dec("100.00"), now))
}

func TestEffectivePaidWinsOverOverdue(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	pastDue := now.AddDate(0, 0, -3)
	total := dec("405.00")

	assert.Equal(t, StatusPaid, Effective(StatusPaid, pastDue, total, total, now))
}

func TestEffectiveRevertsOnDueDateExtension(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	total := dec("405.00")

	// Overdue today, then the due date is pushed out: the projection reverts
	// without any stored transition.
	assert.Equal(t, StatusOverdue, Effective(StatusSent, now.AddDate(0, 0, -1), decimal.Zero, total, now))
	assert.Equal(t, StatusSent, Effective(StatusSent, now.AddDate(0, 0, 14), decimal.Zero, total, now))
}

func TestEffectiveFullyPaidPastDueIsNotOverdue(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	pastDue := now.AddDate(0, 0, -3)
	total := dec("405.00")

	// paid == total: nothing outstanding, even though the status row still
	// says ACCEPTED until the PAID transition is stored.
	assert.Equal(t, StatusAccepted, Effective(StatusAccepted, pastDue, total, total, now))
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusPaid.Terminal())
	for _, s := range []Status{StatusDraft, StatusSent, StatusViewed, StatusAccepted, StatusOverdue} {
		assert.False(t, s.Terminal(), "status %s", s)
	}
}
