package billing

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIncoming(t *testing.T, total string) *IncomingInvoice {
	t.Helper()
	amount, err := decimal.NewFromString(total)
	require.NoError(t, err)
	invoice, err := NewIncomingInvoice("IN-2026-001", uuid.New(), time.Now(), amount)
	require.NoError(t, err)
	return invoice
}

func TestNewIncomingInvoice(t *testing.T) {
	t.Run("creates pending document", func(t *testing.T) {
		invoice := newTestIncoming(t, "250.00")
		assert.Equal(t, DocumentStatusPending, invoice.Status)
		assert.True(t, invoice.OutstandingAmount.Equal(decimal.NewFromFloat(250.00)))
	})

	t.Run("rejects nil supplier", func(t *testing.T) {
		_, err := NewIncomingInvoice("IN-1", uuid.Nil, time.Now(), decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("rejects negative total", func(t *testing.T) {
		_, err := NewIncomingInvoice("IN-1", uuid.New(), time.Now(), decimal.NewFromInt(-10))
		assert.Error(t, err)
	})
}

func TestIncomingInvoiceApplyBalance(t *testing.T) {
	invoice := newTestIncoming(t, "250.00")
	snap := invoice.ApplyBalance(decimal.NewFromInt(100))
	assert.Equal(t, DocumentStatusPartial, snap.Status)
	assert.True(t, snap.OutstandingAmount.Equal(decimal.NewFromInt(150)))

	snap = invoice.ApplyBalance(decimal.NewFromFloat(250.00))
	assert.Equal(t, DocumentStatusPaid, snap.Status)
	assert.True(t, snap.OutstandingAmount.IsZero())
}

func TestIncomingInvoiceCheckSettlement(t *testing.T) {
	invoice := newTestIncoming(t, "250.00")

	assert.NoError(t, invoice.CheckSettlement(decimal.NewFromInt(250)))

	err := invoice.CheckSettlement(decimal.NewFromInt(300))
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}
