package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedgerLine(t *testing.T) {
	accountID := uuid.New()
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("creates valid line", func(t *testing.T) {
		line, err := NewLedgerLine(date, DirectionDebit, decimal.NewFromInt(100), KindPayment, accountID, "payment")
		require.NoError(t, err)
		assert.Equal(t, DirectionDebit, line.Direction)
		assert.Equal(t, KindPayment, line.Kind)
		assert.True(t, line.IsOrphan())
		assert.Equal(t, LetterStatusUnmatched, line.LetterStatus)
		assert.True(t, line.LetteredAmount.IsZero())
	})

	t.Run("defaults zero date to now", func(t *testing.T) {
		line, err := NewLedgerLine(time.Time{}, DirectionCredit, decimal.NewFromInt(1), KindSale, accountID, "")
		require.NoError(t, err)
		assert.False(t, line.Date.IsZero())
	})

	t.Run("rejects invalid direction", func(t *testing.T) {
		_, err := NewLedgerLine(date, Direction("SIDEWAYS"), decimal.NewFromInt(1), KindSale, accountID, "")
		assert.Error(t, err)
	})

	t.Run("rejects invalid kind", func(t *testing.T) {
		_, err := NewLedgerLine(date, DirectionDebit, decimal.NewFromInt(1), LineKind("MYSTERY"), accountID, "")
		assert.Error(t, err)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := NewLedgerLine(date, DirectionDebit, decimal.Zero, KindSale, accountID, "")
		assert.Error(t, err)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewLedgerLine(date, DirectionDebit, decimal.NewFromInt(-5), KindSale, accountID, "")
		assert.Error(t, err)
	})

	t.Run("rejects nil account", func(t *testing.T) {
		_, err := NewLedgerLine(date, DirectionDebit, decimal.NewFromInt(1), KindSale, uuid.Nil, "")
		assert.Error(t, err)
	})
}

func TestDirectionOpposite(t *testing.T) {
	assert.Equal(t, DirectionCredit, DirectionDebit.Opposite())
	assert.Equal(t, DirectionDebit, DirectionCredit.Opposite())
}

func TestLineKindIsValid(t *testing.T) {
	for _, k := range []LineKind{KindSale, KindPurchase, KindPayment, KindReceivable,
		KindPayable, KindVATCollected, KindVATDeductible, KindAdjustment, KindCapital, KindPayroll} {
		assert.True(t, k.IsValid(), k.String())
	}
	assert.False(t, LineKind("REFUND").IsValid())
}

func TestSignedAmount(t *testing.T) {
	accountID := uuid.New()
	debit, err := NewLedgerLine(time.Now(), DirectionDebit, decimal.NewFromInt(50), KindPayment, accountID, "")
	require.NoError(t, err)
	credit, err := NewLedgerLine(time.Now(), DirectionCredit, decimal.NewFromInt(50), KindReceivable, accountID, "")
	require.NoError(t, err)

	assert.True(t, debit.SignedAmount().Equal(decimal.NewFromInt(50)))
	assert.True(t, credit.SignedAmount().Equal(decimal.NewFromInt(-50)))
}

func TestLineLinks(t *testing.T) {
	accountID := uuid.New()
	line, err := NewLedgerLine(time.Now(), DirectionDebit, decimal.NewFromInt(10), KindPayment, accountID, "")
	require.NoError(t, err)

	invoiceID := uuid.New()
	movementID := uuid.New()
	clientID := uuid.New()
	line.LinkInvoice(invoiceID).LinkMovement(movementID).LinkClient(clientID)

	require.NotNil(t, line.InvoiceID)
	assert.Equal(t, invoiceID, *line.InvoiceID)
	require.NotNil(t, line.MoneyMovementID)
	assert.Equal(t, movementID, *line.MoneyMovementID)
	require.NotNil(t, line.ClientID)
	assert.Equal(t, clientID, *line.ClientID)
	assert.Nil(t, line.IncomingInvoiceID)
	assert.Nil(t, line.SupplierID)
}

func TestLetter(t *testing.T) {
	accountID := uuid.New()

	t.Run("marks line matched", func(t *testing.T) {
		line, err := NewLedgerLine(time.Now(), DirectionDebit, decimal.NewFromFloat(300.00), KindPayment, accountID, "")
		require.NoError(t, err)

		now := time.Now()
		line.Letter("LTR-000001", now)

		require.NotNil(t, line.LetterRef)
		assert.Equal(t, "LTR-000001", *line.LetterRef)
		assert.Equal(t, LetterStatusMatched, line.LetterStatus)
		assert.True(t, line.LetteredAmount.Equal(line.Amount))
		require.NotNil(t, line.LetteredAt)
		assert.Equal(t, now, *line.LetteredAt)
		assert.True(t, line.IsFullyLettered())
	})

	t.Run("preserves existing lettered timestamp", func(t *testing.T) {
		line, err := NewLedgerLine(time.Now(), DirectionCredit, decimal.NewFromInt(20), KindReceivable, accountID, "")
		require.NoError(t, err)

		first := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		line.Letter("LTR-000002", first)
		line.Letter("LTR-000002", first.Add(24*time.Hour))

		assert.Equal(t, first, *line.LetteredAt)
	})
}
