package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockLedgerLineRepository creates a GormLedgerLineRepository with a mocked SQL connection
func newMockLedgerLineRepository(t *testing.T) (*GormLedgerLineRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormLedgerLineRepository(gormDB), mock, mockDB
}

func lineRows(ids ...uuid.UUID) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "direction", "amount", "kind", "account_id", "label", "letter_status", "lettered_amount",
	})
	for _, id := range ids {
		rows.AddRow(id, "DEBIT", decimal.NewFromInt(100), "SALE", uuid.New(), "line", "UNMATCHED", decimal.Zero)
	}
	return rows
}

func TestGormLedgerLineRepository_FindByIDs(t *testing.T) {
	t.Run("loads lines in one query", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerLineRepository(t)
		defer mockDB.Close()

		firstID := uuid.New()
		secondID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "ledger_lines" WHERE id IN \(\$1,\$2\)`).
			WithArgs(firstID, secondID).
			WillReturnRows(lineRows(firstID, secondID))

		lines, err := repo.FindByIDs(context.Background(), []uuid.UUID{firstID, secondID})

		assert.NoError(t, err)
		assert.Len(t, lines, 2)
		assert.Equal(t, firstID, lines[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short circuits on empty input", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerLineRepository(t)
		defer mockDB.Close()

		lines, err := repo.FindByIDs(context.Background(), nil)

		assert.NoError(t, err)
		assert.Empty(t, lines)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerLineRepository_FindOrphans(t *testing.T) {
	t.Run("loads unassigned lines ordered by date", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerLineRepository(t)
		defer mockDB.Close()

		lineID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "ledger_lines" WHERE journal_entry_id IS NULL ORDER BY date ASC, created_at ASC`).
			WillReturnRows(lineRows(lineID))

		lines, err := repo.FindOrphans(context.Background())

		assert.NoError(t, err)
		assert.Len(t, lines, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerLineRepository_FindByLetterRef(t *testing.T) {
	t.Run("loads the full lettering group", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerLineRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "ledger_lines" WHERE letter_ref = \$1 ORDER BY date ASC, created_at ASC`).
			WithArgs("LTR-000042").
			WillReturnRows(lineRows(uuid.New(), uuid.New()))

		lines, err := repo.FindByLetterRef(context.Background(), "LTR-000042")

		assert.NoError(t, err)
		assert.Len(t, lines, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerLineRepository_LetterLines(t *testing.T) {
	t.Run("updates only reconciliation columns", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerLineRepository(t)
		defer mockDB.Close()

		ids := []uuid.UUID{uuid.New(), uuid.New()}

		// journal_entry_id must not appear in the SET clause: a line
		// claimed between candidate selection and lettering keeps its
		// entry assignment.
		mock.ExpectExec(`UPDATE "ledger_lines" SET "letter_ref"=\$1,"letter_status"=\$2,"lettered_amount"=amount,"lettered_at"=COALESCE\(lettered_at, \$3\),"updated_at"=\$4 WHERE id IN \(\$5,\$6\)`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		updated, err := repo.LetterLines(context.Background(), ids, "LTR-000042", time.Now())

		assert.NoError(t, err)
		assert.Equal(t, int64(2), updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short circuits on empty input", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerLineRepository(t)
		defer mockDB.Close()

		updated, err := repo.LetterLines(context.Background(), nil, "LTR-000042", time.Now())

		assert.NoError(t, err)
		assert.Zero(t, updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerLineRepository_ClaimForEntry(t *testing.T) {
	t.Run("claims all unassigned lines", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerLineRepository(t)
		defer mockDB.Close()

		ids := []uuid.UUID{uuid.New(), uuid.New()}
		entryID := uuid.New()

		mock.ExpectExec(`UPDATE "ledger_lines" SET "journal_entry_id"=\$1,"updated_at"=\$2 WHERE id IN \(\$3,\$4\) AND journal_entry_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		claimed, err := repo.ClaimForEntry(context.Background(), ids, entryID)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports partial claim when a line was taken concurrently", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerLineRepository(t)
		defer mockDB.Close()

		ids := []uuid.UUID{uuid.New(), uuid.New()}

		mock.ExpectExec(`UPDATE "ledger_lines" SET "journal_entry_id"=\$1,"updated_at"=\$2 WHERE id IN \(\$3,\$4\) AND journal_entry_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		claimed, err := repo.ClaimForEntry(context.Background(), ids, uuid.New())

		assert.NoError(t, err)
		assert.Equal(t, int64(1), claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short circuits on empty input", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerLineRepository(t)
		defer mockDB.Close()

		claimed, err := repo.ClaimForEntry(context.Background(), nil, uuid.New())

		assert.NoError(t, err)
		assert.Zero(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerLineRepository_DeleteUnassignedByInvoice(t *testing.T) {
	t.Run("removes only unassigned invoice lines", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerLineRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()

		mock.ExpectExec(`DELETE FROM "ledger_lines" WHERE invoice_id = \$1 AND journal_entry_id IS NULL`).
			WithArgs(invoiceID).
			WillReturnResult(sqlmock.NewResult(0, 3))

		deleted, err := repo.DeleteUnassignedByInvoice(context.Background(), invoiceID)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
