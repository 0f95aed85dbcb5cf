package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for chart-of-accounts entries.
type AccountModel struct {
	BaseModel
	Number string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Label  string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		BaseEntity: m.BaseModel.ToDomain(),
		Number:     m.Number,
		Label:      m.Label,
	}
}

// FromDomain populates the persistence model from a domain Account.
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Number = a.Number
	m.Label = a.Label
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// LedgerLineModel is the persistence model for ledger lines.
type LedgerLineModel struct {
	BaseModel
	Date              time.Time           `gorm:"not null;index"`
	Direction         ledger.Direction    `gorm:"type:varchar(10);not null"`
	Amount            decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Kind              ledger.LineKind     `gorm:"type:varchar(30);not null;index"`
	AccountID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	Label             string              `gorm:"type:varchar(500)"`
	InvoiceID         *uuid.UUID          `gorm:"type:uuid;index"`
	IncomingInvoiceID *uuid.UUID          `gorm:"type:uuid;index"`
	MoneyMovementID   *uuid.UUID          `gorm:"type:uuid;index"`
	ClientID          *uuid.UUID          `gorm:"type:uuid;index"`
	SupplierID        *uuid.UUID          `gorm:"type:uuid;index"`
	JournalEntryID    *uuid.UUID          `gorm:"type:uuid;index"`
	LetterRef         *string             `gorm:"type:varchar(20);index"`
	LetterStatus      ledger.LetterStatus `gorm:"type:varchar(20);not null;default:'UNMATCHED'"`
	LetteredAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	LetteredAt        *time.Time
}

// TableName returns the table name for GORM
func (LedgerLineModel) TableName() string {
	return "ledger_lines"
}

// ToDomain converts the persistence model to a domain LedgerLine.
func (m *LedgerLineModel) ToDomain() *ledger.LedgerLine {
	return &ledger.LedgerLine{
		BaseEntity:        m.BaseModel.ToDomain(),
		Date:              m.Date,
		Direction:         m.Direction,
		Amount:            m.Amount,
		Kind:              m.Kind,
		AccountID:         m.AccountID,
		Label:             m.Label,
		InvoiceID:         m.InvoiceID,
		IncomingInvoiceID: m.IncomingInvoiceID,
		MoneyMovementID:   m.MoneyMovementID,
		ClientID:          m.ClientID,
		SupplierID:        m.SupplierID,
		JournalEntryID:    m.JournalEntryID,
		LetterRef:         m.LetterRef,
		LetterStatus:      m.LetterStatus,
		LetteredAmount:    m.LetteredAmount,
		LetteredAt:        m.LetteredAt,
	}
}

// FromDomain populates the persistence model from a domain LedgerLine.
func (m *LedgerLineModel) FromDomain(l *ledger.LedgerLine) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.Date = l.Date
	m.Direction = l.Direction
	m.Amount = l.Amount
	m.Kind = l.Kind
	m.AccountID = l.AccountID
	m.Label = l.Label
	m.InvoiceID = l.InvoiceID
	m.IncomingInvoiceID = l.IncomingInvoiceID
	m.MoneyMovementID = l.MoneyMovementID
	m.ClientID = l.ClientID
	m.SupplierID = l.SupplierID
	m.JournalEntryID = l.JournalEntryID
	m.LetterRef = l.LetterRef
	m.LetterStatus = l.LetterStatus
	m.LetteredAmount = l.LetteredAmount
	m.LetteredAt = l.LetteredAt
}

// LedgerLineModelFromDomain creates a new persistence model from a domain LedgerLine.
func LedgerLineModelFromDomain(l *ledger.LedgerLine) *LedgerLineModel {
	m := &LedgerLineModel{}
	m.FromDomain(l)
	return m
}

// JournalEntryModel is the persistence model for the JournalEntry aggregate root.
type JournalEntryModel struct {
	AggregateModel
	Number      string             `gorm:"type:varchar(20);not null;uniqueIndex"`
	Date        time.Time          `gorm:"not null;index"`
	SourceType  ledger.SourceType  `gorm:"type:varchar(30);not null;index"`
	SourceID    *uuid.UUID         `gorm:"type:uuid;index"`
	Description string             `gorm:"type:varchar(500)"`
	Status      ledger.EntryStatus `gorm:"type:varchar(20);not null;default:'POSTED'"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry.
func (m *JournalEntryModel) ToDomain() *ledger.JournalEntry {
	return &ledger.JournalEntry{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		Date:              m.Date,
		SourceType:        m.SourceType,
		SourceID:          m.SourceID,
		Description:       m.Description,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain JournalEntry.
func (m *JournalEntryModel) FromDomain(e *ledger.JournalEntry) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Number = e.Number
	m.Date = e.Date
	m.SourceType = e.SourceType
	m.SourceID = e.SourceID
	m.Description = e.Description
	m.Status = e.Status
}

// JournalEntryModelFromDomain creates a new persistence model from a domain JournalEntry.
func JournalEntryModelFromDomain(e *ledger.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{}
	m.FromDomain(e)
	return m
}

// SequenceCounterModel backs the named monotonic sequences used for
// journal numbers, lettering tokens and voucher references.
type SequenceCounterModel struct {
	Name      string    `gorm:"type:varchar(20);primary_key"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceCounterModel) TableName() string {
	return "sequence_counters"
}
