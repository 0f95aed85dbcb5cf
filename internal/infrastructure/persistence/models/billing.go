package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	Number            string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID          uuid.UUID              `gorm:"type:uuid;not null;index"`
	IssueDate         time.Time              `gorm:"not null"`
	DueDate           *time.Time             `gorm:"index"`
	TotalAmount       decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	OutstandingAmount decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Status            billing.DocumentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		ClientID:          m.ClientID,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		OutstandingAmount: m.OutstandingAmount,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.Number = inv.Number
	m.ClientID = inv.ClientID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.OutstandingAmount = inv.OutstandingAmount
	m.Status = inv.Status
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// IncomingInvoiceModel is the persistence model for the IncomingInvoice aggregate root.
type IncomingInvoiceModel struct {
	AggregateModel
	Number            string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	IssueDate         time.Time              `gorm:"not null"`
	DueDate           *time.Time             `gorm:"index"`
	TotalAmount       decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	OutstandingAmount decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Status            billing.DocumentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
}

// TableName returns the table name for GORM
func (IncomingInvoiceModel) TableName() string {
	return "incoming_invoices"
}

// ToDomain converts the persistence model to a domain IncomingInvoice.
func (m *IncomingInvoiceModel) ToDomain() *billing.IncomingInvoice {
	return &billing.IncomingInvoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		SupplierID:        m.SupplierID,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		OutstandingAmount: m.OutstandingAmount,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain IncomingInvoice.
func (m *IncomingInvoiceModel) FromDomain(inv *billing.IncomingInvoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.Number = inv.Number
	m.SupplierID = inv.SupplierID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.OutstandingAmount = inv.OutstandingAmount
	m.Status = inv.Status
}

// IncomingInvoiceModelFromDomain creates a new persistence model from a domain IncomingInvoice.
func IncomingInvoiceModelFromDomain(inv *billing.IncomingInvoice) *IncomingInvoiceModel {
	m := &IncomingInvoiceModel{}
	m.FromDomain(inv)
	return m
}

// MoneyMovementModel is the persistence model for treasury movements.
type MoneyMovementModel struct {
	BaseModel
	Date              time.Time                 `gorm:"not null;index"`
	Direction         billing.MovementDirection `gorm:"type:varchar(5);not null"`
	Amount            decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Label             string                    `gorm:"type:varchar(500)"`
	VoucherRef        string                    `gorm:"type:varchar(20);not null;uniqueIndex"`
	TreasuryAccountID uuid.UUID                 `gorm:"type:uuid;not null;index"`
	InvoiceID         *uuid.UUID                `gorm:"type:uuid;index"`
	IncomingInvoiceID *uuid.UUID                `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (MoneyMovementModel) TableName() string {
	return "money_movements"
}

// ToDomain converts the persistence model to a domain MoneyMovement.
func (m *MoneyMovementModel) ToDomain() *billing.MoneyMovement {
	return &billing.MoneyMovement{
		BaseEntity:        m.BaseModel.ToDomain(),
		Date:              m.Date,
		Direction:         m.Direction,
		Amount:            m.Amount,
		Label:             m.Label,
		VoucherRef:        m.VoucherRef,
		TreasuryAccountID: m.TreasuryAccountID,
		InvoiceID:         m.InvoiceID,
		IncomingInvoiceID: m.IncomingInvoiceID,
	}
}

// FromDomain populates the persistence model from a domain MoneyMovement.
func (m *MoneyMovementModel) FromDomain(mv *billing.MoneyMovement) {
	m.FromDomainBaseEntity(mv.BaseEntity)
	m.Date = mv.Date
	m.Direction = mv.Direction
	m.Amount = mv.Amount
	m.Label = mv.Label
	m.VoucherRef = mv.VoucherRef
	m.TreasuryAccountID = mv.TreasuryAccountID
	m.InvoiceID = mv.InvoiceID
	m.IncomingInvoiceID = mv.IncomingInvoiceID
}

// MoneyMovementModelFromDomain creates a new persistence model from a domain MoneyMovement.
func MoneyMovementModelFromDomain(mv *billing.MoneyMovement) *MoneyMovementModel {
	m := &MoneyMovementModel{}
	m.FromDomain(mv)
	return m
}
