package handler

import (
	"time"

	billingapp "github.com/erp/ledger/internal/application/billing"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles receivable invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	documentService   *billingapp.DocumentService
	settlementService *billingapp.SettlementService
	balanceService    *billingapp.BalanceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(
	documentService *billingapp.DocumentService,
	settlementService *billingapp.SettlementService,
	balanceService *billingapp.BalanceService,
) *InvoiceHandler {
	return &InvoiceHandler{
		documentService:   documentService,
		settlementService: settlementService,
		balanceService:    balanceService,
	}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.GetByID)
		invoices.POST("/:id/settle", h.Settle)
		invoices.POST("/:id/cancel", h.Cancel)
		invoices.POST("/:id/recompute", h.Recompute)
	}
}

// CreateInvoiceRequest is the payload for registering an invoice
type CreateInvoiceRequest struct {
	Number      string          `json:"number" binding:"required,max=50"`
	ClientID    string          `json:"client_id" binding:"required,uuid"`
	IssueDate   string          `json:"issue_date"`
	DueDate     *string         `json:"due_date,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount" binding:"required,dpositive"`
}

// SettleRequest is the payload for settling a document
type SettleRequest struct {
	Amount            decimal.Decimal `json:"amount" binding:"required,dpositive"`
	PaymentDate       string          `json:"payment_date"`
	TreasuryAccountID string          `json:"treasury_account_id" binding:"required,uuid"`
	Label             string          `json:"label" binding:"max=500"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	ClientID          string          `json:"client_id"`
	IssueDate         time.Time       `json:"issue_date"`
	DueDate           *time.Time      `json:"due_date,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Status            string          `json:"status"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BalanceResponse represents recomputed document balances
type BalanceResponse struct {
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Status            string          `json:"status"`
}

// SettlementResponse reports the artifacts of a settlement
type SettlementResponse struct {
	Movement   MovementResponse     `json:"movement"`
	Entry      JournalEntryResponse `json:"entry"`
	DebitLine  LedgerLineResponse   `json:"debit_line"`
	CreditLine LedgerLineResponse   `json:"credit_line"`
	Balance    BalanceResponse      `json:"balance"`
	Lettering  *LetteringResponse   `json:"lettering,omitempty"`
}

// LetteringResponse reports what a lettering run did
type LetteringResponse struct {
	Status       string `json:"status"`
	LetterRef    string `json:"letter_ref,omitempty"`
	UpdatedCount int    `json:"updated_count"`
}

func toInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:                inv.ID.String(),
		Number:            inv.Number,
		ClientID:          inv.ClientID.String(),
		IssueDate:         inv.IssueDate,
		DueDate:           inv.DueDate,
		TotalAmount:       inv.TotalAmount,
		PaidAmount:        inv.PaidAmount,
		OutstandingAmount: inv.OutstandingAmount,
		Status:            string(inv.Status),
		Version:           inv.Version,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}

func toInvoiceResponses(invoices []billing.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = toInvoiceResponse(&invoices[i])
	}
	return responses
}

func toBalanceResponse(s *billing.BalanceSnapshot) BalanceResponse {
	return BalanceResponse{
		PaidAmount:        s.PaidAmount,
		OutstandingAmount: s.OutstandingAmount,
		Status:            string(s.Status),
	}
}

func toSettlementResponse(r *billingapp.SettlementResult) SettlementResponse {
	resp := SettlementResponse{
		Movement:   toMovementResponse(r.Movement),
		Entry:      toJournalEntryResponse(r.Entry),
		DebitLine:  toLedgerLineResponse(r.DebitLine),
		CreditLine: toLedgerLineResponse(r.CreditLine),
		Balance:    toBalanceResponse(r.Balance),
	}
	if r.Lettering != nil {
		resp.Lettering = &LetteringResponse{
			Status:       string(r.Lettering.Status),
			LetterRef:    r.Lettering.LetterRef,
			UpdatedCount: r.Lettering.UpdatedCount,
		}
	}
	return resp
}

func (h *InvoiceHandler) bindSettleInput(c *gin.Context) (billingapp.SettleInput, bool) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return billingapp.SettleInput{}, false
	}

	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return billingapp.SettleInput{}, false
	}

	paymentDate, err := parseDateTime(req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "Invalid payment date format")
		return billingapp.SettleInput{}, false
	}

	treasuryAccountID, err := uuid.Parse(req.TreasuryAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid treasury account ID format")
		return billingapp.SettleInput{}, false
	}

	return billingapp.SettleInput{
		DocumentID:        documentID,
		Amount:            req.Amount,
		PaymentDate:       paymentDate,
		TreasuryAccountID: treasuryAccountID,
		Label:             req.Label,
	}, true
}

// Create godoc
// @Summary      Register an invoice
// @Description  Register a receivable document with a unique number
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} dto.Response{data=InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	issueDate, err := parseDateTime(req.IssueDate)
	if err != nil {
		h.BadRequest(c, "Invalid issue date format")
		return
	}

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due date format")
		return
	}

	invoice, err := h.documentService.CreateInvoice(c.Request.Context(), billingapp.CreateInvoiceInput{
		Number:      req.Number,
		ClientID:    clientID,
		IssueDate:   issueDate,
		DueDate:     dueDate,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toInvoiceResponse(invoice))
}

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        search query string false "Search term (invoice number)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]InvoiceResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := toFilter(req)
	result, err := h.documentService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toInvoiceResponses(result.Items), result.Total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get invoice by ID
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.documentService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// Settle godoc
// @Summary      Settle an invoice
// @Description  Record a treasury movement against the invoice, post the balanced payment entry, recompute balances and run lettering
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body SettleRequest true "Settlement request"
// @Success      201 {object} dto.Response{data=SettlementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id}/settle [post]
func (h *InvoiceHandler) Settle(c *gin.Context) {
	input, ok := h.bindSettleInput(c)
	if !ok {
		return
	}

	result, err := h.settlementService.SettleInvoice(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toSettlementResponse(result))
}

// Cancel godoc
// @Summary      Cancel an invoice
// @Description  Cancel an unsettled invoice and delete its unassigned ledger lines
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.documentService.CancelInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// Recompute godoc
// @Summary      Recompute invoice balances
// @Description  Re-derive paid and outstanding amounts from linked treasury movements
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=BalanceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id}/recompute [post]
func (h *InvoiceHandler) Recompute(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	snapshot, err := h.balanceService.Recompute(c.Request.Context(), invoiceID, billing.DocumentTypeInvoice)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toBalanceResponse(snapshot))
}
