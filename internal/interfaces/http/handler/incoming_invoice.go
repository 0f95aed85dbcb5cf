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

// IncomingInvoiceHandler handles supplier invoice API endpoints
type IncomingInvoiceHandler struct {
	BaseHandler
	documentService   *billingapp.DocumentService
	settlementService *billingapp.SettlementService
	balanceService    *billingapp.BalanceService
}

// NewIncomingInvoiceHandler creates a new IncomingInvoiceHandler
func NewIncomingInvoiceHandler(
	documentService *billingapp.DocumentService,
	settlementService *billingapp.SettlementService,
	balanceService *billingapp.BalanceService,
) *IncomingInvoiceHandler {
	return &IncomingInvoiceHandler{
		documentService:   documentService,
		settlementService: settlementService,
		balanceService:    balanceService,
	}
}

// RegisterRoutes registers incoming invoice routes
func (h *IncomingInvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/incoming-invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.GetByID)
		invoices.POST("/:id/settle", h.Settle)
		invoices.POST("/:id/recompute", h.Recompute)
	}
}

// CreateIncomingInvoiceRequest is the payload for registering a supplier invoice
type CreateIncomingInvoiceRequest struct {
	Number      string          `json:"number" binding:"required,max=50"`
	SupplierID  string          `json:"supplier_id" binding:"required,uuid"`
	IssueDate   string          `json:"issue_date"`
	DueDate     *string         `json:"due_date,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount" binding:"required,dpositive"`
}

// IncomingInvoiceResponse represents a supplier invoice in API responses
type IncomingInvoiceResponse struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	SupplierID        string          `json:"supplier_id"`
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

func toIncomingInvoiceResponse(inv *billing.IncomingInvoice) IncomingInvoiceResponse {
	return IncomingInvoiceResponse{
		ID:                inv.ID.String(),
		Number:            inv.Number,
		SupplierID:        inv.SupplierID.String(),
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

func toIncomingInvoiceResponses(invoices []billing.IncomingInvoice) []IncomingInvoiceResponse {
	responses := make([]IncomingInvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = toIncomingInvoiceResponse(&invoices[i])
	}
	return responses
}

// Create godoc
// @Summary      Register an incoming invoice
// @Description  Register a payable document with a unique number
// @Tags         incoming-invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateIncomingInvoiceRequest true "Incoming invoice creation request"
// @Success      201 {object} dto.Response{data=IncomingInvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /incoming-invoices [post]
func (h *IncomingInvoiceHandler) Create(c *gin.Context) {
	var req CreateIncomingInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
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

	invoice, err := h.documentService.CreateIncomingInvoice(c.Request.Context(), billingapp.CreateIncomingInvoiceInput{
		Number:      req.Number,
		SupplierID:  supplierID,
		IssueDate:   issueDate,
		DueDate:     dueDate,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toIncomingInvoiceResponse(invoice))
}

// List godoc
// @Summary      List incoming invoices
// @Tags         incoming-invoices
// @Produce      json
// @Param        search query string false "Search term (invoice number)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]IncomingInvoiceResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /incoming-invoices [get]
func (h *IncomingInvoiceHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := toFilter(req)
	result, err := h.documentService.ListIncomingInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toIncomingInvoiceResponses(result.Items), result.Total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get incoming invoice by ID
// @Tags         incoming-invoices
// @Produce      json
// @Param        id path string true "Incoming invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=IncomingInvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /incoming-invoices/{id} [get]
func (h *IncomingInvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid incoming invoice ID format")
		return
	}

	invoice, err := h.documentService.GetIncomingInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toIncomingInvoiceResponse(invoice))
}

// Settle godoc
// @Summary      Settle an incoming invoice
// @Description  Record an outgoing treasury movement against the supplier invoice and post the balanced payment entry
// @Tags         incoming-invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Incoming invoice ID" format(uuid)
// @Param        request body SettleRequest true "Settlement request"
// @Success      201 {object} dto.Response{data=SettlementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /incoming-invoices/{id}/settle [post]
func (h *IncomingInvoiceHandler) Settle(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid incoming invoice ID format")
		return
	}

	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	paymentDate, err := parseDateTime(req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "Invalid payment date format")
		return
	}

	treasuryAccountID, err := uuid.Parse(req.TreasuryAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid treasury account ID format")
		return
	}

	result, err := h.settlementService.SettleIncomingInvoice(c.Request.Context(), billingapp.SettleInput{
		DocumentID:        documentID,
		Amount:            req.Amount,
		PaymentDate:       paymentDate,
		TreasuryAccountID: treasuryAccountID,
		Label:             req.Label,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toSettlementResponse(result))
}

// Recompute godoc
// @Summary      Recompute incoming invoice balances
// @Description  Re-derive paid and outstanding amounts from linked treasury movements
// @Tags         incoming-invoices
// @Produce      json
// @Param        id path string true "Incoming invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=BalanceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /incoming-invoices/{id}/recompute [post]
func (h *IncomingInvoiceHandler) Recompute(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid incoming invoice ID format")
		return
	}

	snapshot, err := h.balanceService.Recompute(c.Request.Context(), invoiceID, billing.DocumentTypeIncomingInvoice)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toBalanceResponse(snapshot))
}
