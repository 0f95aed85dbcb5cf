package handler

import (
	"time"

	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LineHandler handles ledger line API endpoints
type LineHandler struct {
	BaseHandler
	lineService *ledgerapp.LineService
}

// NewLineHandler creates a new LineHandler
func NewLineHandler(lineService *ledgerapp.LineService) *LineHandler {
	return &LineHandler{lineService: lineService}
}

// RegisterRoutes registers ledger line routes
func (h *LineHandler) RegisterRoutes(rg *gin.RouterGroup) {
	lines := rg.Group("/ledger/lines")
	{
		lines.POST("", h.CreateBatch)
		lines.GET("", h.List)
	}
}

// CreateLineRequest is one line of a batch creation payload
type CreateLineRequest struct {
	Date              string          `json:"date" binding:"required"`
	Direction         string          `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	Amount            decimal.Decimal `json:"amount" binding:"required,dpositive"`
	Kind              string          `json:"kind" binding:"required"`
	AccountID         string          `json:"account_id" binding:"required,uuid"`
	Label             string          `json:"label" binding:"max=500"`
	InvoiceID         *string         `json:"invoice_id,omitempty" binding:"omitempty,uuid"`
	IncomingInvoiceID *string         `json:"incoming_invoice_id,omitempty" binding:"omitempty,uuid"`
	MoneyMovementID   *string         `json:"money_movement_id,omitempty" binding:"omitempty,uuid"`
	ClientID          *string         `json:"client_id,omitempty" binding:"omitempty,uuid"`
	SupplierID        *string         `json:"supplier_id,omitempty" binding:"omitempty,uuid"`
}

// CreateLinesRequest is the payload for creating a batch of lines
type CreateLinesRequest struct {
	Lines []CreateLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// LedgerLineResponse represents a ledger line in API responses
type LedgerLineResponse struct {
	ID                string          `json:"id"`
	Date              time.Time       `json:"date"`
	Direction         string          `json:"direction"`
	Amount            decimal.Decimal `json:"amount"`
	Kind              string          `json:"kind"`
	AccountID         string          `json:"account_id"`
	Label             string          `json:"label,omitempty"`
	InvoiceID         *string         `json:"invoice_id,omitempty"`
	IncomingInvoiceID *string         `json:"incoming_invoice_id,omitempty"`
	MoneyMovementID   *string         `json:"money_movement_id,omitempty"`
	ClientID          *string         `json:"client_id,omitempty"`
	SupplierID        *string         `json:"supplier_id,omitempty"`
	JournalEntryID    *string         `json:"journal_entry_id,omitempty"`
	LetterRef         *string         `json:"letter_ref,omitempty"`
	LetterStatus      string          `json:"letter_status"`
	LetteredAmount    decimal.Decimal `json:"lettered_amount"`
	LetteredAt        *time.Time      `json:"lettered_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func toLedgerLineResponse(l *ledger.LedgerLine) LedgerLineResponse {
	resp := LedgerLineResponse{
		ID:             l.ID.String(),
		Date:           l.Date,
		Direction:      string(l.Direction),
		Amount:         l.Amount,
		Kind:           string(l.Kind),
		AccountID:      l.AccountID.String(),
		Label:          l.Label,
		LetterRef:      l.LetterRef,
		LetterStatus:   string(l.LetterStatus),
		LetteredAmount: l.LetteredAmount,
		LetteredAt:     l.LetteredAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
	resp.InvoiceID = uuidPtrToString(l.InvoiceID)
	resp.IncomingInvoiceID = uuidPtrToString(l.IncomingInvoiceID)
	resp.MoneyMovementID = uuidPtrToString(l.MoneyMovementID)
	resp.ClientID = uuidPtrToString(l.ClientID)
	resp.SupplierID = uuidPtrToString(l.SupplierID)
	resp.JournalEntryID = uuidPtrToString(l.JournalEntryID)
	return resp
}

func toLedgerLineResponses(lines []ledger.LedgerLine) []LedgerLineResponse {
	responses := make([]LedgerLineResponse, len(lines))
	for i := range lines {
		responses[i] = toLedgerLineResponse(&lines[i])
	}
	return responses
}

func (h *LineHandler) toLineInput(req CreateLineRequest) (ledgerapp.LineInput, error) {
	date, err := parseDateTime(req.Date)
	if err != nil {
		return ledgerapp.LineInput{}, err
	}

	accountID, err := parseOptionalUUID(&req.AccountID)
	if err != nil {
		return ledgerapp.LineInput{}, err
	}

	input := ledgerapp.LineInput{
		Date:      date,
		Direction: ledger.Direction(req.Direction),
		Amount:    req.Amount,
		Kind:      ledger.LineKind(req.Kind),
		AccountID: *accountID,
		Label:     req.Label,
	}

	if input.InvoiceID, err = parseOptionalUUID(req.InvoiceID); err != nil {
		return ledgerapp.LineInput{}, err
	}
	if input.IncomingInvoiceID, err = parseOptionalUUID(req.IncomingInvoiceID); err != nil {
		return ledgerapp.LineInput{}, err
	}
	if input.MoneyMovementID, err = parseOptionalUUID(req.MoneyMovementID); err != nil {
		return ledgerapp.LineInput{}, err
	}
	if input.ClientID, err = parseOptionalUUID(req.ClientID); err != nil {
		return ledgerapp.LineInput{}, err
	}
	if input.SupplierID, err = parseOptionalUUID(req.SupplierID); err != nil {
		return ledgerapp.LineInput{}, err
	}
	return input, nil
}

// CreateBatch godoc
// @Summary      Create ledger lines
// @Description  Validate and persist a batch of unassigned ledger lines atomically
// @Tags         ledger-lines
// @Accept       json
// @Produce      json
// @Param        request body CreateLinesRequest true "Batch of lines"
// @Success      201 {object} dto.Response{data=[]LedgerLineResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/lines [post]
func (h *LineHandler) CreateBatch(c *gin.Context) {
	var req CreateLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	inputs := make([]ledgerapp.LineInput, len(req.Lines))
	for i, lineReq := range req.Lines {
		input, err := h.toLineInput(lineReq)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		inputs[i] = input
	}

	lines, err := h.lineService.CreateLines(c.Request.Context(), inputs)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toLedgerLineResponses(lines))
}

// ListLinesRequest holds line list query parameters
type ListLinesRequest struct {
	dto.ListRequest
	AccountID         *string `form:"account_id" binding:"omitempty,uuid"`
	InvoiceID         *string `form:"invoice_id" binding:"omitempty,uuid"`
	IncomingInvoiceID *string `form:"incoming_invoice_id" binding:"omitempty,uuid"`
	MoneyMovementID   *string `form:"money_movement_id" binding:"omitempty,uuid"`
	Kind              *string `form:"kind"`
	Direction         *string `form:"direction" binding:"omitempty,oneof=DEBIT CREDIT"`
	LetterStatus      *string `form:"letter_status" binding:"omitempty,oneof=UNMATCHED PARTIAL MATCHED"`
	FromDate          *string `form:"from_date"`
	ToDate            *string `form:"to_date"`
	OrphansOnly       bool    `form:"orphans_only"`
}

// List godoc
// @Summary      List ledger lines
// @Description  Retrieve a paginated list of ledger lines with filtering
// @Tags         ledger-lines
// @Produce      json
// @Param        account_id query string false "Account ID" format(uuid)
// @Param        invoice_id query string false "Invoice ID" format(uuid)
// @Param        kind query string false "Line kind"
// @Param        direction query string false "Direction" Enums(DEBIT, CREDIT)
// @Param        letter_status query string false "Lettering status" Enums(UNMATCHED, PARTIAL, MATCHED)
// @Param        from_date query string false "From date (ISO 8601)" format(date)
// @Param        to_date query string false "To date (ISO 8601)" format(date)
// @Param        orphans_only query boolean false "Only lines without a journal entry"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]LedgerLineResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/lines [get]
func (h *LineHandler) List(c *gin.Context) {
	var req ListLinesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := h.toLineFilter(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.lineService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toLedgerLineResponses(result.Items), result.Total, filter.Page, filter.PageSize)
}

func (h *LineHandler) toLineFilter(req ListLinesRequest) (ledger.LineFilter, error) {
	filter := ledger.LineFilter{
		Filter:      toFilter(req.ListRequest),
		OrphansOnly: req.OrphansOnly,
	}

	var err error
	if filter.AccountID, err = parseOptionalUUID(req.AccountID); err != nil {
		return filter, err
	}
	if filter.InvoiceID, err = parseOptionalUUID(req.InvoiceID); err != nil {
		return filter, err
	}
	if filter.IncomingInvoiceID, err = parseOptionalUUID(req.IncomingInvoiceID); err != nil {
		return filter, err
	}
	if filter.MoneyMovementID, err = parseOptionalUUID(req.MoneyMovementID); err != nil {
		return filter, err
	}
	if filter.FromDate, err = parseOptionalDate(req.FromDate); err != nil {
		return filter, err
	}
	if filter.ToDate, err = parseOptionalDate(req.ToDate); err != nil {
		return filter, err
	}

	if req.Kind != nil {
		kind := ledger.LineKind(*req.Kind)
		filter.Kind = &kind
	}
	if req.Direction != nil {
		direction := ledger.Direction(*req.Direction)
		filter.Direction = &direction
	}
	if req.LetterStatus != nil {
		status := ledger.LetterStatus(*req.LetterStatus)
		filter.LetterStatus = &status
	}
	return filter, nil
}
