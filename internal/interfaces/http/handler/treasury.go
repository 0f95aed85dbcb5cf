package handler

import (
	"time"

	billingapp "github.com/erp/ledger/internal/application/billing"
	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TreasuryHandler handles treasury movement API endpoints
type TreasuryHandler struct {
	BaseHandler
	treasuryService  *billingapp.TreasuryService
	letteringService *ledgerapp.LetteringService
}

// NewTreasuryHandler creates a new TreasuryHandler
func NewTreasuryHandler(
	treasuryService *billingapp.TreasuryService,
	letteringService *ledgerapp.LetteringService,
) *TreasuryHandler {
	return &TreasuryHandler{
		treasuryService:  treasuryService,
		letteringService: letteringService,
	}
}

// RegisterRoutes registers treasury movement routes
func (h *TreasuryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	movements := rg.Group("/treasury/movements")
	{
		movements.POST("", h.Create)
		movements.GET("", h.List)
		movements.POST("/:id/match", h.Match)
	}
}

// CreateMovementRequest is the payload for a standalone treasury movement
type CreateMovementRequest struct {
	Date              string          `json:"date"`
	Direction         string          `json:"direction" binding:"required,oneof=IN OUT"`
	Amount            decimal.Decimal `json:"amount" binding:"required,dpositive"`
	Label             string          `json:"label" binding:"max=500"`
	TreasuryAccountID string          `json:"treasury_account_id" binding:"required,uuid"`
	CounterAccountID  string          `json:"counter_account_id" binding:"required,uuid"`
}

// MovementResponse represents a treasury movement in API responses
type MovementResponse struct {
	ID                string          `json:"id"`
	Date              time.Time       `json:"date"`
	Direction         string          `json:"direction"`
	Amount            decimal.Decimal `json:"amount"`
	Label             string          `json:"label,omitempty"`
	VoucherRef        string          `json:"voucher_ref"`
	TreasuryAccountID string          `json:"treasury_account_id"`
	InvoiceID         *string         `json:"invoice_id,omitempty"`
	IncomingInvoiceID *string         `json:"incoming_invoice_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// MovementDetailResponse adds the posted journal entry and lines
type MovementDetailResponse struct {
	Movement MovementResponse     `json:"movement"`
	Entry    JournalEntryResponse `json:"entry"`
	Lines    []LedgerLineResponse `json:"lines"`
}

func toMovementResponse(m *billing.MoneyMovement) MovementResponse {
	return MovementResponse{
		ID:                m.ID.String(),
		Date:              m.Date,
		Direction:         string(m.Direction),
		Amount:            m.Amount,
		Label:             m.Label,
		VoucherRef:        m.VoucherRef,
		TreasuryAccountID: m.TreasuryAccountID.String(),
		InvoiceID:         uuidPtrToString(m.InvoiceID),
		IncomingInvoiceID: uuidPtrToString(m.IncomingInvoiceID),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toMovementResponses(movements []billing.MoneyMovement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = toMovementResponse(&movements[i])
	}
	return responses
}

// Create godoc
// @Summary      Record a treasury movement
// @Description  Record a standalone cash movement and post its balanced journal entry atomically
// @Tags         treasury
// @Accept       json
// @Produce      json
// @Param        request body CreateMovementRequest true "Movement creation request"
// @Success      201 {object} dto.Response{data=MovementDetailResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /treasury/movements [post]
func (h *TreasuryHandler) Create(c *gin.Context) {
	var req CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	date, err := parseDateTime(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date format")
		return
	}

	treasuryAccountID, err := uuid.Parse(req.TreasuryAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid treasury account ID format")
		return
	}

	counterAccountID, err := uuid.Parse(req.CounterAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid counter account ID format")
		return
	}

	result, err := h.treasuryService.CreateMovement(c.Request.Context(), billingapp.MovementInput{
		Date:              date,
		Direction:         billing.MovementDirection(req.Direction),
		Amount:            req.Amount,
		Label:             req.Label,
		TreasuryAccountID: treasuryAccountID,
		CounterAccountID:  counterAccountID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	lines := make([]ledger.LedgerLine, len(result.Lines))
	for i, line := range result.Lines {
		lines[i] = *line
	}

	h.Created(c, MovementDetailResponse{
		Movement: toMovementResponse(result.Movement),
		Entry:    toJournalEntryResponse(result.Entry),
		Lines:    toLedgerLineResponses(lines),
	})
}

// ListMovementsRequest holds movement list query parameters
type ListMovementsRequest struct {
	dto.ListRequest
	Direction         *string `form:"direction" binding:"omitempty,oneof=IN OUT"`
	InvoiceID         *string `form:"invoice_id" binding:"omitempty,uuid"`
	IncomingInvoiceID *string `form:"incoming_invoice_id" binding:"omitempty,uuid"`
	FromDate          *string `form:"from_date"`
	ToDate            *string `form:"to_date"`
}

// List godoc
// @Summary      List treasury movements
// @Tags         treasury
// @Produce      json
// @Param        direction query string false "Direction" Enums(IN, OUT)
// @Param        invoice_id query string false "Invoice ID" format(uuid)
// @Param        incoming_invoice_id query string false "Incoming invoice ID" format(uuid)
// @Param        from_date query string false "From date (ISO 8601)" format(date)
// @Param        to_date query string false "To date (ISO 8601)" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]MovementResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /treasury/movements [get]
func (h *TreasuryHandler) List(c *gin.Context) {
	var req ListMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billing.MovementFilter{Filter: toFilter(req.ListRequest)}

	var err error
	if filter.InvoiceID, err = parseOptionalUUID(req.InvoiceID); err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}
	if filter.IncomingInvoiceID, err = parseOptionalUUID(req.IncomingInvoiceID); err != nil {
		h.BadRequest(c, "Invalid incoming invoice ID format")
		return
	}
	if filter.FromDate, err = parseOptionalDate(req.FromDate); err != nil {
		h.BadRequest(c, "Invalid from date format")
		return
	}
	if filter.ToDate, err = parseOptionalDate(req.ToDate); err != nil {
		h.BadRequest(c, "Invalid to date format")
		return
	}
	if req.Direction != nil {
		direction := billing.MovementDirection(*req.Direction)
		filter.Direction = &direction
	}

	result, err := h.treasuryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toMovementResponses(result.Items), result.Total, filter.Page, filter.PageSize)
}

// Match godoc
// @Summary      Run lettering for a movement
// @Description  Reconcile the ledger lines tied to one treasury movement into a lettered group
// @Tags         treasury
// @Produce      json
// @Param        id path string true "Movement ID" format(uuid)
// @Success      200 {object} dto.Response{data=LetteringResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /treasury/movements/{id}/match [post]
func (h *TreasuryHandler) Match(c *gin.Context) {
	movementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid movement ID format")
		return
	}

	result, err := h.letteringService.Match(c.Request.Context(), movementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, LetteringResponse{
		Status:       string(result.Status),
		LetterRef:    result.LetterRef,
		UpdatedCount: result.UpdatedCount,
	})
}
