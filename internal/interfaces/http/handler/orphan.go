package handler

import (
	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OrphanHandler handles orphan line group API endpoints
type OrphanHandler struct {
	BaseHandler
	orphanService *ledgerapp.OrphanService
}

// NewOrphanHandler creates a new OrphanHandler
func NewOrphanHandler(orphanService *ledgerapp.OrphanService) *OrphanHandler {
	return &OrphanHandler{orphanService: orphanService}
}

// RegisterRoutes registers orphan group routes
func (h *OrphanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orphans := rg.Group("/ledger/orphans")
	{
		orphans.GET("", h.ListGroups)
		orphans.POST("/repair", h.Repair)
	}
}

// OrphanGroupResponse represents one orphan group in API responses
type OrphanGroupResponse struct {
	Key      string               `json:"key"`
	Debit    decimal.Decimal      `json:"debit"`
	Credit   decimal.Decimal      `json:"credit"`
	Diff     decimal.Decimal      `json:"diff"`
	Balanced bool                 `json:"balanced"`
	Lines    []LedgerLineResponse `json:"lines"`
}

func toOrphanGroupResponse(g *ledger.OrphanGroup) OrphanGroupResponse {
	return OrphanGroupResponse{
		Key:      g.Key,
		Debit:    g.Debit,
		Credit:   g.Credit,
		Diff:     g.Diff,
		Balanced: g.IsBalanced(),
		Lines:    toLedgerLineResponses(g.Lines),
	}
}

// RepairOrphanRequest is the payload for repairing one orphan group
type RepairOrphanRequest struct {
	GroupKey          string  `json:"group_key" binding:"required"`
	SuspenseAccountID *string `json:"suspense_account_id,omitempty" binding:"omitempty,uuid"`
	Description       string  `json:"description" binding:"max=500"`
}

// ListGroups godoc
// @Summary      List orphan line groups
// @Description  Group all unassigned ledger lines by business source and report their balance
// @Tags         orphans
// @Produce      json
// @Success      200 {object} dto.Response{data=[]OrphanGroupResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/orphans [get]
func (h *OrphanHandler) ListGroups(c *gin.Context) {
	groups, err := h.orphanService.ListGroups(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]OrphanGroupResponse, len(groups))
	for i := range groups {
		responses[i] = toOrphanGroupResponse(&groups[i])
	}
	h.Success(c, responses)
}

// Repair godoc
// @Summary      Repair an orphan group
// @Description  Finalize one orphan group into a journal entry, adding a suspense correction when unbalanced
// @Tags         orphans
// @Accept       json
// @Produce      json
// @Param        request body RepairOrphanRequest true "Repair request"
// @Success      201 {object} dto.Response{data=JournalEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/orphans/repair [post]
func (h *OrphanHandler) Repair(c *gin.Context) {
	var req RepairOrphanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	suspenseAccountID, err := parseOptionalUUID(req.SuspenseAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid suspense account ID format")
		return
	}

	entry, err := h.orphanService.Repair(c.Request.Context(), ledgerapp.RepairInput{
		GroupKey:          req.GroupKey,
		SuspenseAccountID: suspenseAccountID,
		Description:       req.Description,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toJournalEntryResponse(entry))
}
