package handler

import (
	"time"

	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxEntryLines caps the lines loaded for an entry detail response
const maxEntryLines = 500

// JournalHandler handles journal entry API endpoints
type JournalHandler struct {
	BaseHandler
	postingService *ledgerapp.PostingService
	entryRepo      ledger.JournalEntryRepository
	lineRepo       ledger.LedgerLineRepository
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(
	postingService *ledgerapp.PostingService,
	entryRepo ledger.JournalEntryRepository,
	lineRepo ledger.LedgerLineRepository,
) *JournalHandler {
	return &JournalHandler{
		postingService: postingService,
		entryRepo:      entryRepo,
		lineRepo:       lineRepo,
	}
}

// RegisterRoutes registers journal entry routes
func (h *JournalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entries := rg.Group("/ledger/entries")
	{
		entries.POST("", h.PostBatch)
		entries.GET("", h.List)
		entries.GET("/:id", h.GetByID)
	}
}

// PostBatchRequest is the payload for finalizing lines into a journal entry
type PostBatchRequest struct {
	SourceType  string   `json:"source_type" binding:"required"`
	SourceID    *string  `json:"source_id,omitempty" binding:"omitempty,uuid"`
	Date        string   `json:"date"`
	Description string   `json:"description" binding:"max=500"`
	LineIDs     []string `json:"line_ids" binding:"required,min=1,dive,uuid"`
}

// JournalEntryResponse represents a journal entry in API responses
type JournalEntryResponse struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	Date        time.Time `json:"date"`
	SourceType  string    `json:"source_type"`
	SourceID    *string   `json:"source_id,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JournalEntryDetailResponse adds the claimed lines to an entry response
type JournalEntryDetailResponse struct {
	JournalEntryResponse
	Lines []LedgerLineResponse `json:"lines"`
}

func toJournalEntryResponse(e *ledger.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		ID:          e.ID.String(),
		Number:      e.Number,
		Date:        e.Date,
		SourceType:  string(e.SourceType),
		SourceID:    uuidPtrToString(e.SourceID),
		Description: e.Description,
		Status:      string(e.Status),
		Version:     e.Version,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toJournalEntryResponses(entries []ledger.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = toJournalEntryResponse(&entries[i])
	}
	return responses
}

// PostBatch godoc
// @Summary      Finalize lines into a journal entry
// @Description  Claim a balanced set of unassigned lines into one numbered journal entry
// @Tags         journal-entries
// @Accept       json
// @Produce      json
// @Param        request body PostBatchRequest true "Batch finalization request"
// @Success      201 {object} dto.Response{data=JournalEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/entries [post]
func (h *JournalHandler) PostBatch(c *gin.Context) {
	var req PostBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	date, err := parseDateTime(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date format")
		return
	}

	sourceID, err := parseOptionalUUID(req.SourceID)
	if err != nil {
		h.BadRequest(c, "Invalid source ID format")
		return
	}

	lineIDs := make([]uuid.UUID, len(req.LineIDs))
	for i, raw := range req.LineIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid line ID format")
			return
		}
		lineIDs[i] = id
	}

	entry, err := h.postingService.PostBatch(c.Request.Context(), ledgerapp.PostBatchInput{
		SourceType:  ledger.SourceType(req.SourceType),
		SourceID:    sourceID,
		Date:        date,
		Description: req.Description,
		LineIDs:     lineIDs,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toJournalEntryResponse(entry))
}

// List godoc
// @Summary      List journal entries
// @Description  Retrieve a paginated list of journal entries
// @Tags         journal-entries
// @Produce      json
// @Param        search query string false "Search term (number or description)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]JournalEntryResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/entries [get]
func (h *JournalHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := toFilter(req)
	entries, total, err := h.entryRepo.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toJournalEntryResponses(entries), total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get journal entry by ID
// @Description  Retrieve a journal entry and the lines it claimed
// @Tags         journal-entries
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} dto.Response{data=JournalEntryDetailResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/entries/{id} [get]
func (h *JournalHandler) GetByID(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	entry, err := h.entryRepo.FindByID(c.Request.Context(), entryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if entry == nil {
		h.NotFound(c, "journal entry not found")
		return
	}

	lines, _, err := h.lineRepo.FindAll(c.Request.Context(), ledger.LineFilter{
		Filter:         shared.Filter{Page: 1, PageSize: maxEntryLines},
		JournalEntryID: &entryID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, JournalEntryDetailResponse{
		JournalEntryResponse: toJournalEntryResponse(entry),
		Lines:                toLedgerLineResponses(lines),
	})
}
