package handler

import (
	"time"

	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHandler handles chart-of-accounts API endpoints
type AccountHandler struct {
	BaseHandler
	accountService *ledgerapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *ledgerapp.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.Create)
		accounts.GET("", h.List)
		accounts.GET("/:id", h.GetByID)
		accounts.GET("/by-number/:number", h.GetByNumber)
	}
}

// CreateAccountRequest is the payload for registering an account
type CreateAccountRequest struct {
	Number string `json:"number" binding:"required,max=20"`
	Label  string `json:"label" binding:"required,max=200"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAccountResponse(a *ledger.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID.String(),
		Number:    a.Number,
		Label:     a.Label,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAccountResponses(accounts []ledger.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = toAccountResponse(&accounts[i])
	}
	return responses
}

// Create godoc
// @Summary      Register an account
// @Description  Register a chart-of-accounts entry with a unique number
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request body CreateAccountRequest true "Account creation request"
// @Success      201 {object} dto.Response{data=AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.Create(c.Request.Context(), req.Number, req.Label)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toAccountResponse(account))
}

// List godoc
// @Summary      List accounts
// @Description  Retrieve a paginated list of accounts with number/label search
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        search query string false "Search term (number prefix or label)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]AccountResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := toFilter(req)
	result, err := h.accountService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toAccountResponses(result.Items), result.Total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get account by ID
// @Tags         accounts
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} dto.Response{data=AccountResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts/{id} [get]
func (h *AccountHandler) GetByID(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.accountService.Get(c.Request.Context(), accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAccountResponse(account))
}

// GetByNumber godoc
// @Summary      Get account by number
// @Tags         accounts
// @Produce      json
// @Param        number path string true "Account number"
// @Success      200 {object} dto.Response{data=AccountResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts/by-number/{number} [get]
func (h *AccountHandler) GetByNumber(c *gin.Context) {
	account, err := h.accountService.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAccountResponse(account))
}
