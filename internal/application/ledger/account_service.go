package ledger

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountService exposes the read-mostly chart of accounts. Accounts
// are immutable once referenced by a ledger line; there is no update
// or delete path.
type AccountService struct {
	accountRepo ledger.AccountRepository
	logger      *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo ledger.AccountRepository, logger *zap.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Create adds a new account to the chart
func (s *AccountService) Create(ctx context.Context, number, label string) (*ledger.Account, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "create")
	defer span.End()

	existing, err := s.accountRepo.FindByNumber(ctx, number)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check account number: %w", err)
	}
	if existing != nil {
		err := shared.NewDomainError("CONFLICT", "account number already exists")
		telemetry.RecordError(span, err)
		return nil, err
	}

	account, err := ledger.NewAccount(number, label)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info("account created", zap.String("number", number), zap.String("label", label))
	return account, nil
}

// Get finds an account by ID
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "account not found")
	}
	return account, nil
}

// GetByNumber finds an account by its exact number
func (s *AccountService) GetByNumber(ctx context.Context, number string) (*ledger.Account, error) {
	account, err := s.accountRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "account not found")
	}
	return account, nil
}

// FindByPrefix returns the first account of a prefix family
func (s *AccountService) FindByPrefix(ctx context.Context, prefix string) (*ledger.Account, error) {
	account, err := s.accountRepo.FindFirstByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to look up prefix: %w", err)
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "no account in prefix family "+prefix)
	}
	return account, nil
}

// List pages through the chart of accounts
func (s *AccountService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[ledger.Account], error) {
	accounts, total, err := s.accountRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ledger.Account]{}, fmt.Errorf("failed to list accounts: %w", err)
	}
	return shared.NewPaginated(accounts, total, filter.Page, filter.PageSize), nil
}
