package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	billingapp "github.com/erp/ledger/internal/application/billing"
	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const auditPageSize = 200

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	accountRepo := persistence.NewGormAccountRepository(db.DB)
	lineRepo := persistence.NewGormLedgerLineRepository(db.DB)
	entryRepo := persistence.NewGormJournalEntryRepository(db.DB)
	sequenceRepo := persistence.NewGormSequenceRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	incomingInvoiceRepo := persistence.NewGormIncomingInvoiceRepository(db.DB)
	movementRepo := persistence.NewGormMoneyMovementRepository(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)

	postingService := ledgerapp.NewPostingService(txManager, entryRepo, lineRepo, sequenceRepo, log)
	orphanService := ledgerapp.NewOrphanService(txManager, lineRepo, accountRepo, postingService, log)
	balanceService := billingapp.NewBalanceService(invoiceRepo, incomingInvoiceRepo, movementRepo, log)

	auditor := &auditor{
		invoiceRepo:    invoiceRepo,
		incomingRepo:   incomingInvoiceRepo,
		movementRepo:   movementRepo,
		balanceService: balanceService,
		orphanService:  orphanService,
		logger:         log,
	}

	ctx := context.Background()

	switch command {
	case "balances":
		fix := hasFlag(args[1:], "-fix", "--fix")
		drifted, err := auditor.auditBalances(ctx, fix)
		if err != nil {
			log.Fatal("Balance audit failed", zap.Error(err))
		}
		if drifted > 0 && !fix {
			log.Warn("Balance drift detected", zap.Int("documents", drifted))
			os.Exit(1)
		}

	case "orphans":
		repair := hasFlag(args[1:], "-repair", "--repair")
		remaining, err := auditor.auditOrphans(ctx, repair)
		if err != nil {
			log.Fatal("Orphan audit failed", zap.Error(err))
		}
		if remaining > 0 {
			log.Warn("Orphan lines remain", zap.Int("groups", remaining))
			os.Exit(1)
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

type auditor struct {
	invoiceRepo    billing.InvoiceRepository
	incomingRepo   billing.IncomingInvoiceRepository
	movementRepo   billing.MoneyMovementRepository
	balanceService *billingapp.BalanceService
	orphanService  *ledgerapp.OrphanService
	logger         *zap.Logger
}

// auditBalances walks every document, rederives its paid amount from the
// linked movements and reports any stored balance that disagrees. With
// fix enabled, each drifted document is recomputed and persisted.
func (a *auditor) auditBalances(ctx context.Context, fix bool) (int, error) {
	drifted := 0

	for page := 1; ; page++ {
		invoices, total, err := a.invoiceRepo.FindAll(ctx, shared.Filter{Page: page, PageSize: auditPageSize})
		if err != nil {
			return drifted, fmt.Errorf("failed to list invoices: %w", err)
		}
		for i := range invoices {
			ok, err := a.checkInvoice(ctx, &invoices[i], fix)
			if err != nil {
				return drifted, err
			}
			if !ok {
				drifted++
			}
		}
		if int64(page*auditPageSize) >= total {
			break
		}
	}

	for page := 1; ; page++ {
		invoices, total, err := a.incomingRepo.FindAll(ctx, shared.Filter{Page: page, PageSize: auditPageSize})
		if err != nil {
			return drifted, fmt.Errorf("failed to list incoming invoices: %w", err)
		}
		for i := range invoices {
			ok, err := a.checkIncomingInvoice(ctx, &invoices[i], fix)
			if err != nil {
				return drifted, err
			}
			if !ok {
				drifted++
			}
		}
		if int64(page*auditPageSize) >= total {
			break
		}
	}

	a.logger.Info("Balance audit complete", zap.Int("drifted", drifted), zap.Bool("fix", fix))
	return drifted, nil
}

func (a *auditor) checkInvoice(ctx context.Context, invoice *billing.Invoice, fix bool) (bool, error) {
	movements, err := a.movementRepo.FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load movements for invoice %s: %w", invoice.Number, err)
	}

	expected := decimal.Zero
	for i := range movements {
		if movements[i].SettlesDocument(billing.DocumentTypeInvoice) {
			expected = expected.Add(movements[i].Amount)
		}
	}

	return a.reconcile(ctx, invoice.ID, billing.DocumentTypeInvoice, invoice.Number, invoice.PaidAmount, expected, fix)
}

func (a *auditor) checkIncomingInvoice(ctx context.Context, invoice *billing.IncomingInvoice, fix bool) (bool, error) {
	movements, err := a.movementRepo.FindByIncomingInvoice(ctx, invoice.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load movements for incoming invoice %s: %w", invoice.Number, err)
	}

	expected := decimal.Zero
	for i := range movements {
		if movements[i].SettlesDocument(billing.DocumentTypeIncomingInvoice) {
			expected = expected.Add(movements[i].Amount)
		}
	}

	return a.reconcile(ctx, invoice.ID, billing.DocumentTypeIncomingInvoice, invoice.Number, invoice.PaidAmount, expected, fix)
}

// withinTolerance treats sub-cent differences as clean: drift counts
// only beyond the same margin the posting path accepts.
func withinTolerance(stored, expected decimal.Decimal) bool {
	return stored.Sub(expected).Abs().LessThanOrEqual(ledger.Tolerance)
}

func (a *auditor) reconcile(ctx context.Context, id uuid.UUID, docType billing.DocumentType, number string, stored, expected decimal.Decimal, fix bool) (bool, error) {
	if withinTolerance(stored, expected) {
		return true, nil
	}

	a.logger.Warn("Balance drift",
		zap.String("document_type", string(docType)),
		zap.String("number", number),
		zap.String("stored_paid", stored.StringFixed(2)),
		zap.String("derived_paid", expected.StringFixed(2)),
	)

	if !fix {
		return false, nil
	}

	snapshot, err := a.balanceService.Recompute(ctx, id, docType)
	if err != nil {
		return false, fmt.Errorf("failed to recompute %s: %w", number, err)
	}
	a.logger.Info("Balance repaired",
		zap.String("number", number),
		zap.String("paid", snapshot.PaidAmount.StringFixed(2)),
		zap.String("status", string(snapshot.Status)),
	)
	return false, nil
}

// auditOrphans reports unassigned ledger lines grouped by correlation
// key. With repair enabled, each group is posted into a journal entry,
// adding a suspense correction where the group does not balance.
func (a *auditor) auditOrphans(ctx context.Context, repair bool) (int, error) {
	groups, err := a.orphanService.ListGroups(ctx)
	if err != nil {
		return 0, err
	}

	for i := range groups {
		group := &groups[i]
		a.logger.Warn("Orphan group",
			zap.String("key", group.Key),
			zap.Int("lines", len(group.LineIDs)),
			zap.String("debit", group.Debit.StringFixed(2)),
			zap.String("credit", group.Credit.StringFixed(2)),
			zap.Bool("balanced", group.IsBalanced()),
		)
	}

	if !repair || len(groups) == 0 {
		a.logger.Info("Orphan audit complete", zap.Int("groups", len(groups)))
		return len(groups), nil
	}

	repaired := 0
	for i := range groups {
		entry, err := a.orphanService.Repair(ctx, ledgerapp.RepairInput{GroupKey: groups[i].Key})
		if err != nil {
			a.logger.Error("Failed to repair group",
				zap.String("key", groups[i].Key),
				zap.Error(err),
			)
			continue
		}
		a.logger.Info("Orphan group repaired",
			zap.String("key", groups[i].Key),
			zap.String("entry", entry.Number),
		)
		repaired++
	}

	a.logger.Info("Orphan audit complete",
		zap.Int("groups", len(groups)),
		zap.Int("repaired", repaired),
	)
	return len(groups) - repaired, nil
}

func hasFlag(args []string, names ...string) bool {
	for _, arg := range args {
		for _, name := range names {
			if arg == name {
				return true
			}
		}
	}
	return false
}

func printUsage() {
	fmt.Println(`Ledger Audit Tool

Usage:
  audit [flags] <command> [arguments]

Commands:
  balances [-fix]       Rederive document balances from movements and report drift
  orphans [-repair]     List unassigned ledger line groups, optionally post them

Flags:
  -log-level string     Log level: debug, info, warn, error (default: info)

Exit codes:
  0  no drift / no orphans (or everything repaired)
  1  drift or orphan groups remain

Examples:
  # Report documents whose stored balance disagrees with their movements
  audit balances

  # Repair them
  audit balances -fix

  # Post every orphan group, adding suspense corrections where needed
  audit orphans -repair`)
}
