package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bodicode/foodfund-backend/internal/domain"
)

// Service tracks fundraiser wallet balances and ledgers.
// Mutations arrive as wallet transactions (from disbursements, donation
// inflows, and admin adjustments); reads serve the wallet overview
// screens.
type Service struct {
	WalletRepo domain.WalletRepository
}

// NewService creates a new wallet Service instance
func NewService(walletRepo domain.WalletRepository) *Service {
	return &Service{WalletRepo: walletRepo}
}

// ApplyTransaction applies a credit or debit to a wallet. The repository
// locks the wallet row and writes the aggregate update together with
// the ledger entry, so BalanceBefore/BalanceAfter are captured
// atomically with the mutation.
func (s *Service) ApplyTransaction(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, txType domain.WalletTransactionType, description string) (*domain.WalletTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: wallet transaction amount must be positive", domain.ErrValidation)
	}
	return s.WalletRepo.ApplyTransaction(ctx, walletID, amount, txType, description)
}

// GetWallet retrieves the wallet belonging to a user
func (s *Service) GetWallet(ctx context.Context, ownerID uuid.UUID) (*domain.FundraiserWallet, error) {
	return s.WalletRepo.GetByOwner(ctx, ownerID)
}

// GetAllWallets retrieves wallets paginated by skip/take
func (s *Service) GetAllWallets(ctx context.Context, skip, take int) ([]*domain.FundraiserWallet, error) {
	if take <= 0 {
		take = defaultPageSize
	}
	if skip < 0 {
		skip = 0
	}
	return s.WalletRepo.List(ctx, skip, take)
}

// WalletWithTransactions bundles a wallet with one page of its ledger
type WalletWithTransactions struct {
	Wallet       *domain.FundraiserWallet
	Transactions []*domain.WalletTransaction
}

// GetWalletWithTransactions retrieves a user's wallet together with a
// page of its ledger entries, newest first
func (s *Service) GetWalletWithTransactions(ctx context.Context, ownerID uuid.UUID, skip, limit int) (*WalletWithTransactions, error) {
	w, err := s.WalletRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if skip < 0 {
		skip = 0
	}

	txs, err := s.WalletRepo.ListTransactions(ctx, w.ID, skip, limit)
	if err != nil {
		return nil, err
	}

	return &WalletWithTransactions{Wallet: w, Transactions: txs}, nil
}

// GetStats aggregates the financial overview of a user's wallet
func (s *Service) GetStats(ctx context.Context, ownerID uuid.UUID) (*domain.WalletStats, error) {
	w, err := s.WalletRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.WalletRepo.Stats(ctx, w.ID)
}

const defaultPageSize = 20
