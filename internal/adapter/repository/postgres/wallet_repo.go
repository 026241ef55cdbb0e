package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bodicode/foodfund-backend/internal/domain"
)

// walletRepository implements domain.WalletRepository
type walletRepository struct {
	db *DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *DB) domain.WalletRepository {
	return &walletRepository{db: db}
}

const walletColumns = `id, owner_id, wallet_type, balance, total_income, total_expense`

// GetByOwner retrieves the wallet belonging to a user
func (r *walletRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.FundraiserWallet, error) {
	query := `SELECT ` + walletColumns + ` FROM fundraiser_wallets WHERE owner_id = $1`

	w, err := scanWallet(r.db.QueryRowContext(ctx, query, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("wallet for owner %s: %w", ownerID, domain.ErrWalletNotFound)
		}
		return nil, fmt.Errorf("failed to get wallet by owner: %w", err)
	}

	return w, nil
}

// List retrieves wallets ordered by owner, paginated by skip/take
func (r *walletRepository) List(ctx context.Context, skip, take int) ([]*domain.FundraiserWallet, error) {
	query := `SELECT ` + walletColumns + ` FROM fundraiser_wallets ORDER BY owner_id LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, take, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	wallets := make([]*domain.FundraiserWallet, 0)
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallets: %w", err)
	}

	return wallets, nil
}

// ApplyTransaction locks the wallet row, applies the credit or debit
// through the domain rules and writes the aggregate update together
// with the ledger entry in one database transaction
func (r *walletRepository) ApplyTransaction(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, txType domain.WalletTransactionType, description string) (*domain.WalletTransaction, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	w, err := lockWalletByID(ctx, dbTx, walletID)
	if err != nil {
		return nil, err
	}

	entry, err := w.Apply(amount, txType, description, time.Now())
	if err != nil {
		return nil, err
	}

	if err := writeWalletMutation(ctx, dbTx, w, entry); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entry, nil
}

// ListTransactions retrieves a wallet's ledger entries, newest first
func (r *walletRepository) ListTransactions(ctx context.Context, walletID uuid.UUID, skip, limit int) ([]*domain.WalletTransaction, error) {
	query := `
		SELECT id, wallet_id, disbursement_id, amount, type, balance_before, balance_after, description, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, walletID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.WalletTransaction, 0)
	for rows.Next() {
		var entry domain.WalletTransaction
		var disbursementID sql.NullString
		var amountStr, beforeStr, afterStr string

		err := rows.Scan(
			&entry.ID,
			&entry.WalletID,
			&disbursementID,
			&amountStr,
			&entry.Type,
			&beforeStr,
			&afterStr,
			&entry.Description,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}

		if disbursementID.Valid {
			id, err := uuid.Parse(disbursementID.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse disbursement_id: %w", err)
			}
			entry.DisbursementID = &id
		}
		if entry.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		if entry.BalanceBefore, err = decimal.NewFromString(beforeStr); err != nil {
			return nil, fmt.Errorf("failed to parse balance_before: %w", err)
		}
		if entry.BalanceAfter, err = decimal.NewFromString(afterStr); err != nil {
			return nil, fmt.Errorf("failed to parse balance_after: %w", err)
		}

		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallet transactions: %w", err)
	}

	return entries, nil
}

// Stats aggregates the wallet's financial overview. The running totals
// come off the wallet row; the month window and donation count come
// from the ledger.
func (r *walletRepository) Stats(ctx context.Context, walletID uuid.UUID) (*domain.WalletStats, error) {
	query := `
		SELECT
			w.balance,
			w.total_income,
			w.total_expense,
			COALESCE(SUM(t.amount) FILTER (
				WHERE t.type IN ('INCOMING_TRANSFER', 'SURPLUS_TRANSFER', 'ADMIN_ADJUSTMENT')
				AND t.created_at >= date_trunc('month', now())
			), 0),
			COUNT(t.id) FILTER (
				WHERE t.type IN ('INCOMING_TRANSFER', 'SURPLUS_TRANSFER', 'ADMIN_ADJUSTMENT')
			)
		FROM fundraiser_wallets w
		LEFT JOIN wallet_transactions t ON t.wallet_id = w.id
		WHERE w.id = $1
		GROUP BY w.id, w.balance, w.total_income, w.total_expense
	`

	var balanceStr, incomeStr, expenseStr, monthStr string
	var donations int

	err := r.db.QueryRowContext(ctx, query, walletID).Scan(
		&balanceStr, &incomeStr, &expenseStr, &monthStr, &donations,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("wallet %s: %w", walletID, domain.ErrWalletNotFound)
		}
		return nil, fmt.Errorf("failed to aggregate wallet stats: %w", err)
	}

	stats := &domain.WalletStats{TotalDonations: donations}
	if stats.AvailableBalance, err = decimal.NewFromString(balanceStr); err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	if stats.TotalReceived, err = decimal.NewFromString(incomeStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_income: %w", err)
	}
	if stats.TotalWithdrawn, err = decimal.NewFromString(expenseStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_expense: %w", err)
	}
	if stats.ThisMonthReceived, err = decimal.NewFromString(monthStr); err != nil {
		return nil, fmt.Errorf("failed to parse this-month total: %w", err)
	}

	return stats, nil
}

// lockWalletByID loads a wallet under FOR UPDATE inside dbTx
func lockWalletByID(ctx context.Context, dbTx *sql.Tx, walletID uuid.UUID) (*domain.FundraiserWallet, error) {
	query := `SELECT ` + walletColumns + ` FROM fundraiser_wallets WHERE id = $1 FOR UPDATE`

	w, err := scanWallet(dbTx.QueryRowContext(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("wallet %s: %w", walletID, domain.ErrWalletNotFound)
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return w, nil
}

// lockWalletByOwner loads a wallet by its owner under FOR UPDATE inside dbTx
func lockWalletByOwner(ctx context.Context, dbTx *sql.Tx, ownerID uuid.UUID) (*domain.FundraiserWallet, error) {
	query := `SELECT ` + walletColumns + ` FROM fundraiser_wallets WHERE owner_id = $1 FOR UPDATE`

	w, err := scanWallet(dbTx.QueryRowContext(ctx, query, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("wallet for owner %s: %w", ownerID, domain.ErrWalletNotFound)
		}
		return nil, fmt.Errorf("failed to lock wallet by owner: %w", err)
	}
	return w, nil
}

// writeWalletMutation persists the updated aggregates and the ledger
// entry produced by FundraiserWallet.Apply within dbTx
func writeWalletMutation(ctx context.Context, dbTx *sql.Tx, w *domain.FundraiserWallet, entry *domain.WalletTransaction) error {
	updateQuery := `
		UPDATE fundraiser_wallets
		SET balance = $1, total_income = $2, total_expense = $3
		WHERE id = $4
	`

	_, err := dbTx.ExecContext(ctx, updateQuery,
		w.Balance.String(),
		w.TotalIncome.String(),
		w.TotalExpense.String(),
		w.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet aggregates: %w", err)
	}

	insertQuery := `
		INSERT INTO wallet_transactions
			(id, wallet_id, disbursement_id, amount, type, balance_before, balance_after, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var disbursementID interface{}
	if entry.DisbursementID != nil {
		disbursementID = *entry.DisbursementID
	}

	_, err = dbTx.ExecContext(ctx, insertQuery,
		entry.ID,
		entry.WalletID,
		disbursementID,
		entry.Amount.String(),
		string(entry.Type),
		entry.BalanceBefore.String(),
		entry.BalanceAfter.String(),
		entry.Description,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert wallet transaction: %w", err)
	}

	return nil
}

func scanWallet(row rowScanner) (*domain.FundraiserWallet, error) {
	var w domain.FundraiserWallet
	var balanceStr, incomeStr, expenseStr string

	err := row.Scan(
		&w.ID,
		&w.OwnerID,
		&w.WalletType,
		&balanceStr,
		&incomeStr,
		&expenseStr,
	)
	if err != nil {
		return nil, err
	}

	if w.Balance, err = decimal.NewFromString(balanceStr); err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	if w.TotalIncome, err = decimal.NewFromString(incomeStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_income: %w", err)
	}
	if w.TotalExpense, err = decimal.NewFromString(expenseStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_expense: %w", err)
	}

	return &w, nil
}
