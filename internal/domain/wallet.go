package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletType represents the kind of wallet
type WalletType string

const (
	WalletTypeFundraiser   WalletType = "FUNDRAISER"
	WalletTypeOrganization WalletType = "ORGANIZATION"
)

// WalletTransactionType classifies a wallet ledger entry.
// INCOMING_TRANSFER, SURPLUS_TRANSFER and ADMIN_ADJUSTMENT are credits;
// every other type is a debit.
type WalletTransactionType string

const (
	TxTypeIncomingTransfer WalletTransactionType = "INCOMING_TRANSFER"
	TxTypeSurplusTransfer  WalletTransactionType = "SURPLUS_TRANSFER"
	TxTypeAdminAdjustment  WalletTransactionType = "ADMIN_ADJUSTMENT"
	TxTypeWithdrawal       WalletTransactionType = "WITHDRAWAL"
	TxTypeOutgoingTransfer WalletTransactionType = "OUTGOING_TRANSFER"
	TxTypeServiceFee       WalletTransactionType = "SERVICE_FEE"
)

// IsCredit reports whether the transaction type increases the balance
func (t WalletTransactionType) IsCredit() bool {
	switch t {
	case TxTypeIncomingTransfer, TxTypeSurplusTransfer, TxTypeAdminAdjustment:
		return true
	default:
		return false
	}
}

// FundraiserWallet holds the running balance and income/expense
// aggregates for a campaign's fund recipient.
// Invariant: Balance == TotalIncome - TotalExpense after every applied
// transaction. Apply maintains this by construction.
type FundraiserWallet struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	WalletType   WalletType
	Balance      decimal.Decimal
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
}

// WalletTransaction is a single ledger entry against a wallet.
// DisbursementID is a weak back-reference to the disbursement that
// caused the entry, nil for donation inflows and manual adjustments.
type WalletTransaction struct {
	ID             uuid.UUID
	WalletID       uuid.UUID
	DisbursementID *uuid.UUID
	Amount         decimal.Decimal
	Type           WalletTransactionType
	BalanceBefore  decimal.Decimal
	BalanceAfter   decimal.Decimal
	Description    string
	CreatedAt      time.Time
}

// Apply mutates the wallet with a transaction of the given type and
// returns the resulting ledger entry. Amount must be positive; credits
// increase Balance and TotalIncome, debits decrease Balance and increase
// TotalExpense. A debit that would drive Balance negative fails with
// ErrInsufficientBalance and leaves the wallet untouched.
func (w *FundraiserWallet) Apply(amount decimal.Decimal, txType WalletTransactionType, description string, at time.Time) (*WalletTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("wallet transaction amount must be positive")
	}

	before := w.Balance
	if txType.IsCredit() {
		w.Balance = w.Balance.Add(amount)
		w.TotalIncome = w.TotalIncome.Add(amount)
	} else {
		if w.Balance.LessThan(amount) {
			return nil, ErrInsufficientBalance
		}
		w.Balance = w.Balance.Sub(amount)
		w.TotalExpense = w.TotalExpense.Add(amount)
	}

	return &WalletTransaction{
		ID:            uuid.New(),
		WalletID:      w.ID,
		Amount:        amount,
		Type:          txType,
		BalanceBefore: before,
		BalanceAfter:  w.Balance,
		Description:   description,
		CreatedAt:     at,
	}, nil
}

// WalletStats aggregates a wallet's financial overview
type WalletStats struct {
	AvailableBalance  decimal.Decimal
	ThisMonthReceived decimal.Decimal
	TotalDonations    int
	TotalReceived     decimal.Decimal
	TotalWithdrawn    decimal.Decimal
}
