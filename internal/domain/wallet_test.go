package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletTransactionType_IsCredit(t *testing.T) {
	credits := []WalletTransactionType{
		TxTypeIncomingTransfer,
		TxTypeSurplusTransfer,
		TxTypeAdminAdjustment,
	}
	debits := []WalletTransactionType{
		TxTypeWithdrawal,
		TxTypeOutgoingTransfer,
		TxTypeServiceFee,
		WalletTransactionType("ANYTHING_ELSE"),
	}

	for _, c := range credits {
		assert.True(t, c.IsCredit(), string(c))
	}
	for _, d := range debits {
		assert.False(t, d.IsCredit(), string(d))
	}
}

func TestWallet_Apply_Credit(t *testing.T) {
	w := &FundraiserWallet{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		WalletType: WalletTypeFundraiser,
	}

	entry, err := w.Apply(decimal.NewFromInt(500000), TxTypeIncomingTransfer, "disbursement payout", time.Now())

	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(500000)))
	assert.True(t, w.TotalIncome.Equal(decimal.NewFromInt(500000)))
	assert.True(t, w.TotalExpense.Equal(decimal.Zero))
	assert.True(t, entry.BalanceBefore.Equal(decimal.Zero))
	assert.True(t, entry.BalanceAfter.Equal(w.Balance))
	assert.Equal(t, w.ID, entry.WalletID)
}

func TestWallet_Apply_Debit(t *testing.T) {
	w := &FundraiserWallet{ID: uuid.New()}
	_, err := w.Apply(decimal.NewFromInt(800000), TxTypeIncomingTransfer, "donation", time.Now())
	require.NoError(t, err)

	entry, err := w.Apply(decimal.NewFromInt(300000), TxTypeWithdrawal, "bank withdrawal", time.Now())

	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(500000)))
	assert.True(t, w.TotalExpense.Equal(decimal.NewFromInt(300000)))
	assert.True(t, entry.BalanceBefore.Equal(decimal.NewFromInt(800000)))
	assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(500000)))
}

func TestWallet_Apply_DebitBelowZeroFails(t *testing.T) {
	w := &FundraiserWallet{ID: uuid.New()}
	_, err := w.Apply(decimal.NewFromInt(100), TxTypeIncomingTransfer, "donation", time.Now())
	require.NoError(t, err)

	_, err = w.Apply(decimal.NewFromInt(101), TxTypeWithdrawal, "overdraw attempt", time.Now())

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	// Wallet untouched on failure
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, w.TotalExpense.Equal(decimal.Zero))
}

func TestWallet_Apply_NonPositiveAmount(t *testing.T) {
	w := &FundraiserWallet{ID: uuid.New()}

	_, err := w.Apply(decimal.Zero, TxTypeIncomingTransfer, "nothing", time.Now())
	assert.Error(t, err)

	_, err = w.Apply(decimal.NewFromInt(-5), TxTypeIncomingTransfer, "negative", time.Now())
	assert.Error(t, err)
}

// After any sequence of applied transactions the ledger invariant
// Balance == TotalIncome - TotalExpense holds, and the last entry's
// BalanceAfter equals the wallet balance.
func TestWallet_Apply_InvariantOverSequence(t *testing.T) {
	w := &FundraiserWallet{ID: uuid.New()}

	sequence := []struct {
		amount int64
		txType WalletTransactionType
	}{
		{1_000_000, TxTypeIncomingTransfer},
		{250_000, TxTypeWithdrawal},
		{400_000, TxTypeSurplusTransfer},
		{100_000, TxTypeServiceFee},
		{50_000, TxTypeAdminAdjustment},
	}

	var last *WalletTransaction
	for _, step := range sequence {
		entry, err := w.Apply(decimal.NewFromInt(step.amount), step.txType, "step", time.Now())
		require.NoError(t, err)
		assert.True(t, w.Balance.Equal(w.TotalIncome.Sub(w.TotalExpense)),
			"balance %s != income %s - expense %s", w.Balance, w.TotalIncome, w.TotalExpense)
		last = entry
	}

	require.NotNil(t, last)
	assert.True(t, last.BalanceAfter.Equal(w.Balance))
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(1_100_000)))
}
