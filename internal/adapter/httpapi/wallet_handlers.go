package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/bodicode/foodfund-backend/internal/domain"
)

type walletDTO struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"ownerId"`
	WalletType   string    `json:"walletType"`
	Balance      string    `json:"balance"`
	TotalIncome  string    `json:"totalIncome"`
	TotalExpense string    `json:"totalExpense"`
}

func toWalletDTO(w *domain.FundraiserWallet) walletDTO {
	return walletDTO{
		ID:           w.ID,
		OwnerID:      w.OwnerID,
		WalletType:   string(w.WalletType),
		Balance:      w.Balance.String(),
		TotalIncome:  w.TotalIncome.String(),
		TotalExpense: w.TotalExpense.String(),
	}
}

type walletTransactionDTO struct {
	ID             uuid.UUID  `json:"id"`
	DisbursementID *uuid.UUID `json:"disbursementId,omitempty"`
	Amount         string     `json:"amount"`
	Type           string     `json:"type"`
	BalanceBefore  string     `json:"balanceBefore"`
	BalanceAfter   string     `json:"balanceAfter"`
	Description    string     `json:"description"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toWalletTransactionDTO(tx *domain.WalletTransaction) walletTransactionDTO {
	return walletTransactionDTO{
		ID:             tx.ID,
		DisbursementID: tx.DisbursementID,
		Amount:         tx.Amount.String(),
		Type:           string(tx.Type),
		BalanceBefore:  tx.BalanceBefore.String(),
		BalanceAfter:   tx.BalanceAfter.String(),
		Description:    tx.Description,
		CreatedAt:      tx.CreatedAt,
	}
}

type walletStatsDTO struct {
	AvailableBalance  string `json:"availableBalance"`
	ThisMonthReceived string `json:"thisMonthReceived"`
	TotalDonations    int    `json:"totalDonations"`
	TotalReceived     string `json:"totalReceived"`
	TotalWithdrawn    string `json:"totalWithdrawn"`
}

func (s *Server) handleListWallets(c *fiber.Ctx) error {
	wallets, err := s.WalletService.GetAllWallets(c.Context(),
		c.QueryInt("skip"), c.QueryInt("take"))
	if err != nil {
		return mapError(c, err)
	}

	dtos := make([]walletDTO, 0, len(wallets))
	for _, w := range wallets {
		dtos = append(dtos, toWalletDTO(w))
	}
	return c.JSON(fiber.Map{"items": dtos})
}

func (s *Server) handleGetWalletWithTransactions(c *fiber.Ctx) error {
	ownerID, err := uuid.Parse(c.Params("ownerId"))
	if err != nil {
		return badRequest(c, "invalid ownerId")
	}

	result, err := s.WalletService.GetWalletWithTransactions(c.Context(), ownerID,
		c.QueryInt("skip"), c.QueryInt("limit"))
	if err != nil {
		return mapError(c, err)
	}

	txs := make([]walletTransactionDTO, 0, len(result.Transactions))
	for _, tx := range result.Transactions {
		txs = append(txs, toWalletTransactionDTO(tx))
	}
	return c.JSON(fiber.Map{
		"wallet":       toWalletDTO(result.Wallet),
		"transactions": txs,
	})
}

func (s *Server) handleMyWalletStats(c *fiber.Ctx) error {
	ownerID, err := userIDFromHeader(c)
	if err != nil {
		return badRequest(c, "missing or invalid X-User-Id header")
	}

	stats, err := s.WalletService.GetStats(c.Context(), ownerID)
	if err != nil {
		return mapError(c, err)
	}

	return c.JSON(walletStatsDTO{
		AvailableBalance:  stats.AvailableBalance.String(),
		ThisMonthReceived: stats.ThisMonthReceived.String(),
		TotalDonations:    stats.TotalDonations,
		TotalReceived:     stats.TotalReceived.String(),
		TotalWithdrawn:    stats.TotalWithdrawn.String(),
	})
}
