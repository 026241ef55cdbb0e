package disbursement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bodicode/foodfund-backend/internal/domain"
)

// CreateDisbursementInput represents the input for paying out an
// approved request
type CreateDisbursementInput struct {
	RequestID   uuid.UUID
	RequestType domain.RequestType
	PhaseID     uuid.UUID
	Amount      decimal.Decimal
	ProofRef    string
}

// Service is the disbursement ledger: it pays out approved requests and
// feeds the resulting credit into the payee's wallet.
type Service struct {
	DisbursementRepo domain.DisbursementRepository
	OperationRepo    domain.OperationRequestRepository
	IngredientRepo   domain.IngredientRequestRepository
	WalletRepo       domain.WalletRepository
}

// NewService creates a new disbursement ledger Service instance
func NewService(
	disbursementRepo domain.DisbursementRepository,
	operationRepo domain.OperationRequestRepository,
	ingredientRepo domain.IngredientRequestRepository,
	walletRepo domain.WalletRepository,
) *Service {
	return &Service{
		DisbursementRepo: disbursementRepo,
		OperationRepo:    operationRepo,
		IngredientRepo:   ingredientRepo,
		WalletRepo:       walletRepo,
	}
}

// CreateDisbursement pays out an approved request.
// Preconditions: the request exists and is APPROVED, the amount equals
// the request's total cost (no partial payouts), and the proof document
// is already uploaded. The repository then performs the insert, the
// APPROVED -> DISBURSED flip and the wallet credit in one database
// transaction; the unique index on (request_id, request_type) makes a
// retry of a successful call fail with ErrAlreadyDisbursed instead of
// paying twice.
func (s *Service) CreateDisbursement(ctx context.Context, input CreateDisbursementInput) (*domain.Disbursement, error) {
	receiverID, totalCost, status, err := s.loadRequest(ctx, input.RequestID, input.RequestType)
	if err != nil {
		return nil, err
	}

	if status != domain.RequestStatusApproved {
		return nil, domain.ErrRequestNotApproved
	}

	if !input.Amount.Equal(totalCost) {
		return nil, domain.ErrAmountMismatch
	}

	now := time.Now()
	d := &domain.Disbursement{
		ID:          uuid.New(),
		PhaseID:     input.PhaseID,
		RequestID:   input.RequestID,
		RequestType: input.RequestType,
		Amount:      input.Amount,
		ProofRef:    input.ProofRef,
		Status:      domain.DisbursementStatusCompleted,
		ReceiverID:  receiverID,
		CreatedAt:   now,
		CompletedAt: &now,
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	description := fmt.Sprintf("Disbursement for %s request %s",
		requestTypeLabel(input.RequestType), input.RequestID)

	if _, err := s.DisbursementRepo.Create(ctx, d, description); err != nil {
		return nil, err
	}

	return d, nil
}

// loadRequest fetches either request kind and reduces it to the fields
// the ledger cares about: who gets paid, what it costs, where it stands.
func (s *Service) loadRequest(ctx context.Context, id uuid.UUID, requestType domain.RequestType) (uuid.UUID, decimal.Decimal, domain.RequestStatus, error) {
	switch requestType {
	case domain.RequestTypeOperation:
		req, err := s.OperationRepo.GetByID(ctx, id)
		if err != nil {
			return uuid.Nil, decimal.Zero, "", err
		}
		return req.RequesterID, req.TotalCost, req.Status, nil
	case domain.RequestTypeIngredient:
		req, err := s.IngredientRepo.GetByID(ctx, id)
		if err != nil {
			return uuid.Nil, decimal.Zero, "", err
		}
		return req.KitchenStaffID, req.TotalCost, req.Status, nil
	default:
		return uuid.Nil, decimal.Zero, "", errors.New("request type must be OPERATION or INGREDIENT")
	}
}

func requestTypeLabel(t domain.RequestType) string {
	if t == domain.RequestTypeIngredient {
		return "ingredient"
	}
	return "operation"
}

// GetByID retrieves a disbursement by its ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Disbursement, error) {
	return s.DisbursementRepo.GetByID(ctx, id)
}

// FindByRequest resolves the disbursement paying a request without a
// stored back-pointer; the repository serves it from the
// (request_id, request_type) index
func (s *Service) FindByRequest(ctx context.Context, requestID uuid.UUID, requestType domain.RequestType) (*domain.Disbursement, error) {
	return s.DisbursementRepo.FindByRequest(ctx, requestID, requestType)
}

// ListResult is one page of disbursements plus the total match count
type ListResult struct {
	Items []*domain.Disbursement
	Total int
}

// List retrieves disbursements matching the filter, newest first.
// page is 1-based; limit defaults when non-positive.
func (s *Service) List(ctx context.Context, filter domain.DisbursementFilter, limit, page int) (*ListResult, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	items, total, err := s.DisbursementRepo.List(ctx, filter, limit, page)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

const defaultPageSize = 20
