package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bodicode/foodfund-backend/internal/domain"
)

// CreateOperationRequestInput represents the input for filing an
// operation (cooking/delivery) expense request
type CreateOperationRequestInput struct {
	PhaseID     uuid.UUID
	RequesterID uuid.UUID
	ExpenseType domain.ExpenseType
	Title       string
	TotalCost   decimal.Decimal
}

// IngredientItemInput is one line of an ingredient request
type IngredientItemInput struct {
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Supplier  string
}

// CreateIngredientRequestInput represents the input for filing an
// itemized ingredient-purchase request
type CreateIngredientRequestInput struct {
	PhaseID        uuid.UUID
	KitchenStaffID uuid.UUID
	Items          []IngredientItemInput
}

// Service owns the request lifecycle for both request kinds.
// Requests always start PENDING; admins move them to APPROVED or
// REJECTED; the disbursement ledger alone moves APPROVED to DISBURSED.
type Service struct {
	OperationRepo  domain.OperationRequestRepository
	IngredientRepo domain.IngredientRequestRepository
}

// NewService creates a new request lifecycle Service instance
func NewService(operationRepo domain.OperationRequestRepository, ingredientRepo domain.IngredientRequestRepository) *Service {
	return &Service{
		OperationRepo:  operationRepo,
		IngredientRepo: ingredientRepo,
	}
}

// CreateOperationRequest files a new operation expense request at PENDING
func (s *Service) CreateOperationRequest(ctx context.Context, input CreateOperationRequestInput) (*domain.OperationRequest, error) {
	req := &domain.OperationRequest{
		ID:          uuid.New(),
		PhaseID:     input.PhaseID,
		RequesterID: input.RequesterID,
		ExpenseType: input.ExpenseType,
		Title:       input.Title,
		TotalCost:   input.TotalCost,
		Status:      domain.RequestStatusPending,
		CreatedAt:   time.Now(),
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.OperationRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// CreateIngredientRequest files a new itemized ingredient request at
// PENDING. The total cost is derived from the line items, never taken
// from the caller.
func (s *Service) CreateIngredientRequest(ctx context.Context, input CreateIngredientRequestInput) (*domain.IngredientRequest, error) {
	reqID := uuid.New()
	items := make([]domain.IngredientRequestItem, 0, len(input.Items))
	total := decimal.Zero

	for _, in := range input.Items {
		lineTotal := in.Quantity.Mul(in.UnitPrice)
		items = append(items, domain.IngredientRequestItem{
			ID:         uuid.New(),
			RequestID:  reqID,
			Name:       in.Name,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TotalPrice: lineTotal,
			Supplier:   in.Supplier,
		})
		total = total.Add(lineTotal)
	}

	req := &domain.IngredientRequest{
		ID:             reqID,
		PhaseID:        input.PhaseID,
		KitchenStaffID: input.KitchenStaffID,
		TotalCost:      total,
		Status:         domain.RequestStatusPending,
		Items:          items,
		CreatedAt:      time.Now(),
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.IngredientRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// UpdateOperationRequestStatus moves a PENDING operation request to
// APPROVED or REJECTED. The repository's guarded update serializes
// racing admins: the loser gets ErrInvalidTransition because the
// request is no longer PENDING.
func (s *Service) UpdateOperationRequestStatus(ctx context.Context, id uuid.UUID, newStatus domain.RequestStatus, adminNote *string) (*domain.OperationRequest, error) {
	if err := validateAdminTransition(newStatus); err != nil {
		return nil, err
	}

	if err := s.OperationRepo.UpdateStatus(ctx, id, domain.RequestStatusPending, newStatus, adminNote, time.Now()); err != nil {
		return nil, err
	}

	return s.OperationRepo.GetByID(ctx, id)
}

// UpdateIngredientRequestStatus moves a PENDING ingredient request to
// APPROVED or REJECTED with the same serialization guarantee.
func (s *Service) UpdateIngredientRequestStatus(ctx context.Context, id uuid.UUID, newStatus domain.RequestStatus, adminNote *string) (*domain.IngredientRequest, error) {
	if err := validateAdminTransition(newStatus); err != nil {
		return nil, err
	}

	if err := s.IngredientRepo.UpdateStatus(ctx, id, domain.RequestStatusPending, newStatus, adminNote, time.Now()); err != nil {
		return nil, err
	}

	return s.IngredientRepo.GetByID(ctx, id)
}

// validateAdminTransition rejects targets admins may not set directly.
// DISBURSED is reserved for the disbursement ledger.
func validateAdminTransition(newStatus domain.RequestStatus) error {
	if newStatus != domain.RequestStatusApproved && newStatus != domain.RequestStatusRejected {
		return domain.ErrInvalidTransition
	}
	return nil
}

// ListOperationRequests retrieves operation requests matching the filter
func (s *Service) ListOperationRequests(ctx context.Context, filter domain.OperationRequestFilter, sort domain.RequestSortOrder, limit, offset int) ([]*domain.OperationRequest, error) {
	return s.OperationRepo.List(ctx, filter, sort, normalizeLimit(limit), maxInt(offset, 0))
}

// ListIngredientRequests retrieves ingredient requests matching the filter
func (s *Service) ListIngredientRequests(ctx context.Context, filter domain.IngredientRequestFilter, sort domain.RequestSortOrder, limit, offset int) ([]*domain.IngredientRequest, error) {
	return s.IngredientRepo.List(ctx, filter, sort, normalizeLimit(limit), maxInt(offset, 0))
}

// OperationRequestStats returns per-status counts computed by the store
func (s *Service) OperationRequestStats(ctx context.Context) (domain.RequestStats, error) {
	return s.OperationRepo.CountByStatus(ctx)
}

// IngredientRequestStats returns per-status counts computed by the store
func (s *Service) IngredientRequestStats(ctx context.Context) (domain.RequestStats, error) {
	return s.IngredientRepo.CountByStatus(ctx)
}

// StatsFromOperationRequests computes per-status counts from an already
// loaded result set. A client-side fallback for when the store is
// unreachable; agrees with OperationRequestStats whenever the slice is
// not a partial page.
func StatsFromOperationRequests(requests []*domain.OperationRequest) domain.RequestStats {
	var stats domain.RequestStats
	for _, r := range requests {
		tallyStatus(&stats, r.Status)
	}
	return stats
}

// StatsFromIngredientRequests is the ingredient-side counterpart of
// StatsFromOperationRequests
func StatsFromIngredientRequests(requests []*domain.IngredientRequest) domain.RequestStats {
	var stats domain.RequestStats
	for _, r := range requests {
		tallyStatus(&stats, r.Status)
	}
	return stats
}

func tallyStatus(stats *domain.RequestStats, status domain.RequestStatus) {
	switch status {
	case domain.RequestStatusPending:
		stats.Pending++
	case domain.RequestStatusApproved:
		stats.Approved++
	case domain.RequestStatusRejected:
		stats.Rejected++
	case domain.RequestStatusDisbursed:
		stats.Disbursed++
	}
}

const defaultListLimit = 20

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ErrUnknownSortOrder is kept close to the sort orders it guards
var ErrUnknownSortOrder = errors.New("unknown sort order")

// ParseSortOrder maps a wire value onto a RequestSortOrder, defaulting
// to NEWEST_FIRST for an empty value
func ParseSortOrder(s string) (domain.RequestSortOrder, error) {
	switch domain.RequestSortOrder(s) {
	case domain.SortStatusPendingFirst, domain.SortNewestFirst, domain.SortOldestFirst:
		return domain.RequestSortOrder(s), nil
	case "":
		return domain.SortNewestFirst, nil
	default:
		return "", ErrUnknownSortOrder
	}
}
