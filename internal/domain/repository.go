package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationRequestFilter narrows operation request list queries.
// Nil fields are ignored.
type OperationRequestFilter struct {
	Status      *RequestStatus
	ExpenseType *ExpenseType
	CampaignID  *uuid.UUID
	PhaseID     *uuid.UUID
}

// IngredientRequestFilter narrows ingredient request list queries.
// Nil fields are ignored.
type IngredientRequestFilter struct {
	Status     *RequestStatus
	CampaignID *uuid.UUID
	PhaseID    *uuid.UUID
}

// OperationRequestRepository defines persistence for operation requests
type OperationRequestRepository interface {
	// Create persists a new request
	Create(ctx context.Context, r *OperationRequest) error

	// GetByID retrieves a request by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*OperationRequest, error)

	// UpdateStatus flips the request from one status to another with a
	// guarded update (WHERE status = from), stamping changed_status_at
	// and storing the admin note. If the request is no longer in the
	// expected status it returns ErrInvalidTransition, so exactly one of
	// two racing callers wins. Returns ErrNotFound for an unknown ID.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to RequestStatus, adminNote *string, at time.Time) error

	// List retrieves requests matching the filter in the given sort
	// order, paginated by limit and offset
	List(ctx context.Context, filter OperationRequestFilter, sort RequestSortOrder, limit, offset int) ([]*OperationRequest, error)

	// CountByStatus returns per-status counts computed by the store
	CountByStatus(ctx context.Context) (RequestStats, error)
}

// IngredientRequestRepository defines persistence for ingredient requests
type IngredientRequestRepository interface {
	// Create persists a new request together with its line items
	Create(ctx context.Context, r *IngredientRequest) error

	// GetByID retrieves a request and its line items by ID
	GetByID(ctx context.Context, id uuid.UUID) (*IngredientRequest, error)

	// UpdateStatus behaves like OperationRequestRepository.UpdateStatus
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to RequestStatus, adminNote *string, at time.Time) error

	// List retrieves requests matching the filter in the given sort
	// order, paginated by limit and offset
	List(ctx context.Context, filter IngredientRequestFilter, sort RequestSortOrder, limit, offset int) ([]*IngredientRequest, error)

	// CountByStatus returns per-status counts computed by the store
	CountByStatus(ctx context.Context) (RequestStats, error)
}

// DisbursementRepository defines persistence for disbursements
type DisbursementRepository interface {
	// Create persists the disbursement, flips the settled request from
	// APPROVED to DISBURSED and credits the receiver's wallet, all in a
	// single database transaction. The unique index on
	// (request_id, request_type) turns a duplicate insert into
	// ErrAlreadyDisbursed; the guarded request flip failing rolls the
	// whole transaction back with ErrRequestNotApproved. Returns the
	// wallet ledger entry produced by the credit.
	Create(ctx context.Context, d *Disbursement, description string) (*WalletTransaction, error)

	// GetByID retrieves a disbursement by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Disbursement, error)

	// FindByRequest resolves the disbursement settling a request, using
	// the (request_id, request_type) index rather than a scan. Returns
	// ErrNotFound when the request has not been disbursed.
	FindByRequest(ctx context.Context, requestID uuid.UUID, requestType RequestType) (*Disbursement, error)

	// List retrieves disbursements matching the filter, newest first,
	// paginated by limit and page (1-based). Also returns the total
	// number of matching rows.
	List(ctx context.Context, filter DisbursementFilter, limit, page int) ([]*Disbursement, int, error)
}

// WalletRepository defines persistence for wallets and their ledgers
type WalletRepository interface {
	// GetByOwner retrieves the wallet belonging to a user.
	// Returns ErrWalletNotFound if the user has no wallet.
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*FundraiserWallet, error)

	// List retrieves wallets ordered by owner, paginated by skip/take
	List(ctx context.Context, skip, take int) ([]*FundraiserWallet, error)

	// ApplyTransaction applies a credit or debit to the wallet: the
	// wallet row is locked, FundraiserWallet.Apply computes the new
	// aggregates and the ledger entry, and both are written in the same
	// database transaction. BalanceBefore/BalanceAfter are therefore
	// captured atomically with the mutation.
	ApplyTransaction(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, txType WalletTransactionType, description string) (*WalletTransaction, error)

	// ListTransactions retrieves a wallet's ledger entries, newest
	// first, paginated by skip/limit
	ListTransactions(ctx context.Context, walletID uuid.UUID, skip, limit int) ([]*WalletTransaction, error)

	// Stats aggregates the wallet's financial overview
	Stats(ctx context.Context, walletID uuid.UUID) (*WalletStats, error)
}
