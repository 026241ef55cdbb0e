package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestStatus represents the lifecycle state of an expense request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusApproved  RequestStatus = "APPROVED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusDisbursed RequestStatus = "DISBURSED"
)

// ExpenseType represents the kind of operation expense being requested
type ExpenseType string

const (
	ExpenseTypeCooking  ExpenseType = "COOKING"
	ExpenseTypeDelivery ExpenseType = "DELIVERY"
)

// RequestType tags which request table a disbursement settles
type RequestType string

const (
	RequestTypeOperation  RequestType = "OPERATION"
	RequestTypeIngredient RequestType = "INGREDIENT"
)

// RequestSortOrder represents the supported list sort orders
type RequestSortOrder string

const (
	SortStatusPendingFirst RequestSortOrder = "STATUS_PENDING_FIRST"
	SortNewestFirst        RequestSortOrder = "NEWEST_FIRST"
	SortOldestFirst        RequestSortOrder = "OLDEST_FIRST"
)

// CanTransitionTo reports whether the status machine permits moving
// from s to next. PENDING may move to APPROVED or REJECTED; APPROVED
// may move to DISBURSED. REJECTED and DISBURSED are terminal.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case RequestStatusPending:
		return next == RequestStatusApproved || next == RequestStatusRejected
	case RequestStatusApproved:
		return next == RequestStatusDisbursed
	default:
		return false
	}
}

// OperationRequest is a staff-submitted request for reimbursement of a
// cooking or delivery expense against a campaign phase.
// Mutated only via status transitions; never deleted.
type OperationRequest struct {
	ID              uuid.UUID
	PhaseID         uuid.UUID
	RequesterID     uuid.UUID
	ExpenseType     ExpenseType
	Title           string
	TotalCost       decimal.Decimal
	Status          RequestStatus
	AdminNote       *string
	CreatedAt       time.Time
	ChangedStatusAt *time.Time
}

// Validate ensures the operation request adheres to domain rules
func (r *OperationRequest) Validate() error {
	if r.Title == "" {
		return errors.New("operation request title cannot be empty")
	}
	if r.ExpenseType != ExpenseTypeCooking && r.ExpenseType != ExpenseTypeDelivery {
		return errors.New("expense type must be COOKING or DELIVERY")
	}
	if r.TotalCost.LessThanOrEqual(decimal.Zero) {
		return errors.New("total cost must be positive")
	}
	return nil
}

// Transition moves the request to next, stamping ChangedStatusAt and
// storing the admin note. Illegal moves return ErrInvalidTransition.
func (r *OperationRequest) Transition(next RequestStatus, adminNote *string, at time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	r.Status = next
	r.ChangedStatusAt = &at
	if adminNote != nil {
		r.AdminNote = adminNote
	}
	return nil
}

// IngredientRequest is a staff-submitted, itemized request for
// ingredient-purchase funds. Same lifecycle as OperationRequest but the
// total cost is derived from its line items.
type IngredientRequest struct {
	ID              uuid.UUID
	PhaseID         uuid.UUID
	KitchenStaffID  uuid.UUID
	TotalCost       decimal.Decimal
	Status          RequestStatus
	AdminNote       *string
	Items           []IngredientRequestItem
	CreatedAt       time.Time
	ChangedStatusAt *time.Time
}

// IngredientRequestItem is a single line item of an ingredient request
type IngredientRequestItem struct {
	ID         uuid.UUID
	RequestID  uuid.UUID
	Name       string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Supplier   string
}

// Validate ensures the ingredient request adheres to domain rules.
// TotalCost must equal the sum of the line item totals, and each line
// item total must equal quantity times unit price.
func (r *IngredientRequest) Validate() error {
	if len(r.Items) == 0 {
		return errors.New("ingredient request must have at least one item")
	}

	sum := decimal.Zero
	for _, item := range r.Items {
		if item.Name == "" {
			return errors.New("ingredient request item name cannot be empty")
		}
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return errors.New("ingredient request item quantity must be positive")
		}
		if item.UnitPrice.LessThan(decimal.Zero) {
			return errors.New("ingredient request item unit price cannot be negative")
		}
		if !item.TotalPrice.Equal(item.Quantity.Mul(item.UnitPrice)) {
			return errors.New("ingredient request item total must equal quantity times unit price")
		}
		sum = sum.Add(item.TotalPrice)
	}

	if !r.TotalCost.Equal(sum) {
		return errors.New("ingredient request total cost must equal the sum of its items")
	}
	return nil
}

// Transition moves the request to next, stamping ChangedStatusAt and
// storing the admin note. Illegal moves return ErrInvalidTransition.
func (r *IngredientRequest) Transition(next RequestStatus, adminNote *string, at time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	r.Status = next
	r.ChangedStatusAt = &at
	if adminNote != nil {
		r.AdminNote = adminNote
	}
	return nil
}

// RequestStats holds per-status counts for a request collection
type RequestStats struct {
	Pending   int
	Approved  int
	Rejected  int
	Disbursed int
}

// Total returns the number of requests across all statuses
func (s RequestStats) Total() int {
	return s.Pending + s.Approved + s.Rejected + s.Disbursed
}
