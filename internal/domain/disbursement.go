package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DisbursementStatus represents the settlement state of a disbursement
type DisbursementStatus string

const (
	DisbursementStatusPending   DisbursementStatus = "PENDING"
	DisbursementStatusCompleted DisbursementStatus = "COMPLETED"
	DisbursementStatusFailed    DisbursementStatus = "FAILED"
)

// Disbursement (inflow transaction) records an admin paying out an
// approved request. Its creation is what flips the request to DISBURSED
// and credits the payee's wallet. At most one disbursement may exist per
// (RequestID, RequestType); the storage layer enforces this with a
// unique index rather than a read-then-write check.
type Disbursement struct {
	ID          uuid.UUID
	PhaseID     uuid.UUID
	RequestID   uuid.UUID
	RequestType RequestType
	Amount      decimal.Decimal
	ProofRef    string // Reference to an already-uploaded proof document
	Status      DisbursementStatus
	ReceiverID  uuid.UUID
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Validate ensures the disbursement adheres to domain rules
func (d *Disbursement) Validate() error {
	if d.RequestID == uuid.Nil {
		return errors.New("disbursement must reference a request")
	}
	if d.RequestType != RequestTypeOperation && d.RequestType != RequestTypeIngredient {
		return errors.New("disbursement request type must be OPERATION or INGREDIENT")
	}
	if d.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("disbursement amount must be positive")
	}
	if d.ProofRef == "" {
		return errors.New("disbursement must reference an uploaded proof document")
	}
	if d.Status != DisbursementStatusPending &&
		d.Status != DisbursementStatusCompleted &&
		d.Status != DisbursementStatusFailed {
		return errors.New("disbursement status must be PENDING, COMPLETED, or FAILED")
	}
	return nil
}

// DisbursementFilter narrows disbursement list queries
type DisbursementFilter struct {
	PhaseID         *uuid.UUID
	Status          *DisbursementStatus
	TransactionType *WalletTransactionType
	From            *time.Time
	To              *time.Time
}
