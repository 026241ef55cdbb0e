package domain

import "errors"

// Sentinel errors shared across usecases, repositories and the HTTP
// adapter. Repositories wrap these with context via fmt.Errorf("...: %w")
// so callers can still match with errors.Is.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrValidation wraps domain rule violations on entity construction
	// so the transport layer can report them as client errors.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when a status change is not
	// permitted by the request lifecycle machine, including the case
	// where a concurrent admin already moved the request out of PENDING.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrRequestNotApproved is returned when a disbursement targets a
	// request that is not in APPROVED status.
	ErrRequestNotApproved = errors.New("request is not approved")

	// ErrAmountMismatch is returned when a disbursement amount does not
	// equal the request's total cost. Partial payouts are not supported.
	ErrAmountMismatch = errors.New("disbursement amount does not match request total cost")

	// ErrAlreadyDisbursed is returned when a disbursement already exists
	// for the (request, request type) pair. Enforced by a unique index,
	// so concurrent duplicates fail deterministically.
	ErrAlreadyDisbursed = errors.New("request has already been disbursed")

	// ErrWalletNotFound is returned when no wallet exists for the owner.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientBalance is returned when a debit would drive the
	// wallet balance negative. Wallets have no overdraft.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)
