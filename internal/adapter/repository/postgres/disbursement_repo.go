package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/bodicode/foodfund-backend/internal/domain"
)

// pqUniqueViolation is the PostgreSQL error code for unique_violation
const pqUniqueViolation = "23505"

// disbursementRepository implements domain.DisbursementRepository
type disbursementRepository struct {
	db *DB
}

// NewDisbursementRepository creates a new disbursement repository
func NewDisbursementRepository(db *DB) domain.DisbursementRepository {
	return &disbursementRepository{db: db}
}

const disbursementColumns = `
	id, phase_id, request_id, request_type, amount, proof_ref,
	status, receiver_id, created_at, completed_at
`

// Create writes the disbursement, flips the settled request from
// APPROVED to DISBURSED and credits the receiver's wallet, all inside
// one database transaction. Duplicate payouts die on the unique index
// over (request_id, request_type) rather than on a read-then-write
// check, so concurrent calls fail deterministically.
func (r *disbursementRepository) Create(ctx context.Context, d *domain.Disbursement, description string) (*domain.WalletTransaction, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	insertQuery := `
		INSERT INTO disbursements
			(id, phase_id, request_id, request_type, amount, proof_ref, status, receiver_id, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = dbTx.ExecContext(ctx, insertQuery,
		d.ID,
		d.PhaseID,
		d.RequestID,
		string(d.RequestType),
		d.Amount.String(),
		d.ProofRef,
		string(d.Status),
		d.ReceiverID,
		d.CreatedAt,
		d.CompletedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, domain.ErrAlreadyDisbursed
		}
		return nil, fmt.Errorf("failed to insert disbursement: %w", err)
	}

	// One-way door: the request must still be APPROVED at commit time
	if err := r.markRequestDisbursed(ctx, dbTx, d); err != nil {
		return nil, err
	}

	entry, err := r.creditReceiverWallet(ctx, dbTx, d, description)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entry, nil
}

// markRequestDisbursed performs the guarded APPROVED -> DISBURSED flip
// on the request table matching the disbursement's request type
func (r *disbursementRepository) markRequestDisbursed(ctx context.Context, dbTx *sql.Tx, d *domain.Disbursement) error {
	table := "operation_requests"
	if d.RequestType == domain.RequestTypeIngredient {
		table = "ingredient_requests"
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, changed_status_at = $2
		WHERE id = $3 AND status = $4
	`, table)

	result, err := dbTx.ExecContext(ctx, query,
		string(domain.RequestStatusDisbursed),
		d.CreatedAt,
		d.RequestID,
		string(domain.RequestStatusApproved),
	)
	if err != nil {
		return fmt.Errorf("failed to mark request disbursed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrRequestNotApproved
	}

	return nil
}

// creditReceiverWallet locks the payee's wallet row, applies the credit
// through the domain rules and persists both the aggregate update and
// the ledger entry
func (r *disbursementRepository) creditReceiverWallet(ctx context.Context, dbTx *sql.Tx, d *domain.Disbursement, description string) (*domain.WalletTransaction, error) {
	w, err := lockWalletByOwner(ctx, dbTx, d.ReceiverID)
	if err != nil {
		return nil, err
	}

	entry, err := w.Apply(d.Amount, domain.TxTypeIncomingTransfer, description, d.CreatedAt)
	if err != nil {
		return nil, err
	}
	entry.DisbursementID = &d.ID

	if err := writeWalletMutation(ctx, dbTx, w, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetByID retrieves a disbursement by its ID
func (r *disbursementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Disbursement, error) {
	query := `SELECT ` + disbursementColumns + ` FROM disbursements WHERE id = $1`

	d, err := scanDisbursement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("disbursement %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get disbursement by ID: %w", err)
	}

	return d, nil
}

// FindByRequest resolves the disbursement settling a request. Served by
// the unique index on (request_id, request_type), not a scan.
func (r *disbursementRepository) FindByRequest(ctx context.Context, requestID uuid.UUID, requestType domain.RequestType) (*domain.Disbursement, error) {
	query := `SELECT ` + disbursementColumns + ` FROM disbursements WHERE request_id = $1 AND request_type = $2`

	d, err := scanDisbursement(r.db.QueryRowContext(ctx, query, requestID, string(requestType)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("disbursement for request %s: %w", requestID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find disbursement by request: %w", err)
	}

	return d, nil
}

// List retrieves disbursements matching the filter, newest first, along
// with the total match count for pagination
func (r *disbursementRepository) List(ctx context.Context, filter domain.DisbursementFilter, limit, page int) ([]*domain.Disbursement, int, error) {
	where := " WHERE 1=1"
	args := make([]interface{}, 0)

	if filter.PhaseID != nil {
		args = append(args, *filter.PhaseID)
		where += fmt.Sprintf(" AND phase_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.TransactionType != nil {
		args = append(args, string(*filter.TransactionType))
		where += fmt.Sprintf(` AND id IN (
			SELECT disbursement_id FROM wallet_transactions
			WHERE disbursement_id IS NOT NULL AND type = $%d
		)`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM disbursements` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count disbursements: %w", err)
	}

	listQuery := `SELECT ` + disbursementColumns + ` FROM disbursements` + where + " ORDER BY created_at DESC"
	args = append(args, limit)
	listQuery += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, (page-1)*limit)
	listQuery += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list disbursements: %w", err)
	}
	defer rows.Close()

	disbursements := make([]*domain.Disbursement, 0)
	for rows.Next() {
		d, err := scanDisbursement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan disbursement: %w", err)
		}
		disbursements = append(disbursements, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate disbursements: %w", err)
	}

	return disbursements, total, nil
}

func scanDisbursement(row rowScanner) (*domain.Disbursement, error) {
	var d domain.Disbursement
	var amountStr string
	var completedAt sql.NullTime

	err := row.Scan(
		&d.ID,
		&d.PhaseID,
		&d.RequestID,
		&d.RequestType,
		&amountStr,
		&d.ProofRef,
		&d.Status,
		&d.ReceiverID,
		&d.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	d.Amount = amount

	if completedAt.Valid {
		at := completedAt.Time
		d.CompletedAt = &at
	}

	return &d, nil
}
