package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bodicode/foodfund-backend/internal/domain"
)

// operationRequestRepository implements domain.OperationRequestRepository
type operationRequestRepository struct {
	db *DB
}

// NewOperationRequestRepository creates a new operation request repository
func NewOperationRequestRepository(db *DB) domain.OperationRequestRepository {
	return &operationRequestRepository{db: db}
}

const operationRequestColumns = `
	id, phase_id, requester_id, expense_type, title, total_cost,
	status, admin_note, created_at, changed_status_at
`

// Create persists a new operation request
func (r *operationRequestRepository) Create(ctx context.Context, req *domain.OperationRequest) error {
	query := `
		INSERT INTO operation_requests
			(id, phase_id, requester_id, expense_type, title, total_cost, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.PhaseID,
		req.RequesterID,
		string(req.ExpenseType),
		req.Title,
		req.TotalCost.String(),
		string(req.Status),
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create operation request: %w", err)
	}

	return nil
}

// GetByID retrieves an operation request by its ID
func (r *operationRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OperationRequest, error) {
	query := `SELECT ` + operationRequestColumns + ` FROM operation_requests WHERE id = $1`

	req, err := scanOperationRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("operation request %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get operation request by ID: %w", err)
	}

	return req, nil
}

// UpdateStatus flips the request with a guarded update so that two
// racing admins are serialized: the row is only touched while it still
// holds the expected status, and the loser sees ErrInvalidTransition.
func (r *operationRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, adminNote *string, at time.Time) error {
	query := `
		UPDATE operation_requests
		SET status = $1, admin_note = COALESCE($2, admin_note), changed_status_at = $3
		WHERE id = $4 AND status = $5
	`

	result, err := r.db.ExecContext(ctx, query, string(to), adminNote, at, id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update operation request status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Either the request does not exist or it already left the
		// expected status; distinguish for the caller
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM operation_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check operation request existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("operation request %s: %w", id, domain.ErrNotFound)
		}
		return domain.ErrInvalidTransition
	}

	return nil
}

// List retrieves operation requests matching the filter
func (r *operationRequestRepository) List(ctx context.Context, filter domain.OperationRequestFilter, sort domain.RequestSortOrder, limit, offset int) ([]*domain.OperationRequest, error) {
	query := `SELECT ` + operationRequestColumns + ` FROM operation_requests WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.ExpenseType != nil {
		args = append(args, string(*filter.ExpenseType))
		query += fmt.Sprintf(" AND expense_type = $%d", len(args))
	}
	if filter.PhaseID != nil {
		args = append(args, *filter.PhaseID)
		query += fmt.Sprintf(" AND phase_id = $%d", len(args))
	}
	if filter.CampaignID != nil {
		args = append(args, *filter.CampaignID)
		query += fmt.Sprintf(" AND phase_id IN (SELECT id FROM campaign_phases WHERE campaign_id = $%d)", len(args))
	}

	query += " ORDER BY " + requestSortClause(sort)

	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list operation requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*domain.OperationRequest, 0)
	for rows.Next() {
		req, err := scanOperationRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operation requests: %w", err)
	}

	return requests, nil
}

// CountByStatus returns per-status counts computed by the store
func (r *operationRequestRepository) CountByStatus(ctx context.Context) (domain.RequestStats, error) {
	return countRequestsByStatus(ctx, r.db, "operation_requests")
}

// requestSortClause maps a sort order onto an ORDER BY body.
// STATUS_PENDING_FIRST surfaces pending requests, then recency.
func requestSortClause(sort domain.RequestSortOrder) string {
	switch sort {
	case domain.SortStatusPendingFirst:
		return "(status = 'PENDING') DESC, created_at DESC"
	case domain.SortOldestFirst:
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}

// countRequestsByStatus is shared by both request repositories; the
// table name comes from a fixed internal set, never from user input.
func countRequestsByStatus(ctx context.Context, db *DB, table string) (domain.RequestStats, error) {
	query := fmt.Sprintf(`SELECT status, COUNT(*) FROM %s GROUP BY status`, table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return domain.RequestStats{}, fmt.Errorf("failed to count %s by status: %w", table, err)
	}
	defer rows.Close()

	var stats domain.RequestStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return domain.RequestStats{}, fmt.Errorf("failed to scan status count: %w", err)
		}
		switch domain.RequestStatus(status) {
		case domain.RequestStatusPending:
			stats.Pending = count
		case domain.RequestStatusApproved:
			stats.Approved = count
		case domain.RequestStatusRejected:
			stats.Rejected = count
		case domain.RequestStatusDisbursed:
			stats.Disbursed = count
		}
	}
	if err := rows.Err(); err != nil {
		return domain.RequestStats{}, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	return stats, nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOperationRequest(row rowScanner) (*domain.OperationRequest, error) {
	var req domain.OperationRequest
	var totalCostStr string
	var adminNote sql.NullString
	var changedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.PhaseID,
		&req.RequesterID,
		&req.ExpenseType,
		&req.Title,
		&totalCostStr,
		&req.Status,
		&adminNote,
		&req.CreatedAt,
		&changedAt,
	)
	if err != nil {
		return nil, err
	}

	totalCost, err := decimal.NewFromString(totalCostStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total_cost: %w", err)
	}
	req.TotalCost = totalCost

	if adminNote.Valid {
		note := adminNote.String
		req.AdminNote = &note
	}
	if changedAt.Valid {
		at := changedAt.Time
		req.ChangedStatusAt = &at
	}

	return &req, nil
}
