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

// ingredientRequestRepository implements domain.IngredientRequestRepository
type ingredientRequestRepository struct {
	db *DB
}

// NewIngredientRequestRepository creates a new ingredient request repository
func NewIngredientRequestRepository(db *DB) domain.IngredientRequestRepository {
	return &ingredientRequestRepository{db: db}
}

const ingredientRequestColumns = `
	id, phase_id, kitchen_staff_id, total_cost,
	status, admin_note, created_at, changed_status_at
`

// Create persists the request and its line items in a database transaction
func (r *ingredientRequestRepository) Create(ctx context.Context, req *domain.IngredientRequest) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	insertRequestQuery := `
		INSERT INTO ingredient_requests
			(id, phase_id, kitchen_staff_id, total_cost, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = dbTx.ExecContext(ctx, insertRequestQuery,
		req.ID,
		req.PhaseID,
		req.KitchenStaffID,
		req.TotalCost.String(),
		string(req.Status),
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ingredient request: %w", err)
	}

	insertItemQuery := `
		INSERT INTO ingredient_request_items
			(id, request_id, name, quantity, unit_price, total_price, supplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, item := range req.Items {
		_, err = dbTx.ExecContext(ctx, insertItemQuery,
			item.ID,
			item.RequestID,
			item.Name,
			item.Quantity.String(),
			item.UnitPrice.String(),
			item.TotalPrice.String(),
			item.Supplier,
		)
		if err != nil {
			return fmt.Errorf("failed to insert ingredient request item: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a request and its line items by ID
func (r *ingredientRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IngredientRequest, error) {
	query := `SELECT ` + ingredientRequestColumns + ` FROM ingredient_requests WHERE id = $1`

	req, err := scanIngredientRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ingredient request %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ingredient request by ID: %w", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Items = items

	return req, nil
}

// UpdateStatus behaves like the operation request variant: a guarded
// update serializes racing admins
func (r *ingredientRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, adminNote *string, at time.Time) error {
	query := `
		UPDATE ingredient_requests
		SET status = $1, admin_note = COALESCE($2, admin_note), changed_status_at = $3
		WHERE id = $4 AND status = $5
	`

	result, err := r.db.ExecContext(ctx, query, string(to), adminNote, at, id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update ingredient request status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM ingredient_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check ingredient request existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("ingredient request %s: %w", id, domain.ErrNotFound)
		}
		return domain.ErrInvalidTransition
	}

	return nil
}

// List retrieves ingredient requests matching the filter, items included
func (r *ingredientRequestRepository) List(ctx context.Context, filter domain.IngredientRequestFilter, sort domain.RequestSortOrder, limit, offset int) ([]*domain.IngredientRequest, error) {
	query := `SELECT ` + ingredientRequestColumns + ` FROM ingredient_requests WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
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
		return nil, fmt.Errorf("failed to list ingredient requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*domain.IngredientRequest, 0)
	for rows.Next() {
		req, err := scanIngredientRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingredient request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredient requests: %w", err)
	}

	for _, req := range requests {
		items, err := r.loadItems(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		req.Items = items
	}

	return requests, nil
}

// CountByStatus returns per-status counts computed by the store
func (r *ingredientRequestRepository) CountByStatus(ctx context.Context) (domain.RequestStats, error) {
	return countRequestsByStatus(ctx, r.db, "ingredient_requests")
}

func (r *ingredientRequestRepository) loadItems(ctx context.Context, requestID uuid.UUID) ([]domain.IngredientRequestItem, error) {
	query := `
		SELECT id, request_id, name, quantity, unit_price, total_price, supplier
		FROM ingredient_request_items
		WHERE request_id = $1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredient request items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.IngredientRequestItem, 0)
	for rows.Next() {
		var item domain.IngredientRequestItem
		var quantityStr, unitPriceStr, totalPriceStr string

		err := rows.Scan(
			&item.ID,
			&item.RequestID,
			&item.Name,
			&quantityStr,
			&unitPriceStr,
			&totalPriceStr,
			&item.Supplier,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingredient request item: %w", err)
		}

		if item.Quantity, err = decimal.NewFromString(quantityStr); err != nil {
			return nil, fmt.Errorf("failed to parse quantity: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPriceStr); err != nil {
			return nil, fmt.Errorf("failed to parse unit_price: %w", err)
		}
		if item.TotalPrice, err = decimal.NewFromString(totalPriceStr); err != nil {
			return nil, fmt.Errorf("failed to parse total_price: %w", err)
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredient request items: %w", err)
	}

	return items, nil
}

func scanIngredientRequest(row rowScanner) (*domain.IngredientRequest, error) {
	var req domain.IngredientRequest
	var totalCostStr string
	var adminNote sql.NullString
	var changedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.PhaseID,
		&req.KitchenStaffID,
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
