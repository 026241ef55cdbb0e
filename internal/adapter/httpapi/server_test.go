package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bodicode/foodfund-backend/internal/domain"
	"github.com/bodicode/foodfund-backend/internal/usecase/disbursement"
	"github.com/bodicode/foodfund-backend/internal/usecase/request"
	"github.com/bodicode/foodfund-backend/internal/usecase/wallet"
)

const testToken = "test-token"

type MockOperationRequestRepository struct {
	mock.Mock
}

func (m *MockOperationRequestRepository) Create(ctx context.Context, r *domain.OperationRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockOperationRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OperationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OperationRequest), args.Error(1)
}

func (m *MockOperationRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, adminNote *string, at time.Time) error {
	args := m.Called(ctx, id, from, to, adminNote, at)
	return args.Error(0)
}

func (m *MockOperationRequestRepository) List(ctx context.Context, filter domain.OperationRequestFilter, sort domain.RequestSortOrder, limit, offset int) ([]*domain.OperationRequest, error) {
	args := m.Called(ctx, filter, sort, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OperationRequest), args.Error(1)
}

func (m *MockOperationRequestRepository) CountByStatus(ctx context.Context) (domain.RequestStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RequestStats), args.Error(1)
}

type MockIngredientRequestRepository struct {
	mock.Mock
}

func (m *MockIngredientRequestRepository) Create(ctx context.Context, r *domain.IngredientRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockIngredientRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IngredientRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngredientRequest), args.Error(1)
}

func (m *MockIngredientRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, adminNote *string, at time.Time) error {
	args := m.Called(ctx, id, from, to, adminNote, at)
	return args.Error(0)
}

func (m *MockIngredientRequestRepository) List(ctx context.Context, filter domain.IngredientRequestFilter, sort domain.RequestSortOrder, limit, offset int) ([]*domain.IngredientRequest, error) {
	args := m.Called(ctx, filter, sort, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.IngredientRequest), args.Error(1)
}

func (m *MockIngredientRequestRepository) CountByStatus(ctx context.Context) (domain.RequestStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RequestStats), args.Error(1)
}

type MockDisbursementRepository struct {
	mock.Mock
}

func (m *MockDisbursementRepository) Create(ctx context.Context, d *domain.Disbursement, description string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, d, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockDisbursementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Disbursement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Disbursement), args.Error(1)
}

func (m *MockDisbursementRepository) FindByRequest(ctx context.Context, requestID uuid.UUID, requestType domain.RequestType) (*domain.Disbursement, error) {
	args := m.Called(ctx, requestID, requestType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Disbursement), args.Error(1)
}

func (m *MockDisbursementRepository) List(ctx context.Context, filter domain.DisbursementFilter, limit, page int) ([]*domain.Disbursement, int, error) {
	args := m.Called(ctx, filter, limit, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Disbursement), args.Int(1), args.Error(2)
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.FundraiserWallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundraiserWallet), args.Error(1)
}

func (m *MockWalletRepository) List(ctx context.Context, skip, take int) ([]*domain.FundraiserWallet, error) {
	args := m.Called(ctx, skip, take)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FundraiserWallet), args.Error(1)
}

func (m *MockWalletRepository) ApplyTransaction(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, txType domain.WalletTransactionType, description string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, walletID, amount, txType, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletRepository) ListTransactions(ctx context.Context, walletID uuid.UUID, skip, limit int) ([]*domain.WalletTransaction, error) {
	args := m.Called(ctx, walletID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletRepository) Stats(ctx context.Context, walletID uuid.UUID) (*domain.WalletStats, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletStats), args.Error(1)
}

type testRepos struct {
	operation    *MockOperationRequestRepository
	ingredient   *MockIngredientRequestRepository
	disbursement *MockDisbursementRepository
	wallet       *MockWalletRepository
}

func newTestApp(t *testing.T) (*testRepos, func(req *http.Request) *http.Response) {
	t.Helper()

	repos := &testRepos{
		operation:    new(MockOperationRequestRepository),
		ingredient:   new(MockIngredientRequestRepository),
		disbursement: new(MockDisbursementRepository),
		wallet:       new(MockWalletRepository),
	}

	srv := NewServer(
		request.NewService(repos.operation, repos.ingredient),
		disbursement.NewService(repos.disbursement, repos.operation, repos.ingredient, repos.wallet),
		wallet.NewService(repos.wallet),
		zap.NewNop(),
	)
	app := srv.App(testToken)

	do := func(req *http.Request) *http.Response {
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}
	return repos, do
}

func authedRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestHealthzIsUnauthenticated(t *testing.T) {
	_, do := newTestApp(t)

	resp := do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware(t *testing.T) {
	_, do := newTestApp(t)

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/wallets", nil)
		resp := do(req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/wallets", nil)
		req.Header.Set("Authorization", "Bearer nope")
		resp := do(req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestValidatePhasePlan(t *testing.T) {
	_, do := newTestApp(t)

	phase := phaseDTO{
		Name:                   "Phase 1",
		Location:               "District 3",
		IngredientPurchaseDate: "2025-07-01 08:00:00",
		CookingDate:            "2025-07-02 08:00:00",
		DeliveryDate:           "2025-07-03 08:00:00",
		IngredientBudgetPct:    "70",
		CookingBudgetPct:       "15",
		DeliveryBudgetPct:      "15",
		Meals:                  []plannedMealDTO{{Name: "Rice box", Quantity: 100}},
		Ingredients:            []plannedIngredientDTO{{Name: "Rice", Quantity: "50", Unit: "kg"}},
	}

	t.Run("valid plan", func(t *testing.T) {
		body := validatePhasePlanRequest{
			FundraisingStart: "2025-06-01 00:00:00",
			FundraisingEnd:   "2025-06-30 23:59:59",
			Phases:           []phaseDTO{phase},
		}

		resp := do(authedRequest(http.MethodPost, "/v1/phase-plans/validate", body))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result validatePhasePlanResponse
		decodeBody(t, resp, &result)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("purchase before fundraising end", func(t *testing.T) {
		early := phase
		early.IngredientPurchaseDate = "2025-06-15 08:00:00"

		body := validatePhasePlanRequest{
			FundraisingStart: "2025-06-01 00:00:00",
			FundraisingEnd:   "2025-06-30 23:59:59",
			Phases:           []phaseDTO{early},
		}

		resp := do(authedRequest(http.MethodPost, "/v1/phase-plans/validate", body))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result validatePhasePlanResponse
		decodeBody(t, resp, &result)
		assert.False(t, result.Valid)
		assert.NotEmpty(t, result.Errors)
	})

	t.Run("offset timestamps rejected", func(t *testing.T) {
		body := validatePhasePlanRequest{
			FundraisingStart: "2025-06-01T00:00:00Z",
			FundraisingEnd:   "2025-06-30 23:59:59",
		}

		resp := do(authedRequest(http.MethodPost, "/v1/phase-plans/validate", body))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateOperationRequest(t *testing.T) {
	phaseID := uuid.New()
	requesterID := uuid.New()

	t.Run("created pending", func(t *testing.T) {
		repos, do := newTestApp(t)
		repos.operation.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.OperationRequest) bool {
			return r.Status == domain.RequestStatusPending && r.PhaseID == phaseID
		})).Return(nil)

		req := authedRequest(http.MethodPost, "/v1/operation-requests", createOperationRequestBody{
			PhaseID:     phaseID.String(),
			ExpenseType: "COOKING",
			Title:       "Gas refill",
			TotalCost:   "450000",
		})
		req.Header.Set("X-User-Id", requesterID.String())

		resp := do(req)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var dto operationRequestDTO
		decodeBody(t, resp, &dto)
		assert.Equal(t, "PENDING", dto.Status)
		assert.Equal(t, "450000", dto.TotalCost)
		repos.operation.AssertExpectations(t)
	})

	t.Run("domain validation maps to 400", func(t *testing.T) {
		repos, do := newTestApp(t)

		req := authedRequest(http.MethodPost, "/v1/operation-requests", createOperationRequestBody{
			PhaseID:     phaseID.String(),
			ExpenseType: "COOKING",
			Title:       "",
			TotalCost:   "450000",
		})
		req.Header.Set("X-User-Id", requesterID.String())

		resp := do(req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		repos.operation.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing identity header", func(t *testing.T) {
		_, do := newTestApp(t)

		req := authedRequest(http.MethodPost, "/v1/operation-requests", createOperationRequestBody{
			PhaseID:     phaseID.String(),
			ExpenseType: "COOKING",
			Title:       "Gas refill",
			TotalCost:   "450000",
		})

		resp := do(req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateOperationRequestStatus(t *testing.T) {
	id := uuid.New()

	t.Run("approve", func(t *testing.T) {
		repos, do := newTestApp(t)
		repos.operation.On("UpdateStatus", mock.Anything, id,
			domain.RequestStatusPending, domain.RequestStatusApproved,
			(*string)(nil), mock.Anything).Return(nil)
		repos.operation.On("GetByID", mock.Anything, id).Return(&domain.OperationRequest{
			ID:          id,
			ExpenseType: domain.ExpenseTypeCooking,
			Title:       "Gas refill",
			TotalCost:   decimal.NewFromInt(450000),
			Status:      domain.RequestStatusApproved,
		}, nil)

		resp := do(authedRequest(http.MethodPatch, fmt.Sprintf("/v1/operation-requests/%s/status", id),
			updateStatusBody{Status: "APPROVED"}))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var dto operationRequestDTO
		decodeBody(t, resp, &dto)
		assert.Equal(t, "APPROVED", dto.Status)
	})

	t.Run("losing admin gets conflict", func(t *testing.T) {
		repos, do := newTestApp(t)
		repos.operation.On("UpdateStatus", mock.Anything, id,
			domain.RequestStatusPending, domain.RequestStatusRejected,
			(*string)(nil), mock.Anything).Return(domain.ErrInvalidTransition)

		resp := do(authedRequest(http.MethodPatch, fmt.Sprintf("/v1/operation-requests/%s/status", id),
			updateStatusBody{Status: "REJECTED"}))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("disbursed is not an admin target", func(t *testing.T) {
		repos, do := newTestApp(t)

		resp := do(authedRequest(http.MethodPatch, fmt.Sprintf("/v1/operation-requests/%s/status", id),
			updateStatusBody{Status: "DISBURSED"}))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		repos.operation.AssertNotCalled(t, "UpdateStatus",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreateDisbursement(t *testing.T) {
	requestID := uuid.New()
	phaseID := uuid.New()
	requesterID := uuid.New()

	approved := &domain.OperationRequest{
		ID:          requestID,
		PhaseID:     phaseID,
		RequesterID: requesterID,
		ExpenseType: domain.ExpenseTypeDelivery,
		Title:       "Van rental",
		TotalCost:   decimal.NewFromInt(5000000),
		Status:      domain.RequestStatusApproved,
	}

	body := createDisbursementBody{
		OperationRequestID: requestID.String(),
		PhaseID:            phaseID.String(),
		Amount:             "5000000",
		Proof:              "uploads/proof-123.pdf",
	}

	t.Run("created", func(t *testing.T) {
		repos, do := newTestApp(t)
		repos.operation.On("GetByID", mock.Anything, requestID).Return(approved, nil)
		repos.disbursement.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Disbursement) bool {
			return d.RequestID == requestID && d.ReceiverID == requesterID &&
				d.Status == domain.DisbursementStatusCompleted
		}), mock.Anything).Return(&domain.WalletTransaction{}, nil)

		resp := do(authedRequest(http.MethodPost, "/v1/inflow-transactions", body))
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var dto disbursementDTO
		decodeBody(t, resp, &dto)
		assert.Equal(t, "COMPLETED", dto.Status)
		assert.Equal(t, requesterID, dto.ReceiverID)
	})

	t.Run("duplicate maps to conflict", func(t *testing.T) {
		repos, do := newTestApp(t)
		repos.operation.On("GetByID", mock.Anything, requestID).Return(approved, nil)
		repos.disbursement.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, domain.ErrAlreadyDisbursed)

		resp := do(authedRequest(http.MethodPost, "/v1/inflow-transactions", body))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("amount mismatch maps to 422", func(t *testing.T) {
		repos, do := newTestApp(t)
		repos.operation.On("GetByID", mock.Anything, requestID).Return(approved, nil)

		short := body
		short.Amount = "4000000"
		resp := do(authedRequest(http.MethodPost, "/v1/inflow-transactions", short))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		repos.disbursement.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("both request ids rejected", func(t *testing.T) {
		_, do := newTestApp(t)

		both := body
		both.IngredientRequestID = uuid.NewString()
		resp := do(authedRequest(http.MethodPost, "/v1/inflow-transactions", both))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestWalletEndpoints(t *testing.T) {
	ownerID := uuid.New()
	walletID := uuid.New()

	t.Run("wallet with transactions", func(t *testing.T) {
		repos, do := newTestApp(t)
		repos.wallet.On("GetByOwner", mock.Anything, ownerID).Return(&domain.FundraiserWallet{
			ID:           walletID,
			OwnerID:      ownerID,
			WalletType:   domain.WalletTypeFundraiser,
			Balance:      decimal.NewFromInt(750000),
			TotalIncome:  decimal.NewFromInt(1000000),
			TotalExpense: decimal.NewFromInt(250000),
		}, nil)
		repos.wallet.On("ListTransactions", mock.Anything, walletID, 0, 20).
			Return([]*domain.WalletTransaction{{
				ID:       uuid.New(),
				WalletID: walletID,
				Amount:   decimal.NewFromInt(1000000),
				Type:     domain.TxTypeIncomingTransfer,
			}}, nil)

		resp := do(authedRequest(http.MethodGet, "/v1/wallets/"+ownerID.String(), nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Wallet       walletDTO              `json:"wallet"`
			Transactions []walletTransactionDTO `json:"transactions"`
		}
		decodeBody(t, resp, &result)
		assert.Equal(t, "750000", result.Wallet.Balance)
		assert.Len(t, result.Transactions, 1)
	})

	t.Run("unknown owner maps to 404", func(t *testing.T) {
		repos, do := newTestApp(t)
		repos.wallet.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrWalletNotFound)

		resp := do(authedRequest(http.MethodGet, "/v1/wallets/"+ownerID.String(), nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("my stats", func(t *testing.T) {
		repos, do := newTestApp(t)
		repos.wallet.On("GetByOwner", mock.Anything, ownerID).Return(&domain.FundraiserWallet{
			ID:      walletID,
			OwnerID: ownerID,
		}, nil)
		repos.wallet.On("Stats", mock.Anything, walletID).Return(&domain.WalletStats{
			AvailableBalance:  decimal.NewFromInt(750000),
			ThisMonthReceived: decimal.NewFromInt(500000),
			TotalDonations:    3,
			TotalReceived:     decimal.NewFromInt(1000000),
			TotalWithdrawn:    decimal.NewFromInt(250000),
		}, nil)

		req := authedRequest(http.MethodGet, "/v1/wallets/me/stats", nil)
		req.Header.Set("X-User-Id", ownerID.String())

		resp := do(req)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var dto walletStatsDTO
		decodeBody(t, resp, &dto)
		assert.Equal(t, "750000", dto.AvailableBalance)
		assert.Equal(t, 3, dto.TotalDonations)
	})
}
