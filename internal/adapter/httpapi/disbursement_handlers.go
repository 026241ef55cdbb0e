package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bodicode/foodfund-backend/internal/domain"
	"github.com/bodicode/foodfund-backend/internal/usecase/disbursement"
)

type disbursementDTO struct {
	ID          uuid.UUID  `json:"id"`
	PhaseID     uuid.UUID  `json:"phaseId"`
	RequestID   uuid.UUID  `json:"requestId"`
	RequestType string     `json:"requestType"`
	Amount      string     `json:"amount"`
	ProofRef    string     `json:"proof"`
	Status      string     `json:"status"`
	ReceiverID  uuid.UUID  `json:"receiverId"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func toDisbursementDTO(d *domain.Disbursement) disbursementDTO {
	return disbursementDTO{
		ID:          d.ID,
		PhaseID:     d.PhaseID,
		RequestID:   d.RequestID,
		RequestType: string(d.RequestType),
		Amount:      d.Amount.String(),
		ProofRef:    d.ProofRef,
		Status:      string(d.Status),
		ReceiverID:  d.ReceiverID,
		CreatedAt:   d.CreatedAt,
		CompletedAt: d.CompletedAt,
	}
}

type createDisbursementBody struct {
	OperationRequestID  string `json:"operationRequestId,omitempty"`
	IngredientRequestID string `json:"ingredientRequestId,omitempty"`
	PhaseID             string `json:"campaignPhaseId"`
	Amount              string `json:"amount"`
	Proof               string `json:"proof"`
}

func (s *Server) handleCreateDisbursement(c *fiber.Ctx) error {
	var body createDisbursementBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if (body.OperationRequestID == "") == (body.IngredientRequestID == "") {
		return badRequest(c, "exactly one of operationRequestId or ingredientRequestId is required")
	}

	requestType := domain.RequestTypeOperation
	rawRequestID := body.OperationRequestID
	if body.IngredientRequestID != "" {
		requestType = domain.RequestTypeIngredient
		rawRequestID = body.IngredientRequestID
	}

	requestID, err := uuid.Parse(rawRequestID)
	if err != nil {
		return badRequest(c, "invalid request id")
	}
	phaseID, err := uuid.Parse(body.PhaseID)
	if err != nil {
		return badRequest(c, "invalid campaignPhaseId")
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		return badRequest(c, "invalid amount")
	}

	d, err := s.DisbursementService.CreateDisbursement(c.Context(), disbursement.CreateDisbursementInput{
		RequestID:   requestID,
		RequestType: requestType,
		PhaseID:     phaseID,
		Amount:      amount,
		ProofRef:    body.Proof,
	})
	if err != nil {
		return mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toDisbursementDTO(d))
}

func (s *Server) handleGetDisbursement(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid disbursement id")
	}

	d, err := s.DisbursementService.GetByID(c.Context(), id)
	if err != nil {
		return mapError(c, err)
	}

	return c.JSON(toDisbursementDTO(d))
}

func (s *Server) handleListDisbursements(c *fiber.Ctx) error {
	filter, err := disbursementFilterFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	result, err := s.DisbursementService.List(c.Context(), filter,
		c.QueryInt("limit"), c.QueryInt("page"))
	if err != nil {
		return mapError(c, err)
	}

	dtos := make([]disbursementDTO, 0, len(result.Items))
	for _, d := range result.Items {
		dtos = append(dtos, toDisbursementDTO(d))
	}
	return c.JSON(fiber.Map{"items": dtos, "total": result.Total})
}

func disbursementFilterFromQuery(c *fiber.Ctx) (domain.DisbursementFilter, error) {
	var filter domain.DisbursementFilter

	if v := c.Query("campaignPhaseId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, errInvalidQuery("campaignPhaseId")
		}
		filter.PhaseID = &id
	}
	if v := c.Query("status"); v != "" {
		status := domain.DisbursementStatus(v)
		filter.Status = &status
	}
	if v := c.Query("transactionType"); v != "" {
		txType := domain.WalletTransactionType(v)
		filter.TransactionType = &txType
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errInvalidQuery("from")
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errInvalidQuery("to")
		}
		filter.To = &t
	}

	return filter, nil
}
