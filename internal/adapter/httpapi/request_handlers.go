package httpapi

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bodicode/foodfund-backend/internal/domain"
	"github.com/bodicode/foodfund-backend/internal/usecase/request"
)

type operationRequestDTO struct {
	ID              uuid.UUID  `json:"id"`
	PhaseID         uuid.UUID  `json:"phaseId"`
	RequesterID     uuid.UUID  `json:"requesterId"`
	ExpenseType     string     `json:"expenseType"`
	Title           string     `json:"title"`
	TotalCost       string     `json:"totalCost"`
	Status          string     `json:"status"`
	AdminNote       *string    `json:"adminNote,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ChangedStatusAt *time.Time `json:"changedStatusAt,omitempty"`
}

func toOperationRequestDTO(r *domain.OperationRequest) operationRequestDTO {
	return operationRequestDTO{
		ID:              r.ID,
		PhaseID:         r.PhaseID,
		RequesterID:     r.RequesterID,
		ExpenseType:     string(r.ExpenseType),
		Title:           r.Title,
		TotalCost:       r.TotalCost.String(),
		Status:          string(r.Status),
		AdminNote:       r.AdminNote,
		CreatedAt:       r.CreatedAt,
		ChangedStatusAt: r.ChangedStatusAt,
	}
}

type ingredientItemDTO struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
	TotalPrice string `json:"totalPrice,omitempty"`
	Supplier   string `json:"supplier"`
}

type ingredientRequestDTO struct {
	ID              uuid.UUID           `json:"id"`
	PhaseID         uuid.UUID           `json:"phaseId"`
	KitchenStaffID  uuid.UUID           `json:"kitchenStaffId"`
	TotalCost       string              `json:"totalCost"`
	Status          string              `json:"status"`
	AdminNote       *string             `json:"adminNote,omitempty"`
	Items           []ingredientItemDTO `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	ChangedStatusAt *time.Time          `json:"changedStatusAt,omitempty"`
}

func toIngredientRequestDTO(r *domain.IngredientRequest) ingredientRequestDTO {
	items := make([]ingredientItemDTO, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, ingredientItemDTO{
			Name:       item.Name,
			Quantity:   item.Quantity.String(),
			UnitPrice:  item.UnitPrice.String(),
			TotalPrice: item.TotalPrice.String(),
			Supplier:   item.Supplier,
		})
	}
	return ingredientRequestDTO{
		ID:              r.ID,
		PhaseID:         r.PhaseID,
		KitchenStaffID:  r.KitchenStaffID,
		TotalCost:       r.TotalCost.String(),
		Status:          string(r.Status),
		AdminNote:       r.AdminNote,
		Items:           items,
		CreatedAt:       r.CreatedAt,
		ChangedStatusAt: r.ChangedStatusAt,
	}
}

type requestStatsDTO struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Disbursed int `json:"disbursed"`
	Total     int `json:"total"`
}

func toRequestStatsDTO(stats domain.RequestStats) requestStatsDTO {
	return requestStatsDTO{
		Pending:   stats.Pending,
		Approved:  stats.Approved,
		Rejected:  stats.Rejected,
		Disbursed: stats.Disbursed,
		Total:     stats.Total(),
	}
}

type createOperationRequestBody struct {
	PhaseID     string `json:"phaseId"`
	ExpenseType string `json:"expenseType"`
	Title       string `json:"title"`
	TotalCost   string `json:"totalCost"`
}

func (s *Server) handleCreateOperationRequest(c *fiber.Ctx) error {
	var body createOperationRequestBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	phaseID, err := uuid.Parse(body.PhaseID)
	if err != nil {
		return badRequest(c, "invalid phaseId")
	}
	requesterID, err := userIDFromHeader(c)
	if err != nil {
		return badRequest(c, "missing or invalid X-User-Id header")
	}
	totalCost, err := decimal.NewFromString(body.TotalCost)
	if err != nil {
		return badRequest(c, "invalid totalCost")
	}

	req, err := s.RequestService.CreateOperationRequest(c.Context(), request.CreateOperationRequestInput{
		PhaseID:     phaseID,
		RequesterID: requesterID,
		ExpenseType: domain.ExpenseType(body.ExpenseType),
		Title:       body.Title,
		TotalCost:   totalCost,
	})
	if err != nil {
		return mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toOperationRequestDTO(req))
}

type updateStatusBody struct {
	Status    string  `json:"status"`
	AdminNote *string `json:"adminNote,omitempty"`
}

func (s *Server) handleUpdateOperationRequestStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	var body updateStatusBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req, err := s.RequestService.UpdateOperationRequestStatus(c.Context(), id, domain.RequestStatus(body.Status), body.AdminNote)
	if err != nil {
		return mapError(c, err)
	}

	return c.JSON(toOperationRequestDTO(req))
}

func (s *Server) handleListOperationRequests(c *fiber.Ctx) error {
	filter, err := operationFilterFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	sort, err := request.ParseSortOrder(c.Query("sortBy"))
	if err != nil {
		return badRequest(c, "invalid sortBy")
	}

	requests, err := s.RequestService.ListOperationRequests(c.Context(), filter, sort,
		c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return mapError(c, err)
	}

	dtos := make([]operationRequestDTO, 0, len(requests))
	for _, r := range requests {
		dtos = append(dtos, toOperationRequestDTO(r))
	}
	return c.JSON(fiber.Map{"items": dtos})
}

func (s *Server) handleOperationRequestStats(c *fiber.Ctx) error {
	stats, err := s.RequestService.OperationRequestStats(c.Context())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toRequestStatsDTO(stats))
}

type createIngredientRequestBody struct {
	PhaseID string              `json:"phaseId"`
	Items   []ingredientItemDTO `json:"items"`
}

func (s *Server) handleCreateIngredientRequest(c *fiber.Ctx) error {
	var body createIngredientRequestBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	phaseID, err := uuid.Parse(body.PhaseID)
	if err != nil {
		return badRequest(c, "invalid phaseId")
	}
	staffID, err := userIDFromHeader(c)
	if err != nil {
		return badRequest(c, "missing or invalid X-User-Id header")
	}

	items := make([]request.IngredientItemInput, 0, len(body.Items))
	for i, item := range body.Items {
		quantity, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			return badRequest(c, fmt.Sprintf("invalid quantity on item %d", i+1))
		}
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return badRequest(c, fmt.Sprintf("invalid unitPrice on item %d", i+1))
		}
		items = append(items, request.IngredientItemInput{
			Name:      item.Name,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			Supplier:  item.Supplier,
		})
	}

	req, err := s.RequestService.CreateIngredientRequest(c.Context(), request.CreateIngredientRequestInput{
		PhaseID:        phaseID,
		KitchenStaffID: staffID,
		Items:          items,
	})
	if err != nil {
		return mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toIngredientRequestDTO(req))
}

func (s *Server) handleUpdateIngredientRequestStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	var body updateStatusBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req, err := s.RequestService.UpdateIngredientRequestStatus(c.Context(), id, domain.RequestStatus(body.Status), body.AdminNote)
	if err != nil {
		return mapError(c, err)
	}

	return c.JSON(toIngredientRequestDTO(req))
}

func (s *Server) handleListIngredientRequests(c *fiber.Ctx) error {
	filter, err := ingredientFilterFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	sort, err := request.ParseSortOrder(c.Query("sortBy"))
	if err != nil {
		return badRequest(c, "invalid sortBy")
	}

	requests, err := s.RequestService.ListIngredientRequests(c.Context(), filter, sort,
		c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return mapError(c, err)
	}

	dtos := make([]ingredientRequestDTO, 0, len(requests))
	for _, r := range requests {
		dtos = append(dtos, toIngredientRequestDTO(r))
	}
	return c.JSON(fiber.Map{"items": dtos})
}

func (s *Server) handleIngredientRequestStats(c *fiber.Ctx) error {
	stats, err := s.RequestService.IngredientRequestStats(c.Context())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toRequestStatsDTO(stats))
}

func operationFilterFromQuery(c *fiber.Ctx) (domain.OperationRequestFilter, error) {
	var filter domain.OperationRequestFilter

	if v := c.Query("status"); v != "" {
		status := domain.RequestStatus(v)
		filter.Status = &status
	}
	if v := c.Query("expenseType"); v != "" {
		expenseType := domain.ExpenseType(v)
		filter.ExpenseType = &expenseType
	}
	if v := c.Query("campaignId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid campaignId")
		}
		filter.CampaignID = &id
	}
	if v := c.Query("campaignPhaseId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid campaignPhaseId")
		}
		filter.PhaseID = &id
	}

	return filter, nil
}

func ingredientFilterFromQuery(c *fiber.Ctx) (domain.IngredientRequestFilter, error) {
	var filter domain.IngredientRequestFilter

	if v := c.Query("status"); v != "" {
		status := domain.RequestStatus(v)
		filter.Status = &status
	}
	if v := c.Query("campaignId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid campaignId")
		}
		filter.CampaignID = &id
	}
	if v := c.Query("campaignPhaseId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid campaignPhaseId")
		}
		filter.PhaseID = &id
	}

	return filter, nil
}
