package httpapi

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/bodicode/foodfund-backend/internal/domain"
	"github.com/bodicode/foodfund-backend/internal/usecase/phaseplan"
)

type plannedMealDTO struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type plannedIngredientDTO struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

type phaseDTO struct {
	Name                   string                 `json:"name"`
	Location               string                 `json:"location"`
	IngredientPurchaseDate string                 `json:"ingredientPurchaseDate"`
	CookingDate            string                 `json:"cookingDate"`
	DeliveryDate           string                 `json:"deliveryDate"`
	IngredientBudgetPct    string                 `json:"ingredientBudgetPct"`
	CookingBudgetPct       string                 `json:"cookingBudgetPct"`
	DeliveryBudgetPct      string                 `json:"deliveryBudgetPct"`
	Meals                  []plannedMealDTO       `json:"meals"`
	Ingredients            []plannedIngredientDTO `json:"ingredients"`
}

type validatePhasePlanRequest struct {
	FundraisingStart string     `json:"fundraisingStart"`
	FundraisingEnd   string     `json:"fundraisingEnd"`
	Phases           []phaseDTO `json:"phases"`
}

type validatePhasePlanResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// handleValidatePhasePlan checks a draft phase plan and returns every
// violated rule at once so the author can fix the whole draft in one pass
func (s *Server) handleValidatePhasePlan(c *fiber.Ctx) error {
	var body validatePhasePlanRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	start, err := phaseplan.ParseLocalTime(body.FundraisingStart)
	if err != nil {
		return badRequest(c, fmt.Sprintf("invalid fundraisingStart: %v", err))
	}
	end, err := phaseplan.ParseLocalTime(body.FundraisingEnd)
	if err != nil {
		return badRequest(c, fmt.Sprintf("invalid fundraisingEnd: %v", err))
	}

	phases := make([]domain.CampaignPhase, 0, len(body.Phases))
	for i, dto := range body.Phases {
		phase, err := dto.toDomain()
		if err != nil {
			return badRequest(c, fmt.Sprintf("invalid phase %d: %v", i+1, err))
		}
		phases = append(phases, phase)
	}

	result := phaseplan.Validate(phases, start, end)

	return c.JSON(validatePhasePlanResponse{Valid: result.Valid, Errors: result.Errors})
}

func (dto phaseDTO) toDomain() (domain.CampaignPhase, error) {
	phase := domain.CampaignPhase{
		Name:     dto.Name,
		Location: dto.Location,
	}

	var err error
	if phase.IngredientPurchaseDate, err = parseOptionalLocalTime(dto.IngredientPurchaseDate); err != nil {
		return phase, fmt.Errorf("ingredientPurchaseDate: %w", err)
	}
	if phase.CookingDate, err = parseOptionalLocalTime(dto.CookingDate); err != nil {
		return phase, fmt.Errorf("cookingDate: %w", err)
	}
	if phase.DeliveryDate, err = parseOptionalLocalTime(dto.DeliveryDate); err != nil {
		return phase, fmt.Errorf("deliveryDate: %w", err)
	}

	if phase.IngredientBudgetPct, err = parseOptionalDecimal(dto.IngredientBudgetPct); err != nil {
		return phase, fmt.Errorf("ingredientBudgetPct: %w", err)
	}
	if phase.CookingBudgetPct, err = parseOptionalDecimal(dto.CookingBudgetPct); err != nil {
		return phase, fmt.Errorf("cookingBudgetPct: %w", err)
	}
	if phase.DeliveryBudgetPct, err = parseOptionalDecimal(dto.DeliveryBudgetPct); err != nil {
		return phase, fmt.Errorf("deliveryBudgetPct: %w", err)
	}

	for _, m := range dto.Meals {
		phase.Meals = append(phase.Meals, domain.PlannedMeal{Name: m.Name, Quantity: m.Quantity})
	}
	for _, ing := range dto.Ingredients {
		phase.Ingredients = append(phase.Ingredients, domain.PlannedIngredient{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}

	return phase, nil
}

// parseOptionalLocalTime leaves an empty value as the zero time; the
// validator reports missing dates as plan errors, not transport errors
func parseOptionalLocalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return phaseplan.ParseLocalTime(s)
}

// parseOptionalDecimal leaves an empty value as zero for the same reason
func parseOptionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
