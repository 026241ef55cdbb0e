package phaseplan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bodicode/foodfund-backend/internal/domain"
)

// budgetTolerance is the permitted deviation of the grand-total budget
// percentage from 100 across all phases combined.
var budgetTolerance = decimal.NewFromFloat(0.5)

// Result is the outcome of validating a draft phase plan.
// When Valid is false, Errors carries one human-readable message per
// violated rule so the author can fix everything in one pass.
type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks a draft campaign's phase plan before submission.
// All rules are checked and accumulated, never short-circuited:
//  1. Fundraising end must be after fundraising start
//  2. Every phase is complete (name, location, milestone dates, budget
//     shares, at least one planned meal and one planned ingredient)
//  3. The budget share percentages summed across ALL phases must equal
//     100 within the tolerance (cross-phase grand total, not per phase)
//  4. Per phase: ingredient purchase < cooking < delivery
//  5. Every phase's ingredient purchase date is strictly after the
//     campaign's fundraising end
//  6. Consecutive phases must not overlap: the next phase's ingredient
//     purchase date must not precede the previous phase's delivery date
func Validate(phases []domain.CampaignPhase, fundraisingStart, fundraisingEnd time.Time) Result {
	errs := make([]string, 0)

	if !fundraisingEnd.After(fundraisingStart) {
		errs = append(errs, "fundraising end must be after fundraising start")
	}

	if len(phases) == 0 {
		errs = append(errs, "campaign must have at least one phase")
	}

	budgetTotal := decimal.Zero
	for i := range phases {
		phase := &phases[i]
		label := phaseLabel(phase, i)

		errs = append(errs, validateCompleteness(phase, label)...)
		errs = append(errs, validateChronology(phase, label, fundraisingEnd)...)

		budgetTotal = budgetTotal.Add(phase.BudgetTotal())
	}

	// Grand total across all phases, not per phase. A phase with zero
	// budgets passes as long as the others compensate.
	if len(phases) > 0 {
		hundred := decimal.NewFromInt(100)
		if budgetTotal.Sub(hundred).Abs().GreaterThan(budgetTolerance) {
			errs = append(errs, fmt.Sprintf(
				"budget percentages across all phases must total 100, got %s", budgetTotal.String()))
		}
	}

	// Non-overlap between consecutive phases; a single-phase plan skips this
	for i := 0; i+1 < len(phases); i++ {
		prev, next := &phases[i], &phases[i+1]
		if next.IngredientPurchaseDate.IsZero() || prev.DeliveryDate.IsZero() {
			continue
		}
		if next.IngredientPurchaseDate.Before(prev.DeliveryDate) {
			errs = append(errs, fmt.Sprintf(
				"%s starts purchasing ingredients before %s finishes delivery",
				phaseLabel(next, i+1), phaseLabel(prev, i)))
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// validateCompleteness checks that every required field of the phase is present
func validateCompleteness(phase *domain.CampaignPhase, label string) []string {
	errs := make([]string, 0)

	if phase.Name == "" {
		errs = append(errs, fmt.Sprintf("%s is missing a name", label))
	}
	if phase.Location == "" {
		errs = append(errs, fmt.Sprintf("%s is missing a location", label))
	}
	if phase.IngredientPurchaseDate.IsZero() {
		errs = append(errs, fmt.Sprintf("%s is missing an ingredient purchase date", label))
	}
	if phase.CookingDate.IsZero() {
		errs = append(errs, fmt.Sprintf("%s is missing a cooking date", label))
	}
	if phase.DeliveryDate.IsZero() {
		errs = append(errs, fmt.Sprintf("%s is missing a delivery date", label))
	}

	if len(phase.Meals) == 0 {
		errs = append(errs, fmt.Sprintf("%s must plan at least one meal", label))
	}
	for _, meal := range phase.Meals {
		if meal.Name == "" {
			errs = append(errs, fmt.Sprintf("%s has a planned meal without a name", label))
		}
		if meal.Quantity <= 0 {
			errs = append(errs, fmt.Sprintf("%s has a planned meal with a non-positive quantity", label))
		}
	}

	if len(phase.Ingredients) == 0 {
		errs = append(errs, fmt.Sprintf("%s must plan at least one ingredient", label))
	}
	for _, ing := range phase.Ingredients {
		if ing.Name == "" || ing.Quantity == "" || ing.Unit == "" {
			errs = append(errs, fmt.Sprintf("%s has a planned ingredient missing name, quantity, or unit", label))
		}
	}

	return errs
}

// validateChronology checks milestone ordering within the phase and
// against the fundraising window. Skips comparisons involving unset
// dates, which completeness already reports.
func validateChronology(phase *domain.CampaignPhase, label string, fundraisingEnd time.Time) []string {
	errs := make([]string, 0)

	if !phase.IngredientPurchaseDate.IsZero() && !phase.CookingDate.IsZero() {
		if !phase.IngredientPurchaseDate.Before(phase.CookingDate) {
			errs = append(errs, fmt.Sprintf("%s must purchase ingredients before cooking", label))
		}
	}
	if !phase.CookingDate.IsZero() && !phase.DeliveryDate.IsZero() {
		if !phase.CookingDate.Before(phase.DeliveryDate) {
			errs = append(errs, fmt.Sprintf("%s must cook before delivering", label))
		}
	}
	if !phase.IngredientPurchaseDate.IsZero() {
		if !phase.IngredientPurchaseDate.After(fundraisingEnd) {
			errs = append(errs, fmt.Sprintf("%s must purchase ingredients after fundraising ends", label))
		}
	}

	return errs
}

func phaseLabel(phase *domain.CampaignPhase, index int) string {
	if phase.Name != "" {
		return fmt.Sprintf("phase %q", phase.Name)
	}
	return fmt.Sprintf("phase %d", index+1)
}
