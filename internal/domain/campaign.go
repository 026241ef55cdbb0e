package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Campaign represents a fundraising campaign entity in the domain layer
type Campaign struct {
	ID               uuid.UUID
	Title            string
	OwnerID          uuid.UUID
	TargetAmount     decimal.Decimal
	FundraisingStart time.Time
	FundraisingEnd   time.Time
	Phases           []CampaignPhase
}

// CampaignPhase represents one operational stage of a campaign
// (ingredient purchase -> cooking -> delivery) with its own budget share.
// Phases are drafted with the campaign and immutable once it is approved.
type CampaignPhase struct {
	ID                     uuid.UUID
	CampaignID             uuid.UUID
	Name                   string
	Location               string
	IngredientPurchaseDate time.Time
	CookingDate            time.Time
	DeliveryDate           time.Time
	IngredientBudgetPct    decimal.Decimal // Percentage (0-100) of the campaign budget
	CookingBudgetPct       decimal.Decimal
	DeliveryBudgetPct      decimal.Decimal
	Meals                  []PlannedMeal
	Ingredients            []PlannedIngredient
}

// PlannedMeal is a meal the phase intends to cook
type PlannedMeal struct {
	Name     string
	Quantity int
}

// PlannedIngredient is an ingredient the phase intends to purchase
type PlannedIngredient struct {
	Name     string
	Quantity string
	Unit     string
}

// BudgetTotal returns the sum of the three budget share percentages of the phase
func (p *CampaignPhase) BudgetTotal() decimal.Decimal {
	return p.IngredientBudgetPct.Add(p.CookingBudgetPct).Add(p.DeliveryBudgetPct)
}
