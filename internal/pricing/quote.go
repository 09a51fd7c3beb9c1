package pricing

import "github.com/tripdesk/agency-api/internal/domain"

// Markups is the flat amount added to a package by the role pricing it
type Markups map[domain.UserRoleType]float64

// DefaultMarkups are applied when none are configured
func DefaultMarkups() Markups {
	return Markups{
		domain.RoleAdmin: 0,
		domain.RoleAgent: 35,
		domain.RoleSales: 50,
	}
}

// For returns the markup for role; roles without an entry add nothing
func (m Markups) For(role domain.UserRoleType) float64 {
	return m[role]
}

// Price is a quoted price for a whole package
type Price struct {
	BaseCost     float64
	Markup       float64
	ProfitMargin float64
	FinalPrice   float64
}

// FinalPrice adds the role markup and profit margin to the base cost once
// for the whole package.
func (m Markups) FinalPrice(baseCost float64, role domain.UserRoleType, profitMargin float64) Price {
	markup := m.For(role)
	return Price{
		BaseCost:     Round2(baseCost),
		Markup:       markup,
		ProfitMargin: Round2(profitMargin),
		FinalPrice:   Round2(baseCost + markup + profitMargin),
	}
}

// Convert expresses an amount in a secondary currency for display.
// A non-positive rate means no conversion is available.
func Convert(amount, rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return Round2(amount * rate)
}
