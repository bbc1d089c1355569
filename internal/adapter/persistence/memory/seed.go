package memory

import (
	"time"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/domain/pricing"
)

// StarterTemplate is the catalog loaded into the memory backend so a fresh
// process can price proposals without any setup.
func StarterTemplate(id string, now time.Time) entities.PricingTemplate {
	return entities.PricingTemplate{
		ID:   id,
		Name: "Forestry mulching",
		Packages: []entities.Package{
			{ID: "small", Name: "Small (up to 4\" DBH)", MaxDBHInches: 4, PricePerAcre: 1800},
			pricing.FallbackPackage,
			{ID: "large", Name: "Large (up to 8\" DBH)", MaxDBHInches: 8, PricePerAcre: 3400},
		},
		Services: []entities.Service{
			{ID: "stump_grinding", Name: "Stump grinding", Price: 350},
			{ID: "debris_haul", Name: "Debris haul-off", Price: 150, PerAcre: true},
			{ID: "trail_cut", Name: "Trail cutting", Price: 500},
		},
		LegalTerms: []string{
			"The deposit is applied to the final invoice and is non-refundable once work is scheduled.",
			"Pricing is based on the acreage and conditions described; hidden obstacles may be billed separately.",
			"Customer is responsible for marking property lines and underground utilities.",
		},
		UpdatedAt: now.UTC(),
	}
}
