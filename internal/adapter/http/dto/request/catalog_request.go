package request

import "clearing_proposals/internal/domain/entities"

type PackageRequest struct {
	ID           string  `json:"id" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	MaxDBHInches int     `json:"max_dbh_inches"`
	PricePerAcre float64 `json:"price_per_acre" binding:"required"`
	Default      bool    `json:"default"`
}

type ServiceRequest struct {
	ID      string  `json:"id" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	Price   float64 `json:"price"`
	PerAcre bool    `json:"per_acre"`
}

// TemplateRequest replaces a pricing template. The id comes from the path.
type TemplateRequest struct {
	Name       string           `json:"name" binding:"required"`
	Packages   []PackageRequest `json:"packages" binding:"required,min=1,dive"`
	Services   []ServiceRequest `json:"services" binding:"dive"`
	LegalTerms []string         `json:"legal_terms"`
}

func (r TemplateRequest) ToEntity(id string) entities.PricingTemplate {
	t := entities.PricingTemplate{
		ID:         id,
		Name:       r.Name,
		LegalTerms: append([]string(nil), r.LegalTerms...),
	}
	for _, p := range r.Packages {
		t.Packages = append(t.Packages, entities.Package{
			ID:           p.ID,
			Name:         p.Name,
			MaxDBHInches: p.MaxDBHInches,
			PricePerAcre: p.PricePerAcre,
			Default:      p.Default,
		})
	}
	for _, s := range r.Services {
		t.Services = append(t.Services, entities.Service{
			ID:      s.ID,
			Name:    s.Name,
			Price:   s.Price,
			PerAcre: s.PerAcre,
		})
	}
	return t
}
