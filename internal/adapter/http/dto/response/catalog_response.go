package response

import (
	"time"

	"clearing_proposals/internal/domain/entities"
)

type TemplateResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Packages   []entities.Package `json:"packages"`
	Services   []entities.Service `json:"services"`
	LegalTerms []string           `json:"legal_terms"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func FromTemplate(t entities.PricingTemplate) TemplateResponse {
	return TemplateResponse{
		ID:         t.ID,
		Name:       t.Name,
		Packages:   nonNilPackages(t.Packages),
		Services:   nonNilServices(t.Services),
		LegalTerms: nonNilStrings(t.LegalTerms),
		UpdatedAt:  t.UpdatedAt,
	}
}

type SnapshotResponse struct {
	TemplateID string             `json:"template_id"`
	Version    int                `json:"version"`
	Name       string             `json:"name"`
	Packages   []entities.Package `json:"packages"`
	Services   []entities.Service `json:"services"`
	LegalTerms []string           `json:"legal_terms"`
	CreatedAt  time.Time          `json:"created_at"`
}

func FromSnapshot(s entities.ProposalSnapshot) SnapshotResponse {
	return SnapshotResponse{
		TemplateID: s.TemplateID,
		Version:    s.Version,
		Name:       s.Name,
		Packages:   nonNilPackages(s.Packages),
		Services:   nonNilServices(s.Services),
		LegalTerms: nonNilStrings(s.LegalTerms),
		CreatedAt:  s.CreatedAt,
	}
}

func nonNilPackages(in []entities.Package) []entities.Package {
	if in == nil {
		return []entities.Package{}
	}
	return in
}

func nonNilServices(in []entities.Service) []entities.Service {
	if in == nil {
		return []entities.Service{}
	}
	return in
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
