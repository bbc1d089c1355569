package entities

import "time"

// Package is a pricing tier keyed by the maximum tree diameter (DBH) handled.
type Package struct {
	ID           string  `json:"id" dynamodbav:"id"`
	Name         string  `json:"name" dynamodbav:"name"`
	MaxDBHInches int     `json:"max_dbh_inches" dynamodbav:"max_dbh_inches"`
	PricePerAcre float64 `json:"price_per_acre" dynamodbav:"price_per_acre"`
	Default      bool    `json:"default,omitempty" dynamodbav:"default,omitempty"`
}

// Service is an optional add-on priced flat or per acre.
type Service struct {
	ID      string  `json:"id" dynamodbav:"id"`
	Name    string  `json:"name" dynamodbav:"name"`
	Price   float64 `json:"price" dynamodbav:"price"`
	PerAcre bool    `json:"per_acre,omitempty" dynamodbav:"per_acre,omitempty"`
}

// PricingTemplate is the live, editable catalog a proposal is priced from.
type PricingTemplate struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Packages   []Package `json:"packages"`
	Services   []Service `json:"services"`
	LegalTerms []string  `json:"legal_terms"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProposalSnapshot is a write-once copy of a PricingTemplate.
//
// Storage model (DynamoDB):
//   - PK: template_id
//   - SK: version
type ProposalSnapshot struct {
	TemplateID string    `json:"template_id"`
	Version    int       `json:"version"`
	Name       string    `json:"name"`
	Packages   []Package `json:"packages"`
	Services   []Service `json:"services"`
	LegalTerms []string  `json:"legal_terms"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s ProposalSnapshot) Ref() SnapshotRef {
	return SnapshotRef{TemplateID: s.TemplateID, Version: s.Version}
}

// Clone returns a deep copy. Slices are never shared between a live template
// and any snapshot taken from it.
func (t PricingTemplate) Clone() PricingTemplate {
	out := t
	out.Packages = append([]Package(nil), t.Packages...)
	out.Services = append([]Service(nil), t.Services...)
	out.LegalTerms = append([]string(nil), t.LegalTerms...)
	return out
}

func (s ProposalSnapshot) Clone() ProposalSnapshot {
	out := s
	out.Packages = append([]Package(nil), s.Packages...)
	out.Services = append([]Service(nil), s.Services...)
	out.LegalTerms = append([]string(nil), s.LegalTerms...)
	return out
}
