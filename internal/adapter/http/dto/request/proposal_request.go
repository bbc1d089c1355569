package request

import (
	"strings"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase"
)

type CustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
}

type ProposalInputsRequest struct {
	Acreage            float64  `json:"acreage" binding:"required"`
	PackageID          string   `json:"package_id"`
	SelectedServiceIDs []string `json:"selected_service_ids"`
	Obstacles          []string `json:"obstacles"`
	Address            string   `json:"address" binding:"required"`
	DistanceMiles      float64  `json:"distance_miles"`
}

// GenerateProposalRequest is the admin payload that prices a new proposal.
type GenerateProposalRequest struct {
	TemplateID string                `json:"template_id" binding:"required"`
	LeadID     string                `json:"lead_id"`
	Customer   CustomerRequest       `json:"customer" binding:"required"`
	Inputs     ProposalInputsRequest `json:"inputs" binding:"required"`
}

func (r GenerateProposalRequest) ToCommand(createdBy string) usecase.GenerateCommand {
	return usecase.GenerateCommand{
		TemplateID: strings.TrimSpace(r.TemplateID),
		LeadID:     strings.TrimSpace(r.LeadID),
		Customer: entities.Customer{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
		Inputs: entities.ProposalInputs{
			Acreage:            r.Inputs.Acreage,
			PackageID:          r.Inputs.PackageID,
			SelectedServiceIDs: r.Inputs.SelectedServiceIDs,
			Obstacles:          r.Inputs.Obstacles,
			Address:            r.Inputs.Address,
			DistanceMiles:      r.Inputs.DistanceMiles,
		},
		CreatedBy: createdBy,
	}
}

// SendProposalRequest is optional; an empty body is accepted.
type SendProposalRequest struct {
	SentBy string `json:"sent_by"`
}

type AcceptProposalRequest struct {
	Token    string `json:"token" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Consent  bool   `json:"consent"`
}

func (r AcceptProposalRequest) ToCommand(proposalID, ip, userAgent string) usecase.AcceptCommand {
	return usecase.AcceptCommand{
		ProposalID: proposalID,
		Token:      r.Token,
		FullName:   r.FullName,
		Consent:    r.Consent,
		IP:         ip,
		UserAgent:  userAgent,
	}
}

type CheckoutProposalRequest struct {
	Token string `json:"token" binding:"required"`
}
