package interfaces

import (
	"context"
	"time"

	"clearing_proposals/internal/domain/entities"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Email struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// IMailer sends transactional email and returns the provider delivery id.
//
//go:generate mockgen -source=delivery_interface.go -destination=mocks/mock_delivery.go -package=mock_interfaces
type IMailer interface {
	Send(ctx context.Context, email Email) (string, error)
}

// ProposalDocument is everything a renderer may print.
type ProposalDocument struct {
	Proposal entities.Proposal
	Snapshot entities.ProposalSnapshot
}

type IPDFRenderer interface {
	Render(ctx context.Context, doc ProposalDocument) ([]byte, error)
}

type IAssetStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
