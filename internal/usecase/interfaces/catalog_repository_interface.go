package interfaces

import (
	"context"

	"clearing_proposals/internal/domain/entities"
)

// ICatalogRepository stores the live, editable pricing templates.
//
//go:generate mockgen -source=catalog_repository_interface.go -destination=mocks/mock_catalog_repository.go -package=mock_interfaces
type ICatalogRepository interface {
	GetTemplate(ctx context.Context, id string) (entities.PricingTemplate, error)
	PutTemplate(ctx context.Context, t entities.PricingTemplate) error
}

// ISnapshotRepository stores write-once template snapshots.
//
// NextVersion atomically reserves the next version for a template; two
// callers never receive the same number. Create must fail with
// ErrConditionFailed when (template_id, version) exists.
// Snapshots have no update or delete.
type ISnapshotRepository interface {
	NextVersion(ctx context.Context, templateID string) (int, error)
	Create(ctx context.Context, s entities.ProposalSnapshot) error
	Get(ctx context.Context, templateID string, version int) (entities.ProposalSnapshot, error)
}
