package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/usecase/interfaces"

	"go.uber.org/zap"
)

const maxSnapshotAttempts = 5

//go:generate mockgen -destination=../adapter/http/handlers/mocks/mock_catalog_usecase.go -package=mocks clearing_proposals/internal/usecase ICatalogUseCase

// ICatalogUseCase maintains pricing templates and takes snapshots of them.
type ICatalogUseCase interface {
	GetTemplate(ctx context.Context, id string) (entities.PricingTemplate, error)
	UpsertTemplate(ctx context.Context, t entities.PricingTemplate) (entities.PricingTemplate, error)
	CreateSnapshot(ctx context.Context, templateID string) (entities.ProposalSnapshot, error)
	GetSnapshot(ctx context.Context, templateID string, version int) (entities.ProposalSnapshot, error)
}

type CatalogUseCase struct {
	templates interfaces.ICatalogRepository
	snapshots interfaces.ISnapshotRepository
	logger    *zap.Logger
	now       func() time.Time
}

var _ ICatalogUseCase = (*CatalogUseCase)(nil)

func NewCatalogUseCase(templates interfaces.ICatalogRepository, snapshots interfaces.ISnapshotRepository, l *zap.Logger) *CatalogUseCase {
	return &CatalogUseCase{templates: templates, snapshots: snapshots, logger: logger.OrNop(l), now: time.Now}
}

func (u *CatalogUseCase) GetTemplate(ctx context.Context, id string) (entities.PricingTemplate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.PricingTemplate{}, invalidField("template_id", "required")
	}
	t, err := u.templates.GetTemplate(ctx, id)
	if err != nil {
		return entities.PricingTemplate{}, err
	}
	if t.ID == "" {
		return entities.PricingTemplate{}, ErrTemplateNotFound
	}
	return t, nil
}

func (u *CatalogUseCase) UpsertTemplate(ctx context.Context, t entities.PricingTemplate) (entities.PricingTemplate, error) {
	t.ID = strings.TrimSpace(t.ID)
	if err := validateTemplate(t); err != nil {
		return entities.PricingTemplate{}, err
	}
	t = t.Clone()
	t.UpdatedAt = u.now().UTC()
	if err := u.templates.PutTemplate(ctx, t); err != nil {
		return entities.PricingTemplate{}, err
	}
	u.logger.Info("[catalog][usecase] template saved",
		zap.String("template_id", t.ID), zap.Int("packages", len(t.Packages)), zap.Int("services", len(t.Services)))
	return t, nil
}

// CreateSnapshot copies the live template into a new write-once snapshot.
// Versions come from the repository's atomic counter; a taken version only
// happens when the counter lags rows written before it existed, and the
// next reservation moves past it.
func (u *CatalogUseCase) CreateSnapshot(ctx context.Context, templateID string) (entities.ProposalSnapshot, error) {
	tmpl, err := u.GetTemplate(ctx, templateID)
	if err != nil {
		return entities.ProposalSnapshot{}, err
	}
	live := tmpl.Clone()

	for attempt := 0; attempt < maxSnapshotAttempts; attempt++ {
		version, err := u.snapshots.NextVersion(ctx, live.ID)
		if err != nil {
			return entities.ProposalSnapshot{}, err
		}
		snap := entities.ProposalSnapshot{
			TemplateID: live.ID,
			Version:    version,
			Name:       live.Name,
			Packages:   live.Packages,
			Services:   live.Services,
			LegalTerms: live.LegalTerms,
			CreatedAt:  u.now().UTC(),
		}
		err = u.snapshots.Create(ctx, snap)
		if errors.Is(err, interfaces.ErrConditionFailed) {
			u.logger.Warn("[catalog][usecase] snapshot version taken; retrying",
				zap.String("template_id", live.ID), zap.Int("version", snap.Version))
			continue
		}
		if err != nil {
			return entities.ProposalSnapshot{}, err
		}
		u.logger.Info("[catalog][usecase] snapshot created",
			zap.String("template_id", snap.TemplateID), zap.Int("version", snap.Version))
		return snap.Clone(), nil
	}
	return entities.ProposalSnapshot{}, fmt.Errorf("%w: snapshot version allocation exhausted for %s", ErrDependencyFailure, live.ID)
}

func (u *CatalogUseCase) GetSnapshot(ctx context.Context, templateID string, version int) (entities.ProposalSnapshot, error) {
	templateID = strings.TrimSpace(templateID)
	if templateID == "" || version <= 0 {
		return entities.ProposalSnapshot{}, invalidField("snapshot_ref", "template id and positive version required")
	}
	s, err := u.snapshots.Get(ctx, templateID, version)
	if err != nil {
		return entities.ProposalSnapshot{}, err
	}
	if s.TemplateID == "" {
		return entities.ProposalSnapshot{}, ErrSnapshotNotFound
	}
	return s.Clone(), nil
}

func validateTemplate(t entities.PricingTemplate) error {
	if t.ID == "" {
		return invalidField("id", "required")
	}
	if len(t.Packages) == 0 {
		return invalidField("packages", "at least one package required")
	}
	seen := map[string]bool{}
	for _, p := range t.Packages {
		if strings.TrimSpace(p.ID) == "" || seen[p.ID] {
			return invalidField("packages", "package ids must be unique and non-empty")
		}
		if p.PricePerAcre <= 0 {
			return invalidField("packages", "price_per_acre must be positive for "+p.ID)
		}
		seen[p.ID] = true
	}
	seen = map[string]bool{}
	for _, s := range t.Services {
		if strings.TrimSpace(s.ID) == "" || seen[s.ID] {
			return invalidField("services", "service ids must be unique and non-empty")
		}
		if s.Price < 0 {
			return invalidField("services", "price must not be negative for "+s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}
