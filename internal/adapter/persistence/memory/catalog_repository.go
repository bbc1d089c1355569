package memory

import (
	"context"
	"sync"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase/interfaces"
)

type CatalogRepository struct {
	mu        sync.RWMutex
	templates map[string]entities.PricingTemplate
}

var _ interfaces.ICatalogRepository = (*CatalogRepository)(nil)

func NewCatalogRepository(seed ...entities.PricingTemplate) *CatalogRepository {
	r := &CatalogRepository{templates: map[string]entities.PricingTemplate{}}
	for _, t := range seed {
		r.templates[t.ID] = t.Clone()
	}
	return r
}

func (r *CatalogRepository) GetTemplate(_ context.Context, id string) (entities.PricingTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	if !ok {
		return entities.PricingTemplate{}, nil
	}
	return t.Clone(), nil
}

func (r *CatalogRepository) PutTemplate(_ context.Context, t entities.PricingTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.ID] = t.Clone()
	return nil
}

type snapshotKey struct {
	templateID string
	version    int
}

type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[snapshotKey]entities.ProposalSnapshot
	latest    map[string]int
	next      map[string]int
}

var _ interfaces.ISnapshotRepository = (*SnapshotRepository)(nil)

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{
		snapshots: map[snapshotKey]entities.ProposalSnapshot{},
		latest:    map[string]int{},
		next:      map[string]int{},
	}
}

func (r *SnapshotRepository) Create(_ context.Context, s entities.ProposalSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := snapshotKey{s.TemplateID, s.Version}
	if _, ok := r.snapshots[k]; ok {
		return interfaces.ErrConditionFailed
	}
	r.snapshots[k] = s.Clone()
	if s.Version > r.latest[s.TemplateID] {
		r.latest[s.TemplateID] = s.Version
	}
	return nil
}

func (r *SnapshotRepository) Get(_ context.Context, templateID string, version int) (entities.ProposalSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.snapshots[snapshotKey{templateID, version}]
	if !ok {
		return entities.ProposalSnapshot{}, nil
	}
	return s.Clone(), nil
}

func (r *SnapshotRepository) NextVersion(_ context.Context, templateID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := max(r.next[templateID], r.latest[templateID]) + 1
	r.next[templateID] = v
	return v, nil
}
