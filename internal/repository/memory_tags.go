package repository

import (
	"context"
	"sort"

	"hydrosense-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryTagsRepo in-memory tags table.
type MemoryTagsRepo struct {
	store *MemoryStore
}

func NewMemoryTagsRepo(store *MemoryStore) *MemoryTagsRepo {
	return &MemoryTagsRepo{store: store}
}

var _ TagsRepository = (*MemoryTagsRepo)(nil)

func (r *MemoryTagsRepo) GetTag(_ context.Context, householdID, tagID string) (*domain.Tag, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.tags[tagID]
	if !ok || t.HouseholdID != householdID {
		return nil, nil
	}
	return &t, nil
}

func (r *MemoryTagsRepo) GetTagByName(_ context.Context, householdID string, category domain.Category, name string) (*domain.Tag, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, t := range r.store.tags {
		if t.HouseholdID == householdID && t.Category == category && t.Name == name {
			out := t
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryTagsRepo) ListTagsByCategory(_ context.Context, householdID string, category domain.Category) ([]*domain.Tag, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.Tag
	for _, t := range r.store.tags {
		if t.HouseholdID == householdID && t.Category == category {
			tt := t
			out = append(out, &tt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryTagsRepo) CreateTag(_ context.Context, tag *domain.Tag) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id := tag.TagID
	if id == "" {
		id = uuid.NewString()
	}
	stored := *tag
	stored.TagID = id
	r.store.tags[id] = stored
	return id, nil
}

func (r *MemoryTagsRepo) UpdateTag(_ context.Context, tag *domain.Tag) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.tags[tag.TagID]
	if !ok || existing.HouseholdID != tag.HouseholdID {
		return nil
	}
	existing.Category = tag.Category
	existing.Name = tag.Name
	r.store.tags[tag.TagID] = existing
	return nil
}

func (r *MemoryTagsRepo) DeleteTag(_ context.Context, householdID, tagID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if t, ok := r.store.tags[tagID]; ok && t.HouseholdID == householdID {
		delete(r.store.tags, tagID)
	}
	return nil
}
