package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"hydrosense-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryHouseholdsRepo supports tests and demo mode when the DB is disabled.
type MemoryHouseholdsRepo struct {
	store *MemoryStore
}

func NewMemoryHouseholdsRepo(store *MemoryStore) *MemoryHouseholdsRepo {
	return &MemoryHouseholdsRepo{store: store}
}

var _ HouseholdsRepository = (*MemoryHouseholdsRepo)(nil)

func (r *MemoryHouseholdsRepo) GetHousehold(_ context.Context, householdID string) (*domain.Household, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	h, ok := r.store.households[householdID]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (r *MemoryHouseholdsRepo) GetHouseholdBySensor(_ context.Context, sensorID string) (*domain.Household, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	want := strings.ToLower(sensorID)
	for _, h := range r.store.households {
		if strings.ToLower(h.SensorID) == want {
			out := h
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryHouseholdsRepo) ListHouseholdsForUser(_ context.Context, userID string) ([]*domain.Household, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.Household
	for _, m := range r.store.members {
		if m.UserID != userID {
			continue
		}
		if h, ok := r.store.households[m.HouseholdID]; ok {
			hh := h
			out = append(out, &hh)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].HouseholdID < out[j].HouseholdID
	})
	return out, nil
}

func (r *MemoryHouseholdsRepo) CreateHousehold(_ context.Context, h *domain.Household) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id := h.HouseholdID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	stored := *h
	stored.HouseholdID = id
	stored.SensorID = strings.ToLower(h.SensorID)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.store.households[id] = stored
	return id, nil
}

func (r *MemoryHouseholdsRepo) UpdateHousehold(_ context.Context, householdID string, patch HouseholdPatch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	h, ok := r.store.households[householdID]
	if !ok {
		return nil
	}
	if patch.Name != nil {
		h.Name = *patch.Name
	}
	if patch.Residents != nil {
		h.Residents = *patch.Residents
	}
	if patch.SensorID != nil {
		h.SensorID = strings.ToLower(*patch.SensorID)
	}
	if patch.Street != nil {
		h.Street = *patch.Street
	}
	if patch.City != nil {
		h.City = *patch.City
	}
	if patch.ZipCode != nil {
		h.ZipCode = *patch.ZipCode
	}
	if patch.Country != nil {
		h.Country = *patch.Country
	}
	h.UpdatedAt = time.Now().UTC()
	r.store.households[householdID] = h
	return nil
}

// DeleteHousehold mirrors the relational cascade: members, tags, events and
// invitations referencing the household are removed too.
func (r *MemoryHouseholdsRepo) DeleteHousehold(_ context.Context, householdID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.households, householdID)
	for k, m := range r.store.members {
		if m.HouseholdID == householdID {
			delete(r.store.members, k)
		}
	}
	for k, t := range r.store.tags {
		if t.HouseholdID == householdID {
			delete(r.store.tags, k)
		}
	}
	for k, e := range r.store.events {
		if e.HouseholdID == householdID {
			delete(r.store.events, k)
		}
	}
	for k, inv := range r.store.invitations {
		if inv.HouseholdID == householdID {
			delete(r.store.invitations, k)
		}
	}
	return nil
}

// MemoryHouseholdUsersRepo in-memory membership table.
type MemoryHouseholdUsersRepo struct {
	store *MemoryStore
}

func NewMemoryHouseholdUsersRepo(store *MemoryStore) *MemoryHouseholdUsersRepo {
	return &MemoryHouseholdUsersRepo{store: store}
}

var _ HouseholdUsersRepository = (*MemoryHouseholdUsersRepo)(nil)

func (r *MemoryHouseholdUsersRepo) GetMembership(_ context.Context, householdID, userID string) (*domain.HouseholdUser, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.members[memberKey(householdID, userID)]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MemoryHouseholdUsersRepo) ListMembers(_ context.Context, householdID string) ([]*domain.HouseholdUser, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.HouseholdUser
	for _, m := range r.store.members {
		if m.HouseholdID == householdID {
			mm := m
			out = append(out, &mm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *MemoryHouseholdUsersRepo) AddMember(_ context.Context, m *domain.HouseholdUser) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := memberKey(m.HouseholdID, m.UserID)
	if _, exists := r.store.members[key]; exists {
		return fmt.Errorf("membership already exists: %s", key)
	}
	stored := *m
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.store.members[key] = stored
	return nil
}

func (r *MemoryHouseholdUsersRepo) RemoveMember(_ context.Context, householdID, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.members, memberKey(householdID, userID))
	return nil
}

func (r *MemoryHouseholdUsersRepo) CountAdmins(_ context.Context, householdID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n := 0
	for _, m := range r.store.members {
		if m.HouseholdID == householdID && m.Role == domain.RoleAdmin {
			n++
		}
	}
	return n, nil
}
