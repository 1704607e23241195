package repository

import (
	"encoding/hex"
	"sync"

	"hydrosense-data/internal/domain"
)

type memoryCredential struct {
	UserID       string
	PasswordHash []byte
}

// MemoryStore backs the Memory* repositories. It is an explicitly-owned,
// injected object (construct one per test or per process), never package state,
// so tests can run in isolation and in parallel.
type MemoryStore struct {
	mu          sync.RWMutex
	households  map[string]domain.Household
	members     map[string]domain.HouseholdUser // householdID+"/"+userID
	tags        map[string]domain.Tag
	events      map[string]domain.Event
	users       map[string]domain.User
	credentials map[string]memoryCredential // hex(accountHash) -> credential
	invitations map[string]domain.HouseholdInvitation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		households:  map[string]domain.Household{},
		members:     map[string]domain.HouseholdUser{},
		tags:        map[string]domain.Tag{},
		events:      map[string]domain.Event{},
		users:       map[string]domain.User{},
		credentials: map[string]memoryCredential{},
		invitations: map[string]domain.HouseholdInvitation{},
	}
}

func memberKey(householdID, userID string) string {
	return householdID + "/" + userID
}

func credentialKey(accountHash []byte) string {
	return hex.EncodeToString(accountHash)
}

type memorySnapshot struct {
	households  map[string]domain.Household
	members     map[string]domain.HouseholdUser
	tags        map[string]domain.Tag
	events      map[string]domain.Event
	users       map[string]domain.User
	credentials map[string]memoryCredential
	invitations map[string]domain.HouseholdInvitation
}

// snapshot copies every table. Entries are value types, so a shallow map copy
// is a full copy.
func (s *MemoryStore) snapshot() memorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := memorySnapshot{
		households:  make(map[string]domain.Household, len(s.households)),
		members:     make(map[string]domain.HouseholdUser, len(s.members)),
		tags:        make(map[string]domain.Tag, len(s.tags)),
		events:      make(map[string]domain.Event, len(s.events)),
		users:       make(map[string]domain.User, len(s.users)),
		credentials: make(map[string]memoryCredential, len(s.credentials)),
		invitations: make(map[string]domain.HouseholdInvitation, len(s.invitations)),
	}
	for k, v := range s.households {
		snap.households[k] = v
	}
	for k, v := range s.members {
		snap.members[k] = v
	}
	for k, v := range s.tags {
		snap.tags[k] = v
	}
	for k, v := range s.events {
		snap.events[k] = v
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.credentials {
		snap.credentials[k] = v
	}
	for k, v := range s.invitations {
		snap.invitations[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.households = snap.households
	s.members = snap.members
	s.tags = snap.tags
	s.events = snap.events
	s.users = snap.users
	s.credentials = snap.credentials
	s.invitations = snap.invitations
}

// NewMemoryRepositories builds the full repository bundle over one store.
func NewMemoryRepositories(store *MemoryStore) *Repositories {
	return &Repositories{
		Households:     NewMemoryHouseholdsRepo(store),
		HouseholdUsers: NewMemoryHouseholdUsersRepo(store),
		Tags:           NewMemoryTagsRepo(store),
		Events:         NewMemoryEventsRepo(store),
		Users:          NewMemoryUsersRepo(store),
		Invitations:    NewMemoryInvitationsRepo(store),
		Consumption:    NewMemoryConsumptionRepo(store),
	}
}
