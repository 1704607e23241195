package repository

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"hydrosense-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryUsersRepo in-memory auth.users table.
type MemoryUsersRepo struct {
	store *MemoryStore
}

func NewMemoryUsersRepo(store *MemoryStore) *MemoryUsersRepo {
	return &MemoryUsersRepo{store: store}
}

var _ UsersRepository = (*MemoryUsersRepo)(nil)

func (r *MemoryUsersRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *MemoryUsersRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	want := strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.store.users {
		if strings.ToLower(u.Email) == want {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryUsersRepo) GetLoginUser(_ context.Context, accountHash []byte) (*domain.User, []byte, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cred, ok := r.store.credentials[credentialKey(accountHash)]
	if !ok {
		return nil, nil, nil
	}
	u, ok := r.store.users[cred.UserID]
	if !ok {
		return nil, nil, nil
	}
	out := u
	return &out, bytes.Clone(cred.PasswordHash), nil
}

func (r *MemoryUsersRepo) CreateUser(_ context.Context, u *domain.User, accountHash, passwordHash []byte) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id := u.UserID
	if id == "" {
		id = uuid.NewString()
	}
	stored := *u
	stored.UserID = id
	stored.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.store.users[id] = stored
	r.store.credentials[credentialKey(accountHash)] = memoryCredential{
		UserID:       id,
		PasswordHash: bytes.Clone(passwordHash),
	}
	return id, nil
}

func (r *MemoryUsersRepo) UpdateLocale(_ context.Context, userID, locale string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if u, ok := r.store.users[userID]; ok {
		u.Locale = locale
		r.store.users[userID] = u
	}
	return nil
}

// MemoryInvitationsRepo in-memory invitations table.
type MemoryInvitationsRepo struct {
	store *MemoryStore
}

func NewMemoryInvitationsRepo(store *MemoryStore) *MemoryInvitationsRepo {
	return &MemoryInvitationsRepo{store: store}
}

var _ InvitationsRepository = (*MemoryInvitationsRepo)(nil)

func (r *MemoryInvitationsRepo) GetInvitation(_ context.Context, invitationID string) (*domain.HouseholdInvitation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	inv, ok := r.store.invitations[invitationID]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *MemoryInvitationsRepo) GetInvitationByToken(_ context.Context, token string) (*domain.HouseholdInvitation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, inv := range r.store.invitations {
		if inv.Token == token {
			out := inv
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryInvitationsRepo) ListInvitations(_ context.Context, householdID string) ([]*domain.HouseholdInvitation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.HouseholdInvitation
	for _, inv := range r.store.invitations {
		if inv.HouseholdID == householdID {
			i := inv
			out = append(out, &i)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].InvitationID < out[j].InvitationID
	})
	return out, nil
}

func (r *MemoryInvitationsRepo) CreateInvitation(_ context.Context, inv *domain.HouseholdInvitation) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id := inv.InvitationID
	if id == "" {
		id = uuid.NewString()
	}
	stored := *inv
	stored.InvitationID = id
	stored.InvitedEmail = strings.ToLower(strings.TrimSpace(inv.InvitedEmail))
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.store.invitations[id] = stored
	return id, nil
}

func (r *MemoryInvitationsRepo) UpdateInvitationStatus(_ context.Context, invitationID string, status domain.InvitationStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if inv, ok := r.store.invitations[invitationID]; ok {
		inv.Status = status
		r.store.invitations[invitationID] = inv
	}
	return nil
}

func (r *MemoryInvitationsRepo) ExpirePendingBefore(_ context.Context, now time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n := 0
	for k, inv := range r.store.invitations {
		if inv.Status == domain.InvitationPending && inv.ExpiresAt.Before(now) {
			inv.Status = domain.InvitationExpired
			r.store.invitations[k] = inv
			n++
		}
	}
	return n, nil
}
