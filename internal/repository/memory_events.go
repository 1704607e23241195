package repository

import (
	"context"
	"sort"
	"time"

	"hydrosense-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryEventsRepo in-memory events table.
type MemoryEventsRepo struct {
	store *MemoryStore
}

func NewMemoryEventsRepo(store *MemoryStore) *MemoryEventsRepo {
	return &MemoryEventsRepo{store: store}
}

var _ EventsRepository = (*MemoryEventsRepo)(nil)

func (r *MemoryEventsRepo) GetEvent(_ context.Context, householdID, eventID string) (*domain.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.events[eventID]
	if !ok || e.HouseholdID != householdID {
		return nil, nil
	}
	return &e, nil
}

func (r *MemoryEventsRepo) matching(householdID string, filter EventsFilter) []domain.Event {
	var out []domain.Event
	for _, e := range r.store.events {
		if e.HouseholdID != householdID {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.TagName != "" && e.TagName != filter.TagName {
			continue
		}
		if !filter.From.IsZero() && e.StartTimestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !e.StartTimestamp.Before(filter.To) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (r *MemoryEventsRepo) ListEvents(_ context.Context, householdID string, filter EventsFilter, page EventsPage) ([]*domain.Event, string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	order := page.Order
	if order != OrderAsc && order != OrderDesc {
		order = OrderDesc
	}

	all := r.matching(householdID, filter)
	asc := order == OrderAsc
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.StartTimestamp.Equal(b.StartTimestamp) {
			if asc {
				return a.StartTimestamp.Before(b.StartTimestamp)
			}
			return a.StartTimestamp.After(b.StartTimestamp)
		}
		if asc {
			return a.EventID < b.EventID
		}
		return a.EventID > b.EventID
	})

	// Seek past the cursor position.
	start := 0
	if page.Cursor != "" {
		ts, id, err := DecodeEventCursor(page.Cursor)
		if err != nil {
			return nil, "", err
		}
		for i, e := range all {
			after := e.StartTimestamp.After(ts) || (e.StartTimestamp.Equal(ts) && e.EventID > id)
			if !asc {
				after = e.StartTimestamp.Before(ts) || (e.StartTimestamp.Equal(ts) && e.EventID < id)
			}
			if after {
				start = i
				break
			}
			start = i + 1
		}
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]*domain.Event, 0, end-start)
	for i := start; i < end; i++ {
		e := all[i]
		out = append(out, &e)
	}

	next := ""
	if end < len(all) && len(out) > 0 {
		last := out[len(out)-1]
		next = EncodeEventCursor(last.StartTimestamp, last.EventID)
	}
	return out, next, nil
}

func (r *MemoryEventsRepo) CountEventsByCategory(_ context.Context, householdID string, category domain.Category) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n := 0
	for _, e := range r.store.events {
		if e.HouseholdID == householdID && e.Category == category {
			n++
		}
	}
	return n, nil
}

func (r *MemoryEventsRepo) InsertEvent(_ context.Context, e *domain.Event) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id := e.EventID
	if id == "" {
		id = uuid.NewString()
	}
	stored := *e
	stored.EventID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.store.events[id] = stored
	return id, nil
}

func (r *MemoryEventsRepo) UpdateEventCategory(_ context.Context, householdID, eventID string, category domain.Category, tagName string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.events[eventID]
	if !ok || e.HouseholdID != householdID {
		return nil
	}
	e.Category = category
	e.TagName = tagName
	r.store.events[eventID] = e
	return nil
}

func (r *MemoryEventsRepo) DeleteEventsByTag(_ context.Context, householdID string, category domain.Category, tagName string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n := 0
	for k, e := range r.store.events {
		if e.HouseholdID == householdID && e.Category == category && e.TagName == tagName {
			delete(r.store.events, k)
			n++
		}
	}
	return n, nil
}
