package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/mes-portal/internal/domain"
)

type todoRecord struct {
	item domain.TodoItem
	seq  uint64
}

// MemoryStore is the in-memory session state. It implements both
// TicketRepository and TodoRepository behind a single lock.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
	todos   map[string]*todoRecord
	seq     uint64
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets: make(map[string]*domain.Ticket),
		todos:   make(map[string]*todoRecord),
		now:     time.Now,
	}
}

var (
	_ TicketRepository = (*MemoryStore)(nil)
	_ TodoRepository   = todoView{}
)

// Save replaces the stored ticket and touches its mirrored todo item. When
// todo is nil the existing mirror is kept and only its recency changes.
func (s *MemoryStore) Save(ctx context.Context, ticket *domain.Ticket, todo *domain.TodoItem) error {
	if ticket == nil || ticket.ID == "" {
		return fmt.Errorf("save ticket: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	mirrorID := domain.TicketTodoID(ticket.ID)
	record, exists := s.todos[mirrorID]
	if todo == nil && (!exists || record.item.TicketID != ticket.ID) {
		return fmt.Errorf("save ticket %s: no mirrored todo", ticket.ID)
	}

	s.tickets[ticket.ID] = ticket.Clone()
	s.seq++
	if todo != nil {
		item := *todo
		item.ID = mirrorID
		item.TicketID = ticket.ID
		item.RawData = nil
		item.Roles = append([]domain.Role(nil), todo.Roles...)
		record = &todoRecord{item: item}
		s.todos[mirrorID] = record
	}
	record.seq = s.seq
	record.item.UpdatedAt = s.now()
	return nil
}

// GetByID returns a copy of the stored ticket.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ticket.Clone(), nil
}

// List returns tickets ordered by last update, newest first.
func (s *MemoryStore) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	s.mu.RLock()
	result := make([]domain.Ticket, 0, len(s.tickets))
	for _, ticket := range s.tickets {
		if !matchesTicketFilter(ticket, filter) {
			continue
		}
		result = append(result, *ticket.Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return []domain.Ticket{}, nil
	}
	result = result[offset:]
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func matchesTicketFilter(ticket *domain.Ticket, filter TicketFilter) bool {
	if filter.Type != "" && !strings.EqualFold(ticket.Type, filter.Type) {
		return false
	}
	if len(filter.Statuses) == 0 {
		return true
	}
	for _, status := range filter.Statuses {
		if ticket.Status == status {
			return true
		}
	}
	return false
}

// TodoView exposes the todo side of the store. Both sides share the lock, so
// a ticket and its mirror are always read consistently.
func (s *MemoryStore) TodoView() TodoRepository {
	return todoView{s}
}

type todoView struct {
	s *MemoryStore
}

func (v todoView) List(ctx context.Context, role domain.Role) ([]domain.TodoItem, error) {
	return v.s.listTodos(role)
}

func (v todoView) Get(ctx context.Context, id string) (*domain.TodoItem, error) {
	return v.s.getTodo(id)
}

func (v todoView) Upsert(ctx context.Context, item *domain.TodoItem) error {
	return v.s.upsertTodo(item)
}

func (v todoView) Remove(ctx context.Context, id string) error {
	return v.s.removeTodo(id)
}

func (v todoView) Count(ctx context.Context, predicate func(domain.TodoItem) bool) (int, error) {
	return v.s.countTodos(predicate)
}

func (s *MemoryStore) listTodos(role domain.Role) ([]domain.TodoItem, error) {
	type entry struct {
		item domain.TodoItem
		seq  uint64
	}
	s.mu.RLock()
	entries := make([]entry, 0, len(s.todos))
	for _, record := range s.todos {
		item := s.materializeLocked(record)
		if role != "" && !actionableBy(item, role) {
			continue
		}
		entries = append(entries, entry{item: item, seq: record.seq})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })
	result := make([]domain.TodoItem, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.item)
	}
	return result, nil
}

func (s *MemoryStore) getTodo(id string) (*domain.TodoItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	item := s.materializeLocked(record)
	return &item, nil
}

func (s *MemoryStore) upsertTodo(item *domain.TodoItem) error {
	if item == nil || item.ID == "" {
		return fmt.Errorf("upsert todo: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.TicketID != "" {
		if item.ID != domain.TicketTodoID(item.TicketID) {
			return fmt.Errorf("upsert todo %s: ticket %s: %w", item.ID, item.TicketID, ErrMirrorConflict)
		}
		if _, ok := s.tickets[item.TicketID]; !ok {
			return fmt.Errorf("upsert todo %s: ticket %s: %w", item.ID, item.TicketID, ErrNotFound)
		}
	}
	if existing, ok := s.todos[item.ID]; ok && existing.item.TicketID != item.TicketID {
		return fmt.Errorf("upsert todo %s: %w", item.ID, ErrMirrorConflict)
	}
	stored := *item
	stored.Roles = append([]domain.Role(nil), item.Roles...)
	if stored.TicketID != "" {
		stored.RawData = nil
	}
	if stored.Status == "" {
		stored.Status = domain.TodoStatusPending
	}
	stored.UpdatedAt = s.now()
	s.seq++
	s.todos[item.ID] = &todoRecord{item: stored, seq: s.seq}
	return nil
}

func (s *MemoryStore) removeTodo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.todos[id]
	if !ok {
		return ErrNotFound
	}
	if ticketID := record.item.TicketID; ticketID != "" {
		if ticket, ok := s.tickets[ticketID]; ok && !ticket.Status.Terminal() {
			return ErrMirrorOpen
		}
	}
	delete(s.todos, id)
	return nil
}

func (s *MemoryStore) countTodos(predicate func(domain.TodoItem) bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, record := range s.todos {
		if predicate == nil || predicate(s.materializeLocked(record)) {
			count++
		}
	}
	return count, nil
}

// materializeLocked resolves the back-reference of ticket-origin items so
// RawData and Status always reflect the stored ticket.
func (s *MemoryStore) materializeLocked(record *todoRecord) domain.TodoItem {
	item := record.item
	item.Roles = append([]domain.Role(nil), record.item.Roles...)
	if item.TicketID == "" {
		return item
	}
	ticket, ok := s.tickets[item.TicketID]
	if !ok {
		return item
	}
	item.RawData = ticket.Clone()
	item.Status = domain.StatusForTicket(ticket.Status)
	return item
}

func actionableBy(item domain.TodoItem, role domain.Role) bool {
	if ticket, ok := item.Ticket(); ok {
		return domain.CanAct(ticket.Status, role)
	}
	return item.Status != domain.TodoStatusDone && item.HasRole(role)
}
