package store

import (
	"context"
	"strings"
	"sync"

	"ticket-marketplace/models"
	"ticket-marketplace/status"
	"ticket-marketplace/utils"
)

// Memory is an in-memory TicketStore with the same atomicity contract as
// the PocketBase store: a per-ticket critical section serializes Transact
// calls, so the second of two racing callers reads the first one's
// committed value. Intended for unit tests.
type Memory struct {
	mu      sync.Mutex
	tickets map[string]*models.Ticket
	locks   map[string]*sync.Mutex
	order   []string
}

func NewMemory() *Memory {
	return &Memory{
		tickets: make(map[string]*models.Ticket),
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Memory) Get(ctx context.Context, ticketID string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[ticketID]
	if !ok || ticket.IsDeleted() {
		return nil, status.ErrTicketNotFound
	}
	return ticket.Clone(), nil
}

func (s *Memory) Put(ctx context.Context, ticket *models.Ticket) error {
	if ticket.ID == "" {
		code, err := utils.GenerateCode(8)
		if err != nil {
			return err
		}
		ticket.ID = strings.ToLower(code)[:15]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[ticket.ID]; !ok {
		s.order = append(s.order, ticket.ID)
	}
	s.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (s *Memory) Transact(ctx context.Context, ticketID string, fn func(current *models.Ticket) (*models.Ticket, error)) error {
	lock := s.keyLock(ticketID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	ticket, ok := s.tickets[ticketID]
	if ok && !ticket.IsDeleted() {
		ticket = ticket.Clone()
	} else {
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return status.ErrTicketNotFound
	}

	updated, err := fn(ticket)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tickets[ticketID] = updated.Clone()
	s.mu.Unlock()
	return nil
}

func (s *Memory) Query(ctx context.Context, filter Filter) ([]*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Ticket
	for _, id := range s.order {
		ticket := s.tickets[id]
		if ticket.IsDeleted() {
			continue
		}
		if filter.OwnerID != "" && ticket.OwnerID != filter.OwnerID {
			continue
		}
		if filter.EventID != "" && ticket.EventID != filter.EventID {
			continue
		}
		if len(filter.States) > 0 && !containsState(filter.States, ticket.Status) {
			continue
		}
		result = append(result, ticket.Clone())
	}
	return result, nil
}

func (s *Memory) keyLock(ticketID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[ticketID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[ticketID] = lock
	}
	return lock
}

func containsState(states []models.TicketStatus, st models.TicketStatus) bool {
	for _, s := range states {
		if s == st {
			return true
		}
	}
	return false
}
