package board

import (
	"context"
	"log/slog"
	"sync"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/store"
)

// PageSize is how many tickets the board loads.
const PageSize = 100

// TicketAPI is the part of the API client the board uses.
type TicketAPI interface {
	ListTickets(ctx context.Context, params api.ListParams) (*api.TicketPage, error)
	UpdateTicketStatus(ctx context.Context, id string, status api.Status) (*api.Ticket, error)
}

// Syncer sends status changes to the API. Changes to one ticket go out one
// at a time in the order they were made; different tickets sync
// concurrently. On failure the whole ticket list is reloaded, which replaces
// any optimistic state on the board.
type Syncer struct {
	tickets  TicketAPI
	store    store.TicketFetcher
	notifier Notifier
	logger   *slog.Logger
	pageSize int

	mu     sync.Mutex
	queues map[string][]api.Status
	wg     sync.WaitGroup
}

func NewSyncer(tickets TicketAPI, st store.TicketFetcher, notifier Notifier, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		tickets:  tickets,
		store:    st,
		notifier: notifier,
		logger:   logger,
		pageSize: PageSize,
		queues:   make(map[string][]api.Status),
	}
}

// UpdateStatus queues the change and returns immediately. In-flight updates
// are never cancelled.
func (s *Syncer) UpdateStatus(ticketID string, status api.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, running := s.queues[ticketID]
	s.queues[ticketID] = append(pending, status)
	if running {
		return
	}

	s.wg.Add(1)
	go s.drain(ticketID)
}

// SetPageSize changes how many tickets a load fetches. Values below one are
// ignored.
func (s *Syncer) SetPageSize(size int) {
	if size < 1 {
		return
	}
	s.mu.Lock()
	s.pageSize = size
	s.mu.Unlock()
}

func (s *Syncer) limit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSize
}

// Wait blocks until every queued update has finished, including any reload
// it triggered.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// Pending returns, for every ticket with a queued or in-flight update, the
// status of its newest change. A projection of the store's list has to
// reapply these to keep optimistic moves that are not yet confirmed.
func (s *Syncer) Pending() map[string]api.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[string]api.Status, len(s.queues))
	for ticketID, queue := range s.queues {
		if len(queue) > 0 {
			pending[ticketID] = queue[len(queue)-1]
		}
	}
	return pending
}

// drain sends the ticket's queued changes one at a time. The change being
// sent stays at the head of the queue until its response is in, so Pending
// still reports it.
func (s *Syncer) drain(ticketID string) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		pending := s.queues[ticketID]
		if len(pending) == 0 {
			delete(s.queues, ticketID)
			s.mu.Unlock()
			return
		}
		status := pending[0]
		s.mu.Unlock()

		s.push(context.Background(), ticketID, status)
	}
}

func (s *Syncer) pop(ticketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pending := s.queues[ticketID]; len(pending) > 0 {
		s.queues[ticketID] = pending[1:]
	}
}

// push sends one change. The change leaves the queue before anything is
// dispatched, so the resulting projection no longer counts it as pending.
func (s *Syncer) push(ctx context.Context, ticketID string, status api.Status) {
	updated, err := s.tickets.UpdateTicketStatus(ctx, ticketID, status)
	s.pop(ticketID)
	if err != nil {
		s.logger.Warn("ticket status update failed", "ticket", ticketID, "status", status, "error", err)
		s.notify(NoticeError, "Failed to update ticket status")

		if err := s.Reload(ctx); err != nil {
			s.logger.Error("ticket reload after failed update", "error", err)
			s.notify(NoticeError, "Failed to reload tickets")
		}
		return
	}

	s.logger.Debug("ticket status updated", "ticket", ticketID, "status", status)
	if updated != nil && updated.ID != "" {
		s.store.Dispatch(store.TicketUpdated{Ticket: *updated})
	}
}

// Reload fetches the ticket list and replaces the store's copy. A reload that
// finishes after a newer one is discarded by the store.
func (s *Syncer) Reload(ctx context.Context) error {
	seq := s.store.NextFetchSeq()
	page, err := s.tickets.ListTickets(ctx, api.ListParams{Limit: s.limit()})
	if err != nil {
		return err
	}
	s.store.Dispatch(store.TicketsFetched{Seq: seq, Page: *page})
	return nil
}

// Load is the initial fetch: it marks the list as loading, fetches, and
// records the outcome. Failures are reported to the user and the board keeps
// whatever list it has.
func (s *Syncer) Load(ctx context.Context) error {
	s.store.Dispatch(store.TicketsFetchStarted{})

	seq := s.store.NextFetchSeq()
	page, err := s.tickets.ListTickets(ctx, api.ListParams{Limit: s.limit()})
	if err != nil {
		s.logger.Warn("ticket load failed", "error", err)
		s.store.Dispatch(store.TicketsFetchFailed{Message: api.Message(err)})
		s.notify(NoticeError, "Failed to load tickets")
		return err
	}

	s.store.Dispatch(store.TicketsFetched{Seq: seq, Page: *page})
	return nil
}

func (s *Syncer) notify(kind, message string) {
	if s.notifier != nil {
		s.notifier.Notify(kind, message, 0)
	}
}
