package store

import "github.com/CrowderSoup/minijira/api"

// TicketsState is the flat ticket list and its pagination metadata.
type TicketsState struct {
	Tickets      []api.Ticket `json:"tickets"`
	TotalTickets int          `json:"totalTickets"`
	CurrentPage  int          `json:"currentPage"`
	TotalPages   int          `json:"totalPages"`
	Flags

	// Version changes whenever Tickets is replaced or patched.
	Version uint64 `json:"version"`

	appliedSeq uint64
}

// Find returns the ticket with the given id.
func (t TicketsState) Find(id string) (api.Ticket, bool) {
	for _, ticket := range t.Tickets {
		if ticket.ID == id {
			return ticket, true
		}
	}
	return api.Ticket{}, false
}

type TicketsFetchStarted struct{}

func (TicketsFetchStarted) apply(s *State) {
	s.Tickets.IsLoading = true
	s.Tickets.IsError = false
	s.Tickets.Message = ""
}

// TicketsFetched replaces the list. Seq is the value from NextFetchSeq; zero
// means unsequenced and always applies.
type TicketsFetched struct {
	Seq  uint64
	Page api.TicketPage
}

func (a TicketsFetched) apply(s *State) {
	t := &s.Tickets
	if a.Seq != 0 {
		if a.Seq < t.appliedSeq {
			return
		}
		t.appliedSeq = a.Seq
	}

	t.succeed()
	t.Tickets = cloneTickets(a.Page.Tickets)
	if t.Tickets == nil {
		t.Tickets = []api.Ticket{}
	}
	t.TotalTickets = a.Page.TotalTickets
	t.CurrentPage = a.Page.CurrentPage
	t.TotalPages = a.Page.TotalPages
	t.Version++
}

type TicketsFetchFailed struct{ Message string }

func (a TicketsFetchFailed) apply(s *State) {
	s.Tickets.IsLoading = false
	s.Tickets.IsError = true
	s.Tickets.Message = a.Message
}

type TicketCreateStarted struct{}

func (TicketCreateStarted) apply(s *State) { s.Tickets.start() }

// TicketCreated marks success only; screens refetch to pick up the new
// ticket in server order.
type TicketCreated struct{ Ticket api.Ticket }

func (TicketCreated) apply(s *State) { s.Tickets.succeed() }

type TicketCreateFailed struct{ Message string }

func (a TicketCreateFailed) apply(s *State) { s.Tickets.fail(a.Message) }

type TicketUpdateStarted struct{}

func (TicketUpdateStarted) apply(s *State) { s.Tickets.start() }

// TicketUpdated patches the ticket in place. Unknown ids are ignored.
type TicketUpdated struct{ Ticket api.Ticket }

func (a TicketUpdated) apply(s *State) {
	t := &s.Tickets
	t.succeed()
	for i := range t.Tickets {
		if t.Tickets[i].ID == a.Ticket.ID {
			t.Tickets[i] = a.Ticket
			t.Version++
			return
		}
	}
}

type TicketUpdateFailed struct{ Message string }

func (a TicketUpdateFailed) apply(s *State) { s.Tickets.fail(a.Message) }

type TicketDeleteStarted struct{}

func (TicketDeleteStarted) apply(s *State) {
	s.Tickets.IsLoading = true
	s.Tickets.IsError = false
	s.Tickets.Message = ""
}

type TicketDeleted struct{ ID string }

func (a TicketDeleted) apply(s *State) {
	t := &s.Tickets
	t.succeed()
	kept := t.Tickets[:0:0]
	for _, ticket := range t.Tickets {
		if ticket.ID != a.ID {
			kept = append(kept, ticket)
		}
	}
	if len(kept) != len(t.Tickets) {
		t.Tickets = kept
		t.Version++
	}
}

type TicketDeleteFailed struct{ Message string }

func (a TicketDeleteFailed) apply(s *State) {
	s.Tickets.IsLoading = false
	s.Tickets.IsError = true
	s.Tickets.Message = a.Message
}

type TicketsReset struct{}

func (TicketsReset) apply(s *State) { s.Tickets.reset() }
