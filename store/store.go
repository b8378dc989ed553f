// Package store holds the application state shared by every screen: the
// signed-in user and the ticket, project and developer lists.
//
// State changes only through Dispatch. Every dispatched action is applied
// under the store lock and then announced to subscribers in dispatch order.
package store

import (
	"slices"
	"sync"

	"github.com/CrowderSoup/minijira/api"
)

// Flags are the request bookkeeping every slice carries.
type Flags struct {
	IsLoading bool   `json:"isLoading"`
	IsError   bool   `json:"isError"`
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
}

func (f *Flags) start() {
	f.IsLoading = true
	f.IsError = false
	f.IsSuccess = false
	f.Message = ""
}

func (f *Flags) succeed() {
	f.IsLoading = false
	f.IsSuccess = true
	f.IsError = false
	f.Message = ""
}

func (f *Flags) fail(message string) {
	f.IsLoading = false
	f.IsError = true
	f.IsSuccess = false
	f.Message = message
}

func (f *Flags) reset() {
	f.IsLoading = false
	f.IsSuccess = false
	f.IsError = false
	f.Message = ""
}

// State is a snapshot of the whole application state.
type State struct {
	Auth     AuthState     `json:"auth"`
	Users    UsersState    `json:"users"`
	Projects ProjectsState `json:"projects"`
	Tickets  TicketsState  `json:"tickets"`
}

func (s State) clone() State {
	out := s
	if s.Auth.User != nil {
		user := *s.Auth.User
		out.Auth.User = &user
	}
	out.Users.Users = slices.Clone(s.Users.Users)
	out.Projects.Projects = slices.Clone(s.Projects.Projects)
	out.Tickets.Tickets = cloneTickets(s.Tickets.Tickets)
	return out
}

func cloneTickets(tickets []api.Ticket) []api.Ticket {
	if tickets == nil {
		return nil
	}
	out := make([]api.Ticket, len(tickets))
	for i, ticket := range tickets {
		ticket.Assignees = slices.Clone(ticket.Assignees)
		out[i] = ticket
	}
	return out
}

// Action is a state change. Actions are the types declared in this package.
type Action interface {
	apply(*State)
}

// Listener observes the state after each dispatch. Listeners run
// synchronously inside Dispatch and must not dispatch themselves.
type Listener func(state State, action Action)

// Reader gives read access to the state.
type Reader interface {
	State() State
}

// Dispatcher applies actions.
type Dispatcher interface {
	Dispatch(action Action)
}

// Subscriber registers listeners.
type Subscriber interface {
	Subscribe(listener Listener) (unsubscribe func())
}

// TicketFetcher is what a screen needs to run a sequenced ticket reload.
type TicketFetcher interface {
	Reader
	Dispatcher
	NextFetchSeq() uint64
}

type Store struct {
	// dispatchMu serializes dispatches so listeners see actions in order.
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	state     State
	fetchSeq  uint64
	listeners map[int]Listener
	nextID    int
}

func New() *Store {
	return &Store{
		state:     State{Tickets: TicketsState{Tickets: []api.Ticket{}}},
		listeners: make(map[int]Listener),
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Dispatch applies the action and notifies listeners.
func (s *Store) Dispatch(action Action) {
	if action == nil {
		return
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	action.apply(&s.state)
	snapshot := s.state.clone()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(snapshot, action)
	}
}

// Subscribe registers a listener. Listeners are called in registration order.
func (s *Store) Subscribe(listener Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// NextFetchSeq hands out the sequence number for a ticket list fetch. A
// TicketsFetched carrying a number lower than one already applied is dropped.
func (s *Store) NextFetchSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchSeq++
	return s.fetchSeq
}
