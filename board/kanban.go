package board

import (
	"context"
	"log/slog"
	"sync"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/store"
)

// TicketStore is the slice of the application store the board depends on.
type TicketStore interface {
	store.TicketFetcher
	store.Subscriber
}

// Snapshot is the board as published to clients.
type Snapshot struct {
	Columns  []Column `json:"columns"`
	ActiveID string   `json:"activeId,omitempty"`
	Loading  bool     `json:"loading"`
	Error    string   `json:"error,omitempty"`
}

// Kanban wires the board together: it re-projects the board whenever the
// store's ticket list changes, routes drag gestures to the coordinator and
// publishes snapshots to listeners.
type Kanban struct {
	store       TicketStore
	coordinator *Coordinator
	syncer      *Syncer
	logger      *slog.Logger

	mu          sync.Mutex
	version     uint64
	listeners   map[int]func(Snapshot)
	nextID      int
	unsubscribe func()
}

func NewKanban(st TicketStore, tickets TicketAPI, notifier Notifier, logger *slog.Logger) *Kanban {
	if logger == nil {
		logger = slog.Default()
	}

	syncer := NewSyncer(tickets, st, notifier, logger)
	k := &Kanban{
		store:       st,
		coordinator: NewCoordinator(syncer, notifier),
		syncer:      syncer,
		logger:      logger,
		listeners:   make(map[int]func(Snapshot)),
	}

	state := st.State()
	k.version = state.Tickets.Version
	k.coordinator.SetBoard(k.project(state.Tickets.Tickets))
	k.coordinator.OnChange(func(Board) { k.publish() })
	k.unsubscribe = st.Subscribe(k.onState)

	return k
}

func (k *Kanban) onState(state store.State, _ store.Action) {
	k.mu.Lock()
	changed := state.Tickets.Version != k.version
	k.version = state.Tickets.Version
	k.mu.Unlock()

	if changed {
		k.coordinator.SetBoard(k.project(state.Tickets.Tickets))
		return
	}
	// Loading flags changed without a new list.
	k.publish()
}

// project builds the board from the store's list with every unconfirmed
// status change reapplied.
func (k *Kanban) project(tickets []api.Ticket) Board {
	pending := k.syncer.Pending()
	if len(pending) == 0 {
		return Project(tickets)
	}

	overlaid := make([]api.Ticket, len(tickets))
	copy(overlaid, tickets)
	for i := range overlaid {
		if status, ok := pending[overlaid[i].ID]; ok {
			overlaid[i].Status = status
		}
	}
	return Project(overlaid)
}

// Load runs the initial fetch.
func (k *Kanban) Load(ctx context.Context) error {
	return k.syncer.Load(ctx)
}

// Reload refetches the list without touching the loading flags.
func (k *Kanban) Reload(ctx context.Context) error {
	return k.syncer.Reload(ctx)
}

// SetPageSize changes how many tickets Load and Reload fetch.
func (k *Kanban) SetPageSize(size int) {
	k.syncer.SetPageSize(size)
}

// Wait blocks until pending status syncs are done.
func (k *Kanban) Wait() {
	k.syncer.Wait()
}

// Close detaches the board from the store after pending syncs finish.
func (k *Kanban) Close() {
	k.syncer.Wait()
	if k.unsubscribe != nil {
		k.unsubscribe()
	}
}

func (k *Kanban) Board() Board {
	return k.coordinator.Board()
}

func (k *Kanban) OnDragStart(ticketID string) {
	k.coordinator.OnDragStart(ticketID)
	k.publish()
}

func (k *Kanban) OnDragOver(targetID string) {
	k.coordinator.OnDragOver(targetID)
}

func (k *Kanban) OnDragEnd(targetID string) DragResult {
	result := k.coordinator.OnDragEnd(targetID)
	if result.Outcome == DragAborted || result.Outcome == DragUnchanged {
		// The board did not change, but the drag overlay has to go.
		k.publish()
	}
	return result
}

// Snapshot returns the board with the current drag and loading state.
func (k *Kanban) Snapshot() Snapshot {
	activeID, _ := k.coordinator.Session()
	tickets := k.store.State().Tickets

	snapshot := Snapshot{
		Columns:  k.coordinator.Board().Columns(),
		ActiveID: activeID,
		Loading:  tickets.IsLoading,
	}
	if tickets.IsError {
		snapshot.Error = tickets.Message
	}
	return snapshot
}

// Subscribe registers fn to receive every published snapshot.
func (k *Kanban) Subscribe(fn func(Snapshot)) func() {
	k.mu.Lock()
	defer k.mu.Unlock()

	id := k.nextID
	k.nextID++
	k.listeners[id] = fn

	return func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		delete(k.listeners, id)
	}
}

func (k *Kanban) publish() {
	k.mu.Lock()
	listeners := make([]func(Snapshot), 0, len(k.listeners))
	for _, fn := range k.listeners {
		listeners = append(listeners, fn)
	}
	k.mu.Unlock()

	if len(listeners) == 0 {
		return
	}

	snapshot := k.Snapshot()
	for _, fn := range listeners {
		fn(snapshot)
	}
}
