package board

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/CrowderSoup/minijira/api"
)

// Notice kinds understood by a Notifier.
const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notifier shows a short-lived message to the user. A zero duration leaves
// the choice to the notifier.
type Notifier interface {
	Notify(kind, message string, duration time.Duration)
}

// StatusSyncer pushes a status change to the server. It must not block on
// the network; results are reported through the store and the notifier.
type StatusSyncer interface {
	UpdateStatus(ticketID string, status api.Status)
}

// DragHandler is the gesture surface of the board. Whatever produces drag
// gestures (websocket clients, HTTP posts, the CLI) drives it.
type DragHandler interface {
	OnDragStart(ticketID string)
	OnDragOver(targetID string)
	// OnDragEnd finishes the drag. An empty targetID means the pointer was
	// released outside every column and card.
	OnDragEnd(targetID string) DragResult
}

// DragOutcome says how a drag ended.
type DragOutcome string

const (
	DragAborted   DragOutcome = "aborted"
	DragUnchanged DragOutcome = "unchanged"
	DragReordered DragOutcome = "reordered"
	DragMoved     DragOutcome = "moved"
)

// DragResult describes what a finished drag did to the board.
type DragResult struct {
	Outcome  DragOutcome `json:"outcome"`
	TicketID string      `json:"ticketId,omitempty"`
	From     api.Status  `json:"from,omitempty"`
	To       api.Status  `json:"to,omitempty"`
	Index    int         `json:"index"`
}

const moveNoticeDuration = 2 * time.Second

// Coordinator owns the displayed board and the drag session. It applies
// status changes optimistically and hands them to the syncer.
type Coordinator struct {
	syncer   StatusSyncer
	notifier Notifier

	mu       sync.Mutex
	board    Board
	activeID string
	overID   string
	onChange func(Board)
}

// NewCoordinator creates a coordinator with an empty four-column board.
func NewCoordinator(syncer StatusSyncer, notifier Notifier) *Coordinator {
	return &Coordinator{
		syncer:   syncer,
		notifier: notifier,
		board:    Project(nil),
	}
}

// OnChange registers the callback that receives a copy of the board after
// every change. It replaces any earlier callback.
func (c *Coordinator) OnChange(fn func(Board)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// SetBoard replaces the displayed board, typically with a fresh projection.
// Any optimistic state is discarded.
func (c *Coordinator) SetBoard(board Board) {
	c.mu.Lock()
	c.board = board.Clone()
	c.mu.Unlock()
	c.changed()
}

// Board returns a copy of the displayed board.
func (c *Coordinator) Board() Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board.Clone()
}

// Session returns the active ticket id and the last hovered target. Both are
// empty outside a drag.
func (c *Coordinator) Session() (activeID, overID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID, c.overID
}

// OnDragStart begins a drag of ticketID, replacing any unfinished one.
func (c *Coordinator) OnDragStart(ticketID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = ticketID
	c.overID = ""
}

// OnDragOver only tracks the hovered target; nothing moves until the drop.
func (c *Coordinator) OnDragOver(targetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeID == "" {
		return
	}
	c.overID = targetID
}

// OnDragEnd drops the active ticket on targetID, a column or a ticket, and
// always ends the session.
func (c *Coordinator) OnDragEnd(targetID string) DragResult {
	c.mu.Lock()
	activeID := c.activeID
	c.activeID = ""
	c.overID = ""

	if activeID == "" || targetID == "" {
		c.mu.Unlock()
		return DragResult{Outcome: DragAborted, TicketID: activeID}
	}

	source, sourceOK := c.board.ColumnOf(activeID)
	dest, destOK := c.board.ColumnOf(targetID)
	if !sourceOK || !destOK {
		c.mu.Unlock()
		return DragResult{Outcome: DragAborted, TicketID: activeID}
	}

	oldIndex := indexOf(c.board[source], activeID)
	if oldIndex < 0 {
		c.mu.Unlock()
		return DragResult{Outcome: DragAborted, TicketID: activeID}
	}

	if source == dest {
		result := c.reorderLocked(source, activeID, targetID, oldIndex)
		c.mu.Unlock()
		if result.Outcome == DragReordered {
			c.changed()
		}
		return result
	}

	moved := c.board[source][oldIndex]
	moved.Status = dest

	next := c.board.Clone()
	next[source] = slices.Delete(next[source], oldIndex, oldIndex+1)
	next[dest] = append(next[dest], moved)
	c.board = next
	index := len(next[dest]) - 1
	c.mu.Unlock()

	c.changed()
	if c.notifier != nil {
		c.notifier.Notify(NoticeInfo, fmt.Sprintf("Moved ticket to %s", dest), moveNoticeDuration)
	}
	if c.syncer != nil {
		c.syncer.UpdateStatus(activeID, dest)
	}

	return DragResult{Outcome: DragMoved, TicketID: activeID, From: source, To: dest, Index: index}
}

// reorderLocked moves the ticket within its column to the target's position.
// Dropping onto the column itself moves the ticket to the end. The order is
// local only and is never sent to the server.
func (c *Coordinator) reorderLocked(column api.Status, activeID, targetID string, oldIndex int) DragResult {
	tickets := c.board[column]
	newIndex := len(tickets) - 1
	if !IsColumn(targetID) {
		newIndex = indexOf(tickets, targetID)
	}

	result := DragResult{Outcome: DragUnchanged, TicketID: activeID, From: column, To: column, Index: oldIndex}
	if newIndex < 0 || newIndex == oldIndex {
		return result
	}

	next := c.board.Clone()
	next[column] = arrayMove(next[column], oldIndex, newIndex)
	c.board = next

	result.Outcome = DragReordered
	result.Index = newIndex
	return result
}

func (c *Coordinator) changed() {
	c.mu.Lock()
	fn := c.onChange
	snapshot := c.board.Clone()
	c.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

// arrayMove removes the element at from and reinserts it at to.
func arrayMove(tickets []api.Ticket, from, to int) []api.Ticket {
	item := tickets[from]
	tickets = slices.Delete(tickets, from, from+1)
	return slices.Insert(tickets, to, item)
}
