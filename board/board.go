// Package board keeps the kanban view of the ticket list: four status
// columns projected from the flat list, drag handling with optimistic status
// changes, and the sync that pushes those changes to the API.
package board

import (
	"slices"

	"github.com/CrowderSoup/minijira/api"
)

// Board maps each status column to its tickets in display order. It is
// derived from the ticket list and never authoritative.
type Board map[api.Status][]api.Ticket

// Project partitions tickets into the four status columns, keeping their
// relative order. All four columns are present even when empty. Tickets with
// any other status are left off the board.
func Project(tickets []api.Ticket) Board {
	board := make(Board, len(api.Statuses))
	for _, status := range api.Statuses {
		board[status] = []api.Ticket{}
	}
	for _, ticket := range tickets {
		column, ok := board[ticket.Status]
		if !ok {
			continue
		}
		board[ticket.Status] = append(column, ticket)
	}
	return board
}

// IsColumn reports whether id names one of the columns rather than a ticket.
func IsColumn(id string) bool {
	return api.Status(id).Valid()
}

// Clone copies the board so the copy can be changed independently.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for status, tickets := range b {
		out[status] = slices.Clone(tickets)
		if out[status] == nil {
			out[status] = []api.Ticket{}
		}
	}
	return out
}

// ColumnOf resolves id to a column: a column identifier resolves to itself,
// a ticket id to the column holding it.
func (b Board) ColumnOf(id string) (api.Status, bool) {
	if IsColumn(id) {
		return api.Status(id), true
	}
	for _, status := range api.Statuses {
		if indexOf(b[status], id) >= 0 {
			return status, true
		}
	}
	return "", false
}

// Find returns the ticket with the given id and its column.
func (b Board) Find(id string) (api.Ticket, api.Status, bool) {
	for _, status := range api.Statuses {
		if i := indexOf(b[status], id); i >= 0 {
			return b[status][i], status, true
		}
	}
	return api.Ticket{}, "", false
}

// Flatten concatenates the columns in display order.
func (b Board) Flatten() []api.Ticket {
	var out []api.Ticket
	for _, status := range api.Statuses {
		out = append(out, b[status]...)
	}
	return out
}

// Column is one column of the board as shown to a client.
type Column struct {
	Status  api.Status   `json:"status"`
	Count   int          `json:"count"`
	Tickets []api.Ticket `json:"tickets"`
}

// Columns lists the columns in display order.
func (b Board) Columns() []Column {
	columns := make([]Column, 0, len(api.Statuses))
	for _, status := range api.Statuses {
		tickets := b[status]
		if tickets == nil {
			tickets = []api.Ticket{}
		}
		columns = append(columns, Column{Status: status, Count: len(tickets), Tickets: tickets})
	}
	return columns
}

func indexOf(tickets []api.Ticket, id string) int {
	return slices.IndexFunc(tickets, func(t api.Ticket) bool { return t.ID == id })
}
