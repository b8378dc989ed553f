package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListTickets fetches one page of tickets.
func (c *Client) ListTickets(ctx context.Context, params ListParams) (*TicketPage, error) {
	var page TicketPage
	if err := c.do(ctx, http.MethodGet, "/tickets/all", params.Values(), nil, &page); err != nil {
		return nil, err
	}
	if page.Tickets == nil {
		page.Tickets = []Ticket{}
	}
	return &page, nil
}

func (c *Client) CreateTicket(ctx context.Context, input TicketInput) (*Ticket, error) {
	var ticket Ticket
	if err := c.do(ctx, http.MethodPost, "/tickets/create", nil, input, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicket sends a full or partial update. body is usually a TicketInput
// or a StatusPatch.
func (c *Client) UpdateTicket(ctx context.Context, id string, body any) (*Ticket, error) {
	var ticket Ticket
	query := url.Values{"ticketId": {id}}
	if err := c.do(ctx, http.MethodPut, "/tickets/update", query, body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicketStatus sends the partial {status} update used by the board.
func (c *Client) UpdateTicketStatus(ctx context.Context, id string, status Status) (*Ticket, error) {
	return c.UpdateTicket(ctx, id, StatusPatch{Status: status})
}

func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	query := url.Values{"ticketId": {id}}
	return c.do(ctx, http.MethodDelete, "/tickets/delete", query, nil, nil)
}
