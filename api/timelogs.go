package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) LogTime(ctx context.Context, input TimeLogInput) (*TimeLog, error) {
	var entry TimeLog
	if err := c.do(ctx, http.MethodPost, "/time-logs/log", nil, input, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) TicketTimeLogs(ctx context.Context, ticketID string) ([]TimeLog, error) {
	logs := []TimeLog{}
	if err := c.do(ctx, http.MethodGet, "/time-logs/"+url.PathEscape(ticketID), nil, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// ListActivities fetches one page of the activity timeline.
func (c *Client) ListActivities(ctx context.Context, page, limit int) (*ActivityPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var result ActivityPage
	if err := c.do(ctx, http.MethodGet, "/activities", query, nil, &result); err != nil {
		return nil, err
	}
	if result.Activities == nil {
		result.Activities = []Activity{}
	}
	return &result, nil
}
