package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListProjects(ctx context.Context, params ListParams) (*ProjectPage, error) {
	var page ProjectPage
	if err := c.do(ctx, http.MethodGet, "/projects/all", params.Values(), nil, &page); err != nil {
		return nil, err
	}
	if page.Projects == nil {
		page.Projects = []Project{}
	}
	return &page, nil
}

func (c *Client) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodPost, "/projects/create", nil, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, input ProjectInput) (*Project, error) {
	var project Project
	query := url.Values{"projectId": {id}}
	if err := c.do(ctx, http.MethodPut, "/projects/update", query, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	query := url.Values{"projectId": {id}}
	return c.do(ctx, http.MethodDelete, "/projects/delete", query, nil, nil)
}
