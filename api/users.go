package api

import (
	"context"
	"net/http"
	"net/url"
)

// Login exchanges credentials for a user record carrying a token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/users/login", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListUsers(ctx context.Context, params ListParams) (*UserPage, error) {
	var page UserPage
	if err := c.do(ctx, http.MethodGet, "/users/all", params.Values(), nil, &page); err != nil {
		return nil, err
	}
	if page.Users == nil {
		page.Users = []User{}
	}
	return &page, nil
}

func (c *Client) RegisterUser(ctx context.Context, input UserInput) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/users/create", nil, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, input UserInput) (*User, error) {
	var user User
	query := url.Values{"userId": {id}}
	if err := c.do(ctx, http.MethodPut, "/users/update", query, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
