package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

// GetJSON fetches path and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, operation, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{
		Operation: operation,
		Method:    http.MethodGet,
		Path:      path,
		Query:     query,
		Out:       out,
	})
}

// PostJSON sends body as JSON and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, operation, path string, body, out any) error {
	return c.Do(ctx, Request{
		Operation: operation,
		Method:    http.MethodPost,
		Path:      path,
		Body:      body,
		Out:       out,
	})
}

// PatchJSON sends body as JSON via PATCH and decodes the response into out.
func (c *Client) PatchJSON(ctx context.Context, operation, path string, body, out any) error {
	return c.Do(ctx, Request{
		Operation: operation,
		Method:    http.MethodPatch,
		Path:      path,
		Body:      body,
		Out:       out,
	})
}

// PutJSON sends body as JSON via PUT and decodes the response into out.
func (c *Client) PutJSON(ctx context.Context, operation, path string, body, out any) error {
	return c.Do(ctx, Request{
		Operation: operation,
		Method:    http.MethodPut,
		Path:      path,
		Body:      body,
		Out:       out,
	})
}

// Delete issues a DELETE to path.
func (c *Client) Delete(ctx context.Context, operation, path string) error {
	return c.Do(ctx, Request{
		Operation: operation,
		Method:    http.MethodDelete,
		Path:      path,
	})
}

// PostForm sends a form-encoded body, used by the token exchange.
func (c *Client) PostForm(ctx context.Context, operation, path string, form url.Values, out any) error {
	return c.Do(ctx, Request{
		Operation: operation,
		Method:    http.MethodPost,
		Path:      path,
		Form:      form,
		Out:       out,
	})
}
