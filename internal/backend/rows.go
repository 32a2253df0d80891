package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
)

// restErrorMessage extracts the PostgREST error message, falling back
// to the raw body.
func restErrorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	if len(body) > 0 {
		return string(body)
	}
	return "row request rejected"
}

// restURL builds the PostgREST endpoint for a query.
func (c *client) restURL(q Query) string {
	v := url.Values{}
	v.Set("select", "*")

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.Set(k, q.Filters[k])
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return c.baseURL + "/rest/v1/" + q.Resource + "?" + v.Encode()
}

// Select reads rows from a named resource.
func (c *client) Select(ctx context.Context, q Query) ([]json.RawMessage, error) {
	body, status, err := c.send(ctx, timeoutLight, "select:"+q.Resource,
		"Loading "+q.Resource+" took too long. Please try again.",
		http.MethodGet, c.restURL(q), nil, nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &UpstreamError{Status: status, Message: restErrorMessage(body)}
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &UpstreamError{Status: status, Message: "decode rows: " + err.Error()}
	}
	if rows == nil {
		rows = []json.RawMessage{}
	}
	return rows, nil
}

// SelectOne reads a single row, returning (nil, nil) when absent.
func (c *client) SelectOne(ctx context.Context, q Query) (json.RawMessage, error) {
	q.Limit = 1
	rows, err := c.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Insert writes a row and returns the stored representation.
func (c *client) Insert(ctx context.Context, resource string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &UpstreamError{Message: "marshal insert payload: " + err.Error()}
	}

	hdr := http.Header{"Prefer": []string{"return=representation"}}
	body, status, err := c.send(ctx, timeoutLight, "insert:"+resource,
		"Saving to "+resource+" took too long. Please try again.",
		http.MethodPost, c.baseURL+"/rest/v1/"+resource, data, hdr)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &UpstreamError{Status: status, Message: restErrorMessage(body)}
	}
	return firstRow(body)
}

// Update patches a row by id and returns the stored representation.
func (c *client) Update(ctx context.Context, resource, id string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &UpstreamError{Message: "marshal update payload: " + err.Error()}
	}

	hdr := http.Header{"Prefer": []string{"return=representation"}}
	u := c.baseURL + "/rest/v1/" + resource + "?id=eq." + url.QueryEscape(id)
	body, status, err := c.send(ctx, timeoutLight, "update:"+resource,
		"Updating "+resource+" took too long. Please try again.",
		http.MethodPatch, u, data, hdr)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &UpstreamError{Status: status, Message: restErrorMessage(body)}
	}
	return firstRow(body)
}

// Delete removes a row by id.
func (c *client) Delete(ctx context.Context, resource, id string) error {
	u := c.baseURL + "/rest/v1/" + resource + "?id=eq." + url.QueryEscape(id)
	body, status, err := c.send(ctx, timeoutLight, "delete:"+resource,
		"Deleting from "+resource+" took too long. Please try again.",
		http.MethodDelete, u, nil, nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		return &UpstreamError{Status: status, Message: restErrorMessage(body)}
	}
	return nil
}

// firstRow unwraps the single-element array PostgREST returns for
// return=representation writes.
func firstRow(body []byte) (json.RawMessage, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		// Some deployments return the bare object.
		return json.RawMessage(body), nil
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
