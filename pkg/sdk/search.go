package sdk

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Search runs a distributed search and returns the requested page.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*Page, error) {
	if q.Query == "" {
		return nil, errors.Join(ErrInvalidRequest, errors.New("sdk: query is required"))
	}
	start := time.Now()
	var page Page
	err := c.do(ctx, http.MethodPost, "/search", q, &page)
	c.obs.observe("search", start, err, "query_id", page.QueryID, "items", len(page.Items))
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Documents fetches display data for ids, returned in the same order.
// Ids no worker owns come back with Worker 0 and no fields.
func (c *Client) Documents(ctx context.Context, ids []uint32, properties ...string) (*Page, error) {
	if len(ids) == 0 {
		return nil, errors.Join(ErrInvalidRequest, errors.New("sdk: ids are required"))
	}
	start := time.Now()
	var page Page
	err := c.do(ctx, http.MethodPost, "/documents", documentsQuery{IDs: ids, Properties: properties}, &page)
	c.obs.observe("documents", start, err, "query_id", page.QueryID, "ids", len(ids))
	if err != nil {
		return nil, err
	}
	return &page, nil
}
