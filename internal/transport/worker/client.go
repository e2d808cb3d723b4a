package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
)

// ErrUnexpectedStatus is returned for non-2xx worker responses.
var ErrUnexpectedStatus = errors.New("unexpected worker status")

const maxErrorBody = 512

// Client talks to one shard worker over HTTP JSON.
type Client struct {
	id      result.WorkerID
	baseURL string
	http    *http.Client
}

// NewClient creates a worker client. A nil httpClient uses http.DefaultClient.
func NewClient(id result.WorkerID, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		id:      id,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// ID returns the worker id.
func (c *Client) ID() result.WorkerID { return c.id }

// Search runs the primary phase on the worker.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*result.ShardResult, error) {
	var resp SearchResponse
	if err := c.post(ctx, "/search", req, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// Summary fetches display data for the page documents the worker owns.
func (c *Client) Summary(ctx context.Context, req *SummaryRequest) (*result.ShardResult, error) {
	var resp SummaryResponse
	if err := c.post(ctx, "/summary", req, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(req), nil
}

// Documents looks up documents by id.
func (c *Client) Documents(ctx context.Context, req *DocumentsRequest) (*result.ShardResult, error) {
	var resp DocumentsResponse
	if err := c.post(ctx, "/documents", req, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// Health checks that the worker answers.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
}
