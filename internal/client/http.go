package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPClient makes REST calls to the decomp agent backend.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client targeting the given base URL
// (e.g. "http://127.0.0.1:8000").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ListFunctions fetches /api/functions with the given filters.
func (c *HTTPClient) ListFunctions(q ListFunctionsQuery) (*FunctionList, error) {
	params := url.Values{}
	if q.Library != "" {
		params.Set("library", q.Library)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.MinMatch > 0 {
		params.Set("min_match", strconv.FormatFloat(q.MinMatch, 'f', -1, 64))
	}
	if q.MaxMatch > 0 {
		params.Set("max_match", strconv.FormatFloat(q.MaxMatch, 'f', -1, 64))
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(q.PerPage))
	}

	path := "/api/functions"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out FunctionList
	if err := c.get(path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFunction fetches /api/functions/{id}.
func (c *HTTPClient) GetFunction(id int) (*FunctionDetail, error) {
	var out FunctionDetail
	if err := c.get("/api/functions/"+strconv.Itoa(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFunctionAttempts fetches /api/functions/{id}/attempts.
func (c *HTTPClient) GetFunctionAttempts(id int) (*AttemptHistory, error) {
	var out AttemptHistory
	if err := c.get("/api/functions/"+strconv.Itoa(id)+"/attempts", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTreemap fetches /api/functions/treemap.
func (c *HTTPClient) GetTreemap() (*TreemapNode, error) {
	var out TreemapNode
	if err := c.get("/api/functions/treemap", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOverview fetches /api/stats/overview.
func (c *HTTPClient) GetOverview() (*Overview, error) {
	var out Overview
	if err := c.get("/api/stats/overview", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLibraryStats fetches /api/stats/by-library.
func (c *HTTPClient) GetLibraryStats() ([]LibraryStats, error) {
	var out struct {
		Libraries []LibraryStats `json:"libraries"`
	}
	if err := c.get("/api/stats/by-library", &out); err != nil {
		return nil, err
	}
	return out.Libraries, nil
}

// StartBatch sends POST /api/batch/start.
func (c *HTTPClient) StartBatch(req BatchStartRequest) error {
	return c.post("/api/batch/start", req, nil)
}

// GetBatch fetches /api/batch/current.
func (c *HTTPClient) GetBatch() (*BatchStatus, error) {
	var out BatchStatus
	if err := c.get("/api/batch/current", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelBatch sends POST /api/batch/cancel.
func (c *HTTPClient) CancelBatch() error {
	return c.post("/api/batch/cancel", nil, nil)
}

// GetConfig fetches /api/config.
func (c *HTTPClient) GetConfig() (*BackendConfig, error) {
	var out BackendConfig
	if err := c.get("/api/config", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) get(path string, out interface{}) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) post(path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: %d %s", path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
