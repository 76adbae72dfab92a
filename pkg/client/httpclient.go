package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HttpClient is a small JSON-over-HTTP helper the typed clients build on.
type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewHttpClient(baseURL string) *HttpClient {
	return &HttpClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (c *HttpClient) GET(path string) (*Response, error) {
	return c.request(http.MethodGet, path, nil, nil)
}

func (c *HttpClient) POST(path string, body any) (*Response, error) {
	return c.request(http.MethodPost, path, body, nil)
}

func (c *HttpClient) PUT(path string, body any) (*Response, error) {
	return c.request(http.MethodPut, path, body, nil)
}

func (c *HttpClient) DELETE(path string) (*Response, error) {
	return c.request(http.MethodDelete, path, nil, nil)
}

func (c *HttpClient) POSTWithHeaders(path string, body any, headers map[string]string) (*Response, error) {
	return c.request(http.MethodPost, path, body, headers)
}

func (c *HttpClient) request(method, path string, body any, headers map[string]string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{Response: resp, Body: data}, nil
}
