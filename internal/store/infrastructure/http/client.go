// Package http implements the remote storefront API client.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arozhkov/storefront/internal/store/domain"
)

// Client talks to the product/order REST API. Catalog image URLs come back
// relative and are prefixed with the configured CDN base before they leave
// this package.
type Client struct {
	log     *slog.Logger
	baseURL string
	cdnURL  string
	hc      *http.Client
}

// NewClient builds a client for the API at baseURL, prefixing images with
// cdnURL.
func NewClient(log *slog.Logger, baseURL, cdnURL string) *Client {
	return &Client{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		cdnURL:  strings.TrimRight(cdnURL, "/"),
		hc: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type listResponse struct {
	Total int              `json:"total"`
	Items []domain.Product `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListProducts fetches the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/product", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.decodeError(resp)
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}

	products := list.Items
	for i := range products {
		products[i].Image = c.imageURL(products[i].Image)
	}
	return products, nil
}

// SubmitOrder posts the order and returns the authoritative id and total.
func (c *Client) SubmitOrder(ctx context.Context, order domain.Order) (domain.OrderResult, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return domain.OrderResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/order", bytes.NewReader(body))
	if err != nil {
		return domain.OrderResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return domain.OrderResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.OrderResult{}, c.decodeError(resp)
	}

	var result domain.OrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.OrderResult{}, fmt.Errorf("decode order result: %w", err)
	}
	return result, nil
}

// decodeError surfaces the API's {"error": ...} body when present so the
// checkout machine can classify the failure by message content.
func (c *Client) decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("api status %d", resp.StatusCode)
	}
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && er.Error != "" {
		return errors.New(er.Error)
	}
	c.log.Warn("unrecognized api error body", "status", resp.StatusCode)
	return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}

func (c *Client) imageURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.cdnURL + path
}
