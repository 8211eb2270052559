package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/rocketshoes/internal/models"
)

var ErrNotFound = errors.New("not found")

// Client talks to the storefront API serving products/{id} and stock/{id}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) GetProduct(ctx context.Context, productID int) (*models.Product, error) {
	var p models.Product
	found, err := c.get(ctx, "products/"+strconv.Itoa(productID), &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	return &p, nil
}

func (c *Client) GetStock(ctx context.Context, productID int) (*models.Stock, error) {
	var s models.Stock
	found, err := c.get(ctx, "stock/"+strconv.Itoa(productID), &s)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("stock %d: %w", productID, ErrNotFound)
	}
	return &s, nil
}

// get decodes a JSON body into out. A 404, an empty body or a JSON null is
// reported as found == false.
func (c *Client) get(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("GET %s failed with status: %d", path, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("decode response: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "{}" {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}
