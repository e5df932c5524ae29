package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/K-Gaydukov/marketplace/internal/apperr"
	"github.com/K-Gaydukov/marketplace/internal/entity"
	"github.com/K-Gaydukov/marketplace/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var stockAdjustments = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_stock_adjustments_total",
		Help: "Stock adjustment calls to the catalog, by direction and outcome",
	},
	[]string{"direction", "outcome"},
)

// TokenSource mints the service credential used for stock adjustments.
type TokenSource interface {
	MintServiceToken() (string, error)
}

// Client talks to the catalog service over its REST boundary. Product
// reads forward the caller's own bearer token; stock adjustments always
// authenticate as the order service.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  TokenSource
}

func NewClient(httpClient *http.Client, baseURL string, tokens TokenSource) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, baseURL: baseURL, tokens: tokens}
}

func (c *Client) GetProduct(ctx context.Context, id int64, bearer string) (*entity.Product, error) {
	url := fmt.Sprintf("%s/products/%d", c.baseURL, id)
	return c.do(ctx, http.MethodGet, url, bearer,
		"product not found", "product inactive or unavailable")
}

func (c *Client) AdjustStock(ctx context.Context, id int64, delta int) (*entity.Product, error) {
	token, err := c.tokens.MintServiceToken()
	if err != nil {
		return nil, apperr.Upstream("mint service token", err)
	}
	url := fmt.Sprintf("%s/products/%d/stock?delta=%s", c.baseURL, id, strconv.Itoa(delta))
	p, err := c.do(ctx, http.MethodPatch, url, token,
		"product not found", "invalid stock update")

	direction := "reserve"
	if delta > 0 {
		direction = "release"
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	stockAdjustments.WithLabelValues(direction, outcome).Inc()
	return p, err
}

// do performs the call and maps the remote status taxonomy:
// 404 -> NotFound, 422 -> Validation, other non-2xx -> Upstream.
func (c *Client) do(ctx context.Context, method, url, bearer, notFoundMsg, validationMsg string) (*entity.Product, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, apperr.Upstream("build catalog request", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Upstream("catalog unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var product entity.Product
		if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
			return nil, apperr.Upstream("decode catalog response", err)
		}
		return &product, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.NotFound("%s", notFoundMsg)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, apperr.Validation("%s", validationMsg)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.Upstream(fmt.Sprintf("catalog error: status %d: %s", resp.StatusCode, body), nil)
	}
}

var _ usecase.CatalogGateway = (*Client)(nil)
