package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/K-Gaydukov/marketplace/internal/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type staticTokens struct{ token string }

func (s staticTokens) MintServiceToken() (string, error) { return s.token, nil }

func TestGetProductDecodesAndForwardsBearer(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":5,"sku":"W-5","name":"Widget","price":"10.50","stock":42,"isActive":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, staticTokens{})
	p, err := c.GetProduct(context.Background(), 5, "caller-token")
	require.NoError(t, err)

	require.Equal(t, "Bearer caller-token", gotAuth)
	require.Equal(t, "/products/5", gotPath)
	require.Equal(t, int64(5), p.ID)
	require.Equal(t, "Widget", p.Name)
	require.True(t, p.Price.Equal(decimal.RequireFromString("10.50")))
	require.Equal(t, 42, p.Stock)
	require.True(t, p.IsActive)
}

func TestGetProductNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, staticTokens{})
	_, err := c.GetProduct(context.Background(), 99, "tok")
	require.True(t, apperr.IsNotFound(err))
}

func TestAdjustStockUsesServiceToken(t *testing.T) {
	var gotAuth, gotMethod, gotDelta, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		gotDelta = r.URL.Query().Get("delta")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":5,"sku":"W-5","name":"Widget","price":"10.50","stock":40,"isActive":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, staticTokens{token: "svc-token"})
	p, err := c.AdjustStock(context.Background(), 5, -2)
	require.NoError(t, err)

	require.Equal(t, "Bearer svc-token", gotAuth)
	require.Equal(t, http.MethodPatch, gotMethod)
	require.Equal(t, "-2", gotDelta)
	require.Equal(t, "/products/5/stock", gotPath)
	require.Equal(t, 40, p.Stock)
}

func TestAdjustStockValidationMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, staticTokens{token: "svc-token"})
	_, err := c.AdjustStock(context.Background(), 5, -100)
	require.True(t, apperr.IsValidation(err))
}

func TestUpstreamStatusMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, staticTokens{})
	_, err := c.GetProduct(context.Background(), 5, "tok")
	require.Error(t, err)
	require.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	require.Contains(t, err.Error(), "status 500")
}

func TestCatalogUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(http.DefaultClient, srv.URL, staticTokens{})
	_, err := c.GetProduct(context.Background(), 5, "tok")
	require.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}
