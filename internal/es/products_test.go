package es

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Skotchmaster/rocketshoes/internal/catalog"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProducts(t *testing.T, status int, body string) *Products {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &Products{ES: client, Index: "product"}
}

func TestProducts_GetProduct(t *testing.T) {
	t.Parallel()

	p := newTestProducts(t, http.StatusOK,
		`{"_index":"product","_id":"7","found":true,"_source":{"title":"Tênis Nike","price":139.9,"image":"https://img/7.jpg"}}`)

	got, err := p.GetProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
	assert.Equal(t, "Tênis Nike", got.Title)
	assert.InDelta(t, 139.9, got.Price, 1e-9)
}

func TestProducts_GetProduct_NotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "missing document", status: http.StatusNotFound, body: `{"_index":"product","_id":"7","found":false}`},
		{name: "found false", status: http.StatusOK, body: `{"found":false}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := newTestProducts(t, tt.status, tt.body).GetProduct(context.Background(), 7)
			assert.ErrorIs(t, err, catalog.ErrNotFound)
		})
	}
}

func TestProducts_GetProduct_ServerError(t *testing.T) {
	t.Parallel()

	_, err := newTestProducts(t, http.StatusBadRequest, `{"error":"bad"}`).GetProduct(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, catalog.ErrNotFound)
}
