package es

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Skotchmaster/rocketshoes/internal/catalog"
	"github.com/Skotchmaster/rocketshoes/internal/models"
	"github.com/elastic/go-elasticsearch/v9"
)

// Products looks products up by document id in an Elasticsearch index.
type Products struct {
	ES    *elasticsearch.Client
	Index string
}

type getResponse struct {
	Found  bool            `json:"found"`
	Source *models.Product `json:"_source"`
}

func (p *Products) GetProduct(ctx context.Context, productID int) (*models.Product, error) {
	res, err := p.ES.Get(p.Index, strconv.Itoa(productID), p.ES.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("product %d: %w", productID, catalog.ErrNotFound)
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es get %s: %s", res.Status(), body)
	}

	var doc getResponse
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("es decode: %w", err)
	}
	if !doc.Found || doc.Source == nil {
		return nil, fmt.Errorf("product %d: %w", productID, catalog.ErrNotFound)
	}

	product := *doc.Source
	product.ID = productID
	return &product, nil
}
