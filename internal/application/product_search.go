package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	repo "github.com/oksasatya/pastryjoy-api/internal/domain/repository"
	"github.com/oksasatya/pastryjoy-api/pkg/helpers"
)

const esTimeout = 3 * time.Second

type productDoc struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ImageURL   string   `json:"image_url,omitempty"`
	RecipeIDs  []string `json:"recipe_ids"`
	FixedCosts string   `json:"fixed_costs"`
	Currency   string   `json:"currency"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

func toProductDoc(p *entity.Product) productDoc {
	ids := make([]string, 0, len(p.Recipes))
	for _, r := range p.Recipes {
		ids = append(ids, r.RecipeID.String())
	}
	return productDoc{
		ID:         p.ID.String(),
		Name:       p.Name,
		ImageURL:   p.ImageURL,
		RecipeIDs:  ids,
		FixedCosts: p.FixedCosts.Amount().StringFixed(2),
		Currency:   p.FixedCosts.Currency(),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (s *ProductService) searchEnabled() bool { return s.ES != nil && s.ESIndex != "" }

// indexProduct mirrors the product into the search index. Failures are logged
// and never fail the write that triggered them.
func (s *ProductService) indexProduct(ctx context.Context, p *entity.Product) {
	if !s.searchEnabled() || p == nil {
		return
	}
	b, _ := json.Marshal(toProductDoc(p))
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID.String(), Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, esTimeout)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
}

func (s *ProductService) unindexProduct(ctx context.Context, id uuid.UUID) {
	if !s.searchEnabled() {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id.String()}
	c, cancel := context.WithTimeout(ctx, esTimeout)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search runs a fuzzy name search against the index and falls back to the
// SQL name filter when search is disabled or unavailable.
func (s *ProductService) Search(ctx context.Context, q string, page repo.Page) ([]*entity.Product, error) {
	page = page.Normalize()
	if strings.TrimSpace(q) == "" {
		return []*entity.Product{}, nil
	}
	if s.searchEnabled() {
		ids, err := s.searchIDs(ctx, q, page)
		if err == nil {
			return s.loadByIDs(ctx, ids)
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("q", q).Warn("es search failed, falling back to sql")
		}
	}
	return s.Repo.SearchByName(ctx, q, page)
}

func (s *ProductService) searchIDs(ctx context.Context, q string, page repo.Page) ([]uuid.UUID, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name"},
				"fuzziness": "AUTO",
			},
		},
		"from":    page.Skip,
		"size":    page.Limit,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, esTimeout)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		if id, err := uuid.Parse(h.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// loadByIDs keeps search ranking and skips hits deleted since indexing.
func (s *ProductService) loadByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.Repo.GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ReindexAll pushes every product into the search index.
func (s *ProductService) ReindexAll(ctx context.Context) (int, error) {
	if !s.searchEnabled() {
		return 0, fmt.Errorf("%w: search index", ErrNotConfigured)
	}
	if err := helpers.EnsureIndex(ctx, s.ES, s.ESIndex, helpers.ProductIndexMapping); err != nil {
		return 0, fmt.Errorf("ensure index: %w", err)
	}
	n := 0
	page := repo.Page{Limit: repo.MaxLimit}
	for {
		items, err := s.Repo.GetAll(ctx, page)
		if err != nil {
			return n, err
		}
		for _, p := range items {
			s.indexProduct(ctx, p)
			n++
		}
		if len(items) < page.Limit {
			return n, nil
		}
		page.Skip += page.Limit
	}
}
