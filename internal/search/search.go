// Package search answers free-text product queries. The ranking backend is
// pluggable: an external ranking service over HTTP, or the local catalogue.
package search

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/model"
)

// Searcher returns products ranked by relevance to query, best first. An
// empty result is not an error.
type Searcher interface {
	Search(ctx context.Context, query string) ([]api.SearchResult, error)
}

// Catalogue is the part of the product repository CatalogSearcher needs.
type Catalogue interface {
	Search(ctx context.Context, terms []string, limit int) ([]model.Product, error)
}

const (
	candidateLimit = 100
	resultLimit    = 10
)

// CatalogSearcher ranks unsold products by how many query terms appear in
// their name and description. Name matches weigh double.
type CatalogSearcher struct {
	catalogue Catalogue
}

func NewCatalogSearcher(c Catalogue) *CatalogSearcher { return &CatalogSearcher{catalogue: c} }

func (s *CatalogSearcher) Search(ctx context.Context, query string) ([]api.SearchResult, error) {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil, apperr.Validation("query is required")
	}
	candidates, err := s.catalogue.Search(ctx, terms, candidateLimit)
	if err != nil {
		return nil, apperr.Transient("search unavailable", err)
	}

	type scored struct {
		p     model.Product
		score int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, p := range candidates {
		name, desc := strings.ToLower(p.Name), strings.ToLower(p.Description)
		score := 0
		for _, t := range terms {
			if strings.Contains(name, t) {
				score += 2
			}
			if strings.Contains(desc, t) {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{p, score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].p.ID > ranked[j].p.ID
	})
	if len(ranked) > resultLimit {
		ranked = ranked[:resultLimit]
	}

	out := make([]api.SearchResult, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, api.SearchResult{
			ID:          r.p.ID,
			Name:        r.p.Name,
			Price:       r.p.Price,
			Description: r.p.Description,
		})
	}
	return out, nil
}

// Terms lowercases query and splits it on anything that is not a letter or
// digit, dropping duplicates.
func Terms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
