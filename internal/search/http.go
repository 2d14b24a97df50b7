package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/apperr"
)

// HTTPSearcher delegates ranking to an external service that accepts
// POST {baseURL}/search with {"query": ...} and answers api.SearchResponse.
type HTTPSearcher struct {
	client *resty.Client
}

func NewHTTPSearcher(baseURL string, timeout time.Duration) *HTTPSearcher {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &HTTPSearcher{client: c}
}

func (s *HTTPSearcher) Search(ctx context.Context, query string) ([]api.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("query is required")
	}
	var out api.SearchResponse
	var fail api.ErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(api.SearchRequest{Query: query}).
		SetResult(&out).
		SetError(&fail).
		Post("/search")
	if err != nil {
		return nil, apperr.Transient("search service unreachable", err)
	}
	if resp.IsError() {
		kind := apperr.KindFromStatus(resp.StatusCode())
		if kind == apperr.KindInternal {
			kind = apperr.KindTransient
		}
		msg := fail.Error
		if msg == "" {
			msg = fmt.Sprintf("search service returned %d", resp.StatusCode())
		}
		return nil, apperr.New(kind, msg)
	}
	if out.Results == nil {
		out.Results = []api.SearchResult{}
	}
	return out.Results, nil
}
