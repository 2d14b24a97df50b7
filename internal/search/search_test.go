package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/repository"
	"github.com/iliyamo/tg-marketplace/internal/testutil"
)

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"red", "lamp", "50w"}, Terms("Red lamp, RED 50W!"))
	assert.Empty(t, Terms("  ,; "))
}

func TestCatalogSearcherRanksNameMatchesFirst(t *testing.T) {
	db := testutil.NewDB(t)
	seller := testutil.CreateUser(t, db, "seller", 0)
	_, err := db.Exec(`INSERT INTO products (name, price, description, seller_id) VALUES
		('Desk', 10, 'has a lamp mount', ?),
		('Lamp', 20, 'warm light', ?),
		('Chair', 30, 'plain', ?)`, seller, seller, seller)
	require.NoError(t, err)
	s := NewCatalogSearcher(repository.NewProductRepo(db))

	got, err := s.Search(context.Background(), "lamp")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Lamp", got[0].Name)
	assert.Equal(t, "Desk", got[1].Name)

	got, err = s.Search(context.Background(), "sofa")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.Search(context.Background(), "  ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestHTTPSearcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		var req api.SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		if req.Query == "boom" {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "index offline", Code: "internal_error"})
			return
		}
		_ = json.NewEncoder(w).Encode(api.SearchResponse{Results: []api.SearchResult{{ID: 1, Name: "Lamp", Price: 20}}})
	}))
	defer srv.Close()
	s := NewHTTPSearcher(srv.URL+"/", time.Second)

	got, err := s.Search(context.Background(), "lamp")
	require.NoError(t, err)
	assert.Equal(t, []api.SearchResult{{ID: 1, Name: "Lamp", Price: 20}}, got)

	_, err = s.Search(context.Background(), "boom")
	require.Error(t, err)
	assert.Equal(t, apperr.KindTransient, apperr.KindOf(err))
	assert.Equal(t, "index offline", apperr.Message(err))
}
