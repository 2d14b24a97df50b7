// Package backend is the HTTP client the chat front-end uses to call the
// marketplace API. Every non-2xx answer becomes an *apperr.Error whose kind
// follows the response status.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/auth"
	"github.com/iliyamo/tg-marketplace/internal/model"
)

type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	r := c.http.R().SetContext(ctx)
	if token != "" {
		r.SetAuthToken(token)
	}
	return r
}

// do sends r and decodes a 2xx body into out when out is non-nil.
func do(r *resty.Request, method, path string, out any) error {
	var fail api.ErrorResponse
	r.SetError(&fail)
	if out != nil {
		r.SetResult(out)
	}
	resp, err := r.Execute(method, path)
	if err != nil {
		return apperr.Transient("backend unreachable", err)
	}
	if !resp.IsError() {
		return nil
	}
	msg := fail.Error
	if msg == "" {
		msg = fmt.Sprintf("backend returned %d", resp.StatusCode())
	}
	return apperr.New(apperr.KindFromStatus(resp.StatusCode()), msg)
}

func idPath(prefix string, id uint64) string {
	return prefix + strconv.FormatUint(id, 10)
}

func (c *Client) Register(ctx context.Context, req api.RegisterRequest) error {
	return do(c.request(ctx, "").SetBody(req), http.MethodPost, "/auth/register", nil)
}

func (c *Client) Login(ctx context.Context, login, password string) (api.AuthResponse, error) {
	var out api.AuthResponse
	err := do(c.request(ctx, "").SetBody(api.LoginRequest{NicknameOrEmail: login, Password: password}),
		http.MethodPost, "/auth/login", &out)
	return out, err
}

func (c *Client) Refresh(ctx context.Context, refresh string) (auth.Token, error) {
	var out api.AccessResponse
	err := do(c.request(ctx, "").SetBody(api.RefreshRequest{RefreshToken: refresh}),
		http.MethodPost, "/auth/refresh", &out)
	return out.Access, err
}

func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := do(c.request(ctx, ""), http.MethodGet, "/manage/health", &out)
	return out, err
}

func (c *Client) Users(ctx context.Context) ([]model.UserSummary, error) {
	var out api.UsersResponse
	err := do(c.request(ctx, ""), http.MethodGet, "/manage/users", &out)
	return out.Users, err
}

func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var out api.ProductsResponse
	err := do(c.request(ctx, ""), http.MethodGet, "/products", &out)
	return out.Products, err
}

func (c *Client) Product(ctx context.Context, id uint64) (model.Product, error) {
	var out model.Product
	err := do(c.request(ctx, ""), http.MethodGet, idPath("/products/", id), &out)
	return out, err
}

func (c *Client) Search(ctx context.Context, query string) ([]api.SearchResult, error) {
	var out api.SearchResponse
	err := do(c.request(ctx, "").SetQueryParam("q", query), http.MethodGet, "/search", &out)
	return out.Results, err
}

func (c *Client) CreateProduct(ctx context.Context, token string, req api.ProductRequest) (model.Product, error) {
	var out model.Product
	err := do(c.request(ctx, token).SetBody(req), http.MethodPost, "/products", &out)
	return out, err
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id uint64, patch model.ProductPatch) (model.Product, error) {
	var out model.Product
	err := do(c.request(ctx, token).SetBody(patch), http.MethodPatch, idPath("/products/", id), &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id uint64) error {
	return do(c.request(ctx, token), http.MethodDelete, idPath("/products/", id), nil)
}

func (c *Client) Purchase(ctx context.Context, token string, id uint64) error {
	return do(c.request(ctx, token), http.MethodPost, idPath("/products/purchase/", id), nil)
}

func (c *Client) Subscribe(ctx context.Context, token string, sellerID uint64) error {
	return do(c.request(ctx, token), http.MethodPost, idPath("/subscriptions/subscribe/", sellerID), nil)
}

func (c *Client) Unsubscribe(ctx context.Context, token string, sellerID uint64) error {
	return do(c.request(ctx, token), http.MethodPost, idPath("/subscriptions/unsubscribe/", sellerID), nil)
}

func (c *Client) Profile(ctx context.Context, token string) (api.ProfileResponse, error) {
	var out api.ProfileResponse
	err := do(c.request(ctx, token), http.MethodGet, "/profile", &out)
	return out, err
}

func (c *Client) Reward(ctx context.Context, token string) (api.WalletResponse, error) {
	var out api.WalletResponse
	err := do(c.request(ctx, token), http.MethodPost, "/wallet/reward", &out)
	return out, err
}

func (c *Client) ClearWallet(ctx context.Context, token string) (api.WalletResponse, error) {
	var out api.WalletResponse
	err := do(c.request(ctx, token), http.MethodPost, "/wallet/clear", &out)
	return out, err
}

func (c *Client) Populate(ctx context.Context, token string) (api.PopulateResponse, error) {
	var out api.PopulateResponse
	err := do(c.request(ctx, token), http.MethodPost, "/manage/populate/products", &out)
	return out, err
}
