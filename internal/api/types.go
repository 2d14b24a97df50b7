// Package api holds the JSON request and response bodies of the HTTP API.
// The server handlers and the bot's client share them.
package api

import (
	"github.com/iliyamo/tg-marketplace/internal/auth"
	"github.com/iliyamo/tg-marketplace/internal/model"
)

type RegisterRequest struct {
	Nickname        string `json:"nickname"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	NicknameOrEmail string `json:"nickname_or_email"`
	Password        string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by login.
type AuthResponse struct {
	User    model.UserSummary `json:"user"`
	Access  auth.Token        `json:"access"`
	Refresh auth.Token        `json:"refresh"`
}

type AccessResponse struct {
	Access auth.Token `json:"access"`
}

type ProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type ProductsResponse struct {
	Products []model.Product `json:"products"`
}

type ProfileResponse struct {
	ID            uint64              `json:"id"`
	Nickname      string              `json:"nickname"`
	Email         string              `json:"email"`
	Wallet        float64             `json:"wallet"`
	Products      []model.Product     `json:"products"`
	Subscriptions []model.UserSummary `json:"subscriptions"`
}

type UsersResponse struct {
	Users []model.UserSummary `json:"users"`
}

type WalletResponse struct {
	Message    string  `json:"message"`
	NewBalance float64 `json:"new_balance"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PopulateResponse struct {
	Message string `json:"message"`
	Created int    `json:"created"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SearchResult is one ranked hit from product search.
type SearchResult struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
