package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/service"
)

// AccountHandler covers the caller's own profile, wallet and subscriptions.
type AccountHandler struct {
	Profiles      *service.ProfileService
	Wallets       *service.WalletService
	Subscriptions *service.SubscriptionService
}

func NewAccountHandler(p *service.ProfileService, w *service.WalletService, s *service.SubscriptionService) *AccountHandler {
	return &AccountHandler{Profiles: p, Wallets: w, Subscriptions: s}
}

func (h *AccountHandler) Profile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := h.Profiles.Get(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.ProfileResponse{
		ID:            p.User.ID,
		Nickname:      p.User.Nickname,
		Email:         p.User.Email,
		Wallet:        p.User.Wallet,
		Products:      p.Products,
		Subscriptions: p.Subscriptions,
	})
}

func (h *AccountHandler) Reward(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	bal, err := h.Wallets.Reward(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.WalletResponse{Message: "Reward added", NewBalance: bal})
}

func (h *AccountHandler) Clear(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	bal, err := h.Wallets.Clear(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.WalletResponse{Message: "Wallet cleared", NewBalance: bal})
}

func (h *AccountHandler) Subscribe(c echo.Context) error {
	return h.subscription(c, true)
}

func (h *AccountHandler) Unsubscribe(c echo.Context) error {
	return h.subscription(c, false)
}

func (h *AccountHandler) subscription(c echo.Context, follow bool) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	sellerID, err := pathID(c, "seller_id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if follow {
		if err := h.Subscriptions.Subscribe(ctx, uid, sellerID); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, api.MessageResponse{Message: "Subscribed successfully"})
	}
	if err := h.Subscriptions.Unsubscribe(ctx, uid, sellerID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.MessageResponse{Message: "Unsubscribed successfully"})
}
