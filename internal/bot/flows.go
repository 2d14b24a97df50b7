package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/model"
)

// failure maps a backend error to the outcome its kind calls for.
func failure(err error, action string) result {
	msg := apperr.Message(err)
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return result{outcome: retry, reply: "❌ " + msg + ". Try again:"}
	case apperr.KindNotFound, apperr.KindConflict, apperr.KindForbidden:
		return result{outcome: abort, reply: fmt.Sprintf("❌ Failed to %s: %s", action, msg)}
	case apperr.KindAuth:
		return result{outcome: relogin, reply: msgSessionExpired}
	case apperr.KindTransient:
		return result{outcome: retry, reply: msgUnavailable}
	default:
		return result{outcome: abort, reply: fmt.Sprintf("⚠️ Failed to %s, please try again later.", action)}
	}
}

func finish(reply string) result { return result{outcome: done, reply: reply} }

func again(reply string) result { return result{outcome: retry, reply: reply} }

// splitFields splits comma separated input and trims every part.
func splitFields(text string, n int) []string {
	parts := strings.SplitN(text, ",", n)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseID(text string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	return id, err == nil && id > 0
}

func (b *Bot) login(ctx context.Context, t *turn) result {
	parts := splitFields(t.text, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return again(msgLoginFormat)
	}
	resp, err := b.backend.Login(ctx, parts[0], parts[1])
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			return again("❌ Authorization failed: " + apperr.Message(err) + ". Try again:")
		}
		return failure(err, "log in")
	}
	if err := b.sessions.Bind(ctx, t.chatID, resp.User.ID, resp.Access.Value, resp.Refresh.Value); err != nil {
		return failure(apperr.Transient("session store unavailable", err), "log in")
	}
	return finish("✅ Successfully authorized!")
}

func (b *Bot) register(ctx context.Context, t *turn) result {
	parts := splitFields(t.text, -1)
	if len(parts) != 4 {
		return again(msgRegisterFormat)
	}
	if parts[2] != parts[3] {
		return again(msgPasswordsDiffer)
	}
	err := b.backend.Register(ctx, api.RegisterRequest{
		Nickname:        parts[0],
		Email:           parts[1],
		Password:        parts[2],
		ConfirmPassword: parts[3],
	})
	if err != nil {
		return failure(err, "register")
	}
	return finish("✅ Registration successful! You can now log in.")
}

func (b *Bot) search(ctx context.Context, t *turn) result {
	results, err := b.backend.Search(ctx, t.text)
	if err != nil {
		return failure(err, "search")
	}
	if len(results) == 0 {
		return finish(msgNoResults)
	}
	return finish(renderSearch(results))
}

func (b *Bot) subscribe(ctx context.Context, t *turn) result {
	sellerID, valid := parseID(t.text)
	if !valid {
		return again(msgSellerIDNumber)
	}
	if err := b.backend.Subscribe(ctx, t.binding.Credential, sellerID); err != nil {
		return failure(err, "subscribe")
	}
	return finish(fmt.Sprintf("✅ Subscribed to seller #%d.", sellerID))
}

func (b *Bot) unsubscribe(ctx context.Context, t *turn) result {
	sellerID, valid := parseID(t.text)
	if !valid {
		return again(msgSellerIDNumber)
	}
	if err := b.backend.Unsubscribe(ctx, t.binding.Credential, sellerID); err != nil {
		return failure(err, "unsubscribe")
	}
	return finish(fmt.Sprintf("✅ Unsubscribed from seller #%d.", sellerID))
}

func (b *Bot) createProduct(ctx context.Context, t *turn) result {
	parts := splitFields(t.text, 3)
	if len(parts) < 2 || parts[0] == "" {
		return again(msgCreateFormat)
	}
	price, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return again(msgPriceNumber)
	}
	req := api.ProductRequest{Name: parts[0], Price: price}
	if len(parts) == 3 {
		req.Description = parts[2]
	}
	p, err := b.backend.CreateProduct(ctx, t.binding.Credential, req)
	if err != nil {
		return failure(err, "create product")
	}
	return finish(fmt.Sprintf("✅ Product created with ID #%d", p.ID))
}

func (b *Bot) productDetail(ctx context.Context, t *turn) result {
	id, valid := parseID(t.text)
	if !valid {
		return again(msgProductIDNumber)
	}
	p, err := b.backend.Product(ctx, id)
	if err != nil {
		return failure(err, "get product")
	}
	return finish(renderProduct(p))
}

// updateAskID carries the chosen product id to the fields step.
func (b *Bot) updateAskID(_ context.Context, t *turn) result {
	id, valid := parseID(t.text)
	if !valid {
		return again(msgProductIDNumber)
	}
	return result{outcome: done, reply: promptUpdateFields, payload: strconv.FormatUint(id, 10)}
}

func (b *Bot) updateAskFields(ctx context.Context, t *turn) result {
	id, valid := parseID(t.payload)
	if !valid {
		return result{outcome: abort, reply: msgMissingPayload}
	}

	parts := splitFields(t.text, 3)
	var patch model.ProductPatch
	if parts[0] != "" {
		patch.Name = &parts[0]
	}
	if len(parts) > 1 && parts[1] != "" {
		price, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return again(msgPriceNumber)
		}
		patch.Price = &price
	}
	if len(parts) > 2 && parts[2] != "" {
		patch.Description = &parts[2]
	}
	if patch.Empty() {
		return again(msgNoUpdateFields)
	}

	p, err := b.backend.UpdateProduct(ctx, t.binding.Credential, id, patch)
	if err != nil {
		return failure(err, "update product")
	}
	return finish(fmt.Sprintf("✅ Product updated: #%d %s", p.ID, p.Name))
}

func (b *Bot) deleteProduct(ctx context.Context, t *turn) result {
	id, valid := parseID(t.text)
	if !valid {
		return again(msgProductIDNumber)
	}
	if err := b.backend.DeleteProduct(ctx, t.binding.Credential, id); err != nil {
		return failure(err, "delete product")
	}
	return finish("✅ Product deleted successfully.")
}

func (b *Bot) purchase(ctx context.Context, t *turn) result {
	id, valid := parseID(t.text)
	if !valid {
		return again(msgProductIDNumber)
	}
	if err := b.backend.Purchase(ctx, t.binding.Credential, id); err != nil {
		return failure(err, "purchase product")
	}
	return finish("✅ Purchase successful!")
}

func (b *Bot) health(ctx context.Context, _ *turn) result {
	h, err := b.backend.Health(ctx)
	if err != nil {
		return failure(err, "check health")
	}
	return finish("✅ Health Check OK:\n" + h.Message)
}

func (b *Bot) populate(ctx context.Context, t *turn) result {
	resp, err := b.backend.Populate(ctx, t.binding.Credential)
	if err != nil {
		return failure(err, "populate products")
	}
	return finish(fmt.Sprintf("✅ %s: %d", resp.Message, resp.Created))
}

func (b *Bot) profile(ctx context.Context, t *turn) result {
	p, err := b.backend.Profile(ctx, t.binding.Credential)
	if err != nil {
		return failure(err, "get profile")
	}
	return finish(renderProfile(p))
}

func (b *Bot) reward(ctx context.Context, t *turn) result {
	w, err := b.backend.Reward(ctx, t.binding.Credential)
	if err != nil {
		return failure(err, "reward user")
	}
	return finish("💰 " + renderWallet(w))
}

func (b *Bot) clearWallet(ctx context.Context, t *turn) result {
	w, err := b.backend.ClearWallet(ctx, t.binding.Credential)
	if err != nil {
		return failure(err, "clear wallet")
	}
	return finish("🧹 " + renderWallet(w))
}

func (b *Bot) listUsers(ctx context.Context, _ *turn) result {
	users, err := b.backend.Users(ctx)
	if err != nil {
		return failure(err, "get users")
	}
	return finish(renderUsers(users))
}

func (b *Bot) listProducts(ctx context.Context, _ *turn) result {
	products, err := b.backend.Products(ctx)
	if err != nil {
		return failure(err, "get products")
	}
	return finish(renderProducts(products))
}
