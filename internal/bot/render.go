package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/model"
)

func price(p float64) string { return strconv.FormatFloat(p, 'f', -1, 64) }

func renderSearch(results []api.SearchResult) string {
	var sb strings.Builder
	plural := ""
	if len(results) > 1 {
		plural = "s"
	}
	fmt.Fprintf(&sb, "🔍 Found: %d product%s\n", len(results), plural)
	for i, r := range results {
		fmt.Fprintf(&sb, "\n🔔 Product #%d\n🛍 Name: %s\n💰 Price: %s\n📄 Description: %s\n",
			i+1, r.Name, price(r.Price), r.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderProduct(p model.Product) string {
	desc := p.Description
	if desc == "" {
		desc = "No description"
	}
	sold := "No"
	if p.IsSold {
		sold = "Yes"
	}
	return fmt.Sprintf("🔍 Product #%d\n🛍 Name: %s\n💰 Price: %s\n📄 Description: %s\n💵 Sold: %s",
		p.ID, p.Name, price(p.Price), desc, sold)
}

func renderProducts(products []model.Product) string {
	if len(products) == 0 {
		return "No available products found."
	}
	lines := []string{fmt.Sprintf("📃 Products list (%d):", len(products))}
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("- #%d %s | Price: %s", p.ID, p.Name, price(p.Price)))
	}
	return strings.Join(lines, "\n")
}

func renderUsers(users []model.UserSummary) string {
	if len(users) == 0 {
		return "No users found."
	}
	lines := []string{fmt.Sprintf("👥 Users (%d):", len(users))}
	for _, u := range users {
		lines = append(lines, fmt.Sprintf("- #%d %s", u.ID, u.Nickname))
	}
	return strings.Join(lines, "\n")
}

func renderProfile(p api.ProfileResponse) string {
	lines := []string{
		"👤 Profile: " + p.Nickname,
		"📧 Email: " + p.Email,
		"💰 Wallet balance: " + price(p.Wallet),
		"🛍 Products:",
	}
	if len(p.Products) == 0 {
		lines = append(lines, "No products found.")
	}
	for _, pr := range p.Products {
		lines = append(lines, fmt.Sprintf("- %d | %s | Price: %s UAH", pr.ID, pr.Name, price(pr.Price)))
	}

	lines = append(lines, "", "📣 Subscriptions:")
	if len(p.Subscriptions) == 0 {
		lines = append(lines, "No subscriptions found.")
	}
	for _, s := range p.Subscriptions {
		lines = append(lines, fmt.Sprintf("- #%d %s (%s)", s.ID, s.Nickname, s.Email))
	}
	return strings.Join(lines, "\n")
}

func renderWallet(w api.WalletResponse) string {
	return w.Message + "\nNew balance: " + price(w.NewBalance)
}
