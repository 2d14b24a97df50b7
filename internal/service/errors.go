// Package service holds the marketplace business operations. Every error
// returned to handlers is either an *apperr.Error or an unexpected storage
// failure that handlers report as internal.
package service

import "github.com/iliyamo/tg-marketplace/internal/apperr"

// Purchase outcomes, in the order their preconditions are checked.
var (
	ErrBuyerNotFound     = apperr.NotFound("buyer not found")
	ErrProductNotFound   = apperr.NotFound("product not found")
	ErrAlreadySold       = apperr.Conflict("product already sold")
	ErrSelfPurchase      = apperr.Validation("cannot buy your own product")
	ErrInsufficientFunds = apperr.Validation("insufficient funds")
	ErrSellerNotFound    = apperr.NotFound("seller not found")
)

var (
	ErrUserNotFound         = apperr.NotFound("user not found")
	ErrInvalidCredentials   = apperr.Auth("invalid credentials")
	ErrAccountExists        = apperr.Conflict("nickname or email already exists")
	ErrPasswordMismatch     = apperr.Validation("passwords do not match")
	ErrForbiddenProduct     = apperr.Forbidden("you are not the seller of this product")
	ErrSelfSubscription     = apperr.Validation("you cannot subscribe to yourself")
	ErrAlreadySubscribed    = apperr.Conflict("already subscribed")
	ErrSubscriptionNotFound = apperr.NotFound("subscription not found")
	ErrNoFields             = apperr.Validation("no fields provided")
)
