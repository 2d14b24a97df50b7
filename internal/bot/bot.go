// Package bot is the conversation state machine of the chat front-end. It
// turns the text a chat identity sends into backend API calls, keeping the
// per-identity flow state in the session store.
package bot

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/auth"
	"github.com/iliyamo/tg-marketplace/internal/model"
	"github.com/iliyamo/tg-marketplace/internal/session"
)

//go:generate mockgen -destination=mock/backend.go -package=mock . Backend

// Backend is the marketplace API as seen by the bot. Token-bearing calls
// take the chat's current access credential.
type Backend interface {
	Register(ctx context.Context, req api.RegisterRequest) error
	Login(ctx context.Context, login, password string) (api.AuthResponse, error)
	Refresh(ctx context.Context, refresh string) (auth.Token, error)
	Health(ctx context.Context) (api.HealthResponse, error)
	Users(ctx context.Context) ([]model.UserSummary, error)
	Products(ctx context.Context) ([]model.Product, error)
	Product(ctx context.Context, id uint64) (model.Product, error)
	Search(ctx context.Context, query string) ([]api.SearchResult, error)
	CreateProduct(ctx context.Context, token string, req api.ProductRequest) (model.Product, error)
	UpdateProduct(ctx context.Context, token string, id uint64, patch model.ProductPatch) (model.Product, error)
	DeleteProduct(ctx context.Context, token string, id uint64) error
	Purchase(ctx context.Context, token string, id uint64) error
	Subscribe(ctx context.Context, token string, sellerID uint64) error
	Unsubscribe(ctx context.Context, token string, sellerID uint64) error
	Profile(ctx context.Context, token string) (api.ProfileResponse, error)
	Reward(ctx context.Context, token string) (api.WalletResponse, error)
	ClearWallet(ctx context.Context, token string) (api.WalletResponse, error)
	Populate(ctx context.Context, token string) (api.PopulateResponse, error)
}

// Sessions is the part of the session store the bot reads and writes.
type Sessions interface {
	Lock(ctx context.Context, chatID int64) (func(), error)
	State(ctx context.Context, chatID int64) (session.State, error)
	SetState(ctx context.Context, chatID int64, st session.State) error
	Reset(ctx context.Context, chatID int64) error
	Binding(ctx context.Context, chatID int64) (session.Binding, bool, error)
	Bind(ctx context.Context, chatID int64, backendID uint64, credential, refresh string) error
	UpdateCredential(ctx context.Context, backendID uint64, credential string) error
}

// Chat delivers replies. SendMenu also installs the reply keyboard.
type Chat interface {
	Send(ctx context.Context, chatID int64, text string) error
	SendMenu(ctx context.Context, chatID int64, text string, rows [][]string) error
}

type Bot struct {
	backend  Backend
	sessions Sessions
	chat     Chat
	log      *zap.Logger
	rules    map[transitionKey]rule
}

func New(backend Backend, sessions Sessions, chat Chat, log *zap.Logger) *Bot {
	b := &Bot{backend: backend, sessions: sessions, chat: chat, log: log}
	b.rules = b.transitions()
	return b
}

// Handle processes one inbound message. Messages of the same chat identity
// are serialized through the session store lock, so a read-branch-write of
// the state never interleaves with another message of that identity.
func (b *Bot) Handle(ctx context.Context, chatID int64, text string) error {
	unlock, err := b.sessions.Lock(ctx, chatID)
	if err != nil {
		if errors.Is(err, session.ErrLockTimeout) {
			return b.chat.Send(ctx, chatID, msgBusy)
		}
		return err
	}
	defer unlock()

	text = strings.TrimSpace(text)
	if text == "/start" {
		if err := b.sessions.Reset(ctx, chatID); err != nil {
			return err
		}
		return b.chat.SendMenu(ctx, chatID, welcomeText, menuRows)
	}

	st, err := b.sessions.State(ctx, chatID)
	if err != nil {
		return err
	}
	current := stateOf(st)

	r, ok := b.lookup(current, text)
	if !ok {
		if !knownState(current) {
			b.log.Warn("unknown conversation state, resetting", zap.Int64("chat_id", chatID), zap.String("state", st.Tag))
			if err := b.sessions.Reset(ctx, chatID); err != nil {
				return err
			}
		}
		return b.chat.Send(ctx, chatID, msgFallback)
	}

	// A menu command abandons the current flow along with its payload.
	t := &turn{chatID: chatID, text: text}
	if r.from == current {
		t.payload = st.Payload
	}

	if r.auth {
		binding, ok, err := b.sessions.Binding(ctx, chatID)
		if err != nil {
			return err
		}
		if !ok {
			if err := b.sessions.Reset(ctx, chatID); err != nil {
				return err
			}
			return b.chat.Send(ctx, chatID, msgLoginFirst)
		}
		t.binding = binding
	}

	res := b.run(ctx, r, t)
	if err := b.apply(ctx, chatID, r, res); err != nil {
		return err
	}
	return b.chat.Send(ctx, chatID, res.reply)
}

// lookup finds the rule for text under the current state. Menu commands
// match in every state; anything else is free text for the current state.
func (b *Bot) lookup(current State, text string) (rule, bool) {
	if r, ok := b.rules[transitionKey{state: anyState, input: text}]; ok {
		return r, true
	}
	r, ok := b.rules[transitionKey{state: current, input: freeText}]
	return r, ok
}

// run executes r. An auth failure with a stored refresh credential is
// retried exactly once with a freshly issued access token.
func (b *Bot) run(ctx context.Context, r rule, t *turn) result {
	if r.handle == nil {
		return result{outcome: done, reply: r.prompt}
	}
	res := r.handle(ctx, t)
	if res.outcome != relogin || t.binding.Refresh == "" {
		return res
	}

	tok, err := b.backend.Refresh(ctx, t.binding.Refresh)
	if err != nil {
		b.log.Info("refresh rejected", zap.Int64("chat_id", t.chatID), zap.Error(err))
		return res
	}
	if err := b.sessions.UpdateCredential(ctx, t.binding.BackendID, tok.Value); err != nil {
		b.log.Warn("store refreshed credential", zap.Int64("chat_id", t.chatID), zap.Error(err))
		return res
	}
	t.binding.Credential = tok.Value
	t.binding.Refresh = ""
	return r.handle(ctx, t)
}

// apply moves the chat to the state the outcome calls for.
func (b *Bot) apply(ctx context.Context, chatID int64, r rule, res result) error {
	switch res.outcome {
	case done:
		if r.next == Idle {
			return b.sessions.Reset(ctx, chatID)
		}
		return b.sessions.SetState(ctx, chatID, session.State{Tag: string(r.next), Payload: res.payload})
	case retry:
		return nil
	case relogin:
		return b.sessions.SetState(ctx, chatID, session.State{Tag: string(Login)})
	default:
		return b.sessions.Reset(ctx, chatID)
	}
}
