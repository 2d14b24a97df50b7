package bot

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/auth"
	"github.com/iliyamo/tg-marketplace/internal/bot/mock"
	"github.com/iliyamo/tg-marketplace/internal/model"
	"github.com/iliyamo/tg-marketplace/internal/session"
)

const chat = int64(42)

type chatLog struct {
	mu   sync.Mutex
	sent []string
	rows [][]string
}

func (c *chatLog) Send(_ context.Context, _ int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

func (c *chatLog) SendMenu(_ context.Context, _ int64, text string, rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	c.rows = rows
	return nil
}

func (c *chatLog) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

type harness struct {
	bot      *Bot
	backend  *mock.MockBackend
	sessions *session.Store
	chat     *chatLog
}

func newHarness(t *testing.T) harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := harness{
		backend:  mock.NewMockBackend(gomock.NewController(t)),
		sessions: session.NewStore(rdb),
		chat:     &chatLog{},
	}
	h.bot = New(h.backend, h.sessions, h.chat, zap.NewNop())
	return h
}

func (h harness) send(t *testing.T, text string) string {
	t.Helper()
	require.NoError(t, h.bot.Handle(context.Background(), chat, text))
	return h.chat.last()
}

func (h harness) state(t *testing.T) session.State {
	t.Helper()
	st, err := h.sessions.State(context.Background(), chat)
	require.NoError(t, err)
	return st
}

func (h harness) bind(t *testing.T, credential, refresh string) {
	t.Helper()
	require.NoError(t, h.sessions.Bind(context.Background(), chat, 9, credential, refresh))
}

func (h harness) setState(t *testing.T, st State, payload string) {
	t.Helper()
	require.NoError(t, h.sessions.SetState(context.Background(), chat, session.State{Tag: string(st), Payload: payload}))
}

func TestUpdateProductFlowPatchesOnlyPrice(t *testing.T) {
	h := newHarness(t)
	h.bind(t, "tok", "")

	assert.Equal(t, promptUpdateProduct, h.send(t, CmdUpdateProduct))
	assert.Equal(t, session.State{Tag: string(UpdateProductAskID)}, h.state(t))

	assert.Equal(t, promptUpdateFields, h.send(t, "7"))
	assert.Equal(t, session.State{Tag: string(UpdateProductAskFields), Payload: "7"}, h.state(t))

	h.backend.EXPECT().UpdateProduct(gomock.Any(), "tok", uint64(7), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ uint64, p model.ProductPatch) (model.Product, error) {
			assert.Nil(t, p.Name)
			assert.Nil(t, p.Description)
			require.NotNil(t, p.Price)
			assert.Equal(t, 150.0, *p.Price)
			return model.Product{ID: 7, Name: "Lamp", Price: 150}, nil
		})

	assert.Equal(t, "✅ Product updated: #7 Lamp", h.send(t, ",150.0,"))
	assert.Equal(t, session.State{}, h.state(t))
}

func TestIdleFreeTextFallsBack(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, msgFallback, h.send(t, "hello there"))
	assert.Equal(t, session.State{}, h.state(t))
}

func TestStartResetsAndShowsMenu(t *testing.T) {
	h := newHarness(t)
	h.setState(t, Search, "")

	assert.Equal(t, welcomeText, h.send(t, "/start"))
	assert.Equal(t, menuRows, h.chat.rows)
	assert.Equal(t, session.State{}, h.state(t))
}

func TestAuthRequiredWithoutBindingAnswersLocally(t *testing.T) {
	h := newHarness(t)

	// No backend expectations: any call fails the test.
	assert.Equal(t, msgLoginFirst, h.send(t, CmdPurchaseProduct))
	assert.Equal(t, session.State{}, h.state(t))

	h.setState(t, PurchaseProduct, "")
	assert.Equal(t, msgLoginFirst, h.send(t, "5"))
	assert.Equal(t, session.State{}, h.state(t))

	assert.Equal(t, msgLoginFirst, h.send(t, CmdProfile))
}

func TestMalformedNumberHoldsState(t *testing.T) {
	h := newHarness(t)
	h.bind(t, "tok", "")
	h.setState(t, PurchaseProduct, "")

	assert.Equal(t, msgProductIDNumber, h.send(t, "five"))
	assert.Equal(t, session.State{Tag: string(PurchaseProduct)}, h.state(t))

	h.setState(t, Subscribe, "")
	assert.Equal(t, msgSellerIDNumber, h.send(t, "-3"))
	assert.Equal(t, session.State{Tag: string(Subscribe)}, h.state(t))

	h.setState(t, UpdateProductAskFields, "7")
	assert.Equal(t, msgPriceNumber, h.send(t, "Lamp, cheap,"))
	assert.Equal(t, session.State{Tag: string(UpdateProductAskFields), Payload: "7"}, h.state(t))

	assert.Equal(t, msgNoUpdateFields, h.send(t, ", ,"))
	assert.Equal(t, session.State{Tag: string(UpdateProductAskFields), Payload: "7"}, h.state(t))
}

func TestMissingPayloadAbortsToIdle(t *testing.T) {
	h := newHarness(t)
	h.bind(t, "tok", "")
	h.setState(t, UpdateProductAskFields, "")

	assert.Equal(t, msgMissingPayload, h.send(t, "Lamp, 10, desk lamp"))
	assert.Equal(t, session.State{}, h.state(t))
}

func TestMenuCommandAbandonsFlow(t *testing.T) {
	h := newHarness(t)
	h.setState(t, UpdateProductAskFields, "7")

	assert.Equal(t, promptSearch, h.send(t, CmdSearch))
	assert.Equal(t, session.State{Tag: string(Search)}, h.state(t))
}

func TestUnknownStateResets(t *testing.T) {
	h := newHarness(t)
	h.setState(t, State("stale_flow"), "1")

	assert.Equal(t, msgFallback, h.send(t, "anything"))
	assert.Equal(t, session.State{}, h.state(t))
}

func TestLoginBindsSession(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, promptLogin, h.send(t, CmdLogin))
	assert.Equal(t, msgLoginFormat, h.send(t, "ann"))
	assert.Equal(t, session.State{Tag: string(Login)}, h.state(t))

	h.backend.EXPECT().Login(gomock.Any(), "ann", "wrong").Return(api.AuthResponse{}, apperr.Auth("invalid credentials"))
	assert.Contains(t, h.send(t, "ann, wrong"), "invalid credentials")
	assert.Equal(t, session.State{Tag: string(Login)}, h.state(t))

	h.backend.EXPECT().Login(gomock.Any(), "ann", "secret").Return(api.AuthResponse{
		User:    model.UserSummary{ID: 3, Nickname: "ann"},
		Access:  auth.Token{Value: "access-3"},
		Refresh: auth.Token{Value: "refresh-3"},
	}, nil)
	assert.Equal(t, "✅ Successfully authorized!", h.send(t, "ann, secret"))
	assert.Equal(t, session.State{}, h.state(t))

	b, ok, err := h.sessions.Binding(context.Background(), chat)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session.Binding{BackendID: 3, Credential: "access-3", Refresh: "refresh-3"}, b)
}

func TestRegisterChecksPasswordsLocally(t *testing.T) {
	h := newHarness(t)
	h.setState(t, Register, "")

	assert.Equal(t, msgRegisterFormat, h.send(t, "ann, ann@example.com, secret"))
	assert.Equal(t, msgPasswordsDiffer, h.send(t, "ann, ann@example.com, secret, secrets"))
	assert.Equal(t, session.State{Tag: string(Register)}, h.state(t))

	h.backend.EXPECT().Register(gomock.Any(), api.RegisterRequest{
		Nickname: "ann", Email: "ann@example.com", Password: "secret", ConfirmPassword: "secret",
	}).Return(nil)
	assert.Equal(t, "✅ Registration successful! You can now log in.", h.send(t, "ann, ann@example.com, secret, secret"))
	assert.Equal(t, session.State{}, h.state(t))
}

func TestAuthErrorRefreshesOnceAndRetries(t *testing.T) {
	h := newHarness(t)
	h.bind(t, "stale", "refresh-9")
	h.setState(t, PurchaseProduct, "")

	gomock.InOrder(
		h.backend.EXPECT().Purchase(gomock.Any(), "stale", uint64(5)).Return(apperr.Auth("token expired")),
		h.backend.EXPECT().Refresh(gomock.Any(), "refresh-9").Return(auth.Token{Value: "fresh"}, nil),
		h.backend.EXPECT().Purchase(gomock.Any(), "fresh", uint64(5)).Return(nil),
	)

	assert.Equal(t, "✅ Purchase successful!", h.send(t, "5"))
	assert.Equal(t, session.State{}, h.state(t))

	b, _, err := h.sessions.Binding(context.Background(), chat)
	require.NoError(t, err)
	assert.Equal(t, "fresh", b.Credential)
}

func TestAuthErrorWithoutRefreshRelogins(t *testing.T) {
	h := newHarness(t)
	h.bind(t, "stale", "")
	h.setState(t, PurchaseProduct, "")

	h.backend.EXPECT().Purchase(gomock.Any(), "stale", uint64(5)).Return(apperr.Auth("token expired"))

	assert.Equal(t, msgSessionExpired, h.send(t, "5"))
	assert.Equal(t, session.State{Tag: string(Login)}, h.state(t))
}

func TestRejectedRefreshRelogins(t *testing.T) {
	h := newHarness(t)
	h.bind(t, "stale", "refresh-9")

	h.backend.EXPECT().Profile(gomock.Any(), "stale").Return(api.ProfileResponse{}, apperr.Auth("token expired"))
	h.backend.EXPECT().Refresh(gomock.Any(), "refresh-9").Return(auth.Token{}, apperr.Auth("token expired"))

	assert.Equal(t, msgSessionExpired, h.send(t, CmdProfile))
	assert.Equal(t, session.State{Tag: string(Login)}, h.state(t))
}

func TestBackendErrorKindsPickOutcome(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want session.State
	}{
		{"validation retries", apperr.Validation("insufficient funds"), session.State{Tag: string(PurchaseProduct)}},
		{"transient retries", apperr.Transient("backend unreachable", errors.New("dial tcp")), session.State{Tag: string(PurchaseProduct)}},
		{"not found aborts", apperr.NotFound("product not found"), session.State{}},
		{"conflict aborts", apperr.Conflict("product already sold"), session.State{}},
		{"forbidden aborts", apperr.Forbidden("not your product"), session.State{}},
		{"internal aborts", errors.New("boom"), session.State{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.bind(t, "tok", "")
			h.setState(t, PurchaseProduct, "")
			h.backend.EXPECT().Purchase(gomock.Any(), "tok", uint64(5)).Return(tc.err)

			reply := h.send(t, "5")
			assert.NotEmpty(t, reply)
			assert.Equal(t, tc.want, h.state(t))
		})
	}
}

func TestSearchRendersResults(t *testing.T) {
	h := newHarness(t)
	h.setState(t, Search, "")

	h.backend.EXPECT().Search(gomock.Any(), "desk lamp").Return([]api.SearchResult{
		{ID: 4, Name: "Lamp", Price: 19.5, Description: "desk lamp"},
		{ID: 2, Name: "Desk", Price: 120, Description: "oak desk"},
	}, nil)

	reply := h.send(t, "desk lamp")
	assert.Contains(t, reply, "🔍 Found: 2 products")
	assert.Contains(t, reply, "🔔 Product #1\n🛍 Name: Lamp\n💰 Price: 19.5\n📄 Description: desk lamp")
	assert.Equal(t, session.State{}, h.state(t))

	h.setState(t, Search, "")
	h.backend.EXPECT().Search(gomock.Any(), "unicorn").Return(nil, nil)
	assert.Equal(t, msgNoResults, h.send(t, "unicorn"))
}

func TestImmediateCommands(t *testing.T) {
	h := newHarness(t)
	h.bind(t, "tok", "")

	h.backend.EXPECT().Reward(gomock.Any(), "tok").Return(api.WalletResponse{Message: "Reward added", NewBalance: 500}, nil)
	assert.Equal(t, "💰 Reward added\nNew balance: 500", h.send(t, CmdReward))

	h.backend.EXPECT().Products(gomock.Any()).Return([]model.Product{{ID: 1, Name: "Lamp", Price: 19.5}}, nil)
	assert.Equal(t, "📃 Products list (1):\n- #1 Lamp | Price: 19.5", h.send(t, CmdListProducts))

	h.backend.EXPECT().Users(gomock.Any()).Return(nil, nil)
	assert.Equal(t, "No users found.", h.send(t, CmdListUsers))
	assert.Equal(t, session.State{}, h.state(t))
}

func TestTransitionTableIsComplete(t *testing.T) {
	rules := (&Bot{}).transitions()

	for _, st := range States {
		_, ok := rules[transitionKey{state: st, input: freeText}]
		if st == Idle {
			assert.False(t, ok, "idle free text must fall back")
			continue
		}
		assert.True(t, ok, "no free text rule for %s", st)
	}

	for _, row := range menuRows {
		for _, label := range row {
			r, ok := rules[transitionKey{state: anyState, input: label}]
			require.True(t, ok, "menu command %q has no rule", label)
			assert.True(t, r.handle != nil || r.prompt != "", "menu command %q does nothing", label)
		}
	}

	for key, r := range rules {
		assert.True(t, knownState(r.next), "%v leads to unknown state %s", key, r.next)
		if r.handle == nil {
			assert.Equal(t, anyState, key.state, "free text rule %v has no handler", key)
		}
	}
}
