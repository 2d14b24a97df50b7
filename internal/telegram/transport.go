// Package telegram is the chat transport: it long-polls the Telegram Bot API
// for text messages and sends replies and notifications, rate limited to
// stay under the API's per-bot send limit.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Handler processes one inbound text message.
type Handler func(ctx context.Context, chatID int64, text string) error

type Transport struct {
	api         *tgbotapi.BotAPI
	limiter     *rate.Limiter
	log         *zap.Logger
	workers     int
	pollTimeout int
}

type Option func(*Transport)

// WithRate caps outbound messages at perSecond with the given burst.
func WithRate(perSecond float64, burst int) Option {
	return func(t *Transport) { t.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithWorkers bounds how many inbound messages are handled at once.
func WithWorkers(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithPollTimeout sets the long-poll timeout in seconds.
func WithPollTimeout(seconds int) Option {
	return func(t *Transport) { t.pollTimeout = seconds }
}

// New authorizes token against the public Bot API.
func New(token string, log *zap.Logger, opts ...Option) (*Transport, error) {
	return NewWithEndpoint(token, tgbotapi.APIEndpoint, log, opts...)
}

// NewWithEndpoint is New against another Bot API server. endpoint is a
// format string taking the token and the method name.
func NewWithEndpoint(token, endpoint string, log *zap.Logger, opts ...Option) (*Transport, error) {
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram authorize: %w", err)
	}
	t := &Transport{
		api:         api,
		limiter:     rate.NewLimiter(rate.Limit(25), 5),
		log:         log,
		workers:     8,
		pollTimeout: 60,
	}
	for _, o := range opts {
		o(t)
	}
	log.Info("telegram authorized", zap.String("account", api.Self.UserName))
	return t, nil
}

// Send delivers a plain text message to chatID.
func (t *Transport) Send(ctx context.Context, chatID int64, text string) error {
	return t.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// SendMenu delivers text and installs rows as the chat's reply keyboard.
func (t *Transport) SendMenu(ctx context.Context, chatID int64, text string, rows [][]string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard(rows)
	return t.send(ctx, msg)
}

func (t *Transport) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", msg.ChatID, err)
	}
	return nil
}

func keyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	buttons := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			r = append(r, tgbotapi.NewKeyboardButton(label))
		}
		buttons = append(buttons, r)
	}
	kb := tgbotapi.NewReplyKeyboard(buttons...)
	kb.ResizeKeyboard = true
	return kb
}

// Run polls for updates until ctx is done, handing every text message to
// handle on a bounded pool of goroutines. Handler errors are logged.
func (t *Transport) Run(ctx context.Context, handle Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout
	updates := t.api.GetUpdatesChan(u)
	defer t.api.StopReceivingUpdates()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for {
		select {
		case <-ctx.Done():
			return g.Wait()
		case update, ok := <-updates:
			if !ok {
				return g.Wait()
			}
			msg := update.Message
			if msg == nil || msg.Text == "" {
				continue
			}
			chatID, text := msg.Chat.ID, msg.Text
			g.Go(func() error {
				if err := handle(gctx, chatID, text); err != nil {
					t.log.Error("handle message", zap.Int64("chat_id", chatID), zap.Error(err))
				}
				return nil
			})
		}
	}
}
