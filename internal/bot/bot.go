// Package bot is the Telegram transport: it turns updates into ledger
// requests and sends the replies back as text or chart images.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/services"
)

// MsgRateLimited is sent once an owner exceeds the per-minute message limit.
const MsgRateLimited = "Muitas mensagens em pouco tempo, aguarde um minuto."

// Sender delivers outgoing messages. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// RequestHandler answers routed requests. *services.LedgerService implements it.
type RequestHandler interface {
	Handle(ctx context.Context, req services.Request) (services.Reply, error)
}

type Options struct {
	// RateLimitPerMinute caps messages per owner; zero disables the limit.
	RateLimitPerMinute int
	// Workers bounds how many updates are handled at once.
	Workers int
	// PollTimeout is the long-polling timeout in seconds.
	PollTimeout int
	Logger      *applog.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = 60
	}
	if o.Logger == nil {
		o.Logger = applog.New(applog.DefaultConfig())
	}
	return o
}

type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	handler RequestHandler
	limiter *rateLimiter
	opts    Options
	logger  *applog.Logger
	slog    *applog.StructuredLogger
}

// New connects to the Bot API with token.
func New(token string, handler RequestHandler, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	b := NewWithSender(api, handler, opts)
	b.api = api
	b.logger.Info("Authorized on account", "username", api.Self.UserName)
	return b, nil
}

// NewWithSender builds a bot that replies through sender. It cannot poll for
// updates; feed it with HandleUpdate.
func NewWithSender(sender Sender, handler RequestHandler, opts Options) *Bot {
	opts = opts.withDefaults()
	logger := opts.Logger.WithComponent(applog.ComponentBot)
	return &Bot{
		sender:  sender,
		handler: handler,
		limiter: newRateLimiter(opts.RateLimitPerMinute),
		opts:    opts,
		logger:  logger,
		slog:    applog.NewStructuredLogger(logger),
	}
}

// Run long-polls for updates until ctx is cancelled, then waits for the
// updates in flight.
func (b *Bot) Run(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot has no API connection")
	}
	defer b.limiter.stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.opts.PollTimeout
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("Bot started", "workers", b.opts.Workers)

	g := new(errgroup.Group)
	g.SetLimit(b.opts.Workers)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Bot stopping, waiting for in-flight updates")
			g.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				g.Wait()
				return nil
			}
			g.Go(func() error {
				b.HandleUpdate(ctx, update)
				return nil
			})
		}
	}
}

// HandleUpdate processes one update. Updates without a text message are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.Text == "" {
		return
	}

	started := time.Now()
	owner := core.OwnerID(msg.From.ID)
	ctx = applog.WithLogger(ctx, b.logger.With(applog.FieldUpdateID, update.UpdateID))

	if !b.limiter.allow(owner) {
		b.logger.WarnContext(ctx, "Rate limit exceeded", applog.FieldOwnerID, owner.String())
		b.reply(ctx, msg, services.Reply{Text: MsgRateLimited})
		return
	}

	req := Route(owner, msg.Text, submittedAt(msg, started))
	reply, err := b.handler.Handle(ctx, req)
	b.slog.LogUpdateHandled(ctx, owner, req.Intent.String(), started, err)

	b.reply(ctx, msg, reply)
}

func submittedAt(msg *tgbotapi.Message, fallback time.Time) time.Time {
	if msg.Date == 0 {
		return fallback
	}
	return msg.Time()
}

func (b *Bot) reply(ctx context.Context, msg *tgbotapi.Message, reply services.Reply) {
	var c tgbotapi.Chattable
	if reply.HasChart() {
		photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "grafico.png", Bytes: reply.Chart})
		photo.Caption = reply.Text
		photo.ReplyToMessageID = msg.MessageID
		c = photo
	} else {
		if reply.Text == "" {
			return
		}
		text := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
		text.ReplyToMessageID = msg.MessageID
		c = text
	}

	if _, err := b.sender.Send(c); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to send reply",
			applog.FieldOperation, applog.OpReply,
			applog.FieldChatID, msg.Chat.ID,
			applog.FieldError, err)
	}
}
