// Package bot is the Telegram front end. It collects booking details
// from free-form Turkish messages, drives the dialog over the
// reservation engine and renders engine reasons as user replies.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"masabot/internal/models"
)

// Dialog steps.
const (
	stepCollect = "all_info"
	stepTable   = "table"
	stepConfirm = "confirm"
)

const (
	userMsgLimit  = 20
	userMsgWindow = time.Minute
)

type Bot struct {
	tg     *tgbotapi.BotAPI
	sender TelegramSender
	engine BookingEngine
	menu   OfferingSource
	states StateManager
	logger *zerolog.Logger
	now    func() time.Time
}

func New(token string, engine BookingEngine, menu OfferingSource, states StateManager, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	b := newWithSender(newLimitedSender(api), engine, menu, states, logger)
	b.tg = api
	return b, nil
}

// newWithSender wires a bot without a live Telegram connection, for
// tests.
func newWithSender(sender TelegramSender, engine BookingEngine, menu OfferingSource, states StateManager, logger *zerolog.Logger) *Bot {
	return &Bot{
		sender: sender,
		engine: engine,
		menu:   menu,
		states: states,
		logger: logger,
		now:    time.Now,
	}
}

// Start consumes updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("bot", b.tg.Self.UserName).Msg("telegram bot started")

	for {
		select {
		case <-ctx.Done():
			b.tg.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	allowed, err := b.states.CheckRateLimit(ctx, userID, userMsgLimit, userMsgWindow)
	if err != nil {
		b.logger.Warn().Err(err).Int64("user_id", userID).Msg("rate limit check failed")
	} else if !allowed {
		b.reply(msg.Chat.ID, replyRateLimited)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	state, err := b.states.GetState(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("load state failed")
		b.reply(msg.Chat.ID, replyStateLost)
		return
	}

	step := stepCollect
	if state != nil && state.Step != "" {
		step = state.Step
	}

	switch step {
	case stepCollect:
		b.collectBookingInfo(ctx, msg, state)
	case stepTable, stepConfirm:
		b.reply(msg.Chat.ID, replyNoSelection)
	default:
		_ = b.states.ClearState(ctx, userID)
		b.reply(msg.Chat.ID, replyReset)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID, replyGreeting)
	case "menu":
		b.sendMenu(msg.Chat.ID, strings.TrimSpace(msg.CommandArguments()))
	case "rezervasyonlarim", "myreservations":
		b.sendReservationList(msg.Chat.ID, msg.From.ID)
	case "iptal", "cancel":
		b.cancelByArgs(msg.Chat.ID, msg.From.ID, msg.CommandArguments())
	case "reset":
		_ = b.states.ClearState(ctx, msg.From.ID)
		b.reply(msg.Chat.ID, replyReset)
	default:
		b.reply(msg.Chat.ID, replyGreeting)
	}
}

// collectBookingInfo merges whatever the message contains with
// previously gathered answers, asking again while anything is missing.
func (b *Bot) collectBookingInfo(ctx context.Context, msg *tgbotapi.Message, state *models.UserState) {
	data := map[string]interface{}{}
	if state != nil && state.Data != nil {
		data = state.Data
	}

	if date, ok := parseDate(msg.Text, b.now()); ok {
		data["date"] = date
	}
	if clock, ok := parseClockText(msg.Text); ok {
		data["time"] = clock
	}
	if party, ok := parsePartySize(msg.Text); ok {
		data["party"] = party
	}

	date := dataString(data, "date")
	clock := dataString(data, "time")
	party := dataInt(data, "party")
	if date == "" || clock == "" || party == 0 {
		if err := b.setState(ctx, msg.From.ID, stepCollect, data); err != nil {
			b.reply(msg.Chat.ID, replyStateLost)
			return
		}
		b.reply(msg.Chat.ID, replyAskMissing)
		return
	}

	res := b.engine.CheckAvailability(date, clock, party)
	if !res.OK {
		// Keep the party size, drop the rejected slot.
		delete(data, "date")
		delete(data, "time")
		_ = b.setState(ctx, msg.From.ID, stepCollect, data)
		b.reply(msg.Chat.ID, reasonReply(res.Reason, res.Message))
		return
	}

	if err := b.setState(ctx, msg.From.ID, stepTable, data); err != nil {
		b.reply(msg.Chat.ID, replyStateLost)
		return
	}
	b.sendTablePage(msg.Chat.ID, 0, 0, res.Tables)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Ack first so the client stops its spinner.
	if _, err := b.sender.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn().Err(err).Msg("callback ack failed")
	}

	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	state, err := b.states.GetState(ctx, userID)
	if err != nil || state == nil {
		b.reply(chatID, replyStateLost)
		return
	}

	switch {
	case strings.HasPrefix(cb.Data, "table:"):
		b.selectTable(ctx, chatID, userID, state, strings.TrimPrefix(cb.Data, "table:"))
	case strings.HasPrefix(cb.Data, "tblpage:"):
		b.turnTablePage(chatID, cb.Message.MessageID, state, strings.TrimPrefix(cb.Data, "tblpage:"))
	case cb.Data == "confirm:yes":
		b.confirmBooking(ctx, chatID, userID, cb.From, state)
	case cb.Data == "confirm:no":
		_ = b.states.ClearState(ctx, userID)
		b.reply(chatID, replyReset)
	default:
		b.reply(chatID, replyNoSelection)
	}
}

func (b *Bot) selectTable(ctx context.Context, chatID, userID int64, state *models.UserState, raw string) {
	tableID, err := strconv.Atoi(raw)
	if err != nil {
		b.reply(chatID, replyNoSelection)
		return
	}
	state.Data["table"] = tableID
	if err := b.setState(ctx, userID, stepConfirm, state.Data); err != nil {
		b.reply(chatID, replyStateLost)
		return
	}

	summary := formatSummary(dataString(state.Data, "date"), dataString(state.Data, "time"), tableID, dataInt(state.Data, "party"))
	msg := tgbotapi.NewMessage(chatID, summary)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Evet ✅", "confirm:yes"),
			tgbotapi.NewInlineKeyboardButtonData("Hayır ❌", "confirm:no"),
		),
	)
	b.send(msg)
}

func (b *Bot) turnTablePage(chatID int64, messageID int, state *models.UserState, raw string) {
	page, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	res := b.engine.CheckAvailability(dataString(state.Data, "date"), dataString(state.Data, "time"), dataInt(state.Data, "party"))
	if !res.OK {
		b.reply(chatID, reasonReply(res.Reason, res.Message))
		return
	}
	b.sendTablePage(chatID, messageID, page, res.Tables)
}

func (b *Bot) confirmBooking(ctx context.Context, chatID, userID int64, from *tgbotapi.User, state *models.UserState) {
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	res := b.engine.Reserve(
		dataString(state.Data, "date"),
		dataString(state.Data, "time"),
		dataInt(state.Data, "table"),
		name,
		dataInt(state.Data, "party"),
		"",
		strconv.FormatInt(userID, 10),
	)
	_ = b.states.ClearState(ctx, userID)
	if !res.OK {
		b.reply(chatID, reasonReply(res.Reason, res.Message))
		return
	}
	b.reply(chatID, formatConfirmation(res.Reservation))
}

func (b *Bot) sendMenu(chatID int64, arg string) {
	date := arg
	if date == "" {
		date = b.now().Format("2006-01-02")
	} else if parsed, ok := parseDate(arg, b.now()); ok {
		date = parsed
	}
	offering := b.menu.DailyOffering(date)
	if !offering.OK {
		b.reply(chatID, reasonReply(offering.Reason, offering.Message))
		return
	}
	b.reply(chatID, formatOfferingText(offering))
}

func (b *Bot) sendReservationList(chatID int64, userID int64) {
	list, err := b.engine.ListForOwner(strconv.FormatInt(userID, 10))
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("list reservations failed")
		b.reply(chatID, replyStateLost)
		return
	}
	if len(list) == 0 {
		b.reply(chatID, replyNoBookings)
		return
	}
	b.reply(chatID, formatReservationList(list))
}

func (b *Bot) cancelByArgs(chatID int64, userID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		b.reply(chatID, replyCancelUsage)
		return
	}
	tableID, err := strconv.Atoi(fields[2])
	if err != nil {
		b.reply(chatID, replyCancelUsage)
		return
	}
	res := b.engine.Cancel(fields[0], fields[1], tableID, strconv.FormatInt(userID, 10))
	if !res.OK {
		b.reply(chatID, reasonReply(res.Reason, res.Message))
		return
	}
	b.reply(chatID, "Rezervasyonunuz iptal edildi. ✅")
}

func (b *Bot) setState(ctx context.Context, userID int64, step string, data map[string]interface{}) error {
	err := b.states.SetState(ctx, &models.UserState{UserID: userID, Step: step, Data: data})
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("save state failed")
	}
	return err
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.sender.Send(c); err != nil {
		b.logger.Error().Err(err).Msg("telegram send failed")
	}
}

// dataString reads a string field from dialog data, which may have
// passed through a JSON round trip.
func dataString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// dataInt tolerates both int and float64 since JSON decoding turns
// numbers into float64.
func dataInt(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
