package bot

import (
	"context"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// StartReminders schedules a daily pass that pings owners of next-day
// reservations.
func (b *Bot) StartReminders(ctx context.Context) {
	go func() {
		// First wait until next 09:00 local time, then tick every 24h.
		timer := time.NewTimer(timeUntilNextHour(9, b.now()))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				b.sendTomorrowReminders()
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

func (b *Bot) sendTomorrowReminders() {
	date := b.now().AddDate(0, 0, 1).Format("2006-01-02")
	list, err := b.engine.ReservationsOn(date)
	if err != nil {
		b.logger.Error().Err(err).Str("date", date).Msg("reminder: list reservations failed")
		return
	}

	for _, r := range list {
		chatID, err := strconv.ParseInt(r.OwnerID, 10, 64)
		if err != nil || chatID == 0 {
			continue
		}
		text := "Hatırlatma: yarın " + r.Time + " için Masa " + strconv.Itoa(r.TableID) + " rezervasyonunuz var. Görüşmek üzere!"
		if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("reminder send failed")
		}
	}
}

func timeUntilNextHour(hour int, now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
