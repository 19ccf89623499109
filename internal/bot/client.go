package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// limitedSender throttles outbound Telegram calls with a token bucket
// so bursts of replies stay under the Bot API flood limits.
type limitedSender struct {
	api     TelegramSender
	limiter *rate.Limiter
}

func newLimitedSender(api TelegramSender) *limitedSender {
	// Telegram allows roughly 30 messages per second bot-wide.
	return &limitedSender{api: api, limiter: rate.NewLimiter(rate.Limit(25), 5)}
}

func (s *limitedSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := s.limiter.Wait(context.Background()); err != nil {
		return tgbotapi.Message{}, err
	}
	return s.api.Send(c)
}

func (s *limitedSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if err := s.limiter.Wait(context.Background()); err != nil {
		return nil, err
	}
	return s.api.Request(c)
}
