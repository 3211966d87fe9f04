package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mymmrac/telego"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
)

const sendTimeout = 10 * time.Second

// TelegramNotifier announces round results and auction completion to a
// Telegram channel. Sends run in their own goroutine so the engine's
// critical section never waits on the Bot API.
type TelegramNotifier struct {
	bot    *telego.Bot
	chatID telego.ChatID
}

func NewTelegramNotifier(token string, channelID int64) (*TelegramNotifier, error) {
	bot, err := telego.NewBot(token, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: telego.ChatID{ID: channelID},
	}, nil
}

func (n *TelegramNotifier) RoundEnd(auctionID string, round int, winners []models.Winner) {
	var b strings.Builder
	fmt.Fprintf(&b, "🏁 Round %d finished!\n", round+1)
	if len(winners) == 0 {
		b.WriteString("No bids this round — its gifts go unawarded.")
	} else {
		for _, w := range winners {
			fmt.Fprintf(&b, "🎁 Gift #%d → %s for %d ⭐\n", w.GiftNumber, w.UserID, w.Stars)
		}
	}
	n.send(auctionID, b.String())
}

func (n *TelegramNotifier) AuctionEnd(auctionID string) {
	n.send(auctionID, "🏛 The auction has ended. Losing bids have been refunded — thanks for playing!")
}

func (n *TelegramNotifier) send(auctionID, text string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		_, err := n.bot.SendMessage(ctx, &telego.SendMessageParams{
			ChatID: n.chatID,
			Text:   text,
		})
		if err != nil {
			slog.Error("Failed to send telegram announcement",
				slog.String("type", "error"),
				slog.String("auction_id", auctionID),
				slog.Any("error", err))
		}
	}()
}
