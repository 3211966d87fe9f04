package engine

import (
	"log/slog"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
)

// Sink receives engine lifecycle events. Implementations are called from
// inside the engine's critical section: they must return quickly and must
// not call back into the engine. Anything slow (chat messages, fanout to
// stream subscribers) belongs in a goroutine owned by the sink.
type Sink interface {
	RoundEnd(auctionID string, round int, winners []models.Winner)
	AuctionEnd(auctionID string)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RoundEnd(string, int, []models.Winner) {}
func (NopSink) AuctionEnd(string)                     {}

// LogSink writes events to the structured log.
type LogSink struct{}

func (LogSink) RoundEnd(auctionID string, round int, winners []models.Winner) {
	slog.Info("Round ended",
		slog.String("type", "bid"),
		slog.String("auction_id", auctionID),
		slog.Int("round", round),
		slog.Int("winners", len(winners)))
}

func (LogSink) AuctionEnd(auctionID string) {
	slog.Info("Auction ended",
		slog.String("type", "bid"),
		slog.String("auction_id", auctionID))
}

// MultiSink fans one event out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) RoundEnd(auctionID string, round int, winners []models.Winner) {
	for _, s := range m {
		s.RoundEnd(auctionID, round, winners)
	}
}

func (m MultiSink) AuctionEnd(auctionID string) {
	for _, s := range m {
		s.AuctionEnd(auctionID)
	}
}
