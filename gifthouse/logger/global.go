package logger

import (
	"log/slog"
	"time"
)

// LogBid logs a bid admission attempt.
func LogBid(auctionID, userID string, amount int64, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "bid"),
		slog.String("auction_id", auctionID),
		slog.String("user_id", userID),
		slog.Int64("amount", amount),
		slog.Duration("took", duration),
	}

	if err != nil {
		// Validation rejections are per-request outcomes, not failures.
		slog.Debug("Bid rejected", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Bid accepted", attrs...)
	}
}

// LogQuery logs database operations.
func LogQuery(query string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "db"),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Query failed", append(attrs,
			slog.String("query", query),
			slog.Any("error", err),
		)...)
	} else {
		slog.Info("Query executed", append(attrs,
			slog.String("query", query),
		)...)
	}
}

// LogSystem logs system events.
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events.
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}
