package bots

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/repositories"
	"github.com/ellavondegurechaff/gogift/gifthouse/engine"
)

// Runner drives random monotone bids against one engine. It is a load
// client of the public bid API, not part of engine behavior: rejections
// are expected outcomes and only counted.
type Runner struct {
	users repositories.UserRepository
	rnd   *rand.Rand
}

func NewRunner(users repositories.UserRepository) *Runner {
	return &Runner{
		users: users,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run bids until the auction finishes or the context is cancelled.
func (r *Runner) Run(ctx context.Context, e *engine.Engine, interval time.Duration) error {
	ids, err := r.users.GetAllBotIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		slog.Warn("No bot users to run", slog.String("type", "sys"))
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var accepted, rejected int
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if e.IsFinished() {
			slog.Info("Bot run complete",
				slog.String("type", "sys"),
				slog.String("auction_id", e.ID()),
				slog.Int("accepted", accepted),
				slog.Int("rejected", rejected))
			return nil
		}

		userID := ids[r.rnd.Intn(len(ids))]
		amount := r.nextAmount(e, userID)

		_, err := e.PlaceBid(userID, amount)
		switch {
		case err == nil:
			accepted++
		case isBidRejection(err):
			rejected++
		default:
			return err
		}
	}
}

// nextAmount picks a bid a little above whatever currently leads, or above
// the bot's own bid when it holds one.
func (r *Runner) nextAmount(e *engine.Engine, userID string) int64 {
	snap := e.Snapshot()

	var floor int64 = 1
	if len(snap.Leaderboard) > 0 {
		floor = snap.Leaderboard[0].Amount
	}
	for _, b := range snap.Leaderboard {
		if b.UserID == userID && b.Amount > floor {
			floor = b.Amount
		}
	}
	return floor + 1 + int64(r.rnd.Intn(25))
}

func isBidRejection(err error) bool {
	var bidErr *engine.BidError
	return errors.As(err, &bidErr)
}
