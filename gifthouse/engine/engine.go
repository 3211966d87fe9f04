package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
	"github.com/ellavondegurechaff/gogift/gifthouse/database/repositories"
)

const (
	// SnipeWindow is how close to the deadline a bid must land to be
	// considered a snipe; SnipeExtension is the new remaining time granted
	// when one displaces the marginal winner.
	SnipeWindow    = 5 * time.Second
	SnipeExtension = 10 * time.Second

	deadlineOpTimeout = 30 * time.Second
)

// ErrDegraded is returned once an internal invariant check has failed; the
// engine refuses all further admissions and lifecycle transitions.
var ErrDegraded = errors.New("engine degraded: invariant violation detected")

// ErrRoundRunning is returned by StartRound while a round is already live.
var ErrRoundRunning = errors.New("round already running")

// Engine owns the state machine of one auction: the bid ledger, the
// leaderboard, the round deadline timer, and the commit path to the
// repository. A single mutex serializes PlaceBid against the lifecycle
// operations, so PlaceBid always observes a consistent snapshot.
type Engine struct {
	mu sync.Mutex

	record   *models.Auction
	auctions repositories.AuctionRepository
	users    repositories.UserRepository
	sink     Sink

	ledger *Ledger
	board  *Leaderboard
	bids   map[string]Bid

	currentRound   int
	roundEndTime   time.Time
	active         bool
	finished       bool
	degraded       bool
	balancesLoaded bool

	timer    *time.Timer
	timerSeq uint64

	lastBidMs int64
	now       func() time.Time
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithNow overrides the engine's clock.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithResumeRound positions a recovered engine at the given round index
// before its first StartRound.
func WithResumeRound(round int) Option {
	return func(e *Engine) { e.currentRound = round }
}

func NewEngine(record *models.Auction, auctions repositories.AuctionRepository, users repositories.UserRepository, sink Sink, opts ...Option) *Engine {
	if sink == nil {
		sink = NopSink{}
	}
	e := &Engine{
		record:   record,
		auctions: auctions,
		users:    users,
		sink:     sink,
		ledger:   NewLedger(),
		board:    NewLeaderboard(),
		bids:     make(map[string]Bid),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) ID() string   { return e.record.ID }
func (e *Engine) Name() string { return e.record.Name }

func (e *Engine) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Engine) IsFinished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finished
}

func (e *Engine) CurrentRound() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentRound
}

func (e *Engine) RoundEndTime() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roundEndTime
}

// Ledger exposes the engine's balance ledger. Host surfaces read it; only
// the engine writes it while a round runs.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// Snapshot is a consistent read of the engine for the host's read APIs.
type Snapshot struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Gift         models.Gift          `json:"gift"`
	Status       models.AuctionStatus `json:"status"`
	CurrentRound int                  `json:"currentRound"`
	TotalRounds  int                  `json:"totalRounds"`
	RoundEndTime time.Time            `json:"roundEndTime"`
	Active       bool                 `json:"active"`
	Leaderboard  []Bid                `json:"leaderboard"`
	Winners      []models.Winner      `json:"winners"`
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	winners := make([]models.Winner, len(e.record.Winners))
	copy(winners, e.record.Winners)

	return Snapshot{
		ID:           e.record.ID,
		Name:         e.record.Name,
		Gift:         e.record.Gift,
		Status:       e.record.Status,
		CurrentRound: e.currentRound,
		TotalRounds:  len(e.record.Plan),
		RoundEndTime: e.roundEndTime,
		Active:       e.active,
		Leaderboard:  e.board.All(),
		Winners:      winners,
	}
}

// StartRound opens the current round: loads balances (first round of this
// process only, so escrow accounting survives between rounds), persists
// status=active, arms the deadline timer. If the plan is exhausted it
// routes to EndAuction instead.
func (e *Engine) StartRound(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startRoundLocked(ctx)
}

func (e *Engine) startRoundLocked(ctx context.Context) error {
	if e.degraded {
		return ErrDegraded
	}
	if e.finished {
		return nil
	}
	if e.currentRound >= len(e.record.Plan) {
		return e.endAuctionLocked(ctx)
	}
	if e.active {
		return ErrRoundRunning
	}

	// Repository I/O first; in-memory state mutates only once the
	// balance load and the status write have both succeeded.
	var loaded []models.BalanceRecord
	if !e.balancesLoaded {
		records, err := e.users.LoadBalances(ctx)
		if err != nil {
			return fmt.Errorf("failed to load balances: %w", err)
		}
		loaded = records
	}
	if err := e.auctions.SetStatus(ctx, e.record.ID, models.AuctionStatusActive); err != nil {
		return fmt.Errorf("failed to activate auction: %w", err)
	}

	if !e.balancesLoaded {
		e.ledger.Load(loaded)
		e.balancesLoaded = true
	}
	if e.currentRound == 0 {
		e.bids = make(map[string]Bid)
		e.board.Reset()
	}

	plan := e.record.Plan[e.currentRound]
	duration := time.Duration(plan.Time) * time.Second
	e.roundEndTime = e.now().Add(duration)
	e.active = true
	e.record.Status = models.AuctionStatusActive
	e.armTimerLocked(duration)

	slog.Info("Round started",
		slog.String("type", "bid"),
		slog.String("auction_id", e.record.ID),
		slog.Int("round", e.currentRound),
		slog.Int("gifts", plan.CountOfGifts),
		slog.Duration("duration", duration))

	return nil
}

// PlaceBid admits or rejects a bid synchronously. It never touches the
// repository, so it cannot suspend. Rejections come back as *BidError in
// the spec's evaluation order; the returned Bid is the stored entry on
// success.
func (e *Engine) PlaceBid(userID string, amount int64) (*Bid, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.degraded {
		return nil, ErrDegraded
	}

	now := e.now()
	// The computed deadline is authoritative even when the timer fires
	// late: admissions at or past it are closed.
	if !e.active || !now.Before(e.roundEndTime) {
		return nil, &BidError{Kind: ErrNotActive}
	}
	if amount <= 0 {
		return nil, &BidError{Kind: ErrNonPositive}
	}

	current := e.bids[userID] // zero value gives Amount 0 for first-time bidders
	if amount <= current.Amount {
		return nil, &BidError{Kind: ErrNotHigher, CurrentBid: current.Amount}
	}

	delta := amount - current.Amount
	if bal := e.ledger.Get(userID); bal < delta {
		return nil, &BidError{Kind: ErrInsufficientFunds, Deficit: delta - bal}
	}

	// Anti-snipe observes the board before the new bid lands: the
	// threshold is the marginal winner this bid may be about to eject.
	remaining := e.roundEndTime.Sub(now)
	k := e.record.Plan[e.currentRound].CountOfGifts
	threshold := e.board.ThresholdAmount(k)

	if !e.ledger.TryDebit(userID, delta) {
		e.degraded = true
		return nil, ErrDegraded
	}

	bid := Bid{UserID: userID, Amount: amount, Timestamp: e.nextTimestampLocked(now)}
	if current.Amount > 0 {
		e.board.Remove(current)
	}
	e.bids[userID] = bid
	e.board.Insert(bid)

	if remaining > 0 && remaining < SnipeWindow && threshold > 0 && amount > threshold {
		e.roundEndTime = now.Add(SnipeExtension)
		e.armTimerLocked(SnipeExtension)
		slog.Debug("Deadline extended",
			slog.String("type", "bid"),
			slog.String("auction_id", e.record.ID),
			slog.Int("round", e.currentRound),
			slog.String("user_id", userID),
			slog.Int64("amount", amount))
	}

	return &bid, nil
}

// nextTimestampLocked hands out strictly increasing millisecond stamps,
// even for admissions inside the same wall-clock millisecond.
func (e *Engine) nextTimestampLocked(now time.Time) int64 {
	ms := now.UnixMilli()
	if ms <= e.lastBidMs {
		ms = e.lastBidMs + 1
	}
	e.lastBidMs = ms
	return ms
}

// EndRound closes the current round: persists the top-K winners, consumes
// their bids, and either starts the next round or ends the auction. Under
// the active guard the first entry wins; later calls return immediately.
func (e *Engine) EndRound(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.endRoundLocked(ctx)
}

func (e *Engine) endRoundLocked(ctx context.Context) error {
	if e.degraded {
		return ErrDegraded
	}
	if !e.active {
		return nil
	}

	round := e.currentRound
	plan := e.record.Plan[round]
	top := e.board.TopK(plan.CountOfGifts)

	base := e.giftBase(round)
	winners := make([]models.Winner, len(top))
	for i, b := range top {
		winners[i] = models.Winner{
			UserID:     b.UserID,
			Stars:      b.Amount,
			GiftNumber: base + i + 1,
		}
	}

	// The append must land before any in-memory state moves; on failure
	// the round stays open and EndRound can be called again.
	if err := e.auctions.AppendWinners(ctx, e.record.ID, winners); err != nil {
		return fmt.Errorf("failed to persist winners: %w", err)
	}

	e.active = false
	e.stopTimerLocked()

	for _, b := range top {
		delete(e.bids, b.UserID)
		e.board.Remove(b)
	}
	e.record.Winners = append(e.record.Winners, winners...)

	slog.Info("Round closed",
		slog.String("type", "bid"),
		slog.String("auction_id", e.record.ID),
		slog.Int("round", round),
		slog.Int("winners", len(winners)),
		slog.Int("carried", e.board.Len()))

	e.sink.RoundEnd(e.record.ID, round, winners)

	e.currentRound++
	if e.currentRound < len(e.record.Plan) {
		return e.startRoundLocked(ctx)
	}
	return e.endAuctionLocked(ctx)
}

// EndAuction refunds every remaining bid, flushes the ledger, and marks the
// record finished. Safe to call again after a failed attempt.
func (e *Engine) EndAuction(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.degraded {
		return ErrDegraded
	}
	if e.finished {
		return nil
	}
	return e.endAuctionLocked(ctx)
}

func (e *Engine) endAuctionLocked(ctx context.Context) error {
	e.active = false
	e.stopTimerLocked()

	// Refunds are computed into a scratch snapshot so a failed flush
	// leaves the ledger and the live bids untouched for a retry.
	refunded := make(map[string]int64, e.ledger.Count())
	for _, rec := range e.ledger.Export() {
		refunded[rec.UserID] = rec.Balance
	}
	for _, b := range e.bids {
		refunded[b.UserID] += b.Amount
	}
	records := make([]models.BalanceRecord, 0, len(refunded))
	for id, bal := range refunded {
		records = append(records, models.BalanceRecord{UserID: id, Balance: bal})
	}

	if err := e.users.SaveBalances(ctx, records); err != nil {
		return fmt.Errorf("failed to flush balances: %w", err)
	}
	finishedAt := e.now()
	if err := e.auctions.MarkFinished(ctx, e.record.ID, finishedAt); err != nil {
		return fmt.Errorf("failed to finish auction: %w", err)
	}

	e.ledger.Load(records)
	e.bids = make(map[string]Bid)
	e.board.Reset()
	e.finished = true
	e.record.Status = models.AuctionStatusFinished
	e.record.FinishedAt = &finishedAt

	slog.Info("Auction finished",
		slog.String("type", "bid"),
		slog.String("auction_id", e.record.ID),
		slog.Int("winners", len(e.record.Winners)))

	e.sink.AuctionEnd(e.record.ID)
	return nil
}

// giftBase is the number of gifts awarded before the given round.
func (e *Engine) giftBase(round int) int {
	base := 0
	for i := 0; i < round && i < len(e.record.Plan); i++ {
		base += e.record.Plan[i].CountOfGifts
	}
	return base
}

// armTimerLocked replaces the pending deadline fire. The sequence number
// makes a superseded closure a no-op even if it was already in flight.
func (e *Engine) armTimerLocked(d time.Duration) {
	e.timerSeq++
	seq := e.timerSeq
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(d, func() {
		e.fireDeadline(seq)
	})
}

func (e *Engine) stopTimerLocked() {
	e.timerSeq++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) fireDeadline(seq uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), deadlineOpTimeout)
	defer cancel()

	e.mu.Lock()
	if seq != e.timerSeq || !e.active {
		e.mu.Unlock()
		return
	}
	err := e.endRoundLocked(ctx)
	e.mu.Unlock()

	if err != nil {
		// Timer-driven closes have no caller, so the failure is only
		// logged. The timer is not re-armed: the round stays open until
		// EndRound is called again.
		slog.Error("Failed to close round at deadline",
			slog.String("type", "error"),
			slog.String("auction_id", e.record.ID),
			slog.Any("error", err))
	}
}

// Shutdown cancels any pending deadline fire. The auction record keeps its
// persisted state and can be recovered later.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
}
