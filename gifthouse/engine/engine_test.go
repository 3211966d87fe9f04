package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
	"github.com/ellavondegurechaff/gogift/gifthouse/database/repositories/mock"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// repoState backs the gomock repositories with just enough storage for the
// engine's commit paths: created records, appended winners, flushed
// balances, and injectable failures.
type repoState struct {
	mu           sync.Mutex
	records      map[string]*models.Auction
	balances     []models.BalanceRecord
	appended     []models.Winner
	saved        [][]models.BalanceRecord
	statusWrites int
	loadCalls    int
	failAppend   error
	failStatus   error
}

func (st *repoState) setFailAppend(err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.failAppend = err
}

func (st *repoState) appendedWinners() []models.Winner {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]models.Winner, len(st.appended))
	copy(out, st.appended)
	return out
}

func (st *repoState) loadCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.loadCalls
}

func (st *repoState) record(id string) *models.Auction {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.records[id]
}

func (st *repoState) lastSaved() map[string]int64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.saved) == 0 {
		return nil
	}
	out := make(map[string]int64)
	for _, rec := range st.saved[len(st.saved)-1] {
		out[rec.UserID] = rec.Balance
	}
	return out
}

// newMockRepos builds repository mocks whose expectations delegate into a
// shared repoState, so tests assert on outcomes instead of call scripts.
func newMockRepos(t *testing.T, balances map[string]int64) (*mock.MockAuctionRepository, *mock.MockUserRepository, *repoState) {
	t.Helper()
	ctrl := gomock.NewController(t)
	auctions := mock.NewMockAuctionRepository(ctrl)
	users := mock.NewMockUserRepository(ctrl)

	st := &repoState{records: make(map[string]*models.Auction)}
	for id, bal := range balances {
		st.balances = append(st.balances, models.BalanceRecord{UserID: id, Balance: bal})
	}

	auctions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *models.Auction) error {
			st.mu.Lock()
			defer st.mu.Unlock()
			st.records[a.ID] = a
			return nil
		}).AnyTimes()

	auctions.EXPECT().GetByID(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string) (*models.Auction, error) {
			st.mu.Lock()
			defer st.mu.Unlock()
			a, ok := st.records[id]
			if !ok {
				return nil, errors.New("auction not found")
			}
			return a, nil
		}).AnyTimes()

	auctions.EXPECT().GetByStatus(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, status models.AuctionStatus) ([]*models.Auction, error) {
			st.mu.Lock()
			defer st.mu.Unlock()
			var out []*models.Auction
			for _, a := range st.records {
				if a.Status == status {
					out = append(out, a)
				}
			}
			return out, nil
		}).AnyTimes()

	auctions.EXPECT().SetStatus(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string, status models.AuctionStatus) error {
			st.mu.Lock()
			defer st.mu.Unlock()
			if st.failStatus != nil {
				return st.failStatus
			}
			st.statusWrites++
			if a, ok := st.records[id]; ok {
				a.Status = status
			}
			return nil
		}).AnyTimes()

	auctions.EXPECT().AppendWinners(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, winners []models.Winner) error {
			st.mu.Lock()
			defer st.mu.Unlock()
			if st.failAppend != nil {
				return st.failAppend
			}
			st.appended = append(st.appended, winners...)
			return nil
		}).AnyTimes()

	auctions.EXPECT().MarkFinished(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string, finishedAt time.Time) error {
			st.mu.Lock()
			defer st.mu.Unlock()
			if a, ok := st.records[id]; ok {
				a.Status = models.AuctionStatusFinished
				a.FinishedAt = &finishedAt
			}
			return nil
		}).AnyTimes()

	users.EXPECT().LoadBalances(gomock.Any()).DoAndReturn(
		func(context.Context) ([]models.BalanceRecord, error) {
			st.mu.Lock()
			defer st.mu.Unlock()
			st.loadCalls++
			out := make([]models.BalanceRecord, len(st.balances))
			copy(out, st.balances)
			return out, nil
		}).AnyTimes()

	users.EXPECT().SaveBalances(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, records []models.BalanceRecord) error {
			st.mu.Lock()
			defer st.mu.Unlock()
			snapshot := make([]models.BalanceRecord, len(records))
			copy(snapshot, records)
			st.saved = append(st.saved, snapshot)
			return nil
		}).AnyTimes()

	return auctions, users, st
}

type recordingSink struct {
	mu        sync.Mutex
	rounds    []int
	winners   [][]models.Winner
	auctionEn int
}

func (s *recordingSink) RoundEnd(_ string, round int, winners []models.Winner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds = append(s.rounds, round)
	s.winners = append(s.winners, winners)
}

func (s *recordingSink) AuctionEnd(string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctionEn++
}

func testRecord(plan []models.RoundPlan) *models.Auction {
	return &models.Auction{
		ID:      "auc-1",
		Name:    "Summer Gift Drop",
		Gift:    models.Gift{ID: "gift-1", Name: "Plush Star"},
		Plan:    plan,
		Winners: []models.Winner{},
		Status:  models.AuctionStatusPending,
	}
}

func newTestEngine(t *testing.T, plan []models.RoundPlan, balances map[string]int64) (*Engine, *repoState, *recordingSink, *fakeClock) {
	t.Helper()
	auctions, users, st := newMockRepos(t, balances)
	sink := &recordingSink{}
	clk := newFakeClock()

	record := testRecord(plan)
	if err := auctions.Create(context.Background(), record); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	e := NewEngine(record, auctions, users, sink, WithNow(clk.Now))
	t.Cleanup(e.Shutdown)
	return e, st, sink, clk
}

func mustBid(t *testing.T, e *Engine, userID string, amount int64) {
	t.Helper()
	if _, err := e.PlaceBid(userID, amount); err != nil {
		t.Fatalf("PlaceBid(%s, %d) error = %v", userID, amount, err)
	}
}

func TestEngine_BasicRound(t *testing.T) {
	plan := []models.RoundPlan{{RoundNumber: 0, CountOfGifts: 2, Time: 10}}
	e, st, sink, _ := newTestEngine(t, plan, map[string]int64{"A": 100, "B": 100, "C": 100})
	ctx := context.Background()

	if err := e.StartRound(ctx); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}

	mustBid(t, e, "A", 10)
	mustBid(t, e, "B", 20)
	mustBid(t, e, "C", 15)
	mustBid(t, e, "A", 30)

	// Escrow: the ledger already holds each bidder's full bid.
	if got := e.Ledger().Get("A"); got != 70 {
		t.Errorf("ledger[A] = %d, want 70", got)
	}
	if got := e.Ledger().Get("B"); got != 80 {
		t.Errorf("ledger[B] = %d, want 80", got)
	}
	if got := e.Ledger().Get("C"); got != 85 {
		t.Errorf("ledger[C] = %d, want 85", got)
	}

	if err := e.EndRound(ctx); err != nil {
		t.Fatalf("EndRound() error = %v", err)
	}

	want := []models.Winner{
		{UserID: "A", Stars: 30, GiftNumber: 1},
		{UserID: "B", Stars: 20, GiftNumber: 2},
	}
	got := st.appendedWinners()
	if len(got) != len(want) {
		t.Fatalf("appended winners = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("winner[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	final := st.lastSaved()
	for user, bal := range map[string]int64{"A": 70, "B": 80, "C": 100} {
		if final[user] != bal {
			t.Errorf("final balance[%s] = %d, want %d", user, final[user], bal)
		}
	}

	if !e.IsFinished() {
		t.Error("engine not finished after final round")
	}
	if sink.auctionEn != 1 {
		t.Errorf("auctionEnd callbacks = %d, want 1", sink.auctionEn)
	}

	// Conservation: 65 debited = 15 refunded + 50 consumed.
	var consumed int64
	for _, w := range got {
		consumed += w.Stars
	}
	var leak int64 = 300 - (final["A"] + final["B"] + final["C"] + consumed)
	if consumed != 50 || leak != 0 {
		t.Errorf("conservation broken: consumed = %d, leak = %d", consumed, leak)
	}
}

func TestEngine_CarryOver(t *testing.T) {
	plan := []models.RoundPlan{
		{RoundNumber: 0, CountOfGifts: 1, Time: 5},
		{RoundNumber: 1, CountOfGifts: 1, Time: 5},
	}
	e, st, _, _ := newTestEngine(t, plan, map[string]int64{"A": 100, "B": 100})
	ctx := context.Background()

	if err := e.StartRound(ctx); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	mustBid(t, e, "A", 10)
	mustBid(t, e, "B", 20)

	if err := e.EndRound(ctx); err != nil {
		t.Fatalf("EndRound() round 0 error = %v", err)
	}

	// Round 1 started automatically with A's bid carried forward.
	if !e.IsActive() {
		t.Fatal("engine inactive after advancing to round 1")
	}
	if got := e.CurrentRound(); got != 1 {
		t.Fatalf("CurrentRound() = %d, want 1", got)
	}
	if got := st.loadCount(); got != 1 {
		t.Errorf("balance loads = %d, want 1 (once per auction)", got)
	}

	if err := e.EndRound(ctx); err != nil {
		t.Fatalf("EndRound() round 1 error = %v", err)
	}

	want := []models.Winner{
		{UserID: "B", Stars: 20, GiftNumber: 1},
		{UserID: "A", Stars: 10, GiftNumber: 2},
	}
	got := st.appendedWinners()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("winners = %v, want %v", got, want)
	}

	final := st.lastSaved()
	if final["A"] != 90 || final["B"] != 80 {
		t.Errorf("final balances = %v, want A=90 B=80", final)
	}
}

func TestEngine_AntiSnipeExtends(t *testing.T) {
	plan := []models.RoundPlan{{RoundNumber: 0, CountOfGifts: 1, Time: 10}}
	e, _, _, clk := newTestEngine(t, plan, map[string]int64{"A": 100, "B": 100})
	ctx := context.Background()

	if err := e.StartRound(ctx); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	start := clk.Now()

	mustBid(t, e, "A", 50)

	clk.Advance(9 * time.Second) // 1s remaining, inside the snipe window
	mustBid(t, e, "B", 60)

	wantEnd := start.Add(19 * time.Second) // 9s elapsed + 10s extension
	if got := e.RoundEndTime(); !got.Equal(wantEnd) {
		t.Errorf("RoundEndTime() = %v, want %v", got, wantEnd)
	}
}

func TestEngine_AntiSnipeNotTriggered(t *testing.T) {
	tests := []struct {
		name  string
		gifts int
		setup func(t *testing.T, e *Engine, clk *fakeClock)
		user  string
		bid   int64
	}{
		{
			name:  "underfilled top-K",
			gifts: 2,
			setup: func(t *testing.T, e *Engine, clk *fakeClock) {
				clk.Advance(9 * time.Second)
			},
			user: "A",
			bid:  50,
		},
		{
			name:  "outside the window",
			gifts: 1,
			setup: func(t *testing.T, e *Engine, clk *fakeClock) {
				mustBid(t, e, "A", 50)
				clk.Advance(3 * time.Second) // 7s remaining
			},
			user: "B",
			bid:  60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := []models.RoundPlan{{RoundNumber: 0, CountOfGifts: tt.gifts, Time: 10}}
			e, _, _, clk := newTestEngine(t, plan, map[string]int64{"A": 100, "B": 100})
			if err := e.StartRound(context.Background()); err != nil {
				t.Fatalf("StartRound() error = %v", err)
			}
			wantEnd := clk.Now().Add(10 * time.Second)

			tt.setup(t, e, clk)
			mustBid(t, e, tt.user, tt.bid)

			if got := e.RoundEndTime(); !got.Equal(wantEnd) {
				t.Errorf("RoundEndTime() = %v, want unchanged %v", got, wantEnd)
			}
		})
	}
}

func TestEngine_UnderfilledRoundAwardsAllBidders(t *testing.T) {
	plan := []models.RoundPlan{{RoundNumber: 0, CountOfGifts: 2, Time: 10}}
	e, st, _, _ := newTestEngine(t, plan, map[string]int64{"A": 100})
	ctx := context.Background()

	if err := e.StartRound(ctx); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	mustBid(t, e, "A", 50)

	if err := e.EndRound(ctx); err != nil {
		t.Fatalf("EndRound() error = %v", err)
	}

	got := st.appendedWinners()
	if len(got) != 1 {
		t.Fatalf("winners = %v, want exactly one", got)
	}
	if got[0] != (models.Winner{UserID: "A", Stars: 50, GiftNumber: 1}) {
		t.Errorf("winner = %v, want A/50/#1", got[0])
	}
}

func TestEngine_InsufficientFunds(t *testing.T) {
	plan := []models.RoundPlan{{RoundNumber: 0, CountOfGifts: 1, Time: 10}}
	e, _, _, _ := newTestEngine(t, plan, map[string]int64{"A": 30})
	ctx := context.Background()

	if err := e.StartRound(ctx); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	mustBid(t, e, "A", 20)

	_, err := e.PlaceBid("A", 60)
	var bidErr *BidError
	if !errors.As(err, &bidErr) || bidErr.Kind != ErrInsufficientFunds {
		t.Fatalf("PlaceBid() error = %v, want insufficient_funds", err)
	}
	if bidErr.Deficit != 30 {
		t.Errorf("deficit = %d, want 30", bidErr.Deficit)
	}

	// Rejection left everything alone.
	if got := e.Ledger().Get("A"); got != 10 {
		t.Errorf("ledger[A] = %d, want 10", got)
	}
	snap := e.Snapshot()
	if len(snap.Leaderboard) != 1 || snap.Leaderboard[0].Amount != 20 {
		t.Errorf("leaderboard = %v, want single bid of 20", snap.Leaderboard)
	}
}

func TestEngine_ValidationOrder(t *testing.T) {
	plan := []models.RoundPlan{{RoundNumber: 0, CountOfGifts: 1, Time: 10}}

	t.Run("not active wins over everything", func(t *testing.T) {
		e, _, _, _ := newTestEngine(t, plan, map[string]int64{"A": 100})
		_, err := e.PlaceBid("A", -5)
		var bidErr *BidError
		if !errors.As(err, &bidErr) || bidErr.Kind != ErrNotActive {
			t.Errorf("PlaceBid() on pending engine error = %v, want not_active", err)
		}
	})

	t.Run("non-positive amounts", func(t *testing.T) {
		e, _, _, _ := newTestEngine(t, plan, map[string]int64{"A": 100})
		if err := e.StartRound(context.Background()); err != nil {
			t.Fatalf("StartRound() error = %v", err)
		}
		for _, amount := range []int64{0, -1} {
			_, err := e.PlaceBid("A", amount)
			var bidErr *BidError
			if !errors.As(err, &bidErr) || bidErr.Kind != ErrNonPositive {
				t.Errorf("PlaceBid(%d) error = %v, want non_positive", amount, err)
			}
		}
	})

	t.Run("equal bid is rejected", func(t *testing.T) {
		e, _, _, _ := newTestEngine(t, plan, map[string]int64{"A": 100})
		if err := e.StartRound(context.Background()); err != nil {
			t.Fatalf("StartRound() error = %v", err)
		}
		mustBid(t, e, "A", 40)
		_, err := e.PlaceBid("A", 40)
		var bidErr *BidError
		if !errors.As(err, &bidErr) || bidErr.Kind != ErrNotHigher {
			t.Fatalf("PlaceBid(equal) error = %v, want not_higher", err)
		}
		if bidErr.CurrentBid != 40 {
			t.Errorf("CurrentBid = %d, want 40", bidErr.CurrentBid)
		}
	})

	t.Run("bids after the deadline are closed", func(t *testing.T) {
		e, _, _, clk := newTestEngine(t, plan, map[string]int64{"A": 100})
		if err := e.StartRound(context.Background()); err != nil {
			t.Fatalf("StartRound() error = %v", err)
		}
		clk.Advance(10 * time.Second)
		_, err := e.PlaceBid("A", 10)
		var bidErr *BidError
		if !errors.As(err, &bidErr) || bidErr.Kind != ErrNotActive {
			t.Errorf("PlaceBid() past deadline error = %v, want not_active", err)
		}
	})
}

func TestEngine_ZeroBidRoundAdvances(t *testing.T) {
	plan := []models.RoundPlan{
		{RoundNumber: 0, CountOfGifts: 2, Time: 10},
		{RoundNumber: 1, CountOfGifts: 1, Time: 10},
	}
	e, st, sink, _ := newTestEngine(t, plan, map[string]int64{"A": 100})
	ctx := context.Background()

	if err := e.StartRound(ctx); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	if err := e.EndRound(ctx); err != nil {
		t.Fatalf("EndRound() error = %v", err)
	}

	if got := e.CurrentRound(); got != 1 {
		t.Errorf("CurrentRound() = %d, want 1", got)
	}
	if !e.IsActive() {
		t.Error("engine inactive after empty round")
	}
	if got := st.appendedWinners(); len(got) != 0 {
		t.Errorf("winners = %v, want none", got)
	}
	if len(sink.winners) != 1 || len(sink.winners[0]) != 0 {
		t.Errorf("roundEnd callbacks = %v, want one empty list", sink.winners)
	}
}

func TestEngine_MonotonicTimestamps(t *testing.T) {
	plan := []models.RoundPlan{{RoundNumber: 0, CountOfGifts: 1, Time: 10}}
	e, _, _, _ := newTestEngine(t, plan, map[string]int64{"A": 1000, "B": 1000, "C": 1000})
	if err := e.StartRound(context.Background()); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}

	// The clock is frozen: stamps must still strictly increase.
	var last int64
	for i, user := range []string{"A", "B", "C", "A", "B"} {
		bid, err := e.PlaceBid(user, int64(10*(i+1)))
		if err != nil {
			t.Fatalf("PlaceBid() error = %v", err)
		}
		if bid.Timestamp <= last {
			t.Fatalf("timestamp %d not after %d", bid.Timestamp, last)
		}
		last = bid.Timestamp
	}
}

func TestEngine_GiftNumbersCoverWholePlan(t *testing.T) {
	plan := []models.RoundPlan{
		{RoundNumber: 0, CountOfGifts: 2, Time: 10},
		{RoundNumber: 1, CountOfGifts: 3, Time: 10},
		{RoundNumber: 2, CountOfGifts: 1, Time: 10},
	}
	balances := map[string]int64{}
	for i := 0; i < 8; i++ {
		balances[fmt.Sprintf("u%d", i)] = 10_000
	}
	e, st, _, _ := newTestEngine(t, plan, balances)
	ctx := context.Background()

	if err := e.StartRound(ctx); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}

	bid := int64(0)
	for round := 0; round < len(plan); round++ {
		for i := 0; i < 8; i++ {
			bid += 10
			mustBid(t, e, fmt.Sprintf("u%d", i), bid)
		}
		if err := e.EndRound(ctx); err != nil {
			t.Fatalf("EndRound() round %d error = %v", round, err)
		}
	}

	got := st.appendedWinners()
	if len(got) != 6 {
		t.Fatalf("winners = %d, want 6", len(got))
	}
	for i, w := range got {
		if w.GiftNumber != i+1 {
			t.Errorf("winner[%d].GiftNumber = %d, want %d", i, w.GiftNumber, i+1)
		}
	}
}

func TestEngine_FailedWinnerAppendKeepsRoundOpen(t *testing.T) {
	plan := []models.RoundPlan{{RoundNumber: 0, CountOfGifts: 1, Time: 10}}
	e, st, _, _ := newTestEngine(t, plan, map[string]int64{"A": 100})
	ctx := context.Background()

	if err := e.StartRound(ctx); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	mustBid(t, e, "A", 50)

	st.setFailAppend(errors.New("connection reset"))
	if err := e.EndRound(ctx); err == nil {
		t.Fatal("EndRound() succeeded despite repository failure")
	}

	if !e.IsActive() {
		t.Fatal("round closed after failed persist")
	}
	if snap := e.Snapshot(); len(snap.Leaderboard) != 1 {
		t.Fatalf("leaderboard = %v, want the live bid preserved", snap.Leaderboard)
	}

	// Host retry succeeds once the repository recovers.
	st.setFailAppend(nil)
	if err := e.EndRound(ctx); err != nil {
		t.Fatalf("EndRound() retry error = %v", err)
	}
	if !e.IsFinished() {
		t.Error("engine not finished after retry")
	}
}

func TestEngine_EndRoundIdempotent(t *testing.T) {
	plan := []models.RoundPlan{{RoundNumber: 0, CountOfGifts: 1, Time: 10}}
	e, st, sink, _ := newTestEngine(t, plan, map[string]int64{"A": 100})
	ctx := context.Background()

	if err := e.StartRound(ctx); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	mustBid(t, e, "A", 50)

	if err := e.EndRound(ctx); err != nil {
		t.Fatalf("EndRound() error = %v", err)
	}
	if err := e.EndRound(ctx); err != nil {
		t.Fatalf("second EndRound() error = %v", err)
	}

	if got := st.appendedWinners(); len(got) != 1 {
		t.Errorf("winners = %v, want exactly one", got)
	}
	if len(sink.rounds) != 1 {
		t.Errorf("roundEnd callbacks = %d, want 1", len(sink.rounds))
	}
}

func TestEngine_DeadlineTimerFires(t *testing.T) {
	plan := []models.RoundPlan{{RoundNumber: 0, CountOfGifts: 1, Time: 1}}
	auctions, users, st := newMockRepos(t, map[string]int64{"A": 100})
	record := testRecord(plan)
	if err := auctions.Create(context.Background(), record); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	e := NewEngine(record, auctions, users, NopSink{})
	t.Cleanup(e.Shutdown)

	if err := e.StartRound(context.Background()); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	mustBid(t, e, "A", 50)

	deadline := time.After(5 * time.Second)
	for !e.IsFinished() {
		select {
		case <-deadline:
			t.Fatal("deadline timer never closed the round")
		case <-time.After(50 * time.Millisecond):
		}
	}

	if got := st.appendedWinners(); len(got) != 1 || got[0].UserID != "A" {
		t.Errorf("winners = %v, want A", got)
	}
}
