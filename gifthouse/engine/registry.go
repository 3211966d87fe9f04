package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
	"github.com/ellavondegurechaff/gogift/gifthouse/database/repositories"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/errgroup"
)

const finishedCacheSize = 512

// Registry is the process-wide directory of live engines. It creates,
// looks up, and removes engines, recovers active auctions after a crash,
// and parks finished records in an LRU for the read API.
type Registry struct {
	auctions repositories.AuctionRepository
	users    repositories.UserRepository
	sink     Sink

	engines  *xsync.MapOf[string, *Engine]
	finished *lru.Cache

	now func() time.Time
}

// RegistryOption tweaks registry construction.
type RegistryOption func(*Registry)

// WithClock overrides the clock handed to every engine the registry builds.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(auctions repositories.AuctionRepository, users repositories.UserRepository, sink Sink, opts ...RegistryOption) *Registry {
	if sink == nil {
		sink = NopSink{}
	}
	cache, _ := lru.New(finishedCacheSize)
	r := &Registry{
		auctions: auctions,
		users:    users,
		sink:     sink,
		engines:  xsync.NewMapOf[string, *Engine](),
		finished: cache,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) engineOptions(extra ...Option) []Option {
	opts := extra
	if r.now != nil {
		opts = append(opts, WithNow(r.now))
	}
	return opts
}

// Create persists a pending auction record and registers an engine for it.
// The auction does not run until StartRound.
func (r *Registry) Create(ctx context.Context, name string, gift models.Gift, plan []models.RoundPlan) (*Engine, error) {
	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	record := &models.Auction{
		ID:      uuid.NewString(),
		Name:    name,
		Gift:    gift,
		Plan:    plan,
		Winners: []models.Winner{},
		Status:  models.AuctionStatusPending,
	}
	if err := r.auctions.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist auction: %w", err)
	}

	e := NewEngine(record, r.auctions, r.users, r.sink, r.engineOptions()...)
	r.engines.Store(record.ID, e)

	slog.Info("Auction registered",
		slog.String("type", "bid"),
		slog.String("auction_id", record.ID),
		slog.String("name", name),
		slog.Int("rounds", len(plan)))

	return e, nil
}

func validatePlan(plan []models.RoundPlan) error {
	if len(plan) == 0 {
		return fmt.Errorf("auction plan must have at least one round")
	}
	for i, round := range plan {
		if round.CountOfGifts < 1 {
			return fmt.Errorf("round %d must award at least one gift", i)
		}
		if round.Time <= 0 {
			return fmt.Errorf("round %d must have a positive duration", i)
		}
	}
	return nil
}

func (r *Registry) Get(id string) (*Engine, bool) {
	return r.engines.Load(id)
}

func (r *Registry) List() []*Engine {
	var out []*Engine
	r.engines.Range(func(_ string, e *Engine) bool {
		out = append(out, e)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Remove unregisters the engine and cancels its pending timer. The
// persisted record is untouched.
func (r *Registry) Remove(id string) bool {
	e, ok := r.engines.LoadAndDelete(id)
	if !ok {
		return false
	}
	e.Shutdown()
	return true
}

// Search fuzzy-matches auction names, best matches first.
func (r *Registry) Search(query string) []*Engine {
	engines := r.List()
	if query == "" {
		return engines
	}

	names := make([]string, len(engines))
	for i, e := range engines {
		names[i] = e.Name()
	}

	matches := fuzzy.Find(query, names)
	out := make([]*Engine, 0, len(matches))
	for _, m := range matches {
		out = append(out, engines[m.Index])
	}
	return out
}

// Recover restarts every auction persisted as active. The round to resume
// is derived from how many winners the record already holds; resumption of
// independent auctions runs concurrently.
func (r *Registry) Recover(ctx context.Context) error {
	records, err := r.auctions.GetByStatus(ctx, models.AuctionStatusActive)
	if err != nil {
		return fmt.Errorf("failed to scan active auctions: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, record := range records {
		record := record
		g.Go(func() error {
			round := ResumeRound(record.Plan, len(record.Winners))
			e := NewEngine(record, r.auctions, r.users, r.sink, r.engineOptions(WithResumeRound(round))...)
			r.engines.Store(record.ID, e)

			slog.Info("Recovering auction",
				slog.String("type", "bid"),
				slog.String("auction_id", record.ID),
				slog.Int("persisted_winners", len(record.Winners)),
				slog.Int("resume_round", round))

			if err := e.StartRound(ctx); err != nil {
				return fmt.Errorf("failed to resume auction %s: %w", record.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// ResumeRound walks the plan, subtracting each round's gift count from the
// persisted winner count until it is no longer positive, and returns the
// index of the round after the last one subtracted. A partially awarded
// round counts as consumed: 4 winners on a 2,3,1 plan resume at round 2.
// A count covering the whole plan yields len(plan), the terminal state.
func ResumeRound(plan []models.RoundPlan, winnerCount int) int {
	remaining := winnerCount
	round := 0
	for round < len(plan) && remaining > 0 {
		remaining -= plan[round].CountOfGifts
		round++
	}
	return round
}

// Sweep parks finished engines in the LRU so the read API can still serve
// their records. Wired to the host's cron.
func (r *Registry) Sweep() {
	r.engines.Range(func(id string, e *Engine) bool {
		if e.IsFinished() {
			r.engines.Delete(id)
			r.finished.Add(id, e.Snapshot())
			slog.Debug("Swept finished auction",
				slog.String("type", "sys"),
				slog.String("auction_id", id))
		}
		return true
	})
}

// Finished returns the parked snapshot of a swept auction, if any.
func (r *Registry) Finished(id string) (Snapshot, bool) {
	v, ok := r.finished.Get(id)
	if !ok {
		return Snapshot{}, false
	}
	snap, ok := v.(Snapshot)
	return snap, ok
}

// Shutdown cancels every engine's pending timer.
func (r *Registry) Shutdown() {
	r.engines.Range(func(_ string, e *Engine) bool {
		e.Shutdown()
		return true
	})
}
