package engine

import (
	"sort"
	"sync"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
)

// Ledger is the in-memory balance map one engine bids against. Every bid
// admission debits it; losing bids are credited back when the auction ends.
// All operations are atomic with respect to each other.
type Ledger struct {
	mu  sync.Mutex
	bal map[string]int64
}

func NewLedger() *Ledger {
	return &Ledger{bal: make(map[string]int64)}
}

// Load replaces the whole map from a repository snapshot.
func (l *Ledger) Load(records []models.BalanceRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.bal = make(map[string]int64, len(records))
	for _, r := range records {
		l.bal[r.UserID] = r.Balance
	}
}

// Export snapshots the map for persistence, ordered by user id so flushes
// are deterministic.
func (l *Ledger) Export() []models.BalanceRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := make([]models.BalanceRecord, 0, len(l.bal))
	for id, bal := range l.bal {
		records = append(records, models.BalanceRecord{UserID: id, Balance: bal})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].UserID < records[j].UserID })
	return records
}

func (l *Ledger) Get(userID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bal[userID]
}

func (l *Ledger) Set(userID string, balance int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bal[userID] = balance
}

func (l *Ledger) Has(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.bal[userID]
	return ok
}

func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bal)
}

// Add credits the user and returns the new balance.
func (l *Ledger) Add(userID string, amount int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bal[userID] += amount
	return l.bal[userID]
}

// TryDebit decrements the balance only if it covers the amount. Returns
// false, leaving the balance untouched, otherwise.
func (l *Ledger) TryDebit(userID string, amount int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.bal[userID] < amount {
		return false
	}
	l.bal[userID] -= amount
	return true
}
