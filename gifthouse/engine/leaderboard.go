package engine

import "sort"

// Leaderboard keeps live bids ordered by (amount desc, timestamp asc).
// It is a plain slice with binary-search insertion: rounds hold at most a
// few thousand live bids, and the engine already serializes access, so a
// tree buys nothing here.
type Leaderboard struct {
	entries []Bid
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{}
}

// ranksBefore reports whether a sorts strictly ahead of b.
func ranksBefore(a, b Bid) bool {
	if a.Amount != b.Amount {
		return a.Amount > b.Amount
	}
	return a.Timestamp < b.Timestamp
}

func (l *Leaderboard) Len() int {
	return len(l.entries)
}

// Insert places the bid at its rank. Equal keys keep insertion order.
func (l *Leaderboard) Insert(b Bid) {
	i := sort.Search(len(l.entries), func(i int) bool {
		return ranksBefore(b, l.entries[i])
	})
	l.entries = append(l.entries, Bid{})
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = b
}

// Remove deletes the entry matching the bid's user and key. Returns false
// if no such entry exists.
func (l *Leaderboard) Remove(b Bid) bool {
	// Binary search narrows to the first entry not ranking ahead of b,
	// then a short scan over equal keys finds the user.
	i := sort.Search(len(l.entries), func(i int) bool {
		return !ranksBefore(l.entries[i], b)
	})
	for ; i < len(l.entries); i++ {
		e := l.entries[i]
		if e.Amount != b.Amount || e.Timestamp != b.Timestamp {
			break
		}
		if e.UserID == b.UserID {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// TopK copies the best k entries (fewer if the board is smaller).
func (l *Leaderboard) TopK(k int) []Bid {
	if k > len(l.entries) {
		k = len(l.entries)
	}
	top := make([]Bid, k)
	copy(top, l.entries[:k])
	return top
}

// ThresholdAmount is the amount of the k-th ranked bid, or 0 when fewer
// than k bids are live. It is the marginal-winner cutoff the anti-snipe
// rule compares against.
func (l *Leaderboard) ThresholdAmount(k int) int64 {
	if k <= 0 || len(l.entries) < k {
		return 0
	}
	return l.entries[k-1].Amount
}

// All copies every entry in rank order.
func (l *Leaderboard) All() []Bid {
	out := make([]Bid, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Leaderboard) Reset() {
	l.entries = nil
}
