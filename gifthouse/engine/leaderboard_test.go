package engine

import "testing"

func boardOrder(l *Leaderboard) []string {
	var ids []string
	for _, b := range l.All() {
		ids = append(ids, b.UserID)
	}
	return ids
}

func TestLeaderboard_Ordering(t *testing.T) {
	l := NewLeaderboard()
	l.Insert(Bid{UserID: "low", Amount: 10, Timestamp: 1})
	l.Insert(Bid{UserID: "high", Amount: 50, Timestamp: 2})
	l.Insert(Bid{UserID: "mid", Amount: 30, Timestamp: 3})

	want := []string{"high", "mid", "low"}
	got := boardOrder(l)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestLeaderboard_TieBreakByTimestamp(t *testing.T) {
	l := NewLeaderboard()
	l.Insert(Bid{UserID: "late", Amount: 40, Timestamp: 200})
	l.Insert(Bid{UserID: "early", Amount: 40, Timestamp: 100})
	l.Insert(Bid{UserID: "between", Amount: 40, Timestamp: 150})

	want := []string{"early", "between", "late"}
	got := boardOrder(l)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v (earlier timestamp ranks higher)", got, want)
		}
	}
}

func TestLeaderboard_Replace(t *testing.T) {
	l := NewLeaderboard()
	old := Bid{UserID: "u", Amount: 20, Timestamp: 1}
	l.Insert(old)
	l.Insert(Bid{UserID: "rival", Amount: 30, Timestamp: 2})

	if !l.Remove(old) {
		t.Fatal("Remove() did not find the stored bid")
	}
	l.Insert(Bid{UserID: "u", Amount: 35, Timestamp: 3})

	if got := boardOrder(l); got[0] != "u" || l.Len() != 2 {
		t.Errorf("after replace: order = %v, len = %d", got, l.Len())
	}
	if l.Remove(old) {
		t.Error("Remove() found an entry that was already gone")
	}
}

func TestLeaderboard_TopKAndThreshold(t *testing.T) {
	l := NewLeaderboard()
	for i, amount := range []int64{50, 40, 30, 20} {
		l.Insert(Bid{UserID: string(rune('a' + i)), Amount: amount, Timestamp: int64(i)})
	}

	top := l.TopK(2)
	if len(top) != 2 || top[0].Amount != 50 || top[1].Amount != 40 {
		t.Errorf("TopK(2) = %v", top)
	}
	if got := l.TopK(10); len(got) != 4 {
		t.Errorf("TopK(10) returned %d entries, want all 4", len(got))
	}

	if got := l.ThresholdAmount(2); got != 40 {
		t.Errorf("ThresholdAmount(2) = %d, want 40", got)
	}
	if got := l.ThresholdAmount(5); got != 0 {
		t.Errorf("ThresholdAmount(5) = %d, want 0 for underfilled board", got)
	}
}
