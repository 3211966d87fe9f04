package models

import (
	"time"

	"github.com/uptrace/bun"
)

type AuctionStatus string

const (
	AuctionStatusPending  AuctionStatus = "pending"
	AuctionStatusActive   AuctionStatus = "active"
	AuctionStatusFinished AuctionStatus = "finished"
)

// Gift is the prize handed out by an auction. One auction sells many
// indistinguishable copies of a single gift.
type Gift struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoundPlan describes one round: how many gifts are awarded when the
// round closes and how long the round runs.
type RoundPlan struct {
	RoundNumber  int `json:"roundNumber"`
	CountOfGifts int `json:"countOfGifts"`
	Time         int `json:"time"` // round duration in seconds
}

// Winner records one awarded gift. GiftNumber is a 1-based index into the
// auction's flattened gift sequence; Stars is the bid that was consumed.
type Winner struct {
	UserID     string `json:"userId"`
	Stars      int64  `json:"stars"`
	GiftNumber int    `json:"giftNumber"`
}

type Auction struct {
	bun.BaseModel `bun:"table:auctions,alias:a"`

	ID         string        `bun:"id,pk"`
	Name       string        `bun:"name,notnull"`
	Gift       Gift          `bun:"gift,type:jsonb"`
	Plan       []RoundPlan   `bun:"plan,type:jsonb,notnull"`
	Winners    []Winner      `bun:"winners,type:jsonb,notnull,default:'[]'"`
	Status     AuctionStatus `bun:"status,notnull"`
	CreatedAt  time.Time     `bun:"created_at,notnull,default:current_timestamp"`
	FinishedAt *time.Time    `bun:"finished_at"`
}

// TotalGifts is the number of gifts across all rounds of the plan.
func (a *Auction) TotalGifts() int {
	total := 0
	for _, r := range a.Plan {
		total += r.CountOfGifts
	}
	return total
}
