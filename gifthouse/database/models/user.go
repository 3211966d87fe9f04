package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk"`
	Username     string    `bun:"username,notnull"`
	FirstName    string    `bun:"first_name,notnull"`
	LastName     string    `bun:"last_name"`
	Avatar       string    `bun:"avatar"`
	Balance      int64     `bun:"balance,notnull,default:0"`
	IsBot        bool      `bun:"is_bot,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	LastActiveAt time.Time `bun:"last_active_at,notnull"`
}

// BalanceRecord is the slim projection the auction engine loads and flushes.
type BalanceRecord struct {
	UserID  string
	Balance int64
}
