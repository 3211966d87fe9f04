package migration

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Legacy document shapes from the original Node deployment's MongoDB.
// Field names mirror the collections as they exist in production dumps.

type LegacyUser struct {
	ID           primitive.ObjectID `bson:"_id"`
	UserID       string             `bson:"id"`
	Username     string             `bson:"username"`
	FirstName    string             `bson:"firstName"`
	LastName     string             `bson:"lastName,omitempty"`
	Avatar       string             `bson:"avatar,omitempty"`
	Balance      int64              `bson:"balance"`
	IsBot        bool               `bson:"isBot"`
	CreatedAt    time.Time          `bson:"createdAt"`
	LastActiveAt time.Time          `bson:"lastActiveAt"`
}

type LegacyGift struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

type LegacyRound struct {
	RoundNumber  int `bson:"roundNumber"`
	CountOfGifts int `bson:"countOfGifts"`
	Time         int `bson:"time"`
}

type LegacyWinner struct {
	UserID     string `bson:"userId"`
	Stars      int64  `bson:"stars"`
	GiftNumber int    `bson:"giftNumber"`
}

type LegacyAuction struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	Gift       LegacyGift         `bson:"gift"`
	Plan       []LegacyRound      `bson:"plan"`
	Winners    []LegacyWinner     `bson:"winners"`
	Status     string             `bson:"status"`
	CreatedAt  time.Time          `bson:"createdAt"`
	FinishedAt *time.Time         `bson:"finishedAt,omitempty"`
}
