package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
)

const defaultBatchSize = 500

// Migrator imports the legacy MongoDB deployment's users and auctions
// into PostgreSQL. Re-runs skip rows that already exist.
type Migrator struct {
	pgDB      *bun.DB
	mongoDB   *mongo.Database
	client    *mongo.Client
	batchSize int
}

func NewMigrator(ctx context.Context, pgDB *bun.DB, uri, database string) (*Migrator, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo unreachable: %w", err)
	}

	return &Migrator{
		pgDB:      pgDB,
		mongoDB:   client.Database(database),
		client:    client,
		batchSize: defaultBatchSize,
	}, nil
}

func (m *Migrator) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Run imports users first so auctions never reference missing bidders.
func (m *Migrator) Run(ctx context.Context) error {
	start := time.Now()

	userCount, err := m.MigrateUsers(ctx)
	if err != nil {
		return fmt.Errorf("user migration failed: %w", err)
	}
	auctionCount, err := m.MigrateAuctions(ctx)
	if err != nil {
		return fmt.Errorf("auction migration failed: %w", err)
	}

	slog.Info("Legacy import complete",
		slog.String("type", "sys"),
		slog.Int("users", userCount),
		slog.Int("auctions", auctionCount),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (m *Migrator) MigrateUsers(ctx context.Context) (int, error) {
	cursor, err := m.mongoDB.Collection("users").Find(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to query legacy users: %w", err)
	}
	defer cursor.Close(ctx)

	total := 0
	batch := make([]*models.User, 0, m.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := m.pgDB.NewInsert().
			Model(&batch).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert user batch: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for cursor.Next(ctx) {
		var legacy LegacyUser
		if err := cursor.Decode(&legacy); err != nil {
			slog.Warn("Skipping undecodable legacy user",
				slog.String("type", "sys"),
				slog.Any("error", err))
			continue
		}
		batch = append(batch, convertUser(legacy))
		if len(batch) >= m.batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return total, fmt.Errorf("legacy user cursor failed: %w", err)
	}
	return total, flush()
}

func (m *Migrator) MigrateAuctions(ctx context.Context) (int, error) {
	cursor, err := m.mongoDB.Collection("auctions").Find(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to query legacy auctions: %w", err)
	}
	defer cursor.Close(ctx)

	total := 0
	for cursor.Next(ctx) {
		var legacy LegacyAuction
		if err := cursor.Decode(&legacy); err != nil {
			slog.Warn("Skipping undecodable legacy auction",
				slog.String("type", "sys"),
				slog.Any("error", err))
			continue
		}

		auction := convertAuction(legacy)
		_, err := m.pgDB.NewInsert().
			Model(auction).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return total, fmt.Errorf("failed to insert auction %s: %w", auction.ID, err)
		}
		total++
	}
	if err := cursor.Err(); err != nil {
		return total, fmt.Errorf("legacy auction cursor failed: %w", err)
	}
	return total, nil
}

func convertUser(legacy LegacyUser) *models.User {
	id := legacy.UserID
	if id == "" {
		id = legacy.ID.Hex()
	}
	return &models.User{
		ID:           id,
		Username:     legacy.Username,
		FirstName:    legacy.FirstName,
		LastName:     legacy.LastName,
		Avatar:       legacy.Avatar,
		Balance:      legacy.Balance,
		IsBot:        legacy.IsBot,
		CreatedAt:    legacy.CreatedAt,
		LastActiveAt: legacy.LastActiveAt,
	}
}

func convertAuction(legacy LegacyAuction) *models.Auction {
	plan := make([]models.RoundPlan, 0, len(legacy.Plan))
	for _, r := range legacy.Plan {
		plan = append(plan, models.RoundPlan{
			RoundNumber:  r.RoundNumber,
			CountOfGifts: r.CountOfGifts,
			Time:         r.Time,
		})
	}

	winners := make([]models.Winner, 0, len(legacy.Winners))
	for _, w := range legacy.Winners {
		winners = append(winners, models.Winner{
			UserID:     w.UserID,
			Stars:      w.Stars,
			GiftNumber: w.GiftNumber,
		})
	}

	status := models.AuctionStatus(legacy.Status)
	switch status {
	case models.AuctionStatusPending, models.AuctionStatusActive, models.AuctionStatusFinished:
	default:
		status = models.AuctionStatusFinished
	}

	return &models.Auction{
		ID:         legacy.ID.Hex(),
		Name:       legacy.Name,
		Gift:       models.Gift{ID: legacy.Gift.ID, Name: legacy.Gift.Name},
		Plan:       plan,
		Winners:    winners,
		Status:     status,
		CreatedAt:  legacy.CreatedAt,
		FinishedAt: legacy.FinishedAt,
	}
}
