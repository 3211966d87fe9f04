package bots

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
	"github.com/ellavondegurechaff/gogift/gifthouse/database/repositories"
)

// Seeder provisions synthetic bidder accounts for load runs. Existing bot
// ids are left untouched, so reseeding is safe.
type Seeder struct {
	users repositories.UserRepository
}

func NewSeeder(users repositories.UserRepository) *Seeder {
	return &Seeder{users: users}
}

func (s *Seeder) Seed(ctx context.Context, count int, balance int64) error {
	if count <= 0 {
		return nil
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("bot-%04d", i)
		users = append(users, &models.User{
			ID:        id,
			Username:  id,
			FirstName: fmt.Sprintf("Bot %d", i),
			Balance:   balance,
			IsBot:     true,
		})
	}

	if err := s.users.BulkCreateUsers(ctx, users); err != nil {
		return fmt.Errorf("failed to seed bots: %w", err)
	}

	slog.Info("Bot users seeded",
		slog.String("type", "sys"),
		slog.Int("count", count),
		slog.Int64("balance", balance))
	return nil
}
