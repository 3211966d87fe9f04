package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
	"github.com/uptrace/bun"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	DB() *bun.DB
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	LoadBalances(ctx context.Context) ([]models.BalanceRecord, error)
	SaveBalances(ctx context.Context, records []models.BalanceRecord) error
	BulkCreateUsers(ctx context.Context, users []*models.User) error
	GetAllBotIDs(ctx context.Context) ([]string, error)
	TouchLastActive(ctx context.Context, id string) error
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) DB() *bun.DB {
	return r.db
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.LastActiveAt = time.Now()
	_, err := r.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// LoadBalances snapshots every user's balance for the engine's ledger.
func (r *userRepository) LoadBalances(ctx context.Context) ([]models.BalanceRecord, error) {
	var users []*models.User
	err := r.db.NewSelect().
		Model(&users).
		Column("id", "balance").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}

	records := make([]models.BalanceRecord, 0, len(users))
	for _, u := range users {
		records = append(records, models.BalanceRecord{UserID: u.ID, Balance: u.Balance})
	}
	return records, nil
}

// SaveBalances flushes an engine ledger snapshot back to the users table.
func (r *userRepository) SaveBalances(ctx context.Context, records []models.BalanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, rec := range records {
			_, err := tx.NewUpdate().
				Model((*models.User)(nil)).
				Set("balance = ?", rec.Balance).
				Where("id = ?", rec.UserID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to save balance for %s: %w", rec.UserID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("Balances flushed",
		slog.String("type", "db"),
		slog.Int("count", len(records)),
		slog.Duration("took", time.Since(start)))
	return nil
}

// BulkCreateUsers inserts users in one statement, skipping ids that already
// exist. Used by the synthetic-load seeder and the legacy import.
func (r *userRepository) BulkCreateUsers(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}

	now := time.Now()
	for _, u := range users {
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		if u.LastActiveAt.IsZero() {
			u.LastActiveAt = now
		}
	}

	_, err := r.db.NewInsert().
		Model(&users).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to bulk create users: %w", err)
	}
	return nil
}

func (r *userRepository) GetAllBotIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*models.User)(nil)).
		Column("id").
		Where("is_bot = ?", true).
		Scan(ctx, &ids)

	if err != nil {
		return nil, fmt.Errorf("failed to get bot ids: %w", err)
	}
	return ids, nil
}

func (r *userRepository) TouchLastActive(ctx context.Context, id string) error {
	_, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("last_active_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}
