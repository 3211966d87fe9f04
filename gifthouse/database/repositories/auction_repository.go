package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
	"github.com/uptrace/bun"
)

var ErrAuctionNotFound = errors.New("auction not found")

type AuctionRepository interface {
	DB() *bun.DB
	Create(ctx context.Context, auction *models.Auction) error
	GetByID(ctx context.Context, id string) (*models.Auction, error)
	GetByStatus(ctx context.Context, status models.AuctionStatus) ([]*models.Auction, error)
	SetStatus(ctx context.Context, id string, status models.AuctionStatus) error
	AppendWinners(ctx context.Context, id string, winners []models.Winner) error
	MarkFinished(ctx context.Context, id string, finishedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type auctionRepository struct {
	db *bun.DB
}

func NewAuctionRepository(db *bun.DB) AuctionRepository {
	return &auctionRepository{db: db}
}

func (r *auctionRepository) DB() *bun.DB {
	return r.db
}

func (r *auctionRepository) Create(ctx context.Context, auction *models.Auction) error {
	auction.CreatedAt = time.Now()
	if auction.Status == "" {
		auction.Status = models.AuctionStatusPending
	}
	if auction.Winners == nil {
		auction.Winners = []models.Winner{}
	}

	_, err := r.db.NewInsert().Model(auction).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

func (r *auctionRepository) GetByID(ctx context.Context, id string) (*models.Auction, error) {
	auction := new(models.Auction)
	err := r.db.NewSelect().
		Model(auction).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

func (r *auctionRepository) GetByStatus(ctx context.Context, status models.AuctionStatus) ([]*models.Auction, error) {
	var auctions []*models.Auction

	err := r.db.NewSelect().
		Model(&auctions).
		Where("status = ?", status).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get auctions by status: %w", err)
	}
	return auctions, nil
}

func (r *auctionRepository) SetStatus(ctx context.Context, id string, status models.AuctionStatus) error {
	res, err := r.db.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to set auction status: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrAuctionNotFound
	}
	return nil
}

// AppendWinners appends winners to the record's jsonb array in a single
// statement, preserving assignment order.
func (r *auctionRepository) AppendWinners(ctx context.Context, id string, winners []models.Winner) error {
	if len(winners) == 0 {
		return nil
	}

	payload, err := json.Marshal(winners)
	if err != nil {
		return fmt.Errorf("failed to marshal winners: %w", err)
	}

	res, err := r.db.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("winners = winners || ?::jsonb", string(payload)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to append winners: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrAuctionNotFound
	}
	return nil
}

func (r *auctionRepository) MarkFinished(ctx context.Context, id string, finishedAt time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("status = ?", models.AuctionStatusFinished).
		Set("finished_at = ?", finishedAt).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark auction finished: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrAuctionNotFound
	}
	return nil
}

func (r *auctionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.NewDelete().
		Model((*models.Auction)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete auction: %w", err)
	}
	return nil
}
