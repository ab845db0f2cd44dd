package repositories

import (
	"context"
	"strings"
	"time"

	"tidewater/harbormaster/internal/models/gorm"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// FeedSnapshotRepo stores the extracted arrivals-PDF snapshots. Each
// extraction cycle writes a whole new generation; the previous generation
// is kept for change highlighting and anything older is dropped.
type FeedSnapshotRepo struct {
	db *gormlib.DB
}

// NewFeedSnapshotRepo creates a new feed snapshot repository
func NewFeedSnapshotRepo(db *gormlib.DB) *FeedSnapshotRepo {
	return &FeedSnapshotRepo{db: db}
}

// ReplaceSnapshot writes a new generation of feed ships and prunes all
// generations older than the one it supersedes, in one transaction.
func (r *FeedSnapshotRepo) ReplaceSnapshot(ctx context.Context, ships []gorm.FeedShip) (int64, error) {
	gen := time.Now().UTC().UnixMilli()

	err := r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		// The generation being superseded stays around as "previous".
		superseded, _, err := latestGenerations(tx)
		if err != nil {
			return err
		}

		for i := range ships {
			if ships[i].ID == "" {
				ships[i].ID = uuid.NewString()
			}
			ships[i].Generation = gen
			ships[i].NameLower = strings.ToLower(strings.TrimSpace(ships[i].Name))
		}

		if len(ships) > 0 {
			if err := tx.Create(&ships).Error; err != nil {
				return err
			}
		}

		// Keep the new generation and the one before it.
		if superseded != 0 {
			if err := tx.Where("generation < ?", superseded).Delete(&gorm.FeedShip{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return gen, nil
}

// LatestGenerations returns the newest and second-newest snapshot
// generations; zero values mean fewer than that many snapshots exist.
func (r *FeedSnapshotRepo) LatestGenerations(ctx context.Context) (current int64, previous int64, err error) {
	return latestGenerations(r.db.WithContext(ctx))
}

func latestGenerations(db *gormlib.DB) (int64, int64, error) {
	var gens []int64

	err := db.Model(&gorm.FeedShip{}).
		Distinct("generation").
		Order("generation DESC").
		Limit(2).
		Pluck("generation", &gens).Error
	if err != nil {
		return 0, 0, err
	}

	var current, previous int64
	if len(gens) > 0 {
		current = gens[0]
	}
	if len(gens) > 1 {
		previous = gens[1]
	}
	return current, previous, nil
}

// ShipsForGeneration returns the feed ships of one snapshot generation.
func (r *FeedSnapshotRepo) ShipsForGeneration(ctx context.Context, gen int64) ([]gorm.FeedShip, error) {
	var ships []gorm.FeedShip

	err := r.db.WithContext(ctx).
		Where("generation = ?", gen).
		Order("name_lower ASC").
		Find(&ships).Error
	if err != nil {
		return nil, err
	}

	return ships, nil
}

// FindInLatestByName returns the feed ship with the given name from the
// newest generation, matched case-insensitively.
func (r *FeedSnapshotRepo) FindInLatestByName(ctx context.Context, name string) (*gorm.FeedShip, error) {
	current, _, err := r.LatestGenerations(ctx)
	if err != nil {
		return nil, err
	}
	if current == 0 {
		return nil, nil
	}

	var ship gorm.FeedShip
	err = r.db.WithContext(ctx).
		Where("generation = ? AND name_lower = ?", current, strings.ToLower(strings.TrimSpace(name))).
		First(&ship).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &ship, nil
}
