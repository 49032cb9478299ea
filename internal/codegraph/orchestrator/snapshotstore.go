package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// snapshotRow is the gorm model backing GormSnapshotStore. It carries one
// row per repository; Extra holds forward-compatible fields (e.g. future
// per-layer timing breakdowns) as a JSON column rather than growing ad hoc
// nullable columns on every orchestrator change.
type snapshotRow struct {
	RepoID       string `gorm:"primaryKey"`
	Exists       bool
	Corrupted    bool
	LastBalanced time.Time
	TakenAt      time.Time
	Extra        datatypes.JSON
}

func (snapshotRow) TableName() string { return "orchestrator_snapshots" }

// GormSnapshotStore persists Snapshot metadata via gorm+glebarez/sqlite, the
// ORM stack SPEC_FULL.md §11 names for the orchestrator's own bookkeeping
// (distinct from the index writers' raw database/sql path, DESIGN.md
// module 13's design note on why the two storage layers differ).
type GormSnapshotStore struct {
	db *gorm.DB
}

// OpenGormSnapshotStore opens (and auto-migrates) a snapshot store backed by
// the sqlite file at path.
func OpenGormSnapshotStore(path string) (*GormSnapshotStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: open snapshot store: %w", err)
	}
	if err := db.AutoMigrate(&snapshotRow{}); err != nil {
		return nil, fmt.Errorf("orchestrator: migrate snapshot store: %w", err)
	}
	return &GormSnapshotStore{db: db}, nil
}

// Load returns the stored Snapshot for repoID, or a zero Snapshot
// (Exists == false) if none has been committed yet.
func (s *GormSnapshotStore) Load(ctx context.Context, repoID string) (Snapshot, error) {
	var row snapshotRow
	err := s.db.WithContext(ctx).First(&row, "repo_id = ?", repoID).Error
	if err == gorm.ErrRecordNotFound {
		return Snapshot{RepoID: repoID}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("orchestrator: load snapshot %s: %w", repoID, err)
	}
	return Snapshot{
		RepoID:       row.RepoID,
		Exists:       row.Exists,
		Corrupted:    row.Corrupted,
		LastBalanced: row.LastBalanced,
		TakenAt:      row.TakenAt,
	}, nil
}

// Save upserts snap, keyed by RepoID.
func (s *GormSnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	row := snapshotRow{
		RepoID:       snap.RepoID,
		Exists:       snap.Exists,
		Corrupted:    snap.Corrupted,
		LastBalanced: snap.LastBalanced,
		TakenAt:      snap.TakenAt,
	}
	err := s.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return fmt.Errorf("orchestrator: save snapshot %s: %w", snap.RepoID, err)
	}
	return nil
}

// Close releases the underlying sqlite connection.
func (s *GormSnapshotStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
