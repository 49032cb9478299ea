package codegraph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/viant/codegraph/internal/codegraph/ir"
)

// irDocumentRow is the gorm model backing PersistedIRStore: one row per
// (repo, snapshot, file), holding the IR Document's nodes/edges as a JSON
// payload plus the schema_version it was written under, §6 "Persisted IR
// versioning (schema_version, additive-only migrations)".
type irDocumentRow struct {
	RepoID        string `gorm:"primaryKey"`
	SnapshotID    string `gorm:"primaryKey"`
	FilePath      string `gorm:"primaryKey"`
	SchemaVersion string
	PayloadJSON   string
	UpdatedAt     time.Time
}

func (irDocumentRow) TableName() string { return "persisted_ir_documents" }

// irDocumentPayload is the JSON shape stored in PayloadJSON. It is additive
// only across schema_version bumps: a new field is appended with a default
// that makes absence (an older row) equivalent to "unknown", never by
// repurposing or removing an existing field, matching §6's "additive-only
// migrations" requirement.
type irDocumentPayload struct {
	Nodes []ir.Node `json:"nodes"`
	Edges []ir.Edge `json:"edges"`
}

// PersistedIRStore persists built IR Documents via gorm+gorm.io/driver/sqlite
// (the cgo mattn/go-sqlite3-backed gorm driver), deliberately distinct from
// both the orchestrator's pure-Go glebarez/sqlite snapshot store and the
// index writers' raw database/sql path — three separate storage concerns
// sharing the sqlite file format but not a connection or a schema.
type PersistedIRStore struct {
	db *gorm.DB
}

// OpenPersistedIRStore opens (and auto-migrates) a persisted-IR store backed
// by the sqlite file at path.
func OpenPersistedIRStore(path string) (*PersistedIRStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open persisted IR store: %w", err)
	}
	if err := db.AutoMigrate(&irDocumentRow{}); err != nil {
		return nil, fmt.Errorf("migrate persisted IR store: %w", err)
	}
	return &PersistedIRStore{db: db}, nil
}

// Save persists doc under (repoID, snapshotID, filePath), replacing any
// prior row for the same key.
func (s *PersistedIRStore) Save(ctx context.Context, filePath string, doc *ir.Document) error {
	payload := irDocumentPayload{Nodes: doc.Nodes(), Edges: doc.Edges()}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal IR document %s: %w", filePath, err)
	}
	row := irDocumentRow{
		RepoID:        doc.RepoID,
		SnapshotID:    doc.SnapshotID,
		FilePath:      filePath,
		SchemaVersion: doc.SchemaVersion,
		PayloadJSON:   string(body),
		UpdatedAt:     time.Now(),
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save IR document %s: %w", filePath, err)
	}
	return nil
}

// Load returns the persisted nodes/edges for (repoID, snapshotID,
// filePath), or ok=false if nothing has been saved under that key.
func (s *PersistedIRStore) Load(ctx context.Context, repoID, snapshotID, filePath string) (nodes []ir.Node, edges []ir.Edge, schemaVersion string, ok bool, err error) {
	var row irDocumentRow
	dbErr := s.db.WithContext(ctx).First(&row, "repo_id = ? AND snapshot_id = ? AND file_path = ?", repoID, snapshotID, filePath).Error
	if dbErr == gorm.ErrRecordNotFound {
		return nil, nil, "", false, nil
	}
	if dbErr != nil {
		return nil, nil, "", false, fmt.Errorf("load IR document %s: %w", filePath, dbErr)
	}
	var payload irDocumentPayload
	if err := json.Unmarshal([]byte(row.PayloadJSON), &payload); err != nil {
		return nil, nil, "", false, fmt.Errorf("unmarshal IR document %s: %w", filePath, err)
	}
	return payload.Nodes, payload.Edges, row.SchemaVersion, true, nil
}

// Close releases the underlying sqlite connection.
func (s *PersistedIRStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
