// Package statestore is the pipeline state store: the durable record of
// per-(workflow, item, stage, subtask) progress that lets the workflow
// engine resume after a crash without re-running completed work (spec
// §4.5/§6).
package statestore

import (
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/oxur/tessitura/internal/tesserr"
)

// Status is the lifecycle state of one (item, stage[, subtask]) pair.
type Status string

const (
	StatusPending     Status = "pending"
	StatusRunning     Status = "running"
	StatusComplete    Status = "complete"
	StatusNeedsReview Status = "needs_review"
	StatusFailed      Status = "failed"
)

// Key identifies a single state row.
type Key struct {
	WorkflowID  string
	ItemID      string
	StageName   string
	SubtaskName string // empty for the stage's own (non-subtask) row
}

// Record is the persisted state for a Key.
type Record struct {
	Key
	Status    Status
	LastError string
	UpdatedAt time.Time
}

type stateRow struct {
	WorkflowID  string `gorm:"primaryKey"`
	ItemID      string `gorm:"primaryKey"`
	StageName   string `gorm:"primaryKey"`
	SubtaskName string `gorm:"primaryKey"`
	Status      string
	LastError   string
	UpdatedAt   time.Time
}

func (stateRow) TableName() string { return "pipeline_state" }

// Store is the pipeline state store, backed by a SQLite file kept
// alongside, but separate from, the catalog store (spec §6).
type Store struct {
	db *gorm.DB
}

// Open opens (creating if absent) the pipeline state store at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, tesserr.Database("open pipeline state store", err)
	}
	if err := db.AutoMigrate(&stateRow{}); err != nil {
		return nil, tesserr.Database("migrate pipeline state store", err)
	}
	return &Store{db: db}, nil
}

// Close releases the store's underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return tesserr.Database("access underlying connection", err)
	}
	if err := sqlDB.Close(); err != nil {
		return tesserr.Database("close pipeline state store", err)
	}
	return nil
}

// Set writes (or overwrites) the record for key, stamping UpdatedAt.
func (s *Store) Set(key Key, status Status, lastError string) error {
	row := stateRow{
		WorkflowID:  key.WorkflowID,
		ItemID:      key.ItemID,
		StageName:   key.StageName,
		SubtaskName: key.SubtaskName,
		Status:      string(status),
		LastError:   lastError,
		UpdatedAt:   time.Now(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workflow_id"}, {Name: "item_id"}, {Name: "stage_name"}, {Name: "subtask_name"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return tesserr.Database("set pipeline state", err)
	}
	return nil
}

// Get returns the record for key. When no row exists yet it returns, with
// no error, a Record for key with status pending.
func (s *Store) Get(key Key) (Record, error) {
	var row stateRow
	err := s.db.Where(
		"workflow_id = ? AND item_id = ? AND stage_name = ? AND subtask_name = ?",
		key.WorkflowID, key.ItemID, key.StageName, key.SubtaskName,
	).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return Record{Key: key, Status: StatusPending}, nil
	}
	if err != nil {
		return Record{}, tesserr.Database("get pipeline state", err)
	}
	return Record{
		Key:       key,
		Status:    Status(row.Status),
		LastError: row.LastError,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// ListSubtasks returns every subtask record for (workflowID, itemID,
// stageName), i.e. every row with a non-empty subtask name.
func (s *Store) ListSubtasks(workflowID, itemID, stageName string) ([]Record, error) {
	var rows []stateRow
	err := s.db.Where(
		"workflow_id = ? AND item_id = ? AND stage_name = ? AND subtask_name != ''",
		workflowID, itemID, stageName,
	).Find(&rows).Error
	if err != nil {
		return nil, tesserr.Database("list subtask state", err)
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, Record{
			Key: Key{
				WorkflowID:  r.WorkflowID,
				ItemID:      r.ItemID,
				StageName:   r.StageName,
				SubtaskName: r.SubtaskName,
			},
			Status:    Status(r.Status),
			LastError: r.LastError,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return out, nil
}

// ListAll returns every persisted record for workflowID, for status
// reporting (spec §6 "status"; SPEC_FULL.md supplemented feature 6).
func (s *Store) ListAll(workflowID string) ([]Record, error) {
	var rows []stateRow
	if err := s.db.Where("workflow_id = ?", workflowID).Find(&rows).Error; err != nil {
		return nil, tesserr.Database("list pipeline state", err)
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, Record{
			Key: Key{
				WorkflowID:  r.WorkflowID,
				ItemID:      r.ItemID,
				StageName:   r.StageName,
				SubtaskName: r.SubtaskName,
			},
			Status:    Status(r.Status),
			LastError: r.LastError,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return out, nil
}

// ReconcileRunning demotes any row left "running" (from a prior crash)
// back to "pending" so the next advance call retries it (spec §4.5
// "Cancellation").
func (s *Store) ReconcileRunning(workflowID string) error {
	err := s.db.Model(&stateRow{}).
		Where("workflow_id = ? AND status = ?", workflowID, string(StatusRunning)).
		Updates(map[string]any{"status": string(StatusPending), "updated_at": time.Now()}).Error
	if err != nil {
		return tesserr.Database("reconcile running pipeline state", err)
	}
	return nil
}
