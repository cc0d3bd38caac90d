// Package store is the catalog store: the single-writer, multi-reader
// embedded relational store fronting every Work/Expression/Manifestation/
// Item/Artist/Assertion/VocabularyTerm mutation (spec §4.1).
//
// Grounded on the rest of the retrieval pack rather than the teacher
// (Ambrevar-demlo has no persistence layer at all): gorm plus the
// pure-Go glebarez/sqlite driver, the combination evidenced by the
// himanishpuri-AcousticDNA manifest, chosen over a CGO sqlite3 driver so
// the module stays trivially cross-compilable.
package store

import (
	"sort"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxur/tessitura/internal/tesserr"
)

// Store is the catalog store, backed by a single SQLite file.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if absent) the catalog store at path and applies
// any pending migrations.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, tesserr.Database("open catalog store", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the store's underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return tesserr.Database("access underlying connection", err)
	}
	if err := sqlDB.Close(); err != nil {
		return tesserr.Database("close catalog store", err)
	}
	return nil
}

// schemaMigrationRow records one applied migration (spec §4.1).
type schemaMigrationRow struct {
	Version   int `gorm:"primaryKey"`
	Name      string
	AppliedAt time.Time
}

func (schemaMigrationRow) TableName() string { return "schema_migrations" }

type migration struct {
	version int
	name    string
	apply   func(*gorm.DB) error
}

// migrations is the ordered, explicit migration sequence. AutoMigrate is
// deliberately not used for the full schema: an explicit list lets each
// step be reasoned about independently and keeps the "partial failure
// leaves the migrations table unchanged" invariant (spec §4.1) honest —
// each migration's own AutoMigrate call is the unit of failure, not a
// single whole-schema migration that could partially apply.
var migrations = []migration{
	{1, "create_works", func(db *gorm.DB) error { return db.AutoMigrate(&workRow{}) }},
	{2, "create_artists", func(db *gorm.DB) error { return db.AutoMigrate(&artistRow{}) }},
	{3, "create_expressions", func(db *gorm.DB) error {
		return db.AutoMigrate(&expressionRow{}, &expressionPerformerRow{})
	}},
	{4, "create_manifestations", func(db *gorm.DB) error { return db.AutoMigrate(&manifestationRow{}) }},
	{5, "create_items", func(db *gorm.DB) error { return db.AutoMigrate(&itemRow{}) }},
	{6, "create_assertions", func(db *gorm.DB) error { return db.AutoMigrate(&assertionRow{}) }},
	{7, "create_vocabulary_terms", func(db *gorm.DB) error { return db.AutoMigrate(&vocabularyTermRow{}) }},
}

func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(&schemaMigrationRow{}); err != nil {
		return tesserr.Database("create schema_migrations", err)
	}

	var applied []schemaMigrationRow
	if err := s.db.Find(&applied).Error; err != nil {
		return tesserr.Database("read schema_migrations", err)
	}
	done := make(map[int]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })

	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := m.apply(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigrationRow{Version: m.version, Name: m.name, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return tesserr.Database("apply migration "+m.name, err)
		}
	}
	return nil
}
