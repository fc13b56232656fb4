// Package migration tracks schema changes in a migrations table and
// applies them in batches, so migrate:rollback can undo exactly one
// deploy's worth.
//
// Migration files register themselves from init:
//
//	func init() {
//	    migration.Register("20260105000002_create_listings_table", &CreateListingsTable{})
//	}
//
//	type CreateListingsTable struct{}
//	func (m *CreateListingsTable) Up(db *gorm.DB) error   { return db.AutoMigrate(&models.Listing{}) }
//	func (m *CreateListingsTable) Down(db *gorm.DB) error { return db.Migrator().DropTable("listings") }
//
// The timestamp prefix fixes the apply order.
package migration

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/agriconnect-ug/agriconnect/pkg/logger"
)

// Migration is one reversible schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// record is a row in the migrations tracking table.
type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"size:255;uniqueIndex;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "migrations" }

type entry struct {
	name string
	mig  Migration
}

var registry []entry

// Register adds a migration under a timestamp-prefixed name like
// "20260105000002_create_listings_table". Names decide the run order.
func Register(name string, m Migration) {
	registry = append(registry, entry{name: name, mig: m})
}

// Runner applies registered migrations against one database.
type Runner struct {
	db *gorm.DB
}

// New returns a Runner for db.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: create tracking table: %w", err)
	}
	return nil
}

// pending returns registered migrations with no tracking row, oldest first.
func (r *Runner) pending() ([]entry, error) {
	var ran []record
	if err := r.db.Find(&ran).Error; err != nil {
		return nil, fmt.Errorf("migration: read tracking table: %w", err)
	}

	applied := make(map[string]bool, len(ran))
	for _, rec := range ran {
		applied[rec.Name] = true
	}

	var out []entry
	for _, e := range registry {
		if !applied[e.name] {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}

// Run applies every pending migration as one batch. Each migration and
// its tracking row commit together, so a failure leaves no half-applied
// step behind.
func (r *Runner) Run() error {
	if err := r.ensureTable(); err != nil {
		return err
	}

	todo, err := r.pending()
	if err != nil {
		return err
	}
	if len(todo) == 0 {
		fmt.Println("Nothing to migrate.")
		return nil
	}

	batch := r.lastBatch() + 1
	for _, e := range todo {
		fmt.Printf("  Migrating: %s\n", e.name)
		logger.Info("migration: running", "name", e.name)

		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := e.mig.Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{Name: e.name, Batch: batch}).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s: %w", e.name, err)
		}

		fmt.Printf("  Migrated:  %s\n", e.name)
	}

	logger.Info("migration: done", "ran", len(todo), "batch", batch)
	return nil
}

// Rollback reverses the most recent batch, newest migration first.
func (r *Runner) Rollback() error {
	if err := r.ensureTable(); err != nil {
		return err
	}

	batch := r.lastBatch()
	if batch == 0 {
		fmt.Println("Nothing to roll back.")
		return nil
	}

	var records []record
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&records).Error; err != nil {
		return fmt.Errorf("migration: read batch %d: %w", batch, err)
	}

	byName := make(map[string]Migration, len(registry))
	for _, e := range registry {
		byName[e.name] = e.mig
	}

	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}

		fmt.Printf("  Rolling back: %s\n", rec.Name)
		logger.Info("migration: reverting", "name", rec.Name)

		rec := rec
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&rec).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
	}
	return nil
}

// Status prints one line per registered migration with its batch, or
// Pending when it has not run.
func (r *Runner) Status() error {
	if err := r.ensureTable(); err != nil {
		return err
	}

	var ran []record
	if err := r.db.Find(&ran).Error; err != nil {
		return fmt.Errorf("migration: read tracking table: %w", err)
	}
	byName := make(map[string]record, len(ran))
	for _, rec := range ran {
		byName[rec.Name] = rec
	}

	fmt.Printf("%-58s  %-8s  %-5s  %s\n", "Migration", "Status", "Batch", "Ran at")
	fmt.Println(strings.Repeat("-", 96))
	for _, e := range registry {
		if rec, ok := byName[e.name]; ok {
			fmt.Printf("%-58s  %-8s  %-5d  %s\n", e.name, "Ran", rec.Batch, rec.RunAt.Format("2006-01-02 15:04"))
		} else {
			fmt.Printf("%-58s  %-8s  -\n", e.name, "Pending")
		}
	}
	return nil
}

func (r *Runner) lastBatch() int {
	var n struct{ N int }
	r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS n").Scan(&n)
	return n.N
}
