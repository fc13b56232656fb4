// Package seeders fills a fresh database with the rows the app needs to
// be useful: the category taxonomy always, demo accounts and listings
// when asked. Seeder files register themselves from init, and the CLI
// runs them with:
//
//	agriconnect seed
package seeders

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// SeederFunc seeds one concern. It must be idempotent; the seed command
// runs against live databases too.
type SeederFunc func(db *gorm.DB) error

type seeder struct {
	name string
	fn   SeederFunc
}

var (
	mu       sync.Mutex
	registry []seeder
)

// Register queues a named seeder. Registration order is run order, so
// seeders that depend on other tables register later in the file list.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	registry = append(registry, seeder{name: name, fn: fn})
	mu.Unlock()
}

// RunAll executes the registered seeders in order, stopping at the first
// failure.
func RunAll(db *gorm.DB) error {
	mu.Lock()
	todo := append([]seeder(nil), registry...)
	mu.Unlock()

	if len(todo) == 0 {
		fmt.Println("Nothing to seed.")
		return nil
	}

	for _, s := range todo {
		fmt.Printf("  Seeding %s … ", s.name)
		if err := s.fn(db); err != nil {
			fmt.Println("failed")
			return fmt.Errorf("seeder %q: %w", s.name, err)
		}
		fmt.Println("ok")
	}
	return nil
}
