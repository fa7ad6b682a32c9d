package database

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

type Migration struct {
	ID   string
	Name string
	Up   func(db *gorm.DB) error
	Down func(db *gorm.DB) error
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]Migration)
)

// RegisterMigration is called from init functions. IDs sort lexically, so
// they start with the date.
func RegisterMigration(m Migration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[m.ID]; exists {
		panic(fmt.Sprintf("migration with ID %s already registered", m.ID))
	}
	registry[m.ID] = m
}

// RegisteredMigrations returns the known migrations in apply order.
func RegisteredMigrations() []Migration {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]Migration, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type MigrationsManager struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMigrationsManager(db *gorm.DB) *MigrationsManager {
	return &MigrationsManager{db: db, now: time.Now}
}

func (m *MigrationsManager) ensureVersionTable() error {
	return m.db.Exec(`
CREATE TABLE IF NOT EXISTS migration_version (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`).Error
}

func (m *MigrationsManager) applied() (map[string]struct{}, error) {
	var ids []string
	if err := m.db.Raw("SELECT id FROM migration_version").Scan(&ids).Error; err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// ApplyPending runs each pending migration in its own transaction together
// with its version row.
func (m *MigrationsManager) ApplyPending() error {
	if err := m.ensureVersionTable(); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}
	done, err := m.applied()
	if err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}

	for _, mig := range RegisteredMigrations() {
		if _, ok := done[mig.ID]; ok {
			continue
		}
		if mig.Up == nil {
			return fmt.Errorf("migration %s has no Up function", mig.ID)
		}
		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := mig.Up(tx); err != nil {
				return err
			}
			return tx.Exec("INSERT INTO migration_version (id, name, applied_at) VALUES (?, ?, ?)",
				mig.ID, mig.Name, m.now()).Error
		})
		if err != nil {
			return fmt.Errorf("apply migration %s (%s): %w", mig.ID, mig.Name, err)
		}
	}
	return nil
}
