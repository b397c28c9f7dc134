package birdblog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the gorm handle and provides CRUD operations for the gallery.
type Store struct {
	db *gorm.DB
}

// NewStore connects to postgres when databaseURL is set, otherwise opens (or
// creates) a local sqlite database at path, ensuring its directory exists.
// Schema creation is deferred to Migrate so the caller controls when the
// database has to be reachable.
func NewStore(databaseURL, path string) (*Store, error) {
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		// busy_timeout makes writers wait instead of failing with SQLITE_BUSY;
		// WAL allows concurrent reads during a write.
		dialector = sqlite.Open(path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Referential integrity is handled at the application level, the same
		// way animal-name uniqueness is.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(4)
	return &Store{db: db}, nil
}

// Close closes the underlying database connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping probes database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WaitForDB pings once per interval until the database answers or the timeout
// lapses. Useful when the app starts before a separate database service.
func (s *Store) WaitForDB(ctx context.Context, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("database not reachable after %s: %w", timeout, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Migrate creates any missing tables and repairs known schema drift:
// databases created before uploader support lack posts.user_id, and that
// check has to run before AutoMigrate sees the model.
func (s *Store) Migrate() error {
	m := s.db.Migrator()
	if m.HasTable(&Post{}) && !m.HasColumn(&Post{}, "UserID") {
		if err := m.AddColumn(&Post{}, "UserID"); err != nil {
			return fmt.Errorf("add posts.user_id: %w", err)
		}
	}
	if err := s.db.AutoMigrate(&Species{}, &Animal{}, &User{}, &Post{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// --- Species ---

// ListSpecies returns all species ordered by name.
func (s *Store) ListSpecies() ([]Species, error) {
	var list []Species
	err := s.db.Order("name").Find(&list).Error
	return list, err
}

// GetSpecies returns one species by id, or gorm.ErrRecordNotFound.
func (s *Store) GetSpecies(id uint) (Species, error) {
	var sp Species
	err := s.db.First(&sp, id).Error
	return sp, err
}

// SpeciesByName returns the species with the exact name, or
// gorm.ErrRecordNotFound.
func (s *Store) SpeciesByName(name string) (Species, error) {
	var sp Species
	err := s.db.Where("name = ?", name).First(&sp).Error
	return sp, err
}

// CreateSpecies inserts a new species and fills in its id.
func (s *Store) CreateSpecies(sp *Species) error {
	return s.db.Create(sp).Error
}

// RenameSpecies updates a species name.
func (s *Store) RenameSpecies(id uint, name string) error {
	return s.db.Model(&Species{}).Where("id = ?", id).Update("name", name).Error
}

// DeleteSpecies removes a species together with its posts and animals in one
// transaction. Image files are the caller's responsibility and must be dealt
// with before the rows go away.
func (s *Store) DeleteSpecies(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("species_id = ?", id).Delete(&Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("species_id = ?", id).Delete(&Animal{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Species{}, id).Error
	})
}

// --- Animals ---

// AnimalsBySpecies returns the named animals of a species ordered by name.
func (s *Store) AnimalsBySpecies(speciesID uint) ([]Animal, error) {
	var list []Animal
	err := s.db.Where("species_id = ?", speciesID).Order("name").Find(&list).Error
	return list, err
}

// AnimalByName looks up an animal by (species, name), the application-level
// uniqueness key.
func (s *Store) AnimalByName(speciesID uint, name string) (Animal, error) {
	var a Animal
	err := s.db.Where("species_id = ? AND name = ?", speciesID, name).First(&a).Error
	return a, err
}

// GetAnimal returns one animal by id.
func (s *Store) GetAnimal(id uint) (Animal, error) {
	var a Animal
	err := s.db.First(&a, id).Error
	return a, err
}

// CreateAnimal inserts a new animal and fills in its id.
func (s *Store) CreateAnimal(a *Animal) error {
	return s.db.Create(a).Error
}

// RenameAnimal updates an animal name.
func (s *Store) RenameAnimal(id uint, name string) error {
	return s.db.Model(&Animal{}).Where("id = ?", id).Update("name", name).Error
}

// --- Users ---

// ListUsers returns all uploader profiles ordered by name.
func (s *Store) ListUsers() ([]User, error) {
	var list []User
	err := s.db.Order("name").Find(&list).Error
	return list, err
}

// GetUser returns one uploader by id.
func (s *Store) GetUser(id uint) (User, error) {
	var u User
	err := s.db.First(&u, id).Error
	return u, err
}

// CreateUser inserts a new uploader profile and fills in its id.
func (s *Store) CreateUser(u *User) error {
	return s.db.Create(u).Error
}

// --- Posts ---

// ListPosts returns posts newest-first with species and uploader preloaded.
// speciesID 0 means all species; limit 0 means no limit.
func (s *Store) ListPosts(speciesID uint, limit int) ([]Post, error) {
	q := s.db.Preload("Species").Preload("User").Order("created_at DESC, id DESC")
	if speciesID != 0 {
		q = q.Where("species_id = ?", speciesID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []Post
	err := q.Find(&list).Error
	return list, err
}

// GetPost returns one post by id with species and uploader preloaded.
func (s *Store) GetPost(id uint) (Post, error) {
	var p Post
	err := s.db.Preload("Species").Preload("User").First(&p, id).Error
	return p, err
}

// CreatePost inserts a new post and fills in its id and timestamp.
func (s *Store) CreatePost(p *Post) error {
	return s.db.Create(p).Error
}

// DeletePost removes a post row. The image file is the caller's problem.
func (s *Store) DeletePost(id uint) error {
	return s.db.Delete(&Post{}, id).Error
}
