package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository instances.
type Repositories struct {
	C2BTransaction C2BTransactionRepository
	B2BTransaction B2BTransactionRepository
}

// NewRepositories creates all repositories on a shared DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		C2BTransaction: NewC2BTransactionRepository(db),
		B2BTransaction: NewB2BTransactionRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetC2BTransactionRepository returns the C2B transaction repository instance
func (f *Factory) GetC2BTransactionRepository() C2BTransactionRepository {
	return f.GetRepositories().C2BTransaction
}

// GetB2BTransactionRepository returns the B2B transaction repository instance
func (f *Factory) GetB2BTransactionRepository() B2BTransactionRepository {
	return f.GetRepositories().B2BTransaction
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory
func GetGlobalFactory() *Factory {
	return globalFactory
}
