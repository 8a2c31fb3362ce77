package repositories

import (
	"context"
	"fmt"

	"virtualvault/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store bundles the repositories of one storage backend.
type Store struct {
	Users      UserRepository
	Categories CategoryRepository
	Products   ProductRepository
	Orders     OrderRepository
	Driver     string

	gormDB  *gorm.DB
	mongoDB *mongo.Database
}

// NewGORMStore wires the GORM repositories around an open connection.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Users:      NewGORMUserRepository(db),
		Categories: NewGORMCategoryRepository(db),
		Products:   NewGORMProductRepository(db),
		Orders:     NewGORMOrderRepository(db),
		Driver:     db.Dialector.Name(),
		gormDB:     db,
	}
}

// NewMongoStore wires the MongoDB repositories around a database handle.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Users:      NewMongoUserRepository(db),
		Categories: NewMongoCategoryRepository(db),
		Products:   NewMongoProductRepository(db),
		Orders:     NewMongoOrderRepository(db),
		Driver:     config.StoreMongo,
		mongoDB:    db,
	}
}

// OpenStore connects to the backend selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		_, db, err := OpenMongo(ctx, cfg.MongoURL, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(db), nil
	case config.StoreSQLite, config.StorePostgres:
		db, err := OpenGORM(cfg.StoreDriver, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		return NewGORMStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// Migrate creates tables (SQL) or indexes (MongoDB).
func (s *Store) Migrate(ctx context.Context) error {
	switch {
	case s.gormDB != nil:
		return AutoMigrate(s.gormDB.WithContext(ctx))
	case s.mongoDB != nil:
		return EnsureMongoIndexes(ctx, s.mongoDB)
	}
	return nil
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	switch {
	case s.gormDB != nil:
		sqlDB, err := s.gormDB.DB()
		if err != nil {
			return fmt.Errorf("failed to get database handle: %w", err)
		}
		return sqlDB.PingContext(ctx)
	case s.mongoDB != nil:
		return s.mongoDB.Client().Ping(ctx, nil)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	switch {
	case s.gormDB != nil:
		sqlDB, err := s.gormDB.DB()
		if err != nil {
			return fmt.Errorf("failed to get database handle: %w", err)
		}
		return sqlDB.Close()
	case s.mongoDB != nil:
		return s.mongoDB.Client().Disconnect(ctx)
	}
	return nil
}
