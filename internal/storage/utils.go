package storage

import "time"

// PoolOptions tunes the connection pool opened by InitStore.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func InitStore(dbConnStr string, opts PoolOptions) (*PostgresStore, error) {
	store, err := NewPostgresStore(dbConnStr)
	if err != nil {
		return nil, err
	}
	if db, ok := store.db.(interface {
		SetMaxOpenConns(int)
		SetMaxIdleConns(int)
		SetConnMaxLifetime(time.Duration)
	}); ok {
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			db.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}
	return store, nil
}
