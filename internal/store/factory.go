package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Path      string // file or sqlite database path
	Namespace string // sqlite/redis key scope
	Redis     RedisOptions
}

// Open returns the Store for opts.Backend. An empty backend means file.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	if opts.Namespace == "" {
		opts.Namespace = "default"
	}

	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("file store: path is required")
		}
		logger.Debug("using file session store", "path", opts.Path)
		return NewFileStore(opts.Path, logger), nil

	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite store: path is required")
		}
		st, err := NewSQLiteStore(opts.Path, opts.Namespace, logger)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("migrate sqlite store: %w", err)
		}
		logger.Debug("using sqlite session store", "path", opts.Path, "namespace", opts.Namespace)
		return st, nil

	case BackendRedis:
		st, err := NewRedisStore(ctx, opts.Redis, opts.Namespace, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("using redis session store", "addr", opts.Redis.Addr, "namespace", opts.Namespace)
		return st, nil

	case BackendMemory:
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
