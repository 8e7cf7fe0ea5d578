package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options select and configure a backend.
type Options struct {
	Backend string
	Dir     string // file backend; empty selects DefaultDir
	Redis   RedisConfig
	Mongo   MongoConfig
}

// Open constructs the configured backend. An empty backend selects the file
// cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewFileCache(dir)
	case BackendRedis:
		return NewRedisCache(ctx, opts.Redis)
	case BackendMongo:
		return NewMongoCache(ctx, opts.Mongo)
	case BackendNone, "null", "off":
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("%w: %q (must be one of: file, redis, mongo, none)", ErrUnknownBackend, opts.Backend)
}
