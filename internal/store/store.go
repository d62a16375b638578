// Package store provides the durable key/value backends behind
// domain.KeyValueStore: a BoltDB file, a shared Redis server, and memory.
package store

import (
	"fmt"

	"github.com/printandread/shelf/internal/domain"
)

// Backend names accepted by Open.
const (
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Dir       string // bolt
	ServerURL string // bolt: partitions the file per API server
	RedisAddr string
	RedisDB   int
	Redis     *RedisConfig
}

// Open returns the configured backend.
func Open(opts Options) (domain.KeyValueStore, error) {
	switch opts.Backend {
	case "", BackendBolt:
		return OpenBoltStore(opts.Dir, opts.ServerURL)
	case BackendRedis:
		return OpenRedisStore(opts.RedisAddr, opts.RedisDB, opts.Redis)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", opts.Backend)
	}
}

var (
	_ domain.KeyValueStore = (*BoltStore)(nil)
	_ domain.KeyValueStore = (*RedisStore)(nil)
	_ domain.KeyValueStore = (*MemoryStore)(nil)
)
